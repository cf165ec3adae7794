// Package history keeps a sqlite log of sampled works. The log is write-mostly: selection
// never consults it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var _ ports.HistoryStore = (*BunStore)(nil)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type pickRow struct {
	bun.BaseModel `bun:"table:picks,alias:p"`

	ID         string    `bun:"id,pk"`
	Genre      string    `bun:"genre,notnull"`
	Subject    string    `bun:"subject,notnull"`
	Title      string    `bun:"title,notnull"`
	Authors    []string  `bun:"authors"`
	CatalogKey string    `bun:"catalog_key"`
	PickedAt   time.Time `bun:"picked_at,notnull"`
}

type BunStore struct {
	db *bun.DB
}

// Open opens (creating if needed) the sqlite database at path and ensures the picks table.
func Open(ctx context.Context, path string) (*BunStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One connection keeps :memory: databases shared across calls and serializes writers.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*pickRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create picks table: %w", err)
	}
	return &BunStore{db: db}, nil
}

// Record inserts a pick, assigning an ID and timestamp when missing.
func (s *BunStore) Record(ctx context.Context, pick models.Pick) error {
	row := &pickRow{
		ID:         pick.ID,
		Genre:      pick.Genre,
		Subject:    pick.Subject,
		Title:      pick.Title,
		Authors:    pick.Authors,
		CatalogKey: pick.CatalogKey,
		PickedAt:   pick.PickedAt,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.PickedAt.IsZero() {
		row.PickedAt = time.Now().UTC()
	}
	if row.Authors == nil {
		row.Authors = []string{}
	}

	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record pick %q: %w", row.Title, err)
	}
	return nil
}

// Recent returns up to limit picks, newest first. A non-positive limit returns nothing.
func (s *BunStore) Recent(ctx context.Context, limit int) ([]models.Pick, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []pickRow
	if err := s.db.NewSelect().Model(&rows).Order("picked_at DESC", "id DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}

	picks := make([]models.Pick, 0, len(rows))
	for _, r := range rows {
		picks = append(picks, models.Pick{
			ID:         r.ID,
			Genre:      r.Genre,
			Subject:    r.Subject,
			Title:      r.Title,
			Authors:    r.Authors,
			CatalogKey: r.CatalogKey,
			PickedAt:   r.PickedAt,
		})
	}
	return picks, nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}
