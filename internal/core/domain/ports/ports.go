package ports

import (
	"context"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
)

// RandomSource supplies uniform integers in [0, n). It returns 0 when n <= 0.
type RandomSource interface {
	IntN(n int) int
}

// GenreCatalog lists works for a subject.
type GenreCatalog interface {
	Count(ctx context.Context, genre models.GenreQuery) (int, error)
	Page(ctx context.Context, genre models.GenreQuery, offset int) (models.WorkPage, error)
	// WorkURL returns the public page for a catalog key, or "" if the catalog has none.
	WorkURL(catalogKey string) string
}

// EditionsCatalog lists ISBNs of the editions of a work, one slice entry per edition in
// catalog order.
type EditionsCatalog interface {
	Editions(ctx context.Context, catalogKey string) ([]models.Edition, error)
}

// MetadataSearch looks up book metadata by ISBN or by exact title.
type MetadataSearch interface {
	SearchByISBN(ctx context.Context, isbn string) ([]models.VolumeMatch, error)
	SearchByTitle(ctx context.Context, title string) ([]models.VolumeMatch, error)
}

// HistoryStore records sampled works. It is never read during selection.
type HistoryStore interface {
	Record(ctx context.Context, pick models.Pick) error
	Recent(ctx context.Context, limit int) ([]models.Pick, error)
	Close() error
}
