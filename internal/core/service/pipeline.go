package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SelectionPipeline turns a genre into one random, described book. It holds no per-run
// state; concurrent Select calls are safe as long as the RandomSource is.
type SelectionPipeline struct {
	catalog     ports.GenreCatalog
	identifiers *IdentifierResolver
	describer   *DescriptionResolver
	history     ports.HistoryStore
	rng         ports.RandomSource
	pageSize    int
	logger      zerolog.Logger
	now         func() time.Time
}

type PipelineOptions struct {
	Catalog  ports.GenreCatalog
	Editions ports.EditionsCatalog
	Search   ports.MetadataSearch
	// History is optional.
	History  ports.HistoryStore
	Random   ports.RandomSource
	PageSize int
	Logger   zerolog.Logger
}

func NewSelectionPipeline(opts PipelineOptions) *SelectionPipeline {
	return &SelectionPipeline{
		catalog:     opts.Catalog,
		identifiers: NewIdentifierResolver(opts.Editions, opts.Logger),
		describer:   NewDescriptionResolver(opts.Search, opts.Logger),
		history:     opts.History,
		rng:         opts.Random,
		pageSize:    opts.PageSize,
		logger:      opts.Logger,
		now:         time.Now,
	}
}

// Select runs count, sample, page, pick, identifier resolution and description lookup in
// order. Only subject catalog failures are returned as errors. An empty sampled page yields
// a NoResults selection; any pick yields a Book, described or not.
func (p *SelectionPipeline) Select(ctx context.Context, genre models.GenreQuery) (models.Selection, error) {
	log := p.logger.With().Str("subject", genre.Subject()).Logger()

	total, err := p.catalog.Count(ctx, genre)
	if err != nil {
		return models.Selection{}, fmt.Errorf("failed to count works: %w", err)
	}

	offset := SampleOffset(total, p.pageSize, p.rng)
	log.Debug().Int("total", total).Int("page_size", p.pageSize).Int("offset", offset).Msg("sampled offset")

	page, err := p.catalog.Page(ctx, genre, offset)
	if err != nil {
		return models.Selection{}, fmt.Errorf("failed to fetch works: %w", err)
	}

	work, err := PickWork(page, p.rng)
	if errors.Is(err, models.ErrEmptyPage) {
		log.Info().Int("total", total).Int("offset", offset).Msg("no works on sampled page")
		return models.Selection{NoResults: &models.NoResultsForGenre{Genre: genre}}, nil
	}
	if err != nil {
		return models.Selection{}, err
	}
	log.Info().Str("title", work.Title).Str("work", work.CatalogKey).Msg("picked work")

	id := p.identifiers.Resolve(ctx, work)

	// The history write does not depend on the description, so the two run side by side.
	// Describe never fails, so the group's error is the history write's.
	var (
		g       errgroup.Group
		outcome DescriptionOutcome
	)
	g.Go(func() error {
		outcome = p.describer.Describe(ctx, id, work.Title)
		return nil
	})
	g.Go(func() error {
		return p.record(ctx, genre, work)
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Str("title", work.Title).Msg("failed to record pick")
	}

	if outcome.State == StateFailed {
		log.Warn().Err(outcome.Err).Str("title", work.Title).Msg("description unavailable")
	}

	return models.Selection{Book: p.buildResult(work, outcome)}, nil
}

func (p *SelectionPipeline) buildResult(work models.WorkSummary, outcome DescriptionOutcome) *models.BookResult {
	result := &models.BookResult{
		Title:       work.Title,
		Authors:     append([]string{}, work.Authors...),
		Description: outcome.Description,
	}
	if work.HasCatalogKey() {
		if u := p.catalog.WorkURL(work.CatalogKey); u != "" {
			result.SourceURL = &u
		}
	}
	return result
}

// record logs the pick to the history store, if one is configured.
func (p *SelectionPipeline) record(ctx context.Context, genre models.GenreQuery, work models.WorkSummary) error {
	if p.history == nil {
		return nil
	}
	pick := models.Pick{
		Genre:      genre.Name(),
		Subject:    genre.Subject(),
		Title:      work.Title,
		Authors:    work.Authors,
		CatalogKey: work.CatalogKey,
		PickedAt:   p.now().UTC(),
	}
	if err := p.history.Record(ctx, pick); err != nil {
		return fmt.Errorf("record pick: %w", err)
	}
	return nil
}
