package service

import (
	"context"
	"net/http"

	"github.com/lukejcollins/litroulette/internal/adapters/history"
	"github.com/lukejcollins/litroulette/internal/adapters/metadata"
	"github.com/lukejcollins/litroulette/internal/adapters/source"
	"github.com/lukejcollins/litroulette/internal/adapters/util"
	"github.com/lukejcollins/litroulette/internal/config"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/rs/zerolog"
)

func CreateHTTPClient(cfg *config.Config, logger zerolog.Logger) *http.Client {
	return util.NewHTTPClient(util.ClientOptions{
		Timeout:           cfg.HTTPTimeout,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})
}

// CreateCatalogs returns the subject catalog for the configured source type and the editions
// catalog. The editions catalog is always Open Library; OPDS works carry no key to look up.
func CreateCatalogs(cfg *config.Config, client *http.Client, logger zerolog.Logger) (ports.GenreCatalog, ports.EditionsCatalog) {
	openLibrary := source.NewOpenLibraryAdapter(cfg.OpenLibraryBaseURL, cfg.PageSize, client, logger)

	switch cfg.CatalogSourceType {
	case config.SourceOPDS:
		return source.NewOPDSAdapter(cfg.OPDSSearchURL, cfg.OPDSUsername, cfg.OPDSPassword, cfg.PageSize, client, logger), openLibrary
	default:
		return openLibrary, openLibrary
	}
}

func CreateMetadataSearch(cfg *config.Config, client *http.Client, logger zerolog.Logger) ports.MetadataSearch {
	return metadata.NewGoogleBooksAdapter(cfg.GoogleBooksBaseURL, cfg.GoogleBooksAPIKey, client, logger)
}

// CreateHistoryStore opens the pick log, or returns nil when it is disabled.
func CreateHistoryStore(ctx context.Context, cfg *config.Config) (ports.HistoryStore, error) {
	if cfg.HistoryPath == "" {
		return nil, nil
	}
	store, err := history.Open(ctx, cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// CreatePipeline wires every adapter for cfg. The returned pipeline does not own hist.
func CreatePipeline(cfg *config.Config, rng ports.RandomSource, hist ports.HistoryStore, logger zerolog.Logger) *SelectionPipeline {
	client := CreateHTTPClient(cfg, logger)
	catalog, editions := CreateCatalogs(cfg, client, logger)

	return NewSelectionPipeline(PipelineOptions{
		Catalog:  catalog,
		Editions: editions,
		Search:   CreateMetadataSearch(cfg, client, logger),
		History:  hist,
		Random:   rng,
		PageSize: cfg.PageSize,
		Logger:   logger,
	})
}
