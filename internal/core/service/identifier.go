package service

import (
	"context"
	"strings"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/rs/zerolog"
)

// IdentifierResolver maps a work to an ISBN through the editions catalog. It never fails:
// anything short of an ISBN is Unresolved.
type IdentifierResolver struct {
	editions ports.EditionsCatalog
	logger   zerolog.Logger
}

func NewIdentifierResolver(editions ports.EditionsCatalog, logger zerolog.Logger) *IdentifierResolver {
	return &IdentifierResolver{editions: editions, logger: logger}
}

// Resolve returns the first ISBN found scanning editions in catalog order, ISBN-13 before
// ISBN-10 within an edition. Works without a catalog key are not looked up.
func (r *IdentifierResolver) Resolve(ctx context.Context, work models.WorkSummary) models.ResolvedIdentifier {
	if !work.HasCatalogKey() || r.editions == nil {
		return models.Unresolved
	}

	editions, err := r.editions.Editions(ctx, work.CatalogKey)
	if err != nil {
		r.logger.Warn().Err(err).Str("work", work.CatalogKey).Msg("editions lookup failed, continuing without ISBN")
		return models.Unresolved
	}

	id := FirstISBN(editions)
	r.logger.Debug().Str("work", work.CatalogKey).Int("editions", len(editions)).Stringer("identifier", id).Msg("resolved identifier")
	return id
}

// FirstISBN applies the edition scan order used by Resolve.
func FirstISBN(editions []models.Edition) models.ResolvedIdentifier {
	for _, e := range editions {
		if isbn := firstNonBlank(e.ISBN13); isbn != "" {
			return models.ISBN(isbn)
		}
		if isbn := firstNonBlank(e.ISBN10); isbn != "" {
			return models.ISBN(isbn)
		}
	}
	return models.Unresolved
}

func firstNonBlank(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
