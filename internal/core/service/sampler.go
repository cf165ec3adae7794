package service

import (
	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
)

// MaxOffset is the largest page-aligned offset for a subject: floor(total/pageSize)*pageSize.
func MaxOffset(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total / pageSize) * pageSize
}

// SampleOffset draws a page offset uniformly from {0, pageSize, ..., MaxOffset(total, pageSize)}.
// An empty subject always yields 0 without consuming a draw.
func SampleOffset(total, pageSize int, rng ports.RandomSource) int {
	maxOffset := MaxOffset(total, pageSize)
	if maxOffset == 0 {
		return 0
	}
	pages := maxOffset/pageSize + 1
	return rng.IntN(pages) * pageSize
}

// PickWork draws one work uniformly from the page. Only the fetched page is considered, so
// the pick is uniform within a random page rather than across the whole subject.
func PickWork(page models.WorkPage, rng ports.RandomSource) (models.WorkSummary, error) {
	if len(page.Works) == 0 {
		return models.WorkSummary{}, models.ErrEmptyPage
	}
	i := rng.IntN(len(page.Works))
	if i < 0 || i >= len(page.Works) {
		i = 0
	}
	return page.Works[i], nil
}
