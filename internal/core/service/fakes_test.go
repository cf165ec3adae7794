package service

import (
	"context"
	"errors"
	"sync"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
)

var errUpstream = errors.New("upstream down")

type fakeCatalog struct {
	total    int
	pages    map[int][]models.WorkSummary
	countErr error
	pageErr  error

	mu      sync.Mutex
	offsets []int
}

func (f *fakeCatalog) Count(ctx context.Context, genre models.GenreQuery) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.total, nil
}

func (f *fakeCatalog) Page(ctx context.Context, genre models.GenreQuery, offset int) (models.WorkPage, error) {
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	f.mu.Unlock()
	if f.pageErr != nil {
		return models.WorkPage{}, f.pageErr
	}
	return models.WorkPage{TotalCount: f.total, Works: f.pages[offset]}, nil
}

func (f *fakeCatalog) WorkURL(key string) string {
	return "https://catalog.test" + key
}

type fakeEditions struct {
	editions map[string][]models.Edition
	err      error

	mu    sync.Mutex
	calls []string
}

func (f *fakeEditions) Editions(ctx context.Context, key string) ([]models.Edition, error) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.editions[key], nil
}

type searchReply struct {
	matches []models.VolumeMatch
	err     error
}

type fakeSearch struct {
	byISBN  map[string]searchReply
	byTitle map[string]searchReply

	mu     sync.Mutex
	isbns  []string
	titles []string
}

func (f *fakeSearch) SearchByISBN(ctx context.Context, isbn string) ([]models.VolumeMatch, error) {
	f.mu.Lock()
	f.isbns = append(f.isbns, isbn)
	f.mu.Unlock()
	r := f.byISBN[isbn]
	return r.matches, r.err
}

func (f *fakeSearch) SearchByTitle(ctx context.Context, title string) ([]models.VolumeMatch, error) {
	f.mu.Lock()
	f.titles = append(f.titles, title)
	f.mu.Unlock()
	r := f.byTitle[title]
	return r.matches, r.err
}

type fakeHistory struct {
	err error

	mu    sync.Mutex
	picks []models.Pick
}

func (f *fakeHistory) Record(ctx context.Context, pick models.Pick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.picks = append(f.picks, pick)
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]models.Pick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Pick(nil), f.picks...), nil
}

func (f *fakeHistory) Close() error { return nil }

func match(desc string) []models.VolumeMatch {
	return []models.VolumeMatch{{Description: models.Description(desc)}}
}
