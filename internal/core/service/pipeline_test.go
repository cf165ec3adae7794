package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lukejcollins/litroulette/internal/adapters/history"
	"github.com/lukejcollins/litroulette/internal/adapters/random"
	"github.com/lukejcollins/litroulette/internal/adapters/random/randomtest"
	"github.com/lukejcollins/litroulette/internal/config"
	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(catalog *fakeCatalog, editions *fakeEditions, search *fakeSearch, hist *fakeHistory, rng *randomtest.Sequence) *SelectionPipeline {
	opts := PipelineOptions{
		Catalog:  catalog,
		Editions: editions,
		Search:   search,
		Random:   rng,
		PageSize: 12,
		Logger:   zerolog.Nop(),
	}
	if hist != nil {
		opts.History = hist
	}
	return NewSelectionPipeline(opts)
}

func TestSelect_FullResolution(t *testing.T) {
	catalog := &fakeCatalog{total: 24, pages: map[int][]models.WorkSummary{
		12: {
			{Title: "Foundation", Authors: []string{"Isaac Asimov"}, CatalogKey: "/works/OL2W"},
			{Title: "Dune", Authors: []string{"Frank Herbert"}, CatalogKey: "/works/OL1W"},
		},
	}}
	editions := &fakeEditions{editions: map[string][]models.Edition{
		"/works/OL1W": {{ISBN13: []string{"9780000000002"}}},
	}}
	search := &fakeSearch{byISBN: map[string]searchReply{"9780000000002": {matches: match("Spice.")}}}
	hist := &fakeHistory{}
	rng := randomtest.NewSequence(1, 1)

	p := newTestPipeline(catalog, editions, search, hist, rng)
	sel, err := p.Select(context.Background(), models.NewGenreQuery("science fiction"))
	require.NoError(t, err)

	require.Nil(t, sel.NoResults)
	require.NotNil(t, sel.Book)
	assert.Equal(t, "Dune", sel.Book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, sel.Book.Authors)
	require.NotNil(t, sel.Book.Description)
	assert.Equal(t, "Spice.", *sel.Book.Description)
	require.NotNil(t, sel.Book.SourceURL)
	assert.Equal(t, "https://catalog.test/works/OL1W", *sel.Book.SourceURL)

	assert.Equal(t, []int{12}, catalog.offsets)
	assert.Equal(t, []int{3, 2}, rng.Bounds, "one draw for the page, one for the work")
	assert.Empty(t, search.titles)

	require.Len(t, hist.picks, 1)
	assert.Equal(t, "science fiction", hist.picks[0].Genre)
	assert.Equal(t, "science_fiction", hist.picks[0].Subject)
	assert.Equal(t, "Dune", hist.picks[0].Title)
}

func TestSelect_KeylessWorkGoesStraightToTitle(t *testing.T) {
	catalog := &fakeCatalog{total: 1, pages: map[int][]models.WorkSummary{
		0: {{Title: "Untitled Press", Authors: nil}},
	}}
	editions := &fakeEditions{}
	search := &fakeSearch{byTitle: map[string]searchReply{"Untitled Press": {matches: match("By title.")}}}

	p := newTestPipeline(catalog, editions, search, nil, randomtest.NewSequence(0))
	sel, err := p.Select(context.Background(), models.NewGenreQuery("poetry"))
	require.NoError(t, err)

	require.NotNil(t, sel.Book)
	assert.Empty(t, editions.calls)
	assert.Empty(t, search.isbns)
	assert.Equal(t, []string{"Untitled Press"}, search.titles)
	require.NotNil(t, sel.Book.Description)
	assert.Equal(t, "By title.", *sel.Book.Description)
	assert.Nil(t, sel.Book.SourceURL)
	assert.NotNil(t, sel.Book.Authors)
}

func TestSelect_EmptySubjectIsNoResults(t *testing.T) {
	catalog := &fakeCatalog{total: 0}
	rng := randomtest.NewSequence(5)

	p := newTestPipeline(catalog, &fakeEditions{}, &fakeSearch{}, nil, rng)
	sel, err := p.Select(context.Background(), models.NewGenreQuery("science fiction"))
	require.NoError(t, err)

	assert.Nil(t, sel.Book)
	require.NotNil(t, sel.NoResults)
	assert.Equal(t, "science fiction", sel.NoResults.Genre.Name())
	assert.Equal(t, "science_fiction", sel.NoResults.Genre.Subject())
	assert.Equal(t, []int{0}, catalog.offsets)
}

func TestSelect_ShortLastPageIsNoResults(t *testing.T) {
	// 24 works at page size 12: offset 24 is valid but the upstream page there is empty.
	catalog := &fakeCatalog{total: 24, pages: map[int][]models.WorkSummary{0: {{Title: "A"}}, 12: {{Title: "B"}}}}

	p := newTestPipeline(catalog, &fakeEditions{}, &fakeSearch{}, nil, randomtest.NewSequence(2))
	sel, err := p.Select(context.Background(), models.NewGenreQuery("fantasy"))
	require.NoError(t, err)
	assert.NotNil(t, sel.NoResults)
	assert.Equal(t, []int{24}, catalog.offsets)
}

func TestSelect_EveryLookupFailsStillReturnsBook(t *testing.T) {
	catalog := &fakeCatalog{total: 1, pages: map[int][]models.WorkSummary{
		0: {{Title: "Dracula", Authors: []string{"Bram Stoker"}, CatalogKey: "/works/OL3W"}},
	}}
	search := &fakeSearch{byTitle: map[string]searchReply{"Dracula": {err: errUpstream}}}
	hist := &fakeHistory{err: errors.New("disk full")}

	p := newTestPipeline(catalog, &fakeEditions{err: errUpstream}, search, hist, randomtest.NewSequence(0))
	sel, err := p.Select(context.Background(), models.NewGenreQuery("horror"))
	require.NoError(t, err)

	require.NotNil(t, sel.Book)
	assert.Equal(t, "Dracula", sel.Book.Title)
	assert.Nil(t, sel.Book.Description)
	assert.Empty(t, search.isbns)
}

func TestSelect_HistoryFailureIsLogged(t *testing.T) {
	catalog := &fakeCatalog{total: 1, pages: map[int][]models.WorkSummary{
		0: {{Title: "Emma", Authors: []string{"Jane Austen"}}},
	}}
	search := &fakeSearch{byTitle: map[string]searchReply{"Emma": {matches: match("Matchmaking.")}}}

	var logs bytes.Buffer
	p := NewSelectionPipeline(PipelineOptions{
		Catalog:  catalog,
		Editions: &fakeEditions{},
		Search:   search,
		History:  &fakeHistory{err: errors.New("disk full")},
		Random:   randomtest.NewSequence(0),
		PageSize: 12,
		Logger:   zerolog.New(&logs).Level(zerolog.WarnLevel),
	})

	sel, err := p.Select(context.Background(), models.NewGenreQuery("romance"))
	require.NoError(t, err)
	require.NotNil(t, sel.Book)
	require.NotNil(t, sel.Book.Description)
	assert.Equal(t, "Matchmaking.", *sel.Book.Description)

	assert.Contains(t, logs.String(), "failed to record pick")
	assert.Contains(t, logs.String(), "disk full")
}

func TestSelect_CatalogFailuresAreFatal(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		p := newTestPipeline(&fakeCatalog{countErr: errUpstream}, &fakeEditions{}, &fakeSearch{}, nil, randomtest.NewSequence())
		_, err := p.Select(context.Background(), models.NewGenreQuery("fiction"))
		assert.ErrorIs(t, err, errUpstream)
	})
	t.Run("page", func(t *testing.T) {
		p := newTestPipeline(&fakeCatalog{total: 3, pageErr: errUpstream}, &fakeEditions{}, &fakeSearch{}, nil, randomtest.NewSequence())
		_, err := p.Select(context.Background(), models.NewGenreQuery("fiction"))
		assert.ErrorIs(t, err, errUpstream)
	})
}

func TestSelect_ConcurrentRuns(t *testing.T) {
	catalog := &fakeCatalog{total: 1, pages: map[int][]models.WorkSummary{0: {{Title: "Solo", CatalogKey: "/works/OL9W"}}}}
	editions := &fakeEditions{editions: map[string][]models.Edition{"/works/OL9W": {{ISBN10: []string{"0000000000"}}}}}
	search := &fakeSearch{byISBN: map[string]searchReply{"0000000000": {matches: match("Alone.")}}}
	hist := &fakeHistory{}

	p := NewSelectionPipeline(PipelineOptions{
		Catalog: catalog, Editions: editions, Search: search, History: hist,
		Random: random.Process{}, PageSize: 12, Logger: zerolog.Nop(),
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sel, err := p.Select(context.Background(), models.NewGenreQuery("fiction"))
			assert.NoError(t, err)
			if assert.NotNil(t, sel.Book) {
				assert.Equal(t, "Solo", sel.Book.Title)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, hist.picks, 8)
}

// End-to-end against fake upstream services through the real adapters.
type upstream struct {
	workCount int
	works     string
	editions  string
	volumes   map[string]string

	mu      sync.Mutex
	queries []string
}

func (u *upstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/subjects/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subjects/science_fiction.json", r.URL.Path)
		fmt.Fprintf(w, `{"work_count": %d, "works": %s}`, u.workCount, u.works)
	})
	mux.HandleFunc("/works/", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/editions.json"))
		fmt.Fprint(w, u.editions)
	})
	mux.HandleFunc("/books/v1/volumes", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		u.mu.Lock()
		u.queries = append(u.queries, q)
		u.mu.Unlock()
		body, ok := u.volumes[q]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, body)
	})
	return mux
}

func e2eConfig(url string) *config.Config {
	return &config.Config{
		CatalogSourceType:  config.SourceOpenLibrary,
		OpenLibraryBaseURL: url,
		GoogleBooksBaseURL: url + "/books/v1",
		PageSize:           12,
		DefaultGenre:       "fiction",
	}
}

func TestSelect_EndToEnd(t *testing.T) {
	up := &upstream{
		workCount: 1,
		works:     `[{"title": "Dune", "key": "/works/OL1W", "authors": [{"name": "Frank Herbert"}]}]`,
		editions:  `{"entries": [{"isbn_13": ["9780000000002"]}]}`,
		volumes: map[string]string{
			"isbn:9780000000002": `{"items": [{"volumeInfo": {"description": "Spice must flow."}}]}`,
		},
	}
	server := httptest.NewServer(up.handler(t))
	defer server.Close()

	ctx := context.Background()
	store, err := history.Open(ctx, history.MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	p := CreatePipeline(e2eConfig(server.URL), random.NewSeeded(1), store, zerolog.Nop())
	sel, err := p.Select(ctx, models.NewGenreQuery("science fiction"))
	require.NoError(t, err)

	require.NotNil(t, sel.Book)
	assert.Equal(t, "Dune", sel.Book.Title)
	require.NotNil(t, sel.Book.Description)
	assert.Equal(t, "Spice must flow.", *sel.Book.Description)
	require.NotNil(t, sel.Book.SourceURL)
	assert.Equal(t, server.URL+"/works/OL1W", *sel.Book.SourceURL)
	assert.Equal(t, []string{"isbn:9780000000002"}, up.queries)

	picks, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "/works/OL1W", picks[0].CatalogKey)
}

func TestSelect_EndToEndISBNFailureFallsBackToTitle(t *testing.T) {
	up := &upstream{
		workCount: 1,
		works:     `[{"title": "Dune", "key": "/works/OL1W", "authors": []}]`,
		editions:  `{"entries": [{"isbn_10": ["0000000000"]}]}`,
		volumes: map[string]string{
			`intitle:"Dune"`: `{"items": [{"volumeInfo": {}}]}`,
		},
	}
	server := httptest.NewServer(up.handler(t))
	defer server.Close()

	p := CreatePipeline(e2eConfig(server.URL), random.NewSeeded(1), nil, zerolog.Nop())
	sel, err := p.Select(context.Background(), models.NewGenreQuery("science fiction"))
	require.NoError(t, err)

	require.NotNil(t, sel.Book)
	assert.Nil(t, sel.Book.Description)
	assert.Empty(t, sel.Book.Authors)
	assert.Equal(t, []string{"isbn:0000000000", `intitle:"Dune"`}, up.queries)
}

func TestSelect_EndToEndNoWorks(t *testing.T) {
	up := &upstream{workCount: 0, works: `[]`}
	server := httptest.NewServer(up.handler(t))
	defer server.Close()

	p := CreatePipeline(e2eConfig(server.URL), random.NewSeeded(1), nil, zerolog.Nop())
	sel, err := p.Select(context.Background(), models.NewGenreQuery("science fiction"))
	require.NoError(t, err)

	require.NotNil(t, sel.NoResults)
	assert.Equal(t, "science fiction", sel.NoResults.Genre.Name())
	assert.Empty(t, up.queries)
}
