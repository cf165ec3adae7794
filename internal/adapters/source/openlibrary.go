package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lukejcollins/litroulette/internal/adapters/util"
	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/rs/zerolog"
)

var (
	_ ports.GenreCatalog    = (*OpenLibraryAdapter)(nil)
	_ ports.EditionsCatalog = (*OpenLibraryAdapter)(nil)
)

// OpenLibraryAdapter reads the subjects and editions endpoints of an Open Library instance.
type OpenLibraryAdapter struct {
	baseURL  string
	pageSize int
	client   *http.Client
	logger   zerolog.Logger
}

func NewOpenLibraryAdapter(baseURL string, pageSize int, client *http.Client, logger zerolog.Logger) *OpenLibraryAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenLibraryAdapter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: pageSize,
		client:   client,
		logger:   logger.With().Str("adapter", "openlibrary").Logger(),
	}
}

type subjectResponse struct {
	WorkCount int `json:"work_count"`
	Works     []struct {
		Title   string `json:"title"`
		Key     string `json:"key"`
		Authors []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"works"`
}

type editionsResponse struct {
	Entries []struct {
		ISBN13 []string `json:"isbn_13"`
		ISBN10 []string `json:"isbn_10"`
	} `json:"entries"`
}

// Count returns the subject's work_count.
func (a *OpenLibraryAdapter) Count(ctx context.Context, genre models.GenreQuery) (int, error) {
	var res subjectResponse
	if err := a.get(ctx, a.subjectURL(genre, nil), &res); err != nil {
		return 0, fmt.Errorf("count works for subject %q: %w", genre.Subject(), err)
	}
	if res.WorkCount < 0 {
		return 0, fmt.Errorf("count works for subject %q: negative work_count %d: %w", genre.Subject(), res.WorkCount, models.ErrMalformedResponse)
	}
	a.logger.Debug().Str("subject", genre.Subject()).Int("work_count", res.WorkCount).Msg("counted subject works")
	return res.WorkCount, nil
}

// Page fetches up to pageSize works starting at offset.
func (a *OpenLibraryAdapter) Page(ctx context.Context, genre models.GenreQuery, offset int) (models.WorkPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(a.pageSize))
	q.Set("offset", strconv.Itoa(offset))

	var res subjectResponse
	if err := a.get(ctx, a.subjectURL(genre, q), &res); err != nil {
		return models.WorkPage{}, fmt.Errorf("fetch subject %q at offset %d: %w", genre.Subject(), offset, err)
	}

	page := models.WorkPage{
		TotalCount: max(res.WorkCount, 0),
		Works:      make([]models.WorkSummary, 0, len(res.Works)),
	}
	for _, w := range res.Works {
		authors := make([]string, 0, len(w.Authors))
		for _, au := range w.Authors {
			if name := strings.TrimSpace(au.Name); name != "" {
				authors = append(authors, name)
			}
		}
		page.Works = append(page.Works, models.WorkSummary{
			Title:      w.Title,
			Authors:    authors,
			CatalogKey: strings.TrimSpace(w.Key),
		})
	}
	return page, nil
}

// WorkURL turns a work key such as "/works/OL45804W" into its public page.
func (a *OpenLibraryAdapter) WorkURL(catalogKey string) string {
	key := strings.TrimSpace(catalogKey)
	if key == "" {
		return ""
	}
	if !strings.HasPrefix(key, "/") {
		key = "/works/" + key
	}
	return a.baseURL + key
}

// Editions lists the ISBNs of every edition of a work in catalog order. A response without
// an entries list yields no editions.
func (a *OpenLibraryAdapter) Editions(ctx context.Context, catalogKey string) ([]models.Edition, error) {
	key := strings.TrimSpace(catalogKey)
	if key == "" {
		return nil, nil
	}
	if !strings.HasPrefix(key, "/") {
		key = "/works/" + key
	}

	var res editionsResponse
	if err := a.get(ctx, a.baseURL+key+"/editions.json", &res); err != nil {
		return nil, fmt.Errorf("fetch editions of %s: %w", key, err)
	}

	editions := make([]models.Edition, 0, len(res.Entries))
	for _, e := range res.Entries {
		editions = append(editions, models.Edition{ISBN13: e.ISBN13, ISBN10: e.ISBN10})
	}
	return editions, nil
}

func (a *OpenLibraryAdapter) subjectURL(genre models.GenreQuery, q url.Values) string {
	u := fmt.Sprintf("%s/subjects/%s.json", a.baseURL, url.PathEscape(genre.Subject()))
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (a *OpenLibraryAdapter) get(ctx context.Context, target string, out any) error {
	return util.GetJSON(ctx, a.client, target, out)
}
