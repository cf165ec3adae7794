package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/rs/zerolog"
)

var _ ports.GenreCatalog = (*OPDSAdapter)(nil)

const (
	relAcquisition = "http://opds-spec.org/acquisition"
	relSubsection  = "subsection"
	relCatalog     = "http://opds-spec.org/catalog"
)

// OPDSAdapter treats an OPDS search feed as a subject catalog. Entries carry no work key,
// so every pick from this source resolves its description by title.
type OPDSAdapter struct {
	searchURL string
	username  string
	password  string
	pageSize  int
	client    *http.Client
	logger    zerolog.Logger
}

// NewOPDSAdapter takes a search URL template with {subject}, {offset} and {count}
// placeholders. Without {offset}/{count} the query parameters startIndex and count are added.
func NewOPDSAdapter(searchURL, username, password string, pageSize int, client *http.Client, logger zerolog.Logger) *OPDSAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &OPDSAdapter{
		searchURL: searchURL,
		username:  username,
		password:  password,
		pageSize:  pageSize,
		client:    client,
		logger:    logger.With().Str("adapter", "opds").Logger(),
	}
}

// Count reads opensearch:totalResults from the first page, falling back to the number of
// entries when the feed does not advertise a total.
func (a *OPDSAdapter) Count(ctx context.Context, genre models.GenreQuery) (int, error) {
	page, err := a.Page(ctx, genre, 0)
	if err != nil {
		return 0, err
	}
	return page.TotalCount, nil
}

func (a *OPDSAdapter) Page(ctx context.Context, genre models.GenreQuery, offset int) (models.WorkPage, error) {
	if a.searchURL == "" {
		return models.WorkPage{}, fmt.Errorf("OPDS search URL is not configured")
	}

	target, err := a.pageURL(genre, offset)
	if err != nil {
		return models.WorkPage{}, err
	}

	feed, err := a.fetchFeed(ctx, target)
	if err != nil {
		return models.WorkPage{}, fmt.Errorf("fetch OPDS subject %q at offset %d: %w", genre.Subject(), offset, err)
	}

	page := models.WorkPage{Works: make([]models.WorkSummary, 0, len(feed.Entries))}
	for _, entry := range feed.Entries {
		if isNavigation(entry) {
			continue
		}
		work := models.WorkSummary{Title: strings.TrimSpace(entry.Title), Authors: []string{}}
		for _, p := range entry.Authors {
			if name := strings.TrimSpace(p.Name); name != "" {
				work.Authors = append(work.Authors, name)
			}
		}
		page.Works = append(page.Works, work)
	}

	total, ok := totalResults(feed.Extensions)
	if !ok {
		total = offset + len(page.Works)
	}
	page.TotalCount = total

	a.logger.Debug().Str("url", target).Int("entries", len(page.Works)).Int("total", total).Msg("fetched OPDS page")
	return page, nil
}

// WorkURL is always empty: OPDS entries are not addressed by a work key.
func (a *OPDSAdapter) WorkURL(string) string { return "" }

func (a *OPDSAdapter) pageURL(genre models.GenreQuery, offset int) (string, error) {
	raw := a.searchURL
	hasPaging := strings.Contains(raw, "{offset}") || strings.Contains(raw, "{count}")

	r := strings.NewReplacer(
		"{subject}", url.QueryEscape(genre.Subject()),
		"{offset}", strconv.Itoa(offset),
		"{count}", strconv.Itoa(a.pageSize),
	)
	u, err := url.Parse(r.Replace(raw))
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("invalid OPDS search URL %q", raw)
	}

	if !hasPaging {
		q := u.Query()
		q.Set("startIndex", strconv.Itoa(offset))
		q.Set("count", strconv.Itoa(a.pageSize))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (a *OPDSAdapter) fetchFeed(ctx context.Context, target string) (*atom.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/atom+xml")

	if a.username != "" {
		req.SetBasicAuth(a.username, a.password)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: OPDS feed returned status %d", models.ErrCatalogUnavailable, resp.StatusCode)
	}

	fp := &atom.Parser{}
	feed, err := fp.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OPDS feed as Atom: %v", models.ErrMalformedResponse, err)
	}
	return feed, nil
}

// isNavigation reports entries that only link to further catalogs.
func isNavigation(entry *atom.Entry) bool {
	nav := false
	for _, link := range entry.Links {
		switch {
		case strings.HasPrefix(link.Rel, relAcquisition):
			return false
		case link.Rel == relSubsection || link.Rel == relCatalog:
			nav = true
		}
	}
	return nav
}

func totalResults(exts ext.Extensions) (int, bool) {
	for prefix, elems := range exts {
		if !strings.Contains(strings.ToLower(prefix), "opensearch") && prefix != "os" {
			continue
		}
		for _, e := range elems["totalResults"] {
			if n, err := strconv.Atoi(strings.TrimSpace(e.Value)); err == nil && n >= 0 {
				return n, true
			}
		}
	}
	return 0, false
}
