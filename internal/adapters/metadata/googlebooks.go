// Package metadata looks up book descriptions in the Google Books volumes API.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lukejcollins/litroulette/internal/adapters/util"
	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/rs/zerolog"
)

var _ ports.MetadataSearch = (*GoogleBooksAdapter)(nil)

type GoogleBooksAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

func NewGoogleBooksAdapter(baseURL, apiKey string, client *http.Client, logger zerolog.Logger) *GoogleBooksAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleBooksAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger.With().Str("adapter", "googlebooks").Logger(),
	}
}

type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Description *string `json:"description"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// SearchByISBN queries isbn:<isbn>.
func (a *GoogleBooksAdapter) SearchByISBN(ctx context.Context, isbn string) ([]models.VolumeMatch, error) {
	return a.search(ctx, "isbn:"+strings.TrimSpace(isbn))
}

// SearchByTitle queries the exact title phrase.
func (a *GoogleBooksAdapter) SearchByTitle(ctx context.Context, title string) ([]models.VolumeMatch, error) {
	phrase := strings.ReplaceAll(strings.TrimSpace(title), `"`, "")
	return a.search(ctx, `intitle:"`+phrase+`"`)
}

func (a *GoogleBooksAdapter) search(ctx context.Context, query string) ([]models.VolumeMatch, error) {
	q := url.Values{}
	q.Set("q", query)
	if a.apiKey != "" {
		q.Set("key", a.apiKey)
	}
	target := a.baseURL + "/volumes?" + q.Encode()

	var res volumesResponse
	if err := util.GetJSON(ctx, a.client, target, &res); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	matches := make([]models.VolumeMatch, 0, len(res.Items))
	for _, item := range res.Items {
		var desc *string
		if item.VolumeInfo.Description != nil {
			desc = models.Description(*item.VolumeInfo.Description)
		}
		matches = append(matches, models.VolumeMatch{Description: desc})
	}
	a.logger.Debug().Str("query", query).Int("matches", len(matches)).Msg("searched volumes")
	return matches, nil
}
