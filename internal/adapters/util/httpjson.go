package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
)

// MaxResponseBytes bounds how much of an upstream JSON response is decoded.
const MaxResponseBytes = 8 << 20

// GetJSON issues a GET and decodes a JSON body into out. Unknown fields are ignored.
// Transport failures and non-200 answers wrap models.ErrCatalogUnavailable, undecodable
// bodies wrap models.ErrMalformedResponse.
func GetJSON(ctx context.Context, client *http.Client, target string, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redactURL(req.URL)
		}
		return fmt.Errorf("%w: %v", models.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status code %d", models.ErrCatalogUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	return nil
}
