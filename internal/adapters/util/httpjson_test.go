package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"work_count": 7, "extra": true}`))
		case "/broken":
			_, _ = w.Write([]byte(`{"work_count": `))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	var out struct {
		WorkCount int `json:"work_count"`
	}
	require.NoError(t, GetJSON(context.Background(), server.Client(), server.URL+"/ok", &out))
	assert.Equal(t, 7, out.WorkCount)

	err := GetJSON(context.Background(), server.Client(), server.URL+"/broken", &out)
	assert.ErrorIs(t, err, models.ErrMalformedResponse)

	err = GetJSON(context.Background(), server.Client(), server.URL+"/down", &out)
	assert.ErrorIs(t, err, models.ErrCatalogUnavailable)
	assert.Contains(t, err.Error(), "503")
}

func TestGetJSON_TransportErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL + "/volumes?q=isbn%3A1&key=SECRETKEY123"
	server.Close()

	var out struct{}
	err := GetJSON(context.Background(), http.DefaultClient, target, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrCatalogUnavailable)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
}
