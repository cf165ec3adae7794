package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// maxLoggedBody caps how much of a response body is written to the debug log.
const maxLoggedBody = 2048

// secretParams are query parameters masked in logged URLs.
var secretParams = []string{"key", "api_key", "access_token"}

// redactURL hides user-info passwords and API credentials carried in the query string.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	q := c.Query()
	masked := false
	for _, name := range secretParams {
		if q.Has(name) {
			q.Set(name, "xxxxx")
			masked = true
		}
	}
	if masked {
		c.RawQuery = q.Encode()
	}
	return c.Redacted()
}

// LoggingTransport is an http.RoundTripper that logs requests and response bodies when the
// logger is at debug level.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger zerolog.Logger
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Logger.GetLevel() > zerolog.DebugLevel {
		return base.RoundTrip(req)
	}

	start := time.Now()
	target := redactURL(req.URL)
	t.Logger.Debug().Str("method", req.Method).Str("url", target).Msg("outbound request")

	resp, err := base.RoundTrip(req)
	if err != nil {
		t.Logger.Debug().Err(err).Str("url", target).Dur("elapsed", time.Since(start)).Msg("outbound request failed")
		return resp, err
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Logger.Debug().Err(err).Str("url", target).Dur("elapsed", time.Since(start)).Msg("outbound response read failed")
		return nil, fmt.Errorf("read response body from %s: %w", target, err)
	}
	resp.Body = io.NopCloser(bytes.NewBuffer(respBody))

	logged := respBody
	if len(logged) > maxLoggedBody {
		logged = logged[:maxLoggedBody]
	}
	t.Logger.Debug().
		Int("status", resp.StatusCode).
		Str("url", target).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(respBody)).
		Bytes("body", logged).
		Msg("outbound response")

	return resp, nil
}

// UserAgentTransport sets the User-Agent header on every request that does not carry one.
type UserAgentTransport struct {
	Base      http.RoundTripper
	UserAgent string
}

func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}
	return base.RoundTrip(req)
}

// RateLimitTransport waits on a limiter before each request. A nil limiter never waits.
type RateLimitTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return base.RoundTrip(req)
}

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Logger            zerolog.Logger
	// Base is the innermost transport; nil means http.DefaultTransport.
	Base http.RoundTripper
}

// NewHTTPClient returns the client shared by the catalog and metadata adapters. It never
// retries; a zero timeout leaves cancellation to the request context.
func NewHTTPClient(opts ClientOptions) *http.Client {
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &RateLimitTransport{
			Limiter: limiter,
			Base: &UserAgentTransport{
				UserAgent: opts.UserAgent,
				Base: &LoggingTransport{
					Logger: opts.Logger,
					Base:   opts.Base,
				},
			},
		},
	}
}
