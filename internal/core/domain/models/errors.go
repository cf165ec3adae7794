package models

import "errors"

var (
	// ErrEmptyPage is returned when a work is picked from a page with no works.
	ErrEmptyPage = errors.New("page has no works")
	// ErrCatalogUnavailable wraps transport failures and non-2xx answers from an upstream service.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrMalformedResponse wraps responses that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)
