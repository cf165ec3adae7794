package models

import (
	"strings"
	"time"
)

// GenreQuery is a genre as the user typed it plus the subject slug the catalogs expect.
type GenreQuery struct {
	name    string
	subject string
}

// NewGenreQuery trims the genre and derives the subject slug by lower-casing it and joining
// whitespace-separated words with underscores.
func NewGenreQuery(genre string) GenreQuery {
	name := strings.Join(strings.Fields(genre), " ")
	return GenreQuery{
		name:    name,
		subject: strings.ToLower(strings.ReplaceAll(name, " ", "_")),
	}
}

// Name returns the genre as given, with runs of whitespace collapsed.
func (g GenreQuery) Name() string { return g.name }

// Subject returns the normalized subject slug, e.g. "science_fiction".
func (g GenreQuery) Subject() string { return g.subject }

func (g GenreQuery) String() string { return g.name }

// WorkSummary is one work listed on a subject page.
type WorkSummary struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	// CatalogKey is the subject catalog's work key (e.g. "/works/OL45804W"). Empty means
	// no editions lookup is possible.
	CatalogKey string `json:"catalog_key,omitempty"`
}

// HasCatalogKey reports whether an editions lookup can be attempted for the work.
func (w WorkSummary) HasCatalogKey() bool {
	return strings.TrimSpace(w.CatalogKey) != ""
}

// WorkPage is a single page of works for a subject. TotalCount covers the whole subject,
// not just Works.
type WorkPage struct {
	TotalCount int           `json:"total_count"`
	Works      []WorkSummary `json:"works"`
}

// Edition is a published instance of a work with whatever ISBNs the catalog lists for it.
type Edition struct {
	ISBN13 []string `json:"isbn_13,omitempty"`
	ISBN10 []string `json:"isbn_10,omitempty"`
}

// ResolvedIdentifier is either an ISBN or unresolved. The zero value is Unresolved.
type ResolvedIdentifier struct {
	isbn string
}

// Unresolved is the identifier of a work for which no ISBN could be found.
var Unresolved = ResolvedIdentifier{}

// ISBN wraps an ISBN-10 or ISBN-13. A blank value yields Unresolved.
func ISBN(value string) ResolvedIdentifier {
	return ResolvedIdentifier{isbn: strings.TrimSpace(value)}
}

// ISBN returns the wrapped ISBN and whether one is present.
func (r ResolvedIdentifier) ISBN() (string, bool) {
	return r.isbn, r.isbn != ""
}

func (r ResolvedIdentifier) IsResolved() bool { return r.isbn != "" }

func (r ResolvedIdentifier) String() string {
	if r.isbn == "" {
		return "unresolved"
	}
	return "isbn:" + r.isbn
}

// Description normalizes a description value: blank text is absent.
func Description(text string) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &text
}

// VolumeMatch is one hit from the book-metadata search.
type VolumeMatch struct {
	Description *string `json:"description,omitempty"`
}

// BookResult is the final, presentation-ready pick.
type BookResult struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description *string  `json:"description,omitempty"`
	SourceURL   *string  `json:"source_url,omitempty"`
}

// NoResultsForGenre is the terminal outcome when the sampled page held no works.
type NoResultsForGenre struct {
	Genre GenreQuery
}

// Selection is the outcome of one pipeline run: exactly one of Book or NoResults is set.
type Selection struct {
	Book      *BookResult
	NoResults *NoResultsForGenre
}

// Pick is a history record of a sampled work.
type Pick struct {
	ID         string    `json:"id"`
	Genre      string    `json:"genre"`
	Subject    string    `json:"subject"`
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	CatalogKey string    `json:"catalog_key,omitempty"`
	PickedAt   time.Time `json:"picked_at"`
}
