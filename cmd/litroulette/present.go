package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
)

type jsonSelection struct {
	Genre   string             `json:"genre"`
	Subject string             `json:"subject,omitempty"`
	Found   bool               `json:"found"`
	Book    *models.BookResult `json:"book,omitempty"`
}

// printSelection writes a selection for a terminal, or as a JSON document. Absent authors,
// description and link are left out.
func printSelection(w io.Writer, genre models.GenreQuery, sel models.Selection, asJSON bool) error {
	if asJSON {
		doc := jsonSelection{
			Genre:   genre.Name(),
			Subject: genre.Subject(),
			Found:   sel.Book != nil,
			Book:    sel.Book,
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	if sel.NoResults != nil {
		_, err := fmt.Fprintf(w, "No books found for the genre: %s\n", sel.NoResults.Genre.Name())
		return err
	}
	if sel.Book == nil {
		return nil
	}

	var b strings.Builder
	book := sel.Book
	fmt.Fprintf(&b, "\nTitle: %s\n\n", book.Title)
	if len(book.Authors) > 0 {
		fmt.Fprintf(&b, "Author(s): %s\n", strings.Join(book.Authors, ", "))
	}
	if book.Description != nil {
		fmt.Fprintf(&b, "\nDescription: %s\n", *book.Description)
	}
	if book.SourceURL != nil {
		fmt.Fprintf(&b, "\nLink: %s\n", *book.SourceURL)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
