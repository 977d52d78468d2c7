package indexer

import (
	"strings"

	"github.com/dshills/bookcatalog/internal/storage"
)

// MaxReviewsInContent bounds how many review texts contribute to a book's content
const MaxReviewsInContent = 3

// ExtractContent builds the canonical text blob for a book.
// Segments appear in a fixed order and absent fields are omitted.
func ExtractContent(book *storage.BookDetail, reviews []*storage.Review) string {
	parts := []string{"Title: " + book.Title}

	if book.AuthorName != "" {
		parts = append(parts, "Author: "+book.AuthorName)
	}
	if book.GenreName != "" {
		parts = append(parts, "Genre: "+book.GenreName)
	}
	if book.Summary != "" {
		parts = append(parts, "Summary: "+book.Summary)
	}

	texts := make([]string, 0, MaxReviewsInContent)
	for _, r := range reviews {
		if r.ReviewText == "" {
			continue
		}
		texts = append(texts, r.ReviewText)
		if len(texts) == MaxReviewsInContent {
			break
		}
	}
	if len(texts) > 0 {
		parts = append(parts, "Reviews: "+strings.Join(texts, " "))
	}

	return strings.Join(parts, " ")
}
