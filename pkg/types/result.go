package types

// BookMetadata is the denormalized description of a book carried by search results
type BookMetadata struct {
	BookID int64   `json:"book_id"`
	Title  string  `json:"title"`
	Author *string `json:"author"` // Nil when the book has no author
	Genre  *string `json:"genre"`  // Nil when the book has no genre
}

// SearchResult represents a single search result with relevance information
type SearchResult struct {
	BookID int64 `json:"book_id"`

	// Fraction of query terms found in the content, or 1.0 for title fallback hits
	Score float64 `json:"similarity_score"`

	Metadata BookMetadata `json:"metadata"`
	Content  string       `json:"content"`
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.BookID <= 0 {
		return ErrInvalidBookID
	}

	if sr.Score <= 0 || sr.Score > 1 {
		return ErrInvalidScore
	}

	if sr.Metadata.BookID != sr.BookID {
		return ErrMetadataMismatch
	}

	if sr.Content == "" {
		return ErrEmptyContent
	}

	return nil
}

// NewBookMetadata builds metadata, mapping empty names to nil
func NewBookMetadata(bookID int64, title, author, genre string) BookMetadata {
	md := BookMetadata{BookID: bookID, Title: title}
	if author != "" {
		md.Author = &author
	}
	if genre != "" {
		md.Genre = &genre
	}
	return md
}
