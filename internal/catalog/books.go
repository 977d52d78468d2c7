package catalog

import (
	"context"
	"fmt"

	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// BookInput holds the fields of a new book
type BookInput struct {
	Title         string `json:"title"`
	AuthorID      int64  `json:"author_id"`
	GenreID       int64  `json:"genre_id"`
	YearPublished int    `json:"year_published"`
	Summary       string `json:"summary"`
}

// BookUpdate changes only the fields that are set
type BookUpdate struct {
	Title         *string `json:"title"`
	AuthorID      *int64  `json:"author_id"`
	GenreID       *int64  `json:"genre_id"`
	YearPublished *int    `json:"year_published"`
	Summary       *string `json:"summary"`
}

func (in BookInput) validate() error {
	if err := checkLen("title", in.Title, 1, 500); err != nil {
		return err
	}
	if in.AuthorID <= 0 {
		return types.Validationf("author_id must be positive")
	}
	if in.GenreID <= 0 {
		return types.Validationf("genre_id must be positive")
	}
	if err := checkYear(in.YearPublished); err != nil {
		return err
	}
	return checkLen("summary", in.Summary, 0, 5000)
}

func (u BookUpdate) validate() error {
	if u.Title != nil {
		if err := checkLen("title", *u.Title, 1, 500); err != nil {
			return err
		}
	}
	if u.AuthorID != nil && *u.AuthorID <= 0 {
		return types.Validationf("author_id must be positive")
	}
	if u.GenreID != nil && *u.GenreID <= 0 {
		return types.Validationf("genre_id must be positive")
	}
	if u.YearPublished != nil {
		if err := checkYear(*u.YearPublished); err != nil {
			return err
		}
	}
	if u.Summary != nil {
		return checkLen("summary", *u.Summary, 0, 5000)
	}
	return nil
}

func checkYear(year int) error {
	if year < 1000 || year > 9999 {
		return types.Validationf("year_published must be between 1000 and 9999")
	}
	return nil
}

// CreateBook stores a book and queues it for indexing. Indexing failures never fail the create.
func (s *Service) CreateBook(ctx context.Context, in BookInput) (*storage.BookDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkRelations(ctx, &in.AuthorID, &in.GenreID); err != nil {
		return nil, err
	}

	book := &storage.Book{
		Title:         in.Title,
		AuthorID:      &in.AuthorID,
		GenreID:       &in.GenreID,
		YearPublished: in.YearPublished,
		Summary:       in.Summary,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	s.submit(book.ID)

	return s.store.GetBook(ctx, book.ID)
}

// GetBook returns a book with its author and genre names
func (s *Service) GetBook(ctx context.Context, id int64) (*storage.BookDetail, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("book with id %d: %w", id, err)
	}
	return book, nil
}

// ListBooks pages through books by id. limit <= 0 uses DefaultListLimit.
func (s *Service) ListBooks(ctx context.Context, skip, limit int) ([]*storage.BookDetail, error) {
	if skip < 0 {
		return nil, types.Validationf("skip must not be negative")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.ListBooks(ctx, skip, limit)
}

// UpdateBook applies the set fields and re-queues the book for indexing
func (s *Service) UpdateBook(ctx context.Context, id int64, u BookUpdate) (*storage.BookDetail, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}
	current, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRelations(ctx, u.AuthorID, u.GenreID); err != nil {
		return nil, err
	}

	book := current.Book
	if u.Title != nil {
		book.Title = *u.Title
	}
	if u.AuthorID != nil {
		book.AuthorID = u.AuthorID
	}
	if u.GenreID != nil {
		book.GenreID = u.GenreID
	}
	if u.YearPublished != nil {
		book.YearPublished = *u.YearPublished
	}
	if u.Summary != nil {
		book.Summary = *u.Summary
	}

	if err := s.store.UpdateBook(ctx, &book); err != nil {
		return nil, err
	}
	s.submit(id)

	return s.store.GetBook(ctx, id)
}

// DeleteBook removes a book, its reviews and its index entry
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := s.store.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("book with id %d: %w", id, err)
	}
	if s.indexer != nil {
		s.indexer.RemoveBook(id)
	}
	return nil
}

// checkRelations verifies the referenced author and genre exist. Nil IDs are skipped.
func (s *Service) checkRelations(ctx context.Context, authorID, genreID *int64) error {
	if authorID != nil {
		if _, err := s.store.GetAuthor(ctx, *authorID); err != nil {
			return fmt.Errorf("author with id %d: %w", *authorID, err)
		}
	}
	if genreID != nil {
		if _, err := s.store.GetGenre(ctx, *genreID); err != nil {
			return fmt.Errorf("genre with id %d: %w", *genreID, err)
		}
	}
	return nil
}
