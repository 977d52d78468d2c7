package catalog

import (
	"context"
	"fmt"

	"github.com/dshills/bookcatalog/internal/storage"
)

// RecommendByGenre lists the books of a genre
func (s *Service) RecommendByGenre(ctx context.Context, genreID int64) ([]*storage.BookDetail, error) {
	if _, err := s.GetGenre(ctx, genreID); err != nil {
		return nil, err
	}
	return s.store.ListBooksByGenre(ctx, genreID)
}

// RecommendByGenreName lists the books of the genre with this exact name
func (s *Service) RecommendByGenreName(ctx context.Context, name string) ([]*storage.BookDetail, error) {
	genre, err := s.store.GetGenreByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("genre '%s': %w", name, err)
	}
	return s.store.ListBooksByGenre(ctx, genre.ID)
}
