package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/bookcatalog/internal/storage"
)

// CreateGenre adds a genre; names are unique
func (s *Service) CreateGenre(ctx context.Context, name string) (*storage.Genre, error) {
	if err := checkLen("name", name, 1, 100); err != nil {
		return nil, err
	}
	genre := &storage.Genre{Name: name}
	if err := s.store.CreateGenre(ctx, genre); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("genre '%s' already exists: %w", name, err)
		}
		return nil, err
	}
	return genre, nil
}

func (s *Service) GetGenre(ctx context.Context, id int64) (*storage.Genre, error) {
	genre, err := s.store.GetGenre(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("genre with id %d: %w", id, err)
	}
	return genre, nil
}

func (s *Service) ListGenres(ctx context.Context) ([]*storage.Genre, error) {
	return s.store.ListGenres(ctx)
}

func (s *Service) UpdateGenre(ctx context.Context, id int64, name string) (*storage.Genre, error) {
	if err := checkLen("name", name, 1, 100); err != nil {
		return nil, err
	}
	genre, err := s.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	genre.Name = name
	if err := s.store.UpdateGenre(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *Service) DeleteGenre(ctx context.Context, id int64) error {
	if err := s.store.DeleteGenre(ctx, id); err != nil {
		return fmt.Errorf("genre with id %d: %w", id, err)
	}
	return nil
}
