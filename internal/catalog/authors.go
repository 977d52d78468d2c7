package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/bookcatalog/internal/storage"
)

// CreateAuthor adds an author; names are unique
func (s *Service) CreateAuthor(ctx context.Context, name string) (*storage.Author, error) {
	if err := checkLen("name", name, 1, 200); err != nil {
		return nil, err
	}
	author := &storage.Author{Name: name}
	if err := s.store.CreateAuthor(ctx, author); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("author '%s' already exists: %w", name, err)
		}
		return nil, err
	}
	return author, nil
}

func (s *Service) GetAuthor(ctx context.Context, id int64) (*storage.Author, error) {
	author, err := s.store.GetAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("author with id %d: %w", id, err)
	}
	return author, nil
}

func (s *Service) ListAuthors(ctx context.Context) ([]*storage.Author, error) {
	return s.store.ListAuthors(ctx)
}

// UpdateAuthor renames an author. Indexed books keep the old name until reindexed.
func (s *Service) UpdateAuthor(ctx context.Context, id int64, name string) (*storage.Author, error) {
	if err := checkLen("name", name, 1, 200); err != nil {
		return nil, err
	}
	author, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	author.Name = name
	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// DeleteAuthor removes an author; their books keep existing without one
func (s *Service) DeleteAuthor(ctx context.Context, id int64) error {
	if err := s.store.DeleteAuthor(ctx, id); err != nil {
		return fmt.Errorf("author with id %d: %w", id, err)
	}
	return nil
}
