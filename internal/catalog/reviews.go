package catalog

import (
	"context"

	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

// ReviewInput holds a new review
type ReviewInput struct {
	ReviewText string `json:"review_text"`
	Rating     int    `json:"rating"`
}

// AddReview attaches a review to a book and re-queues the book, since
// review text is part of its indexed content.
func (s *Service) AddReview(ctx context.Context, bookID int64, userID *int64, in ReviewInput) (*storage.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, types.Validationf("rating must be between 1 and 5")
	}
	if err := checkLen("review_text", in.ReviewText, 0, 5000); err != nil {
		return nil, err
	}
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	review := &storage.Review{
		BookID:     bookID,
		UserID:     userID,
		ReviewText: in.ReviewText,
		Rating:     in.Rating,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	s.submit(bookID)
	return review, nil
}

// ListReviews returns the reviews of an existing book
func (s *Service) ListReviews(ctx context.Context, bookID int64) ([]*storage.Review, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.store.ListReviewsByBook(ctx, bookID)
}
