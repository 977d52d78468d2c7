package catalog

import (
	"log/slog"
	"unicode/utf8"

	"github.com/dshills/bookcatalog/internal/blob"
	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

// Indexer receives book changes so search stays current
type Indexer interface {
	Submit(bookID int64) bool
	RemoveBook(bookID int64)
}

// Service implements catalog use cases on top of storage
type Service struct {
	store   storage.Storage
	indexer Indexer
	blobs   blob.Store
	logger  *slog.Logger
}

// New creates a catalog Service. blobs may be nil when documents are not served.
func New(store storage.Storage, indexer Indexer, blobs blob.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		indexer: indexer,
		blobs:   blobs,
		logger:  logger.With("component", "catalog"),
	}
}

func (s *Service) submit(bookID int64) {
	if s.indexer == nil {
		return
	}
	if !s.indexer.Submit(bookID) {
		s.logger.Warn("book not queued for indexing", "book_id", bookID)
	}
}

func checkLen(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		if minLen > 0 {
			return types.Validationf("%s must be between %d and %d characters", field, minLen, maxLen)
		}
		return types.Validationf("%s must be at most %d characters", field, maxLen)
	}
	return nil
}
