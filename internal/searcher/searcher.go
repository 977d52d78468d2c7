package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/bookcatalog/internal/indexer"
	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

const (
	DefaultLimit     = 5
	MaxLimit         = 100
	DefaultCacheSize = 1000
)

// Source tells which path produced a response
type Source string

const (
	SourceIndex    Source = "index"    // Lexical index match
	SourceFallback Source = "fallback" // Title substring search in the database
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query string
	Limit int
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Query    string
	Results  []types.SearchResult
	Source   Source
	Duration time.Duration
	CacheHit bool
}

// cacheEntry remembers which index version a response was computed against
type cacheEntry struct {
	response *SearchResponse
	version  uint64
}

// Searcher answers queries from the lexical index and falls back to a
// title search when the index has nothing.
type Searcher struct {
	storage storage.Storage
	indexer *indexer.Indexer
	index   *indexer.Index
	logger  *slog.Logger
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewSearcher creates a new Searcher. cacheSize <= 0 uses DefaultCacheSize.
func NewSearcher(store storage.Storage, idx *indexer.Indexer, logger *slog.Logger, cacheSize int) *Searcher {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// Only fails for a non-positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Searcher{
		storage: store,
		indexer: idx,
		index:   idx.Index(),
		logger:  logger.With("component", "searcher"),
		cache:   cache,
	}
}

// Search ranks indexed books against the query. When no entry matches it
// runs the title fallback instead; the fallback is never merged with index hits.
// Only index answers are cached.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()
	normalizeRequest(&req)

	hash := computeQueryHash(req)
	version := s.index.Version()
	if cached := s.checkCache(hash, version); cached != nil {
		cached.CacheHit = true
		cached.Duration = time.Since(startTime)
		return cached, nil
	}

	response := &SearchResponse{Query: req.Query, Source: SourceIndex}

	matches := ScoreAndRank(s.index.Snapshot(), req.Query, req.Limit)
	if len(matches) > 0 {
		response.Results = make([]types.SearchResult, len(matches))
		for i, m := range matches {
			response.Results[i] = m.Result()
		}
	} else {
		results, err := s.fallbackSearch(ctx, req)
		if err != nil {
			return nil, err
		}
		response.Results = results
		response.Source = SourceFallback
	}

	response.Duration = time.Since(startTime)
	// Fallback answers come from the database, which the index version does not track
	if response.Source == SourceIndex {
		s.storeInCache(hash, version, response)
	}

	s.logger.Debug("search complete",
		"query", req.Query,
		"source", response.Source,
		"results", len(response.Results),
		"duration", response.Duration)

	return response, nil
}

// fallbackSearch matches the query as a case-insensitive substring of book titles
func (s *Searcher) fallbackSearch(ctx context.Context, req SearchRequest) ([]types.SearchResult, error) {
	books, err := s.storage.SearchBooksByTitle(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("fallback search failed: %w", err)
	}

	results := make([]types.SearchResult, 0, len(books))
	for _, b := range books {
		results = append(results, types.SearchResult{
			BookID:   b.ID,
			Score:    1.0,
			Metadata: types.NewBookMetadata(b.ID, b.Title, b.AuthorName, b.GenreName),
			Content:  "Title: " + b.Title,
		})
	}
	return results, nil
}

// ReindexAll rebuilds the index from the catalog and drops every cached response
func (s *Searcher) ReindexAll(ctx context.Context) (*indexer.Statistics, error) {
	stats, err := s.indexer.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}
	s.InvalidateCache()
	return stats, nil
}

// Reindexing reports whether a full reindex is running
func (s *Searcher) Reindexing() bool {
	return s.indexer.Reindexing()
}

// InvalidateCache removes all cached responses
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// CacheLen returns the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}

func normalizeRequest(req *SearchRequest) {
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
}

// checkCache returns a copy of a cached response computed against the
// current index version, or nil.
func (s *Searcher) checkCache(hash [32]byte, version uint64) *SearchResponse {
	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}
	if entry.version != version {
		s.cacheMu.RUnlock()

		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}
	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()
	return response
}

func (s *Searcher) storeInCache(hash [32]byte, version uint64, response *SearchResponse) {
	entry := &cacheEntry{
		response: copySearchResponse(response),
		version:  version,
	}
	s.cacheMu.Lock()
	s.cache.Add(hash, entry)
	s.cacheMu.Unlock()
}

// copySearchResponse creates a copy that shares no slices with src.
// Metadata pointers refer to immutable strings and are shared.
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Results = make([]types.SearchResult, len(src.Results))
	copy(dst.Results, src.Results)
	return &dst
}

// computeQueryHash computes a unique hash for a normalized request
func computeQueryHash(req SearchRequest) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d", req.Query, req.Limit)))
}
