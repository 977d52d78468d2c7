// Package searcher answers catalog queries from the in-memory lexical index.
//
// A query is split into lower-cased whitespace terms. Each indexed book scores
// the fraction of terms that occur as substrings of its content, and books
// that score zero are left out:
//
//	s := searcher.NewSearcher(store, idx, logger, 1000)
//	resp, err := s.Search(ctx, searcher.SearchRequest{Query: "le guin", Limit: 5})
//
// When nothing in the index matches, Search falls back to a case-insensitive
// title search in the database. Fallback hits always score 1.0 and carry only
// the title as content. The two sources are never mixed in one response, and
// SearchResponse.Source reports which one answered.
//
// # Caching
//
// Responses are cached in an LRU keyed by query and limit. Each entry records
// the index version it was computed against, so any index write makes older
// entries stale. ReindexAll also purges the cache outright.
package searcher
