// Package indexer maintains the in-memory lexical index over catalog books.
//
// The index maps a book ID to a fingerprint, a metadata snapshot and the
// text the fingerprint was computed from. It is owned by the caller, starts
// empty and is rebuilt with ReindexAll; nothing about it is persisted.
//
// # Basic Usage
//
//	index := indexer.NewIndex()
//	idx := indexer.New(store, index, logger, &indexer.Config{Workers: 2})
//
//	idx.Start(ctx)
//	defer idx.Stop()
//
//	// Fire-and-forget after a book is created or changed
//	idx.Submit(book.ID)
//
//	// Synchronous rebuild
//	stats, err := idx.ReindexAll(ctx)
//	fmt.Println(stats.Message) // "Reindexed 12 books successfully"
//
// # Content
//
// ExtractContent concatenates, in this order and separated by spaces:
//
//	Title: <title> Author: <author> Genre: <genre> Summary: <summary> Reviews: <r1> <r2> <r3>
//
// Segments for missing fields are left out. At most three non-empty reviews
// are included.
//
// # Fingerprints
//
// A fingerprint is a fixed array of 100 frequencies. The text is lower-cased,
// its distinct runes are sorted by code point, and slot i holds the share of
// the i-th rune in the text. This is a coarse lexical signature, not a
// semantic embedding; the searcher ranks by term presence, not by comparing
// fingerprints.
//
// # Consistency
//
// Background indexing is best-effort and eventually consistent: Submit
// never blocks, a full queue drops the request, and failures are logged
// rather than returned. A book is not guaranteed to be searchable right after
// it is created. Deleting a book removes its entry, and ReindexAll prunes
// entries whose book has disappeared.
//
// Only one ReindexAll runs at a time; a concurrent call fails with
// ErrReindexInProgress.
//
// # Scope
//
// The index lives in one process. Replicas each hold their own copy and may
// disagree until each is reindexed.
package indexer
