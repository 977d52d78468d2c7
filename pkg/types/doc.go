// Package types provides shared type definitions for the book catalog.
//
// These types cross package boundaries: the indexer stores BookMetadata
// snapshots, the searcher returns SearchResult values, and the HTTP and MCP
// layers serialize them directly.
//
// # Search Results
//
//	result := types.SearchResult{
//	    BookID:   7,
//	    Score:    0.5,
//	    Metadata: types.NewBookMetadata(7, "Dune", "Frank Herbert", ""),
//	    Content:  "Title: Dune Author: Frank Herbert",
//	}
//	if err := result.Validate(); err != nil {
//	    return err
//	}
//
// Empty author or genre names become nil pointers so they serialize as JSON
// null rather than as empty strings.
package types
