// Package mcp implements the Model Context Protocol (MCP) server for the book catalog.
//
// The MCP server exposes the search index and the ingestion tracker to AI assistants:
//   - search_books: Rank books against a query
//   - reindex_books: Rebuild the search index from the catalog
//   - trigger_ingestion: Start asynchronous ingestion of a document
//   - ingestion_status: Read the state of one ingestion job
//   - list_ingestion_jobs: List every ingestion job
//   - sweep_stuck_jobs: Complete unfinished jobs older than a threshold
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout is reserved for protocol messages, so logs go to stderr.
//
// # Basic Usage
//
//	bookcatalog mcp
//
// # Tool: search_books
//
//	Request:
//	{
//	  "name": "search_books",
//	  "arguments": {"query": "dune sandworms", "limit": 5}
//	}
//
//	Response:
//	{
//	  "query": "dune sandworms",
//	  "source": "index",
//	  "results": [
//	    {
//	      "book_id": 1,
//	      "similarity_score": 1,
//	      "metadata": {"book_id": 1, "title": "Dune", "author": "Frank Herbert", "genre": "Science Fiction"},
//	      "content": "Title: Dune Author: Frank Herbert ..."
//	    }
//	  ],
//	  "cache_hit": false,
//	  "duration_ms": 0
//	}
//
// When no indexed book matches, source is "fallback" and results come from
// a case-insensitive title search, each with score 1.
//
// # Tool: trigger_ingestion
//
//	Request:
//	{"name": "trigger_ingestion", "arguments": {"document_id": 3}}
//
//	Response:
//	{"message": "Ingestion started", "job_id": 12}
//
// # Error Codes
//
//	-32602  Invalid params (missing ID, limit out of range)
//	-32603  Internal error
//	-32001  Document or job not found
//	-32002  A full reindex is already running
package mcp
