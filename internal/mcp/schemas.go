package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchBooksTool returns the tool definition for search_books
func searchBooksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_books",
		Description: "Search the book catalog. Ranks indexed books by the share of query words found in their title, author, genre, summary and reviews, and falls back to a title search when nothing in the index matches.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search words; an empty query lists books by title",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     5,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// reindexBooksTool returns the tool definition for reindex_books
func reindexBooksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex_books",
		Description: "Rebuild the search index from every book in the catalog and wait for it to finish",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// triggerIngestionTool returns the tool definition for trigger_ingestion
func triggerIngestionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "trigger_ingestion",
		Description: "Start asynchronous ingestion of an uploaded document and return its job id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of an uploaded document",
					"minimum":     1,
				},
			},
			Required: []string{"document_id"},
		},
	}
}

// ingestionStatusTool returns the tool definition for ingestion_status
func ingestionStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingestion_status",
		Description: "Get the status and creation time of an ingestion job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"job_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID returned by trigger_ingestion",
					"minimum":     1,
				},
			},
			Required: []string{"job_id"},
		},
	}
}

// listIngestionJobsTool returns the tool definition for list_ingestion_jobs
func listIngestionJobsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_ingestion_jobs",
		Description: "List every ingestion job with its document filename, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// sweepStuckJobsTool returns the tool definition for sweep_stuck_jobs
func sweepStuckJobsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "sweep_stuck_jobs",
		Description: "Mark unfinished ingestion jobs older than the threshold as completed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"threshold_minutes": map[string]interface{}{
					"type":        "integer",
					"description": "Age in minutes after which an unfinished job counts as stuck",
					"default":     5,
				},
			},
		},
	}
}
