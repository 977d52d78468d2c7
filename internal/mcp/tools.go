package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/bookcatalog/internal/indexer"
	"github.com/dshills/bookcatalog/internal/ingestion"
	"github.com/dshills/bookcatalog/internal/searcher"
	"github.com/dshills/bookcatalog/internal/storage"
	"github.com/dshills/bookcatalog/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound          = -32001 // Referenced document or job does not exist
	ErrorCodeReindexInProgress = -32002 // Another full reindex is already running
)

// handleSearchBooks handles the search_books tool invocation
func (s *Server) handleSearchBooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	query := getStringDefault(args, "query", "")
	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, s.toolError("search failed", err)
	}

	results := resp.Results
	if results == nil {
		results = []types.SearchResult{}
	}
	response := map[string]interface{}{
		"query":       resp.Query,
		"source":      resp.Source,
		"results":     results,
		"cache_hit":   resp.CacheHit,
		"duration_ms": resp.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReindexBooks handles the reindex_books tool invocation
func (s *Server) handleReindexBooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.searcher.ReindexAll(ctx)
	if err != nil {
		return nil, s.toolError("reindex failed", err)
	}

	response := map[string]interface{}{
		"message":        stats.Message,
		"total_books":    stats.TotalBooks,
		"indexed_count":  stats.IndexedCount,
		"failed_count":   stats.FailedCount,
		"pruned_count":   stats.PrunedCount,
		"total_in_store": stats.TotalInStore,
		"duration_ms":    stats.Duration.Milliseconds(),
	}
	if n := len(stats.ErrorMessages); n > 0 {
		// Include first few errors
		if n > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = n
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleTriggerIngestion handles the trigger_ingestion tool invocation
func (s *Server) handleTriggerIngestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	documentID, err := requirePositiveID(args, "document_id")
	if err != nil {
		return nil, err
	}

	result, err := s.tracker.Trigger(ctx, documentID)
	if err != nil {
		return nil, s.toolError("trigger failed", err)
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleIngestionStatus handles the ingestion_status tool invocation
func (s *Server) handleIngestionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	jobID, err := requirePositiveID(args, "job_id")
	if err != nil {
		return nil, err
	}

	result, err := s.tracker.GetStatus(ctx, jobID)
	if err != nil {
		return nil, s.toolError("failed to get job status", err)
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleListIngestionJobs handles the list_ingestion_jobs tool invocation
func (s *Server) handleListIngestionJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.tracker.ListJobs(ctx)
	if err != nil {
		return nil, s.toolError("failed to list jobs", err)
	}

	items := make([]map[string]interface{}, len(jobs))
	for i, j := range jobs {
		items[i] = map[string]interface{}{
			"id":          j.ID,
			"document_id": j.DocumentID,
			"filename":    j.Filename,
			"status":      j.Status,
			"created_at":  j.CreatedAt,
		}
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"jobs":  items,
		"count": len(items),
	})), nil
}

// handleSweepStuckJobs handles the sweep_stuck_jobs tool invocation
func (s *Server) handleSweepStuckJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	threshold := getIntDefault(args, "threshold_minutes", ingestion.DefaultStuckThresholdMinutes)

	result, err := s.tracker.SweepStuckJobs(ctx, threshold)
	if err != nil {
		return nil, s.toolError("sweep failed", err)
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// Helper functions

// toolError maps a domain error to its MCP code. Internal causes are logged.
func (s *Server) toolError(message string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return newMCPError(ErrorCodeNotFound, err.Error(), nil)
	case errors.Is(err, indexer.ErrReindexInProgress):
		return newMCPError(ErrorCodeReindexInProgress, err.Error(), nil)
	case errors.Is(err, types.ErrValidation):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	s.logger.Error(message, "error", err)
	return newMCPError(ErrorCodeInternalError, message, map[string]interface{}{
		"error": err.Error(),
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// arguments returns the tool arguments, treating absent arguments as empty
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// requirePositiveID extracts a required integer ID parameter
func requirePositiveID(args map[string]interface{}, key string) (int64, error) {
	id := getIntDefault(args, key, 0)
	if id < 1 {
		return 0, newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or not a positive integer",
		})
	}
	return int64(id), nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
