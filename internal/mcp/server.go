package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/bookcatalog/internal/ingestion"
	"github.com/dshills/bookcatalog/internal/searcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "bookcatalog"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	searcher *searcher.Searcher
	tracker  *ingestion.Tracker
	logger   *slog.Logger
}

// NewServer creates a new MCP server instance. The caller owns the
// lifecycle of the storage behind searcher and tracker.
func NewServer(srch *searcher.Searcher, tracker *ingestion.Tracker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		searcher: srch,
		tracker:  tracker,
		logger:   logger.With("component", "mcp"),
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchBooksTool(), s.handleSearchBooks)
	s.mcp.AddTool(reindexBooksTool(), s.handleReindexBooks)
	s.mcp.AddTool(triggerIngestionTool(), s.handleTriggerIngestion)
	s.mcp.AddTool(ingestionStatusTool(), s.handleIngestionStatus)
	s.mcp.AddTool(listIngestionJobsTool(), s.handleListIngestionJobs)
	s.mcp.AddTool(sweepStuckJobsTool(), s.handleSweepStuckJobs)
}
