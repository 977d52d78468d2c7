package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/bookcatalog/internal/mcp"
	"github.com/dshills/bookcatalog/internal/storage"
)

var mcpReindex bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run the Model Context Protocol server for AI assistant integration.

The server speaks JSON-RPC over stdio, so all logs go to stderr. It shares
the database with the HTTP API but keeps its own in-memory search index,
which is built on startup unless --reindex=false is given.

MCP client configuration:
  {
    "mcpServers": {
      "bookcatalog": {
        "command": "/path/to/bookcatalog",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpReindex, "reindex", true, "build the search index before serving")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stdout is reserved for the protocol
	a, err := newApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			a.logger.Error("shutdown failed", "error", err)
		}
	}()

	a.logger.Info("starting bookcatalog MCP server",
		"version", version,
		"build_mode", storage.BuildMode,
		"driver", storage.DriverName)

	a.start(ctx)
	if mcpReindex {
		stats, err := a.searcher.ReindexAll(ctx)
		if err != nil {
			return err
		}
		a.logger.Info("index ready", "indexed", stats.IndexedCount, "failed", stats.FailedCount)
	}

	server := mcp.NewServer(a.searcher, a.tracker, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
		return nil
	case err := <-errCh:
		return err
	}
}
