package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/bookcatalog/internal/ingestion"
	"github.com/dshills/bookcatalog/internal/storage"
)

var (
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

var sweepThreshold int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Complete ingestion jobs stuck longer than a threshold",
	Long: `Mark every pending or running ingestion job created more than
--threshold minutes ago as completed. Meant to be run from an external
scheduler such as cron when the in-process sweeper is disabled.`,
	RunE: runSweep,
}

var (
	reindexServer string
	reindexToken  string
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index of a running server",
	Long: `Ask a running bookcatalog server to rebuild its in-memory search index
from the catalog and print the statistics. The token must belong to a user
with write permission.`,
	RunE: runReindex,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepThreshold, "threshold", ingestion.DefaultStuckThresholdMinutes, "age in minutes after which a job counts as stuck; overrides STUCK_JOB_THRESHOLD_MINUTES")

	reindexCmd.Flags().StringVar(&reindexServer, "server", "http://localhost:8000", "base URL of the bookcatalog server")
	reindexCmd.Flags().StringVar(&reindexToken, "token", os.Getenv("BOOKCATALOG_TOKEN"), "bearer token (default $BOOKCATALOG_TOKEN)")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	threshold := sweepThreshold
	if !cmd.Flags().Changed("threshold") {
		threshold = cfg.Ingestion.StuckThresholdMinutes
	}

	result, err := ingestion.NewTracker(store, nil, logger).SweepStuckJobs(ctx, threshold)
	if err != nil {
		return err
	}

	if result.CompletedJobs == 0 {
		cmd.Printf("%s no unfinished jobs older than %d minutes\n", yellow("Nothing to do:"), threshold)
		return nil
	}
	cmd.Printf("%s %s\n", green("✓"), result.Message)
	return nil
}

type reindexStats struct {
	Message      string   `json:"message"`
	TotalBooks   int      `json:"total_books"`
	IndexedCount int      `json:"indexed_count"`
	FailedCount  int      `json:"failed_count"`
	PrunedCount  int      `json:"pruned_count"`
	TotalInStore int      `json:"total_in_store"`
	DurationMs   int64    `json:"duration_ms"`
	Errors       []string `json:"errors"`
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if reindexToken == "" {
		return fmt.Errorf("a token is required: pass --token or set BOOKCATALOG_TOKEN")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := requestReindex(ctx, reindexServer, reindexToken)
	if err != nil {
		return err
	}

	cmd.Printf("%s %s\n", green("✓"), stats.Message)
	cmd.Printf("  %s %d\n", cyan("Total books:"), stats.TotalBooks)
	cmd.Printf("  %s %d\n", cyan("Indexed:"), stats.IndexedCount)
	cmd.Printf("  %s %d\n", cyan("Pruned:"), stats.PrunedCount)
	cmd.Printf("  %s %d\n", cyan("Entries in index:"), stats.TotalInStore)
	cmd.Printf("  %s %s\n", cyan("Duration:"), time.Duration(stats.DurationMs)*time.Millisecond)
	if stats.FailedCount > 0 {
		cmd.Printf("  %s %d\n", yellow("Failed:"), stats.FailedCount)
		for _, msg := range stats.Errors {
			cmd.Printf("    %s\n", msg)
		}
	}
	return nil
}

func requestReindex(ctx context.Context, server, token string) (*reindexStats, error) {
	url := strings.TrimRight(server, "/") + "/api/v1/search/reindex-all"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reindex request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var stats reindexStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &stats, nil
}
