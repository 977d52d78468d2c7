// Command bookcatalog runs the book catalog HTTP API, its MCP server and
// the maintenance tasks around them.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bookcatalog",
	Short: "Book catalog service with lexical search and document ingestion",
	Long: `bookcatalog serves a REST API over a catalog of books, authors, genres,
reviews and uploaded documents. Books are searchable through an in-memory
lexical index, and uploaded documents go through an asynchronous ingestion
job tracker.

Configuration is read from defaults, then the TOML file given by --config
(or BOOKCATALOG_CONFIG), then .env, then the process environment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("BOOKCATALOG_CONFIG"), "path to a TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
