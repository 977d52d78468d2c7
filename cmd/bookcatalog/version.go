package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/bookcatalog/internal/storage"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number and build info",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("bookcatalog version %s\n", version)
		cmd.Printf("Build Time: %s\n", buildTime)
		cmd.Printf("Build Mode: %s\n", storage.BuildMode)
		cmd.Printf("SQLite Driver: %s\n", storage.DriverName)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
