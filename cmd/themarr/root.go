package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	apiKey     string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "themarr",
	Short: "CLI client for the themarr theme song downloader",
	Long: `themarr - CLI client for the themarr theme song downloader

Start theme runs, follow their progress and browse the
library and event history of a running themarrd.

Run 'themarrd' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8585", "Server URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("THEMARR_API_KEY"), "API key (default $THEMARR_API_KEY)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("themarr {{.Version}}\n")
}

func newClient() *Client {
	return NewClient(serverURL, apiKey)
}
