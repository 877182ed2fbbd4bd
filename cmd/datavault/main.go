package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ijaxt/datavault/internal/config"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	configPath string
	serverURL  string
	apiKey     string

	rootCmd = &cobra.Command{
		Use:   "datavault",
		Short: "Backup and restore for the ijaxt application data store",
		Long: `datavault serves an authenticated HTTP API to export, import, wipe and
inspect the application key-value store, and ships client commands for each
endpoint plus an offline restore.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				c.ServerURL = serverURL
			}
			if apiKey != "" {
				c.APIKey = apiKey
			}
			cfg = c
			logger = cfg.Log.Logger(os.Stderr)
			slog.SetDefault(logger)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $DATAVAULT_HOME/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL for client commands (overrides server_url)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for client commands (overrides api_key)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateKeyCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(restoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
