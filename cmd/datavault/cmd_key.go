package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var generateKeyCmd = &cobra.Command{
	Use:   "generate-key",
	Short: "Generate a new API key, invalidating the previous one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var res struct {
			APIKey  string `json:"apiKey"`
			Message string `json:"message"`
		}
		if err := call(cmd.Context(), "POST", "/api/v1/generate-api-key", nil, &res); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, res.Message)
		fmt.Println(res.APIKey)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the configured API key against the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var res struct {
			Message   string `json:"message"`
			KeyPrefix string `json:"keyPrefix"`
		}
		if err := call(cmd.Context(), "GET", "/api/v1/verify-api-key", nil, &res); err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", res.Message, res.KeyPrefix)
		return nil
	},
}
