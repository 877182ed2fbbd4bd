package main

import (
	"github.com/spf13/cobra"

	"github.com/ijaxt/datavault/internal/store"
	"github.com/ijaxt/datavault/internal/transfer"
)

var (
	restoreOverwrite  bool
	restoreCredential bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Import a bundle straight into the local store (server must be stopped)",
	Long: `Opens the configured store directly and imports a bundle without going
through the API. With --with-credential the bundle's API key replaces the
local one, so clients holding the old key keep working after a rebuild.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := readBundle(args[0])
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Store.Backend, cfg.DataDir, cfg.Store.Timeout, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		out, err := transfer.NewService(st, logger).Import(cmd.Context(), bundle, transfer.Options{
			Overwrite:         restoreOverwrite,
			RestoreCredential: restoreCredential,
		})
		if err != nil {
			return err
		}
		printOutcome(out, out.Messages)
		return nil
	},
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreOverwrite, "overwrite", false, "replace keys that already exist")
	restoreCmd.Flags().BoolVar(&restoreCredential, "with-credential", false, "restore the API key carried by the bundle")
}
