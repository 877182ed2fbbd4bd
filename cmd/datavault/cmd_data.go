package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ijaxt/datavault/internal/category"
	"github.com/ijaxt/datavault/internal/crypto"
	"github.com/ijaxt/datavault/internal/transfer"
)

var (
	exportOut     string
	exportEncrypt bool
	importWrite   bool
	clearYes      bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show item counts per category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var res struct {
			Stats transfer.Stats `json:"stats"`
		}
		if err := call(cmd.Context(), "GET", "/api/v1/data-stats", nil, &res); err != nil {
			return err
		}
		fmt.Printf("Total items: %d\n", res.Stats.TotalItems)
		for _, c := range category.Labels() {
			fmt.Printf("  %-16s %d\n", c, res.Stats.Categories[c])
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download a backup bundle to a file",
	Long: `Downloads every record as an export bundle. Without --out the file is named
after the server's suggestion, e.g. ijaxt-data-export-2026-10-19.json.
--encrypt seals the bundle with a passphrase (DATAVAULT_PASSPHRASE or prompt).`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	resp, err := apiRequest(cmd.Context(), "GET", "/api/v1/export-data", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	name := exportFilename(resp)

	var res struct {
		Data    json.RawMessage  `json:"data"`
		Summary transfer.Summary `json:"summary"`
	}
	if err := apiResult(resp, &res); err != nil {
		return err
	}

	out, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return err
	}
	if exportEncrypt {
		pass, err := passphrase(true)
		if err != nil {
			return err
		}
		if out, err = crypto.Seal(pass, out); err != nil {
			return err
		}
		name += ".sealed"
	}
	if exportOut != "" {
		name = exportOut
	}
	if name == "-" {
		_, err := os.Stdout.Write(append(out, '\n'))
		return err
	}
	if err := os.WriteFile(name, append(out, '\n'), 0o600); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d items to %s\n", res.Summary.TotalItems, name)
	return nil
}

// exportFilename takes the name from Content-Disposition, falling back to
// the configured prefix and today's date.
func exportFilename(resp *http.Response) string {
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return fmt.Sprintf("%s-%s.json", cfg.Export.FilePrefix, time.Now().UTC().Format("2006-01-02"))
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upload a backup bundle",
	Long: `Uploads an export bundle (plain or sealed). Existing keys are kept unless
--overwrite is given. The server's live API key is never replaced by import;
use "datavault restore --with-credential" against a stopped server for that.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := readBundle(args[0])
		if err != nil {
			return err
		}
		var res struct {
			Summary transfer.ImportOutcome `json:"summary"`
			Errors  []string               `json:"errors"`
			Message string                 `json:"message"`
		}
		body := map[string]any{"data": bundle, "overwrite": importWrite}
		if err := call(cmd.Context(), "POST", "/api/v1/import-data", body, &res); err != nil {
			return err
		}
		printOutcome(res.Summary, res.Errors)
		return nil
	},
}

func printOutcome(out transfer.ImportOutcome, errs []string) {
	fmt.Printf("Processed %d: %d imported, %d skipped, %d errors, %d reserved\n",
		out.TotalProcessed, out.Imported, out.Skipped, out.Errors, out.Reserved)
	for _, e := range errs {
		fmt.Printf("  %s\n", e)
	}
	if out.Errors > len(errs) {
		fmt.Printf("  ... and %d more\n", out.Errors-len(errs))
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every record except the API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm := transfer.ConfirmToken
		if !clearYes {
			fmt.Fprintf(os.Stderr, "This deletes all data. Type %s to continue: ", transfer.ConfirmToken)
			var typed string
			fmt.Scanln(&typed)
			if typed != transfer.ConfirmToken {
				return errors.New("aborted")
			}
		}
		var res struct {
			DeletedCount int `json:"deletedCount"`
		}
		if err := call(cmd.Context(), "DELETE", "/api/v1/clear-data", map[string]string{"confirm": confirm}, &res); err != nil {
			return err
		}
		fmt.Printf("Deleted %d items\n", res.DeletedCount)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the demo data set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var res struct {
			Seeded        int      `json:"seeded"`
			Errors        int      `json:"errors"`
			ErrorMessages []string `json:"errorMessages"`
		}
		if err := call(cmd.Context(), "POST", "/api/v1/seed-demo-data", nil, &res); err != nil {
			return err
		}
		fmt.Printf("Seeded %d items, %d errors\n", res.Seeded, res.Errors)
		for _, e := range res.ErrorMessages {
			fmt.Printf("  %s\n", e)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", `output file ("-" for stdout)`)
	exportCmd.Flags().BoolVar(&exportEncrypt, "encrypt", false, "seal the bundle with a passphrase")
	importCmd.Flags().BoolVar(&importWrite, "overwrite", false, "replace keys that already exist")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}
