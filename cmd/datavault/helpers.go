package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ijaxt/datavault/internal/crypto"
)

const requestTimeout = 2 * time.Minute

var httpClient = &http.Client{Timeout: requestTimeout}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// passphrase reads DATAVAULT_PASSPHRASE, or prompts when stdin is a terminal.
func passphrase(confirm bool) ([]byte, error) {
	if p := os.Getenv("DATAVAULT_PASSPHRASE"); p != "" {
		return []byte(p), nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return nil, errors.New("passphrase required: set DATAVAULT_PASSPHRASE or run interactively")
	}
	p, err := promptSecret("Bundle passphrase: ")
	if err != nil {
		return nil, err
	}
	if confirm {
		again, err := promptSecret("Repeat passphrase: ")
		if err != nil {
			return nil, err
		}
		if again != p {
			return nil, errors.New("passphrases do not match")
		}
	}
	if p == "" {
		return nil, crypto.ErrEmptyPassphrase
	}
	return []byte(p), nil
}

// apiRequest makes an HTTP request to the datavault server, sending the
// configured API key when there is one.
func apiRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.ServerURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("X-API-Key", cfg.APIKey)
	}
	return httpClient.Do(req)
}

// apiResult decodes a JSON response or returns the error.
func apiResult(resp *http.Response, target any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error      string `json:"error"`
			Constraint string `json:"constraint"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s (%s)", errResp.Error, errResp.Constraint)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if target != nil {
		return json.NewDecoder(resp.Body).Decode(target)
	}
	return nil
}

func call(ctx context.Context, method, path string, body, target any) error {
	resp, err := apiRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return apiResult(resp, target)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readBundle loads an export file. Sealed envelopes are opened with a
// passphrase and a full export-data response is unwrapped to its bundle.
func readBundle(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if crypto.IsSealed(data) {
		pass, err := passphrase(false)
		if err != nil {
			return nil, err
		}
		if data, err = crypto.Open(pass, data); err != nil {
			return nil, fmt.Errorf("opening sealed bundle: %w", err)
		}
	}
	return unwrapBundle(data)
}

func unwrapBundle(data []byte) (json.RawMessage, error) {
	var probe struct {
		RawData json.RawMessage `json:"rawData"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("bundle is not valid JSON: %w", err)
	}
	if len(probe.RawData) == 0 && len(probe.Data) > 0 && strings.HasPrefix(strings.TrimSpace(string(probe.Data)), "{") {
		return probe.Data, nil
	}
	return data, nil
}
