// Package credential manages the single shared API key that guards the
// data-transfer endpoints.
package credential

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ijaxt/datavault/internal/category"
	"github.com/ijaxt/datavault/internal/store"
)

// KeyPrefix starts every generated API key.
const KeyPrefix = "ijaxt_"

const (
	keyBytes     = 32 // 256-bit
	maskedLen    = 12
	maskedSuffix = "..."
)

// ErrInvalid is returned by Verify when no credential exists or the candidate does not match it.
var ErrInvalid = errors.New("invalid or missing API key")

// Store is the subset of the KV contract the manager needs.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// Result describes a successful verification.
type Result struct {
	KeyPrefix string `json:"keyPrefix"`
}

// Manager generates and verifies the API key stored under category.CredentialKey.
type Manager struct {
	store Store
}

// NewManager returns a Manager backed by s.
func NewManager(s Store) *Manager {
	return &Manager{store: s}
}

// Generate creates a new key and stores it, replacing any previous key.
// The raw key is returned once; it cannot be read back through the API.
func (m *Manager) Generate(ctx context.Context) (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	key := KeyPrefix + hex.EncodeToString(b)

	value, err := json.Marshal(key)
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, category.CredentialKey, value); err != nil {
		return "", fmt.Errorf("storing key: %w", err)
	}
	return key, nil
}

// Verify checks candidate against the stored key in constant time.
func (m *Manager) Verify(ctx context.Context, candidate string) (Result, error) {
	if candidate == "" {
		return Result{}, ErrInvalid
	}
	raw, err := m.store.Get(ctx, category.CredentialKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, ErrInvalid
		}
		return Result{}, fmt.Errorf("loading key: %w", err)
	}

	var stored string
	if err := json.Unmarshal(raw, &stored); err != nil || stored == "" {
		return Result{}, ErrInvalid
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) != 1 {
		return Result{}, ErrInvalid
	}
	return Result{KeyPrefix: Mask(stored)}, nil
}

// Mask returns the first characters of key followed by an ellipsis.
func Mask(key string) string {
	if len(key) <= maskedLen {
		return key[:len(key)/2] + maskedSuffix
	}
	return key[:maskedLen] + maskedSuffix
}
