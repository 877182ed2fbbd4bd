// Package store provides the key-value persistence layer behind datavault.
//
// Every backend implements KV: single-key Get/Set, batch Delete and a sorted
// prefix Scan. Backends give per-key atomicity only. Nothing in this package
// offers cross-key transactions or snapshot isolation, and callers must not
// assume a Scan followed by writes sees a frozen key space.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable wraps any failure of the underlying store, including timeouts.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidValue is returned by Set when the value is not valid JSON.
	ErrInvalidValue = errors.New("value is not valid JSON")
)

// Record is a single key/value pair. Value holds raw JSON.
type Record struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// KV is the contract every backend satisfies.
type KV interface {
	// Get returns the stored JSON value, or ErrNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes the given keys and returns how many existed.
	// Missing keys are not an error.
	Delete(ctx context.Context, keys []string) (int, error)

	// Scan returns every record whose key starts with prefix, ordered by key.
	// An empty prefix returns the whole key space.
	Scan(ctx context.Context, prefix string) ([]Record, error)

	// Close releases backend resources.
	Close() error
}

func validJSON(value json.RawMessage) error {
	if len(value) == 0 || !json.Valid(value) {
		return ErrInvalidValue
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
