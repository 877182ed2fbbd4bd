package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultTimeout bounds a single store operation when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Adapter wraps a backend with a per-operation deadline and maps backend
// failures onto ErrUnavailable. It adds no atomicity of its own.
type Adapter struct {
	kv      KV
	timeout time.Duration
}

var _ KV = (*Adapter)(nil)

// NewAdapter wraps kv. A non-positive timeout selects DefaultTimeout.
func NewAdapter(kv KV, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{kv: kv, timeout: timeout}
}

func (a *Adapter) Get(ctx context.Context, key string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	v, err := a.kv.Get(ctx, key)
	if err != nil {
		return nil, classify(err)
	}
	return v, nil
}

func (a *Adapter) Set(ctx context.Context, key string, value json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return classify(a.kv.Set(ctx, key, value))
}

func (a *Adapter) Delete(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	n, err := a.kv.Delete(ctx, keys)
	return n, classify(err)
}

func (a *Adapter) Scan(ctx context.Context, prefix string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	records, err := a.kv.Scan(ctx, prefix)
	if err != nil {
		return nil, classify(err)
	}
	return records, nil
}

// ScanAll returns a snapshot of the whole key space.
func (a *Adapter) ScanAll(ctx context.Context) ([]Record, error) {
	return a.Scan(ctx, "")
}

// Close closes the wrapped backend.
func (a *Adapter) Close() error {
	return a.kv.Close()
}

// classify leaves caller-facing sentinels intact and marks everything else unavailable.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidValue), errors.Is(err, ErrUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Open creates the named backend under dir and wraps it in an Adapter.
func Open(backend, dir string, timeout time.Duration, logger *slog.Logger) (*Adapter, error) {
	var (
		kv  KV
		err error
	)
	if backend != BackendMemory {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}
	switch backend {
	case BackendSQLite, "":
		kv, err = OpenSQLite(filepath.Join(dir, "datavault.db"))
	case BackendBadger:
		kv, err = OpenBadger(BadgerConfig{Path: filepath.Join(dir, "badger"), SyncWrites: true, Logger: logger})
	case BackendMemory:
		kv = NewMemory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return NewAdapter(kv, timeout), nil
}
