// Package transfer implements the bulk operations over the application
// key space: statistics, export, import, wipe and demo seeding.
//
// Each operation scans the store and then acts key by key. The store offers
// no snapshot isolation, so a concurrent writer may add or remove keys between
// the scan and the follow-up writes. That is accepted: these are operator
// tools, not a transactional ledger.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ijaxt/datavault/internal/store"
)

var (
	// ErrValidation marks a request that cannot be processed at all.
	ErrValidation = errors.New("validation failed")

	// ErrConfirmationMismatch is returned by Clear when the confirmation token is wrong.
	ErrConfirmationMismatch = fmt.Errorf("%w: confirmation must equal %q", ErrValidation, ConfirmToken)
)

// Store is the KV contract the service depends on.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Delete(ctx context.Context, keys []string) (int, error)
	Scan(ctx context.Context, prefix string) ([]store.Record, error)
}

// Service runs transfer operations against a Store.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService returns a Service. A nil logger uses slog.Default().
func NewService(s Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) scanAll(ctx context.Context) ([]store.Record, error) {
	records, err := s.store.Scan(ctx, "")
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []store.Record{}
	}
	return records, nil
}

func recordKeys(records []store.Record) []string {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	return keys
}
