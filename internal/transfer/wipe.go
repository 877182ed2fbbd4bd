package transfer

import (
	"context"
	"fmt"

	"github.com/ijaxt/datavault/internal/category"
)

// Clear deletes every key except the credential. confirm must equal
// ConfirmToken exactly or nothing is touched. Keys written after the scan
// survive; keys removed concurrently are not counted.
func (s *Service) Clear(ctx context.Context, confirm string) (int, error) {
	if confirm != ConfirmToken {
		return 0, ErrConfirmationMismatch
	}

	records, err := s.scanAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clearing: %w", err)
	}
	keys := make([]string, 0, len(records))
	for _, r := range records {
		if r.Key != category.CredentialKey {
			keys = append(keys, r.Key)
		}
	}

	n, err := s.store.Delete(ctx, keys)
	if err != nil {
		return n, fmt.Errorf("clearing: %w", err)
	}
	s.logger.Warn("store cleared", "deleted", n)
	return n, nil
}
