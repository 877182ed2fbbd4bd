package transfer

import (
	"context"
	"fmt"

	"github.com/ijaxt/datavault/internal/category"
)

// Stats recomputes category counts from a full scan. Nothing is cached.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.scanAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("computing stats: %w", err)
	}
	counts, total := category.Tally(recordKeys(records))
	return Stats{
		TotalItems:  total,
		Categories:  counts,
		LastUpdated: s.now(),
	}, nil
}
