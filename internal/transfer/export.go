package transfer

import (
	"context"
	"fmt"

	"github.com/ijaxt/datavault/internal/category"
)

// Export snapshots the whole key space. RawData carries every record,
// the credential included, so a bundle can rebuild a store elsewhere.
// Summary counts exclude the credential.
func (s *Service) Export(ctx context.Context) (Bundle, error) {
	records, err := s.scanAll(ctx)
	if err != nil {
		return Bundle{}, fmt.Errorf("exporting: %w", err)
	}
	counts, total := category.Tally(recordKeys(records))

	s.logger.Info("export built", "records", len(records), "total_items", total)
	return Bundle{
		Metadata: Metadata{
			ExportedAt: s.now(),
			Version:    BundleVersion,
			Source:     BundleSource,
		},
		RawData: records,
		Summary: Summary{
			TotalItems: total,
			Categories: counts,
		},
	}, nil
}
