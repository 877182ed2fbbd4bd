package transfer

import (
	"time"

	"github.com/ijaxt/datavault/internal/category"
	"github.com/ijaxt/datavault/internal/store"
)

const (
	// BundleVersion is written into every export's metadata.
	BundleVersion = "1.0.0"

	// BundleSource identifies the producer of an export.
	BundleSource = "ijaxt-data-transfer"

	// ConfirmToken must be echoed back to Clear.
	ConfirmToken = "DELETE_ALL_DATA"

	// MaxReportedErrors caps the per-item messages returned to callers.
	// The error count itself is always exact.
	MaxReportedErrors = 10
)

// Stats is the aggregate view of the store.
type Stats struct {
	TotalItems  int                       `json:"totalItems"`
	Categories  map[category.Category]int `json:"categories"`
	LastUpdated time.Time                 `json:"lastUpdated"`
}

// Metadata describes an export.
type Metadata struct {
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
}

// Summary is the categorised count attached to an export. The credential
// record is present in RawData but not counted here, so TotalItems is
// len(RawData)-1 whenever a key exists; consumers must not expect the two
// to be equal.
type Summary struct {
	TotalItems int                       `json:"totalItems"`
	Categories map[category.Category]int `json:"categories"`
}

// Bundle is the portable export format.
type Bundle struct {
	Metadata Metadata       `json:"metadata"`
	RawData  []store.Record `json:"rawData"`
	Summary  Summary        `json:"summary"`
}

// Options controls Import.
type Options struct {
	// Overwrite replaces existing keys; otherwise they are skipped.
	Overwrite bool

	// RestoreCredential lets a bundle's credential record replace the live
	// one. Only offline restores set it.
	RestoreCredential bool
}

// ImportOutcome tallies an import. Imported+Skipped+Errors+Reserved == TotalProcessed.
type ImportOutcome struct {
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	Errors         int      `json:"errors"`
	Reserved       int      `json:"reserved"`
	TotalProcessed int      `json:"totalProcessed"`
	Messages       []string `json:"-"`
}

// SeedOutcome tallies a demo seed run.
type SeedOutcome struct {
	Seeded   int      `json:"seeded"`
	Errors   int      `json:"errors"`
	Messages []string `json:"-"`
}

// errorLog counts every failure but keeps only the first MaxReportedErrors messages.
type errorLog struct {
	count    int
	messages []string
}

func (l *errorLog) add(msg string) {
	l.count++
	if len(l.messages) < MaxReportedErrors {
		l.messages = append(l.messages, msg)
	}
}

func (l *errorLog) list() []string {
	if l.messages == nil {
		return []string{}
	}
	return l.messages
}
