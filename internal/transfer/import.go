package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ijaxt/datavault/internal/category"
	"github.com/ijaxt/datavault/internal/store"
)

// Import writes a bundle's rawData back into the store, item by item in
// input order. A malformed item or a failed write is recorded and skipped;
// only a bundle whose shape cannot be read at all fails the whole call.
// Duplicate keys are processed each time they appear.
func (s *Service) Import(ctx context.Context, data json.RawMessage, opts Options) (ImportOutcome, error) {
	items, err := decodeRawData(data)
	if err != nil {
		return ImportOutcome{}, err
	}

	out := ImportOutcome{TotalProcessed: len(items)}
	var errs errorLog
	for i, item := range items {
		key, value, err := decodeItem(item)
		if err != nil {
			errs.add(fmt.Sprintf("rawData[%d]: %v", i, err))
			continue
		}

		if key == category.CredentialKey && !opts.RestoreCredential {
			out.Reserved++
			continue
		}

		if !opts.Overwrite {
			_, err := s.store.Get(ctx, key)
			if err == nil {
				out.Skipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				errs.add(fmt.Sprintf("rawData[%d] %q: checking existing key: %v", i, key, err))
				continue
			}
		}

		if err := s.store.Set(ctx, key, value); err != nil {
			errs.add(fmt.Sprintf("rawData[%d] %q: %v", i, key, err))
			continue
		}
		out.Imported++
	}

	out.Errors = errs.count
	out.Messages = errs.list()
	s.logger.Info("import finished",
		"total", out.TotalProcessed,
		"imported", out.Imported,
		"skipped", out.Skipped,
		"reserved", out.Reserved,
		"errors", out.Errors,
		"overwrite", opts.Overwrite,
	)
	return out, nil
}

// decodeRawData checks the bundle shape and returns its raw items.
func decodeRawData(data json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: data must be an export bundle object", ErrValidation)
	}
	var bundle struct {
		RawData json.RawMessage `json:"rawData"`
	}
	if err := json.Unmarshal(trimmed, &bundle); err != nil {
		return nil, fmt.Errorf("%w: data is not valid JSON", ErrValidation)
	}
	raw := bytes.TrimSpace(bundle.RawData)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: rawData must be an array", ErrValidation)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: rawData must be an array", ErrValidation)
	}
	return items, nil
}

// decodeItem validates one {key, value} pair.
func decodeItem(item json.RawMessage) (string, json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return "", nil, errors.New("item is not an object")
	}
	rawKey, ok := fields["key"]
	if !ok {
		return "", nil, errors.New("missing key")
	}
	var key string
	if err := json.Unmarshal(rawKey, &key); err != nil {
		return "", nil, errors.New("key must be a string")
	}
	if key == "" {
		return "", nil, errors.New("key must not be empty")
	}
	value, ok := fields["value"]
	if !ok {
		return "", nil, fmt.Errorf("%q: missing value", key)
	}
	return key, value, nil
}
