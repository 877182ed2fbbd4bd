package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ijaxt/datavault/internal/credential"
	"github.com/ijaxt/datavault/internal/store"
	"github.com/ijaxt/datavault/internal/transfer"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Constraint string `json:"constraint"`
}

func writeError(w http.ResponseWriter, status int, constraint, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Constraint: constraint})
}

// handleServiceError maps a service error onto a response. 5xx bodies
// never carry the underlying error text.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, transfer.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, credential.ErrInvalid):
		writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid API key")
	case errors.Is(err, store.ErrUnavailable):
		s.logger.Error(op+" failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "store_unavailable", "store unavailable")
	default:
		s.logger.Error(op+" failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON")
		return false
	}
	return true
}

// handleNotFound answers unknown paths, and known paths with the wrong
// method, in the JSON error shape.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

// GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /api/v1/generate-api-key
func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	if !s.keygenLimit.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many key generation attempts, try again later")
		return
	}

	key, err := s.creds.Generate(r.Context())
	if err != nil {
		s.handleServiceError(w, r, "generate API key", err)
		return
	}
	s.metrics.keysGenerated.Inc()
	s.logger.Info("API key generated", "key_prefix", credential.Mask(key))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"apiKey":  key,
		"message": "API key generated. Store it securely; any previous key is no longer valid.",
	})
}

// GET /api/v1/verify-api-key
func (s *Server) handleVerifyKey(w http.ResponseWriter, r *http.Request) {
	res, err := s.creds.Verify(r.Context(), apiKeyFromRequest(r))
	if err != nil {
		s.handleServiceError(w, r, "verify API key", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":     true,
		"message":   "API key is valid",
		"keyPrefix": res.KeyPrefix,
	})
}

// GET /api/v1/data-stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.transfer.Stats(r.Context())
	if err != nil {
		s.handleServiceError(w, r, "stats", err)
		return
	}
	s.metrics.storeItems.Set(float64(stats.TotalItems))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// GET /api/v1/export-data
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.transfer.Export(r.Context())
	if err != nil {
		s.handleServiceError(w, r, "export", err)
		return
	}
	s.metrics.itemsExported.Add(float64(len(bundle.RawData)))
	s.metrics.storeItems.Set(float64(bundle.Summary.TotalItems))

	filename := fmt.Sprintf("%s-%s.json", s.filePrefix, bundle.Metadata.ExportedAt.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    bundle,
		"summary": bundle.Summary,
	})
}

// POST /api/v1/import-data
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data      json.RawMessage `json:"data"`
		Overwrite bool            `json:"overwrite"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "data is required")
		return
	}

	out, err := s.transfer.Import(r.Context(), req.Data, transfer.Options{Overwrite: req.Overwrite})
	if err != nil {
		s.handleServiceError(w, r, "import", err)
		return
	}
	s.metrics.itemsImported.WithLabelValues("imported").Add(float64(out.Imported))
	s.metrics.itemsImported.WithLabelValues("skipped").Add(float64(out.Skipped))
	s.metrics.itemsImported.WithLabelValues("error").Add(float64(out.Errors))
	s.metrics.itemsImported.WithLabelValues("reserved").Add(float64(out.Reserved))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": out,
		"errors":  out.Messages,
		"message": fmt.Sprintf("Import completed: %d imported, %d skipped, %d errors", out.Imported, out.Skipped, out.Errors),
	})
}

// DELETE /api/v1/clear-data
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm string `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	n, err := s.transfer.Clear(r.Context(), req.Confirm)
	if err != nil {
		s.handleServiceError(w, r, "clear", err)
		return
	}
	s.metrics.itemsDeleted.Add(float64(n))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("Deleted %d items", n),
		"deletedCount": n,
	})
}

// POST /api/v1/seed-demo-data
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	out := s.transfer.Seed(r.Context())
	s.metrics.itemsSeeded.Add(float64(out.Seeded))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"seeded":        out.Seeded,
		"errors":        out.Errors,
		"errorMessages": out.Messages,
		"message":       fmt.Sprintf("Seeded %d demo items", out.Seeded),
	})
}
