package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/ijaxt/datavault/internal/credential"
	"github.com/ijaxt/datavault/internal/transfer"
)

// Options configures a Server. Zero values fall back to the defaults below.
type Options struct {
	Addr            string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	KeygenPerMinute int
	FilePrefix      string
	Logger          *slog.Logger
}

const (
	defaultMaxBody    = 16 << 20
	defaultKeygen     = 5
	defaultFilePrefix = "ijaxt-data-export"
)

// Server is the HTTP API for the data transfer service.
type Server struct {
	creds       *credential.Manager
	transfer    *transfer.Service
	logger      *slog.Logger
	metrics     *metrics
	registry    *prometheus.Registry
	keygenLimit *rate.Limiter
	filePrefix  string
	maxBody     int64

	mux     *http.ServeMux
	handler http.Handler // full chain: recover → requestID → accessLog → securityHeaders → bodySize → mux
	server  *http.Server
}

// New creates a new API server.
func New(creds *credential.Manager, svc *transfer.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	if opts.KeygenPerMinute <= 0 {
		opts.KeygenPerMinute = defaultKeygen
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = defaultFilePrefix
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		creds:       creds,
		transfer:    svc,
		logger:      opts.Logger,
		metrics:     newMetrics(reg),
		registry:    reg,
		keygenLimit: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.KeygenPerMinute)), opts.KeygenPerMinute),
		filePrefix:  opts.FilePrefix,
		maxBody:     opts.MaxBodyBytes,
	}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.handler = s.recoverMiddleware(
		requestIDMiddleware(
			s.accessLogMiddleware(
				securityHeadersMiddleware(
					s.bodySizeMiddleware(s.mux)))))
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	// Public endpoints (no auth required)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/generate-api-key", s.handleGenerateKey)
	s.mux.Handle("GET /metrics", s.metricsHandler())

	// Protected endpoints
	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/v1/verify-api-key", s.handleVerifyKey)
	protected.HandleFunc("GET /api/v1/data-stats", s.handleStats)
	protected.HandleFunc("GET /api/v1/export-data", s.handleExport)
	protected.HandleFunc("POST /api/v1/import-data", s.handleImport)
	protected.HandleFunc("DELETE /api/v1/clear-data", s.handleClear)
	protected.HandleFunc("POST /api/v1/seed-demo-data", s.handleSeed)
	protected.HandleFunc("/api/v1/", handleNotFound)

	s.mux.Handle("/api/v1/", s.authMiddleware(protected))
	s.mux.HandleFunc("/", handleNotFound)
}

// Handler returns the full middleware chain, for embedding in tests or
// another server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening. Returns immediately; use the returned listener to get the actual port.
func (s *Server) Start() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server stopped", "error", err)
		}
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())
	return ln, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
