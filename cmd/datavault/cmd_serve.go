package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ijaxt/datavault/internal/api"
	"github.com/ijaxt/datavault/internal/category"
	"github.com/ijaxt/datavault/internal/credential"
	"github.com/ijaxt/datavault/internal/store"
	"github.com/ijaxt/datavault/internal/transfer"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server in the foreground",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Store.Backend, cfg.DataDir, cfg.Store.Timeout, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.Get(ctx, category.CredentialKey); errors.Is(err, store.ErrNotFound) {
		logger.Warn("no API key configured yet; call POST /api/v1/generate-api-key or run `datavault generate-key`")
	}

	srv := api.New(credential.NewManager(st), transfer.NewService(st, logger), api.Options{
		Addr:            cfg.ListenAddr,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		KeygenPerMinute: cfg.Keygen.PerMinute,
		FilePrefix:      cfg.Export.FilePrefix,
		Logger:          logger,
	})
	if _, err := srv.Start(); err != nil {
		return err
	}
	logger.Info("datavault started", "backend", cfg.Store.Backend, "data_dir", cfg.DataDir, "config", cfg.File)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
