package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/onurmatik/StageOps/internal/shell/api"
	"github.com/onurmatik/StageOps/internal/shell/history"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only status API",
	Long: `Serve exposes the resolved project set and recorded deployment runs
over HTTP. It never touches the target server.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, projects, err := loadManifest(cfg.Manifest)
	if err != nil {
		return err
	}

	var store history.Store
	if cfg.History.DSN != "" {
		s, err := history.NewSQLiteStore(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer s.Close()
		store = s
	}

	handler := api.NewHandler(projects, store, logger)
	server := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("status API listening", "addr", cfg.API.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}
