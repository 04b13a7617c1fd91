// Command reminder-store serves reminders, notes and history over HTTP from
// a SQLite database, and optionally relays due reminders to a push worker.
//
// Usage:
//
//	reminder-store                          # listen on server.listen
//	reminder-store --db ./reminders.db --listen :5000
//	reminder-store --push-url http://127.0.0.1:5050
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/notexe/task-reminder/internal/config"
	"github.com/notexe/task-reminder/internal/logging"
	"github.com/notexe/task-reminder/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("reminder store failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, listen, dbPath, pushURL string

	cmd := &cobra.Command{
		Use:           "reminder-store",
		Short:         "Serve the reminder store over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}
			if dbPath != "" {
				cfg.Server.DBPath = config.ExpandPath(dbPath)
			}
			if pushURL != "" {
				cfg.Server.PushURL = pushURL
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logging.Init(cfg.Log.Level, false)
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.GetDefaultConfigPath(), "Path to configuration file")
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides server.db_path)")
	cmd.Flags().StringVar(&pushURL, "push-url", "", "Push worker URL for due reminders (overrides server.push_url)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Component("store")

	if dir := filepath.Dir(cfg.Server.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	st, err := store.Open(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Server.PushURL != "" {
		relay := store.NewRelay(st, cfg.Server.PushURL,
			time.Duration(cfg.Server.RelayInterval)*time.Second, logging.Component("relay"))
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("relay stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           store.NewServer(st, logging.Component("http")).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Listen).Str("db", cfg.Server.DBPath).Msg("reminder store listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
