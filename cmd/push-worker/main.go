// Command push-worker receives push payloads, shows them as desktop
// notifications and routes clicks to a connected reminder window or the
// browser. It runs independently of any client session.
//
// Usage:
//
//	push-worker                      # listen on push.listen from config
//	push-worker --listen :5050
//	push-worker --headless           # log notifications instead of showing them
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/notexe/task-reminder/internal/config"
	"github.com/notexe/task-reminder/internal/desktop"
	"github.com/notexe/task-reminder/internal/logging"
	"github.com/notexe/task-reminder/internal/push"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("push worker failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, listen string
	var headless bool

	cmd := &cobra.Command{
		Use:           "push-worker",
		Short:         "Show pushed reminders as notifications and route clicks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			if listen != "" {
				cfg.Push.Listen = listen
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logging.Init(cfg.Log.Level, false)
			return run(cmd.Context(), cfg, headless)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.GetDefaultConfigPath(), "Path to configuration file")
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides push.listen)")
	cmd.Flags().BoolVar(&headless, "headless", false, "Log notifications instead of using the desktop notification service")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, headless bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Component("push-worker")

	appURL, err := url.Parse(cfg.Push.AppURL)
	if err != nil {
		return fmt.Errorf("invalid push.app_url: %w", err)
	}

	hub := push.NewHub(logging.Component("hub"))

	var display push.Displayer = push.LogDisplay{Log: logger}
	var notifier *desktop.Notifier
	if !headless {
		notifier, err = desktop.Connect(cfg.Notify.AppName, logging.Component("desktop"))
		if err != nil {
			logger.Warn().Err(err).Msg("desktop notifications unavailable, logging instead")
		} else {
			defer notifier.Close()
			display = notifier
		}
	}

	handler := push.NewHandler(display, hub, push.BrowserOpener{}, appURL, logging.Component("handler"))

	if notifier != nil {
		clicks, err := notifier.Clicks(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("notification clicks will not be handled")
		} else {
			go routeClicks(ctx, clicks, handler, logger)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Push.Listen,
		Handler:           push.NewRouter(handler, hub, logging.Component("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Push.Listen).Bool("headless", notifier == nil).Msg("push worker listening")
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

func routeClicks(ctx context.Context, clicks <-chan string, h *push.Handler, log zerolog.Logger) {
	for id := range clicks {
		action, err := h.HandleDesktopClick(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("notification_id", id).Msg("click not handled")
			continue
		}
		log.Info().Str("notification_id", id).Str("action", string(action)).Msg("click handled")
	}
}
