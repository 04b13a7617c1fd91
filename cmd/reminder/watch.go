package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/notexe/task-reminder/internal/logging"
	"github.com/notexe/task-reminder/internal/push"
	"github.com/notexe/task-reminder/internal/repl"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var optIn bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Interactive session: live reminder list, due alerts and commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, flags, optIn)
		},
	}
	cmd.Flags().BoolVar(&optIn, "notify", false, "Ask for platform notification permission on start")
	return cmd
}

func runWatch(cmd *cobra.Command, flags *rootFlags, optIn bool) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rl, err := repl.SetupReadline("> ", "")
	if err != nil {
		return err
	}

	logging.InitWriter(rl.Stderr(), cfg.Log.Level, true)
	log := logging.Component("watch")

	c := newClient(cfg, rl.Stdout())

	platform, closePlatform := newPlatform(cfg, logging.Component("platform"))
	defer closePlatform()

	sched, bridge, banners := c.newScheduler(rl.Stdout(), c.presenter, platform)
	defer banners.Close()

	session := repl.New(repl.Deps{
		Actions:     sched,
		Cache:       c.cache,
		Upcoming:    c.gw,
		Permissions: bridge,
		Themes:      c.state,
		Presenter:   c.presenter,
		Formatter:   c.formatter,
		StoreURL:    cfg.Store.BaseURL,
	}, rl)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sched.Run(ctx); err != nil {
			log.Error().Err(err).Msg("sync loop stopped")
		}
	}()

	if cfg.Push.Enabled {
		link, err := push.NewLink(cfg.Push.WorkerURL, session.Focus, push.DefaultLinkConfig(), logging.Component("push-link"))
		if err != nil {
			log.Warn().Err(err).Msg("push worker link disabled")
		} else {
			session.Link = link
			go link.Run(ctx)
		}
	}

	if cfg.Metrics.Listen != "" {
		go serveMetrics(ctx, cfg.Metrics.Listen, log)
	}

	if optIn {
		bridge.OptIn(ctx)
	}

	go func() {
		<-ctx.Done()
		session.Stop()
	}()

	err = session.Start(ctx)
	cancel()
	<-done
	return err
}

func serveMetrics(ctx context.Context, addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics endpoint failed")
	}
}
