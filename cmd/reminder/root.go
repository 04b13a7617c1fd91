package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/cache"
	"github.com/notexe/task-reminder/internal/config"
	"github.com/notexe/task-reminder/internal/desktop"
	"github.com/notexe/task-reminder/internal/gateway"
	"github.com/notexe/task-reminder/internal/logging"
	"github.com/notexe/task-reminder/internal/notify"
	"github.com/notexe/task-reminder/internal/scheduler"
	"github.com/notexe/task-reminder/internal/state"
	"github.com/notexe/task-reminder/internal/telegram"
	"github.com/notexe/task-reminder/internal/ui"
)

type rootFlags struct {
	configPath string
	storeURL   string
	noColor    bool
	logLevel   string
}

// NewRootCmd constructs the root command; without a subcommand it starts the
// interactive session.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "reminder",
		Short:         "Task reminders in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, flags, false)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", config.GetDefaultConfigPath(), "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.storeURL, "store-url", "", "Store base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(newWatchCmd(flags))
	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newAddCmd(flags))
	rootCmd.AddCommand(newCompleteCmd(flags))
	rootCmd.AddCommand(newDeleteCmd(flags))
	rootCmd.AddCommand(newUpcomingCmd(flags))
	rootCmd.AddCommand(newStatsCmd(flags))
	rootCmd.AddCommand(newHistoryCmd(flags))
	rootCmd.AddCommand(newNotesCmd(flags))
	rootCmd.AddCommand(newNoteCmd(flags))
	rootCmd.AddCommand(newThemeCmd(flags))

	return rootCmd
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	if flags.storeURL != "" {
		cfg.Store.BaseURL = flags.storeURL
	}
	if flags.noColor {
		cfg.UI.ColoredOutput = false
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// client holds the pieces shared by the interactive session and the
// one-shot commands.
type client struct {
	cfg       *config.Config
	gw        *gateway.Client
	cache     *cache.Cache
	formatter *ui.Formatter
	presenter *ui.Presenter
	state     *state.Store
}

func newClient(cfg *config.Config, out io.Writer) *client {
	gw := gateway.New(cfg.Store.BaseURL,
		gateway.WithTimeout(cfg.StoreTimeout()),
		gateway.WithLogger(logging.Component("gateway")),
	)

	st := state.Open(cfg.State.File)
	saved, err := st.Load()
	if err != nil {
		log := logging.Component("state")
		log.Warn().Err(err).Msg("failed to load saved state, using defaults")
	}

	formatter := ui.NewFormatter(cfg.UI.ColoredOutput)
	return &client{
		cfg:       cfg,
		gw:        gw,
		cache:     cache.New(gw),
		formatter: formatter,
		presenter: ui.NewPresenter(out, formatter, saved.Theme, cfg.UI.WordWrap),
		state:     st,
	}
}

// newScheduler builds a scheduler whose banners print to out.
func (c *client) newScheduler(out io.Writer, presenter scheduler.Presenter, platform notify.Platform) (*scheduler.Scheduler, *notify.Bridge, *notify.Banners) {
	banners := notify.NewBanners(
		ui.NewBannerSink(out, c.formatter, true),
		notify.WithDurations(c.cfg.BannerDurations()),
	)
	bridge := notify.NewBridge(banners, platform, logging.Component("notify"))

	opts := []scheduler.Option{
		scheduler.WithInterval(c.cfg.SyncInterval()),
		scheduler.WithLogger(logging.Component("scheduler")),
	}
	if c.cfg.Alerts.SingleFire {
		opts = append(opts, scheduler.WithTracker(alert.NewTracker()))
	}

	return scheduler.New(c.gw, c.cache, presenter, bridge, opts...), bridge, banners
}

// newPlatform returns the configured notification service. A desktop
// backend without a session bus degrades to banners only. The returned
// closer is never nil.
func newPlatform(cfg *config.Config, log zerolog.Logger) (notify.Platform, func()) {
	switch cfg.Notify.Backend {
	case config.NotifyDesktop:
		n, err := desktop.Connect(cfg.Notify.AppName, log)
		if err != nil {
			log.Warn().Err(err).Msg("desktop notifications unavailable")
			return nil, func() {}
		}
		return n, func() { n.Close() }
	case config.NotifyTelegram:
		return telegram.NewSender(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID), func() {}
	default:
		return nil, func() {}
	}
}
