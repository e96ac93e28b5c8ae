// Package cmd implements the consumo CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rangosemfila/consumo/internal/config"
	"github.com/rangosemfila/consumo/internal/report"
	"github.com/rangosemfila/consumo/internal/store"
	"github.com/rangosemfila/consumo/internal/view"
)

var (
	flagAPIURL    string
	flagTimeout   time.Duration
	flagID        string
	flagQuiet     bool
	flagVerbose   bool
	flagNoJournal bool
	flagExpand    bool
	flagOpen      []string
)

var rootCmd = &cobra.Command{
	Use:   "consumo [id|url]",
	Short: "Consumption report viewer",
	Long: "Fetch a client's consumption report from the RanGo API and show it grouped by date.\n" +
		"The identifier may be given bare or as the page link (…/consumption?id=<id>).",
	Args:          cobra.MaximumNArgs(1),
	RunE:          runShow,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Reporting API base URL (overrides config and CONSUMO_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoJournal, "no-journal", false, "Do not record fetches in the local journal")

	rootCmd.Flags().StringVar(&flagID, "id", "", "Client identifier (alternative to the positional argument)")
	rootCmd.Flags().BoolVarP(&flagExpand, "expand", "e", false, "Expand every date")
	rootCmd.Flags().StringSliceVar(&flagOpen, "open", nil, "Expand the given dates")
}

func runShow(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(zapcore.Lock(os.Stderr))
	defer func() { _ = log.Sync() }()

	journal := openJournal(cfg, log)
	if journal != nil {
		defer journal.Close()
	}

	id := resolveIdentifier(args)
	client := newClient(cfg, log, journalObservers(journal)...)

	if id != "" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  %s\n", view.LoadingText)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	v := view.Load(ctx, client, id, log)
	if flagExpand {
		v.SetAllExpanded(true)
	}
	for _, date := range flagOpen {
		if !v.Expanded(date) {
			v.ToggleDate(date)
		}
	}

	fmt.Print(renderScreen(v.Render()))
	return nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagNoJournal {
		cfg.Journal.Enabled = false
	}
	return cfg, nil
}

// resolveIdentifier takes --id first, then the positional argument.
func resolveIdentifier(args []string) string {
	raw := flagID
	if raw == "" && len(args) > 0 {
		raw = args[0]
	}
	return view.IdentifierFromURL(raw)
}

func newLogger(sink zapcore.WriteSyncer) *zap.Logger {
	level := zap.WarnLevel
	if flagVerbose {
		level = zap.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, level)
	return zap.New(core)
}

func newClient(cfg config.Config, log *zap.Logger, observers ...report.Observer) *report.Client {
	timeout := cfg.API.Timeout()
	if flagTimeout > 0 {
		timeout = flagTimeout
	}

	baseURL := config.GetBaseURL(cfg)
	if flagAPIURL != "" {
		baseURL = flagAPIURL
	}

	return report.NewClient(baseURL,
		report.WithTimeout(timeout),
		report.WithLogger(log),
		report.WithObserver(observers...),
	)
}

// openJournal opens the fetch journal, or returns nil when it is disabled
// or unavailable. A broken journal never blocks viewing a report.
func openJournal(cfg config.Config, log *zap.Logger) *store.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}

	j, err := store.Open(config.JournalPath(), log)
	if err != nil {
		log.Warn("journal unavailable", zap.Error(err))
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Journal unavailable, fetches will not be recorded\n")
		}
		return nil
	}

	if keep := cfg.Journal.Retention(); keep > 0 {
		if _, err := j.Prune(time.Now().Add(-keep)); err != nil {
			log.Warn("journal prune failed", zap.Error(err))
		}
	}
	return j
}

func journalObservers(j *store.Journal) []report.Observer {
	if j == nil {
		return nil
	}
	return []report.Observer{j.Observe}
}
