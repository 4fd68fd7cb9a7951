package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/hoopstats/internal/config"
	"github.com/pable/hoopstats/internal/leaders"
	"github.com/pable/hoopstats/internal/logging"
	"github.com/pable/hoopstats/internal/metrics"
	"github.com/pable/hoopstats/internal/roster"
	"github.com/pable/hoopstats/internal/sheets"
)

var (
	cfgPath      string
	playersPath  string
	teamsPath    string
	artifactPath string
	logLevel     string

	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hoopstats",
	Short: "Amateur basketball league stats and leaderboards",
	Long: `Aggregate per-game box score sheets (CSV exports) into player averages,
totals and per-team ranked leaders, written to a single JSON artifact.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		_ = logger.Sync()
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "YAML config file (default $"+config.EnvFile+")")
	pf.StringVar(&playersPath, "players", "", "players listing (overrides config)")
	pf.StringVar(&teamsPath, "teams", "", "teams listing (overrides config)")
	pf.StringVar(&artifactPath, "artifact", "", "leaders artifact path (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(leadersCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(boxscoreCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dropCmd)
}

// setup resolves the configuration and installs the logger. Flags win over
// environment, environment over file, file over defaults.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if playersPath != "" {
		c.PlayersPath = playersPath
	}
	if teamsPath != "" {
		c.TeamsPath = teamsPath
	}
	if artifactPath != "" {
		c.ArtifactPath = artifactPath
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}
	lvl, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	cfg = c
	logger = logging.New(os.Stderr, c.LogFormat, lvl)
	logging.SetDefault(logger)
	return nil
}

func newSheetsClient(rec *metrics.Recorder) *sheets.Client {
	return sheets.NewClient(sheets.Options{
		Timeout:      cfg.FetchTimeout,
		Retries:      cfg.FetchRetries,
		Backoff:      cfg.FetchBackoff,
		MaxBodyBytes: cfg.FetchMaxBytes,
		Logger:       logger,
		Metrics:      rec,
	})
}

func newBuilder(client *sheets.Client, rec *metrics.Recorder) *leaders.Builder {
	return leaders.NewBuilder(client, leaders.BuilderOptions{
		Workers: cfg.FetchWorkers,
		Logger:  logger,
		Metrics: rec,
	})
}

func loadListing() (*roster.Listing, error) {
	l, err := roster.Load(cfg.PlayersPath, cfg.TeamsPath)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	return l, nil
}

// newReader opens the artifact with a live fallback. Without a readable
// listing the reader serves the artifact alone.
func newReader() *leaders.Reader {
	rec := metrics.New()
	listing, err := loadListing()
	if err != nil {
		logger.Warn("listing unavailable, live fallback disabled", "error", err)
		return leaders.NewReader(cfg.ArtifactPath, nil, nil, leaders.ReaderOptions{MaxAge: cfg.ArtifactMaxAge, Logger: logger})
	}
	return leaders.NewReader(cfg.ArtifactPath, listing, newBuilder(newSheetsClient(rec), rec), leaders.ReaderOptions{
		MaxAge:  cfg.ArtifactMaxAge,
		Logger:  logger,
		Metrics: rec,
	})
}
