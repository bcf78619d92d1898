package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/CreditRegime/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const appName = "creditregime"

// options are the flags shared by every subcommand. Empty values fall back to the environment.
type options struct {
	logLevel     string
	strategyFile string
	dataDir      string
	outputDir    string
	start        string
	input        string
	noPlot       bool
	noMetrics    bool
	notify       bool
}

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	setupSignalHandling(cancel)

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	var cfg *config.Config

	root := &cobra.Command{
		Use:           appName,
		Short:         "HY-IG credit spread regime backtester",
		Long:          "Fetches high-yield and investment-grade spreads, classifies credit regimes and backtests a regime-scaled SPY allocation.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			opts.applyDefaults(cfg)
			setupLogging(opts.logLevel)
			printConfig(cfg, opts)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug|info|warn|error), defaults to LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.strategyFile, "strategy", "", "Strategy YAML file, defaults to STRATEGY_FILE")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Dataset directory, defaults to DATA_DIR")
	root.PersistentFlags().StringVar(&opts.outputDir, "output-dir", "", "Output directory, defaults to OUTPUT_DIR")

	cfgFn := func() *config.Config { return cfg }
	root.AddCommand(
		newFetchCommand(opts, cfgFn),
		newBacktestCommand(opts, cfgFn),
		newAnalyzeCommand(opts),
		newPlotCommand(opts),
		newNotifyCommand(opts, cfgFn),
		newRunCommand(opts, cfgFn),
	)
	return root
}

func (o *options) applyDefaults(cfg *config.Config) {
	if o.logLevel == "" {
		o.logLevel = cfg.LogLevel
	}
	if o.strategyFile == "" {
		o.strategyFile = cfg.StrategyFile
	}
	if o.dataDir == "" {
		o.dataDir = cfg.DataDir
	}
	if o.outputDir == "" {
		o.outputDir = cfg.OutputDir
	}
	if o.start == "" {
		o.start = cfg.StartDate
	}
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, cancelling...")
		cancel()
	}()
}

// setupLogging configures the logger. Terminals get the console writer, pipes get JSON.
func setupLogging(logLevel string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config, opts *options) {
	log.Debug().
		Str("BenchmarkSymbol", cfg.BenchmarkSymbol).
		Str("StartDate", opts.start).
		Str("DataDir", opts.dataDir).
		Str("OutputDir", opts.outputDir).
		Str("StrategyFile", opts.strategyFile).
		Int("RequestTimeout", cfg.RequestTimeout).
		Int("RequestsPerSec", cfg.RequestsPerSec).
		Int("FillLimit", cfg.FillLimit).
		Bool("FREDKey", cfg.FREDAPIKey != "").
		Int("TelegramChats", len(cfg.TelegramChatIDs)).
		Msg("Configuration loaded")
}
