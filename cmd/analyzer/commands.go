package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Alias1177/CreditRegime/internal/analysis/stats"
	"github.com/Alias1177/CreditRegime/internal/api/fred"
	"github.com/Alias1177/CreditRegime/internal/api/yahoo"
	"github.com/Alias1177/CreditRegime/internal/config"
	"github.com/Alias1177/CreditRegime/internal/dataset"
	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/Alias1177/CreditRegime/internal/notify"
	"github.com/Alias1177/CreditRegime/internal/report"
	"github.com/Alias1177/CreditRegime/internal/trading/backtest"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newFetchCommand(opts *options, cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download spreads, benchmark closes and the policy rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runFetch(cmd.Context(), cfg(), opts)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.start, "start", "", "First observation date (YYYY-MM-DD), defaults to START_DATE")
	return cmd
}

func newBacktestCommand(opts *options, cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the regime backtest over the monthly dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadMonthly(opts)
			if err != nil {
				return err
			}
			results, err := runBacktest(frame, opts)
			if err != nil {
				return err
			}
			if opts.notify {
				return runNotify(cmd.Context(), cfg(), results)
			}
			return nil
		},
	}
	addBacktestFlags(cmd, opts)
	return cmd
}

func newAnalyzeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run correlation, lead-lag, Granger and quartile statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := loadMonthly(opts)
			if err != nil {
				return err
			}
			return runAnalyze(frame, opts)
		},
	}
	cmd.Flags().StringVar(&opts.input, "input", "", "Monthly CSV, defaults to <data-dir>/"+dataset.MonthlyFile)
	return cmd
}

func newPlotCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plot",
		Short: "Render charts from the saved backtest results",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := report.LoadBacktest(filepath.Join(opts.outputDir, report.BacktestJSON))
			if err != nil {
				return err
			}
			return runPlot(results, opts)
		},
	}
}

func newNotifyCommand(opts *options, cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Send the saved backtest summary to the configured Telegram chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := report.LoadBacktest(filepath.Join(opts.outputDir, report.BacktestJSON))
			if err != nil {
				return err
			}
			return runNotify(cmd.Context(), cfg(), results)
		},
	}
}

func newRunCommand(opts *options, cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, analyze and backtest in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := runFetch(cmd.Context(), cfg(), opts)
			if err != nil {
				return err
			}
			if err := runAnalyze(bundle.Monthly, opts); err != nil {
				log.Warn().Err(err).Msg("Analysis failed, continuing with the backtest")
			}
			results, err := runBacktest(bundle.Monthly, opts)
			if err != nil {
				return err
			}
			if opts.notify {
				return runNotify(cmd.Context(), cfg(), results)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.start, "start", "", "First observation date (YYYY-MM-DD), defaults to START_DATE")
	addBacktestFlags(cmd, opts)
	return cmd
}

func addBacktestFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.input, "input", "", "Monthly CSV, defaults to <data-dir>/"+dataset.MonthlyFile)
	cmd.Flags().BoolVar(&opts.noPlot, "no-plot", false, "Skip chart rendering")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "Skip the metrics textfile")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Send the summary to Telegram")
}

// runFetch downloads the raw series, prepares every frequency and saves the dataset.
func runFetch(ctx context.Context, cfg *config.Config, opts *options) (*dataset.Bundle, error) {
	if err := cfg.RequireFREDKey(); err != nil {
		return nil, err
	}
	start, err := time.Parse(time.DateOnly, opts.start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", opts.start, err)
	}

	fredClient, err := fred.NewClient(fred.ClientOptions{
		APIKey:         cfg.FREDAPIKey,
		BaseURL:        cfg.FREDBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
	})
	if err != nil {
		return nil, err
	}
	yahooClient := yahoo.NewClient(yahoo.ClientOptions{
		BaseURL:        cfg.YahooBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
	})

	log.Info().Str("start", opts.start).Str("symbol", cfg.BenchmarkSymbol).Msg("Fetching data")
	fetcher := dataset.NewFetcher(fredClient, yahooClient, cfg.BenchmarkSymbol, cfg.FillLimit)
	inputs, err := fetcher.Fetch(ctx, start)
	if err != nil {
		return nil, err
	}
	bundle, err := fetcher.Prepare(inputs)
	if err != nil {
		return nil, err
	}

	if err := bundle.Save(opts.dataDir); err != nil {
		return nil, err
	}
	if err := report.SaveDataset(opts.dataDir, bundle, time.Now()); err != nil {
		return nil, err
	}

	fmt.Println(report.FormatDataset(bundle))
	log.Info().Str("dir", opts.dataDir).Msg("Data saved")
	return bundle, nil
}

func loadMonthly(opts *options) (*model.Frame, error) {
	path := opts.input
	if path == "" {
		path = filepath.Join(opts.dataDir, dataset.MonthlyFile)
	}
	frame, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("loading monthly data (run fetch first): %w", err)
	}
	log.Info().Str("path", path).Int("rows", frame.Len()).Msg("Loaded monthly data")
	return frame, nil
}

// runBacktest runs the engine, prints the summary and writes every output.
func runBacktest(frame *model.Frame, opts *options) (*model.BacktestResults, error) {
	strategy, err := config.LoadStrategy(opts.strategyFile)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Running backtest...")
	engine := backtest.NewEngine(strategy)
	results, err := engine.Run(frame)
	if err != nil {
		return nil, fmt.Errorf("backtest failed: %w", err)
	}
	fmt.Println(engine.FormatResults(results))

	if err := report.SaveBacktest(opts.outputDir, results); err != nil {
		return nil, err
	}
	if !opts.noMetrics {
		if _, err := report.ExportMetrics(opts.outputDir, results); err != nil {
			log.Warn().Err(err).Msg("Metrics export failed")
		}
	}
	if !opts.noPlot {
		if err := runPlot(results, opts); err != nil {
			log.Warn().Err(err).Msg("Chart rendering failed")
		}
	}

	log.Info().Str("dir", opts.outputDir).Str("run_id", results.Metadata.RunID).Msg("Results saved")
	return results, nil
}

func runAnalyze(frame *model.Frame, opts *options) error {
	log.Info().Msg("Running analysis...")
	summary, err := stats.Analyze(frame, time.Now())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	fmt.Println(report.FormatAnalysis(summary))
	return report.SaveAnalysis(opts.outputDir, summary)
}

func runPlot(results *model.BacktestResults, opts *options) error {
	written, err := report.PlotCharts(opts.outputDir, results.MonthlyData)
	if err != nil {
		return err
	}
	for _, path := range written {
		log.Info().Str("path", path).Msg("Chart saved")
	}
	return nil
}

func runNotify(ctx context.Context, cfg *config.Config, results *model.BacktestResults) error {
	notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatIDs)
	if err != nil {
		return err
	}
	delivery, err := notifier.NotifyResults(ctx, results)
	if err != nil {
		return err
	}
	if delivery.Sent == 0 && delivery.Failed > 0 {
		return errors.New("no notification delivered")
	}
	fmt.Printf("Notifications: %d sent, %d failed\n", delivery.Sent, delivery.Failed)
	return nil
}
