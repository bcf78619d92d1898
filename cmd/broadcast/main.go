package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Alias1177/CreditRegime/internal/config"
	"github.com/Alias1177/CreditRegime/internal/notify"
	"github.com/Alias1177/CreditRegime/internal/report"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	message := flag.String("message", "", "Send this text instead of the latest backtest summary")
	resultsPath := flag.String("results", "", "Backtest results JSON, defaults to <OUTPUT_DIR>/"+report.BacktestJSON)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads .env as well
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatIDs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize notifier")
	}

	text := *message
	if text == "" {
		path := *resultsPath
		if path == "" {
			path = filepath.Join(cfg.OutputDir, report.BacktestJSON)
		}
		results, err := report.LoadBacktest(path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load backtest results")
		}
		text = notify.FormatMessage(results)
	}

	log.Info().Int("chats", len(cfg.TelegramChatIDs)).Msg("Broadcasting")
	stats, err := notifier.Broadcast(ctx, text)
	if err != nil {
		log.Fatal().Err(err).Msg("Broadcast failed")
	}

	total := stats.Sent + stats.Failed
	log.Info().
		Int("total", total).
		Int("sent", stats.Sent).
		Int("failed", stats.Failed).
		Msg("BROADCAST COMPLETED")

	fmt.Printf("\nBroadcast completed!\n")
	fmt.Printf("Stats: %d sent, %d failed out of %d total chats\n", stats.Sent, stats.Failed, total)
}
