package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN not set in environment")
	ErrNoRecipients = errors.New("no telegram chat ids configured")
)

// Telegram allows 30 messages per second for bots.
const DefaultSendDelay = 50 * time.Millisecond

// Sender is the part of the bot API used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Stats counts the outcome of a broadcast.
type Stats struct {
	Sent   int
	Failed int
}

// Notifier sends run summaries to a fixed list of chats.
type Notifier struct {
	bot     Sender
	chatIDs []int64
	delay   time.Duration
	logger  zerolog.Logger
}

// New authorizes against the bot API with token.
func New(token string, chatIDs []int64) (*Notifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	n := NewWithSender(bot, chatIDs)
	n.logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
	return n, nil
}

// NewWithSender wraps an existing sender.
func NewWithSender(bot Sender, chatIDs []int64) *Notifier {
	return &Notifier{
		bot:     bot,
		chatIDs: chatIDs,
		delay:   DefaultSendDelay,
		logger:  log.With().Str("component", "notify").Logger(),
	}
}

// SetDelay changes the pause between two messages.
func (n *Notifier) SetDelay(d time.Duration) {
	n.delay = d
}

// Broadcast sends text to every chat. Per-chat failures are counted, not returned;
// the error is non-nil only for a missing recipient list or a cancelled context.
func (n *Notifier) Broadcast(ctx context.Context, text string) (Stats, error) {
	var stats Stats
	if len(n.chatIDs) == 0 {
		return stats, ErrNoRecipients
	}

	for i, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown

		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
			stats.Failed++
		} else {
			n.logger.Debug().Int64("chat_id", chatID).Int("n", i+1).Int("of", len(n.chatIDs)).Msg("Message sent")
			stats.Sent++
		}

		if i < len(n.chatIDs)-1 && n.delay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(n.delay):
			}
		}
	}

	n.logger.Info().Int("sent", stats.Sent).Int("failed", stats.Failed).Msg("Broadcast completed")
	return stats, nil
}

// NotifyResults broadcasts the summary of a backtest run.
func (n *Notifier) NotifyResults(ctx context.Context, results *model.BacktestResults) (Stats, error) {
	return n.Broadcast(ctx, FormatMessage(results))
}

// FormatMessage renders the latest regime, exposure and recent actions as Markdown.
func FormatMessage(results *model.BacktestResults) string {
	if results == nil {
		return "No backtest results available"
	}

	var b strings.Builder
	b.WriteString("*HY-IG Credit Spread Regime*\n")
	b.WriteString(fmt.Sprintf("As of %s\n\n", results.Metadata.DateRange.End.Format(time.DateOnly)))

	md := results.MonthlyData
	if n := len(md.Regime); n > 0 {
		b.WriteString(fmt.Sprintf("Regime: *%s*\n", md.Regime[n-1]))
		if v := md.Spread[n-1]; !model.IsMissing(v) {
			b.WriteString(fmt.Sprintf("Spread: %.2f%%\n", v))
		}
		if v := md.PositionSize[n-1]; !model.IsMissing(v) {
			b.WriteString(fmt.Sprintf("Equity exposure: %.0f%%\n", v*100))
		}
	}

	if perf := results.Performance; perf != nil {
		b.WriteString(fmt.Sprintf("\nStrategy: %.2f%%/yr, Sharpe %.2f, max DD %.2f%%\n",
			perf.Strategy.AnnualizedReturn, perf.Strategy.SharpeRatio, perf.Strategy.MaxDrawdown))
		b.WriteString(fmt.Sprintf("SPY: %.2f%%/yr, Sharpe %.2f, max DD %.2f%%\n",
			perf.Benchmark.AnnualizedReturn, perf.Benchmark.SharpeRatio, perf.Benchmark.MaxDrawdown))
	}

	var actions []string
	for _, r := range results.CurrentReview {
		if !r.HasAction || r.Action == nil {
			continue
		}
		line := fmt.Sprintf("• %s: %s", r.Date.Format("2006-01"), *r.Action)
		if r.PositionSize != nil {
			line += fmt.Sprintf(" to %.0f%%", *r.PositionSize*100)
		}
		actions = append(actions, line)
	}
	if len(actions) > 0 {
		b.WriteString("\nRecent actions:\n")
		b.WriteString(strings.Join(actions, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
