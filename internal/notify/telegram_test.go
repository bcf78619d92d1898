package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	failOn map[int64]bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	if f.failOn[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func TestBroadcast(t *testing.T) {
	tests := []struct {
		name    string
		chatIDs []int64
		failOn  map[int64]bool
		want    Stats
		wantErr error
	}{
		{name: "all_delivered", chatIDs: []int64{1, 2, 3}, want: Stats{Sent: 3}},
		{name: "partial_failure", chatIDs: []int64{1, 2}, failOn: map[int64]bool{2: true}, want: Stats{Sent: 1, Failed: 1}},
		{name: "no_recipients", wantErr: ErrNoRecipients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{failOn: tt.failOn}
			n := NewWithSender(sender, tt.chatIDs)
			n.SetDelay(0)

			stats, err := n.Broadcast(context.Background(), "hello")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, stats)
			for _, m := range sender.sent {
				assert.Equal(t, "hello", m.Text)
				assert.Equal(t, tgbotapi.ModeMarkdown, m.ParseMode)
			}
		})
	}
}

func TestBroadcastStopsOnCancel(t *testing.T) {
	sender := &fakeSender{}
	n := NewWithSender(sender, []int64{1, 2, 3})
	n.SetDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := n.Broadcast(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stats.Sent)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(" ", []int64{1})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "No backtest results available", FormatMessage(nil))

	action := model.ActionDecrease
	size := 0.25
	results := &model.BacktestResults{
		Metadata: model.BacktestMetadata{
			DateRange: model.DateRange{End: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)},
		},
		Performance: &model.PerformanceReport{
			Strategy: model.PerformanceMetrics{AnnualizedReturn: 8.5, SharpeRatio: 0.61, MaxDrawdown: -21.3},
		},
		CurrentReview: []model.ReviewRecord{
			{Date: time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), HasAction: true, Action: &action, PositionSize: &size},
		},
		MonthlyData: model.MonthlyData{
			Regime:       []model.Regime{model.RegimeHighSpread},
			Spread:       model.Float64s{3.42},
			PositionSize: model.Float64s{0.25},
		},
	}

	msg := FormatMessage(results)
	assert.Contains(t, msg, "As of 2025-06-30")
	assert.Contains(t, msg, "Regime: *High Spread (Caution)*")
	assert.Contains(t, msg, "Spread: 3.42%")
	assert.Contains(t, msg, "Equity exposure: 25%")
	assert.Contains(t, msg, "Strategy: 8.50%/yr, Sharpe 0.61")
	assert.Contains(t, msg, "• 2025-06: Decrease Position to 25%")
	assert.NotContains(t, msg, "2025-05")
}
