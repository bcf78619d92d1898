package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Alias1177/CreditRegime/internal/api/fred"
	"github.com/Alias1177/CreditRegime/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SeriesSource fetches economic series by identifier.
type SeriesSource interface {
	GetSeries(ctx context.Context, seriesID string, start time.Time) (model.Series, error)
}

// PriceSource fetches daily closing prices.
type PriceSource interface {
	GetDailyCloses(ctx context.Context, symbol string, start time.Time) (model.Series, error)
}

// Bundle is the prepared dataset at every frequency.
type Bundle struct {
	Daily     *model.Frame
	Monthly   *model.Frame
	Quarterly *model.Frame
	Stats     model.SpreadStats
}

// Fetcher downloads the raw series and prepares the dataset.
type Fetcher struct {
	series    SeriesSource
	prices    PriceSource
	symbol    string
	fillLimit int
	logger    zerolog.Logger
}

// NewFetcher creates a fetcher for the given benchmark symbol.
func NewFetcher(series SeriesSource, prices PriceSource, symbol string, fillLimit int) *Fetcher {
	if fillLimit <= 0 {
		fillLimit = DefaultFillLimit
	}
	return &Fetcher{
		series:    series,
		prices:    prices,
		symbol:    symbol,
		fillLimit: fillLimit,
		logger:    log.With().Str("component", "dataset").Logger(),
	}
}

// Fetch downloads both option-adjusted spreads, the benchmark closes and the policy rate.
// A policy rate failure is logged and the rate column left out.
func (f *Fetcher) Fetch(ctx context.Context, start time.Time) (Inputs, error) {
	var in Inputs
	var err error

	if in.HighYield, err = f.series.GetSeries(ctx, fred.SeriesHighYieldOAS, start); err != nil {
		return Inputs{}, fmt.Errorf("fetching high yield OAS: %w", err)
	}
	if in.InvGrade, err = f.series.GetSeries(ctx, fred.SeriesInvGradeOAS, start); err != nil {
		return Inputs{}, fmt.Errorf("fetching investment grade OAS: %w", err)
	}
	if in.Benchmark, err = f.prices.GetDailyCloses(ctx, f.symbol, start); err != nil {
		return Inputs{}, fmt.Errorf("fetching %s closes: %w", f.symbol, err)
	}

	rate, err := f.series.GetSeries(ctx, fred.SeriesFedFunds, start)
	if err != nil {
		if ctx.Err() != nil {
			return Inputs{}, ctx.Err()
		}
		f.logger.Warn().Err(err).Msg("Could not fetch policy rate, continuing without it")
	} else {
		in.PolicyRate = &rate
	}

	f.logger.Info().
		Int("hy_oas", in.HighYield.Len()).
		Int("ig_oas", in.InvGrade.Len()).
		Int("benchmark", in.Benchmark.Len()).
		Bool("policy_rate", in.PolicyRate != nil).
		Msg("Fetched raw series")
	return in, nil
}

// Prepare builds the daily, monthly and quarterly frames from raw inputs.
func (f *Fetcher) Prepare(in Inputs) (*Bundle, error) {
	return Prepare(in, f.fillLimit)
}

// Prepare builds the daily, monthly and quarterly frames from raw inputs.
func Prepare(in Inputs, fillLimit int) (*Bundle, error) {
	daily, err := BuildDaily(in, fillLimit)
	if err != nil {
		return nil, fmt.Errorf("building daily frame: %w", err)
	}
	monthly, err := Resample(daily, Monthly)
	if err != nil {
		return nil, fmt.Errorf("resampling monthly: %w", err)
	}
	quarterly, err := Resample(daily, Quarterly)
	if err != nil {
		return nil, fmt.Errorf("resampling quarterly: %w", err)
	}
	return &Bundle{
		Daily:     daily,
		Monthly:   monthly,
		Quarterly: quarterly,
		Stats:     SpreadStats(daily),
	}, nil
}

// File names of a saved bundle.
const (
	DailyFile     = "hyig_spy_daily.csv"
	MonthlyFile   = "hyig_spy_monthly.csv"
	QuarterlyFile = "hyig_spy_quarterly.csv"
)

// Save writes the three frames as CSV files into dir.
func (b *Bundle) Save(dir string) error {
	for name, frame := range map[string]*model.Frame{
		DailyFile:     b.Daily,
		MonthlyFile:   b.Monthly,
		QuarterlyFile: b.Quarterly,
	} {
		if err := SaveCSV(filepath.Join(dir, name), frame); err != nil {
			return err
		}
	}
	return nil
}
