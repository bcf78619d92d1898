package report

import (
	"time"

	"github.com/Alias1177/CreditRegime/internal/dataset"
	"github.com/Alias1177/CreditRegime/internal/model"
)

// DatasetDocument is the JSON view of a prepared dataset.
type DatasetDocument struct {
	Metadata  DatasetMetadata    `json:"metadata"`
	Daily     FrameColumns       `json:"daily"`
	Monthly   FrameColumns       `json:"monthly"`
	Quarterly FrameColumns       `json:"quarterly"`
	Stats     model.SpreadStats  `json:"stats"`
	Coverage  map[string]float64 `json:"coverage"`
}

// DatasetMetadata describes when and over which dates the dataset was built.
type DatasetMetadata struct {
	Version      string          `json:"version"`
	GeneratedAt  time.Time       `json:"generated_at"`
	DateRange    model.DateRange `json:"date_range"`
	TotalRecords int             `json:"total_records"`
}

// FrameColumns is the column-oriented view of one frame. Absent columns are all null.
type FrameColumns struct {
	Dates      []string       `json:"dates"`
	HYOAS      model.Float64s `json:"hy_oas"`
	IGOAS      model.Float64s `json:"ig_oas"`
	Spread     model.Float64s `json:"hy_ig_spread"`
	Benchmark  model.Float64s `json:"spy"`
	Returns    model.Float64s `json:"spy_returns,omitempty"`
	PolicyRate model.Float64s `json:"fedfunds"`
}

// NewDatasetDocument assembles the document of bundle.
func NewDatasetDocument(bundle *dataset.Bundle, now time.Time) DatasetDocument {
	doc := DatasetDocument{
		Metadata: DatasetMetadata{
			Version:      "1.0",
			GeneratedAt:  now,
			TotalRecords: bundle.Daily.Len(),
		},
		Daily:     frameColumns(bundle.Daily),
		Monthly:   frameColumns(bundle.Monthly),
		Quarterly: frameColumns(bundle.Quarterly),
		Stats:     bundle.Stats,
		Coverage:  dataset.Coverage(bundle.Daily),
	}
	if n := bundle.Daily.Len(); n > 0 {
		doc.Metadata.DateRange = model.DateRange{Start: bundle.Daily.Times[0], End: bundle.Daily.Times[n-1]}
	}
	return doc
}

func frameColumns(f *model.Frame) FrameColumns {
	n := f.Len()
	or := func(c model.Float64s) model.Float64s {
		if c == nil {
			return model.NewMissing(n)
		}
		return c
	}
	cols := FrameColumns{
		Dates:      make([]string, n),
		HYOAS:      or(f.HYOAS),
		IGOAS:      or(f.IGOAS),
		Spread:     or(f.Spread),
		Benchmark:  or(f.BenchmarkPrice),
		Returns:    f.BenchmarkReturn,
		PolicyRate: or(f.PolicyRate),
	}
	for i, t := range f.Times {
		cols.Dates[i] = t.Format(dateLayout)
	}
	return cols
}
