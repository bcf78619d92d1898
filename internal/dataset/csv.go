package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
)

const columnDate = "Date"

var dateLayouts = []string{time.DateOnly, time.DateTime, time.RFC3339}

// ErrNoDateColumn is returned when a CSV has no leading date column.
var ErrNoDateColumn = errors.New("csv has no date column")

// columnOrder fixes the header layout of written frames.
var columnOrder = []string{
	model.ColumnHYOAS,
	model.ColumnIGOAS,
	model.ColumnSpread,
	model.ColumnBenchmark,
	model.ColumnBenchmarkReturn,
	model.ColumnPolicyRate,
}

// WriteCSV writes the present columns of f. Missing values are empty cells.
func WriteCSV(w io.Writer, f *model.Frame) error {
	cols := f.Columns()
	header := []string{columnDate}
	for _, name := range columnOrder {
		if _, ok := cols[name]; ok {
			header = append(header, name)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i, t := range f.Times {
		record[0] = t.Format(time.DateOnly)
		for j, name := range header[1:] {
			record[j+1] = formatValue(cols[name][i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a frame written by WriteCSV. Unknown columns are ignored; the first
// column holds the date whatever its header.
func ReadCSV(r io.Reader) (*model.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoDateColumn
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) == 0 {
		return nil, ErrNoDateColumn
	}

	f := &model.Frame{}
	targets := make([]*model.Float64s, len(header))
	for j, name := range header {
		if j == 0 {
			continue
		}
		targets[j] = f.Column(strings.TrimSpace(name))
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		f.Times = append(f.Times, t)
		for j, target := range targets {
			if target == nil {
				continue
			}
			v := model.Missing()
			if j < len(rec) {
				if v, err = parseValue(rec[j]); err != nil {
					return nil, fmt.Errorf("line %d column %s: %w", line, header[j], err)
				}
			}
			*target = append(*target, v)
		}
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// SaveCSV writes f to path, creating parent directories.
func SaveCSV(path string, f *model.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

// LoadCSV reads a frame from path.
func LoadCSV(path string) (*model.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	f, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", ".":
		return model.Missing(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatValue(v float64) string {
	if model.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
