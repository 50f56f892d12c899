package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// loadBars reads a bar series from a CSV file with a header row. Required
// columns: date, open, high, low, close, volume. Optional columns:
// volatility, volume_ratio, liquidity.
func loadBars(path string) ([]types.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataReadFailed, "failed to open data file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataReadFailed, "failed to read CSV header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := columns[required]; !ok {
			return nil, errors.Newf(errors.ErrCodeDataReadFailed, "missing required column %q", required)
		}
	}

	var bars []types.Bar

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataReadFailed, "failed to read CSV record", err)
		}

		date, err := parseDate(record[columns["date"]])
		if err != nil {
			return nil, err
		}

		bar := types.Bar{Date: date}

		if bar.Open, err = parseFloat(record[columns["open"]]); err != nil {
			return nil, err
		}

		if bar.High, err = parseFloat(record[columns["high"]]); err != nil {
			return nil, err
		}

		if bar.Low, err = parseFloat(record[columns["low"]]); err != nil {
			return nil, err
		}

		if bar.Close, err = parseFloat(record[columns["close"]]); err != nil {
			return nil, err
		}

		if bar.Volume, err = parseFloat(record[columns["volume"]]); err != nil {
			return nil, err
		}

		if bar.Volatility, err = parseOptionalFloat(record, columns, "volatility"); err != nil {
			return nil, err
		}

		if bar.VolumeRatio, err = parseOptionalFloat(record, columns, "volume_ratio"); err != nil {
			return nil, err
		}

		if bar.Liquidity, err = parseOptionalFloat(record, columns, "liquidity"); err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeMissingDate, "unparseable date %q", value)
}

func parseFloat(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeDataReadFailed, err, "unparseable number %q", value)
	}

	return parsed, nil
}

func parseOptionalFloat(record []string, columns map[string]int, name string) (optional.Option[float64], error) {
	index, ok := columns[name]
	if !ok || record[index] == "" {
		return optional.None[float64](), nil
	}

	parsed, err := parseFloat(record[index])
	if err != nil {
		return optional.None[float64](), err
	}

	return optional.Some(parsed), nil
}
