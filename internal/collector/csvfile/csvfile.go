// Package csvfile reads price history from CSV exports on disk, one file per
// symbol, in the column layout Yahoo Finance downloads use.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/newthinker/quantlab/internal/core"
)

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"01/02/2006",
}

// Collector serves <dir>/<SYMBOL>.csv files.
type Collector struct {
	dir string
}

// New creates a collector rooted at dir.
func New(dir string) *Collector {
	return &Collector{dir: dir}
}

func (c *Collector) Name() string {
	return "csv"
}

func (c *Collector) SupportedMarkets() []core.Market {
	return []core.Market{core.MarketUS, core.MarketHK, core.MarketEU, core.MarketCNA}
}

// FetchHistory reads the symbol's file and keeps bars inside [start, end].
// Zero bounds are open. Interval is recorded on the bars but not resampled.
func (c *Collector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if symbol == "" || strings.ContainsAny(symbol, `/\`) || strings.Contains(symbol, "..") {
		return nil, core.InvalidParameter("symbol", symbol, "invalid file name")
	}

	path := filepath.Join(c.dir, symbol+".csv")
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("no file %s", path))
	}
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}
	defer f.Close()

	bars, err := Parse(f, symbol, interval)
	if err != nil {
		return nil, err
	}

	filtered := bars[:0]
	for _, b := range bars {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		filtered = append(filtered, b)
	}
	if len(filtered) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no rows for %s in range", symbol))
	}
	return filtered, nil
}

// Parse reads bars from CSV with a header row. Recognized columns are
// date, open, high, low, close, adj close and volume (case-insensitive);
// only date and a close column are required. Adj Close wins over Close.
// Rows with an empty or "null" close are skipped. Bars come back sorted by time.
func Parse(r io.Reader, symbol, interval string) ([]core.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidSeries, fmt.Errorf("reading header: %w", err))
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	dateCol, ok := firstColumn(cols, "date", "datetime", "timestamp")
	if !ok {
		return nil, core.WrapError(core.ErrInvalidSeries, fmt.Errorf("%s: no date column in %v", symbol, header))
	}
	closeCol, ok := firstColumn(cols, "adj close", "adj_close", "adjclose", "close")
	if !ok {
		return nil, core.WrapError(core.ErrInvalidSeries, fmt.Errorf("%s: no close column in %v", symbol, header))
	}

	var bars []core.OHLCV
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidSeries, fmt.Errorf("%s line %d: %w", symbol, line, err))
		}

		closeStr := field(rec, closeCol)
		if closeStr == "" || strings.EqualFold(closeStr, "null") {
			continue
		}

		ts, err := parseTime(field(rec, dateCol))
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidSeries, fmt.Errorf("%s line %d: %w", symbol, line, err))
		}
		closePrice, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidSeries, fmt.Errorf("%s line %d: close %q: %w", symbol, line, closeStr, err))
		}

		bar := core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Close:    closePrice.InexactFloat64(),
			Time:     ts,
		}
		bar.Open = optionalPrice(rec, cols, "open")
		bar.High = optionalPrice(rec, cols, "high")
		bar.Low = optionalPrice(rec, cols, "low")
		if i, ok := cols["volume"]; ok {
			if v, err := decimal.NewFromString(field(rec, i)); err == nil {
				bar.Volume = v.IntPart()
			}
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})
	return bars, nil
}

func firstColumn(cols map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func optionalPrice(rec []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok {
		return 0
	}
	d, err := decimal.NewFromString(field(rec, i))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
