package core

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Market represents a trading market
type Market string

const (
	MarketUS  Market = "US"
	MarketHK  Market = "HK"
	MarketCNA Market = "CN_A"
	MarketEU  Market = "EU"
)

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"` // "1d", "1wk"
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Time     time.Time `json:"time"`
}

// Undefined marks a series entry that has no value yet (warm-up) or
// whose computation hit a zero denominator.
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether v is an undefined series entry.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Direction is a discrete exposure: short, flat or long.
type Direction int

const (
	Short Direction = -1
	Flat  Direction = 0
	Long  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// PricePoint is a single timestamped price.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries is an ordered price history for one asset.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// SeriesFromOHLCV builds a close-price series from bars. Bars are sorted by
// time; validation is left to Validate.
func SeriesFromOHLCV(symbol string, bars []OHLCV) PriceSeries {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = PricePoint{Time: b.Time, Price: b.Close}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return PriceSeries{Symbol: symbol, Points: points}
}

// Len returns the number of points.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Prices returns a copy of the price column.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Times returns a copy of the timestamp column.
func (s PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

// Validate checks ordering, uniqueness and price sanity.
func (s PriceSeries) Validate() error {
	if len(s.Points) == 0 {
		return WrapError(ErrNoData, fmt.Errorf("series %q is empty", s.Symbol))
	}
	for i, p := range s.Points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return WrapError(ErrInvalidSeries,
				fmt.Errorf("series %q: price %v at index %d", s.Symbol, p.Price, i))
		}
		if i > 0 && !p.Time.After(s.Points[i-1].Time) {
			return WrapError(ErrInvalidSeries,
				fmt.Errorf("series %q: timestamp %s at index %d is not after %s",
					s.Symbol, p.Time.Format(time.RFC3339), i, s.Points[i-1].Time.Format(time.RFC3339)))
		}
	}
	return nil
}

// AlignPair keeps only the timestamps present in both series, preserving order.
func AlignPair(a, b PriceSeries) (PriceSeries, PriceSeries) {
	byTime := make(map[int64]float64, len(b.Points))
	for _, p := range b.Points {
		byTime[p.Time.UnixNano()] = p.Price
	}

	outA := PriceSeries{Symbol: a.Symbol}
	outB := PriceSeries{Symbol: b.Symbol}
	for _, p := range a.Points {
		price, ok := byTime[p.Time.UnixNano()]
		if !ok {
			continue
		}
		outA.Points = append(outA.Points, p)
		outB.Points = append(outB.Points, PricePoint{Time: p.Time, Price: price})
	}
	return outA, outB
}
