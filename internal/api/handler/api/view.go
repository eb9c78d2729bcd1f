// internal/api/handler/api/view.go
package api

import (
	"math"
	"strconv"
	"time"

	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/signal"
)

// Series is a float series whose undefined entries encode as null.
type Series []float64

// MarshalJSON implements json.Marshaler.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+len(s)*10)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

// ResultView is the wire form of a backtest.Result.
type ResultView struct {
	ID              string            `json:"id"`
	Strategy        string            `json:"strategy"`
	Symbol          string            `json:"symbol"`
	PairSymbol      string            `json:"pair_symbol,omitempty"`
	Start           string            `json:"start"`
	End             string            `json:"end"`
	Times           []time.Time       `json:"times"`
	Prices          Series            `json:"prices"`
	PairPrices      Series            `json:"pair_prices,omitempty"`
	Exposure        []core.Direction  `json:"exposure"`
	PeriodReturns   Series            `json:"period_returns"`
	StrategyReturns Series            `json:"strategy_returns"`
	Equity          Series            `json:"equity"`
	Indicators      map[string]Series `json:"indicators,omitempty"`
	Changes         []int             `json:"changes"`
	Crossings       []int             `json:"crossings,omitempty"`
	Trades          []backtest.Trade  `json:"trades"`
	Summary         backtest.Summary  `json:"summary"`
}

// NewResultView converts r for encoding.
func NewResultView(r *backtest.Result) ResultView {
	v := ResultView{
		ID:              r.ID,
		Strategy:        r.Strategy,
		Symbol:          r.Symbol,
		PairSymbol:      r.PairSymbol,
		Start:           r.StartDate.Format(time.DateOnly),
		End:             r.EndDate.Format(time.DateOnly),
		Times:           r.Times,
		Prices:          r.Prices,
		PairPrices:      r.PairPrices,
		Exposure:        r.Exposure,
		PeriodReturns:   r.PeriodReturns,
		StrategyReturns: r.StrategyReturns,
		Equity:          r.Equity,
		Changes:         signal.Changes(r.Exposure),
		Trades:          r.Trades,
		Summary:         r.Summary,
	}
	if v.Changes == nil {
		v.Changes = []int{}
	}
	if v.Trades == nil {
		v.Trades = []backtest.Trade{}
	}
	if len(r.Indicators) > 0 {
		v.Indicators = make(map[string]Series, len(r.Indicators))
		for k, s := range r.Indicators {
			v.Indicators[k] = s
		}
	}
	// MACD results also mark where the line crosses its signal line.
	line, okLine := r.Indicators["macd"]
	sig, okSig := r.Indicators["macd_signal"]
	if okLine && okSig {
		v.Crossings = signal.Crossings(line, sig)
	}
	return v
}

// SummaryView is one row of a comparison.
type SummaryView struct {
	ID       string           `json:"id"`
	Strategy string           `json:"strategy"`
	Summary  backtest.Summary `json:"summary"`
	Equity   Series           `json:"equity"`
}
