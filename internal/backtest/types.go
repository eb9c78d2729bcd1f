package backtest

import (
	"time"

	"github.com/newthinker/quantlab/internal/core"
)

// Result holds the complete backtest output, every series aligned with Times.
type Result struct {
	ID         string
	Strategy   string
	Symbol     string
	PairSymbol string // empty for single-asset strategies
	StartDate  time.Time
	EndDate    time.Time

	Times           []time.Time
	Prices          []float64
	PairPrices      []float64        // second leg, aligned with Prices
	Exposure        []core.Direction // signal or position decided at each bar
	PeriodReturns   []float64        // asset return, or spread return for pairs
	StrategyReturns []float64
	Equity          []float64
	Indicators      map[string][]float64

	Trades  []Trade
	Summary Summary
}

// Trade represents one holding period of constant non-flat exposure.
type Trade struct {
	Direction  core.Direction `json:"direction"`
	EntryIndex int            `json:"entry_index"`
	ExitIndex  int            `json:"exit_index"`
	EntryTime  time.Time      `json:"entry_time"`
	ExitTime   time.Time      `json:"exit_time"`
	EntryPrice float64        `json:"entry_price"` // primary leg for pairs
	ExitPrice  float64        `json:"exit_price"`
	Return     float64        `json:"return"` // compounded strategy return over the holding
	Open       bool           `json:"open"`   // still held at the last bar
}

// Status tells whether a summary could be computed.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

// Summary holds performance statistics. Scalars are fractions (0.05 = 5%)
// and are zero, never NaN, when Status is StatusInsufficientData.
type Summary struct {
	Status               Status  `json:"status"`
	Points               int     `json:"points"`
	TotalReturn          float64 `json:"total_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	SharpeRatio          float64 `json:"sharpe_ratio"` // annualized, zero risk-free rate
	MaxDrawdown          float64 `json:"max_drawdown"` // largest peak-to-trough decline
	CurrentState         string  `json:"current_state"`
	LastPrice            float64 `json:"last_price"`
	DailyChange          float64 `json:"daily_change"`
	TotalTrades          int     `json:"total_trades"`
	WinningTrades        int     `json:"winning_trades"`
	WinRate              float64 `json:"win_rate"` // share of closed trades with positive return
}

// IsWin returns true if the trade was profitable
func (t Trade) IsWin() bool {
	return t.Return > 0
}

// IsClosed returns true if the trade has an exit
func (t Trade) IsClosed() bool {
	return !t.Open
}
