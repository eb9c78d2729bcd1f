// Package builtin registers the strategies shipped with quantlab.
package builtin

import (
	"fmt"

	"github.com/newthinker/quantlab/internal/config"
	"github.com/newthinker/quantlab/internal/strategy"
	"github.com/newthinker/quantlab/internal/strategy/bollinger"
	"github.com/newthinker/quantlab/internal/strategy/buy_hold"
	"github.com/newthinker/quantlab/internal/strategy/ma_crossover"
	"github.com/newthinker/quantlab/internal/strategy/macd_cross"
	"github.com/newthinker/quantlab/internal/strategy/pairs"
	"github.com/newthinker/quantlab/internal/strategy/rsi_extreme"
)

// Strategies builds every built-in strategy from cfg.
func Strategies(cfg config.BacktestConfig) ([]strategy.Strategy, error) {
	sma, err := ma_crossover.New(cfg.SMAFast, cfg.SMASlow)
	if err != nil {
		return nil, fmt.Errorf("sma_crossover: %w", err)
	}
	rsi, err := rsi_extreme.New(cfg.RSIPeriod, cfg.RSIOversold, cfg.RSIOverbought)
	if err != nil {
		return nil, fmt.Errorf("rsi_extreme: %w", err)
	}
	macd, err := macd_cross.New(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("macd_cross: %w", err)
	}
	bb, err := bollinger.New(cfg.BBWindow, cfg.BBNumStdDev)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	pr, err := pairs.New(cfg.ZWindow, cfg.EntryThreshold)
	if err != nil {
		return nil, fmt.Errorf("pairs: %w", err)
	}

	return []strategy.Strategy{buy_hold.New(), sma, rsi, macd, bb, pr}, nil
}

// Register adds every built-in strategy to engine.
func Register(engine *strategy.Engine, cfg config.BacktestConfig) error {
	all, err := Strategies(cfg)
	if err != nil {
		return err
	}
	for _, s := range all {
		engine.Register(s)
	}
	return nil
}

// SignalStrategies are the single-asset strategies compared by a showdown.
var SignalStrategies = []string{"sma_crossover", "rsi_extreme", "macd_cross", "bollinger"}
