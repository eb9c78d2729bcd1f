package backtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/strategy"
)

// HistoryProvider defines the interface for fetching historical OHLCV data
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}

// Recorder receives one call per evaluated backtest. *metrics.Registry
// satisfies it.
type Recorder interface {
	RecordBacktest(strategy, status string, points int, duration float64)
}

// Request selects the data a backtest runs on.
type Request struct {
	Symbol     string
	PairSymbol string // second leg, required by pair strategies
	Start      time.Time
	End        time.Time
	Interval   string // defaults to "1d"
}

// Validate checks the request before anything is fetched.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return core.InvalidParameter("symbol", r.Symbol, "is required")
	}
	if r.PairSymbol != "" && strings.EqualFold(r.PairSymbol, r.Symbol) {
		return core.InvalidParameter("pair_symbol", r.PairSymbol, "must differ from symbol")
	}
	if !r.Start.IsZero() && !r.End.IsZero() && !r.Start.Before(r.End) {
		return core.InvalidParameter("start", r.Start.Format(time.DateOnly), "must be before end")
	}
	return nil
}

// Backtester runs strategy backtests against historical data
type Backtester struct {
	provider       HistoryProvider
	logger         *zap.Logger
	recorder       Recorder
	periodsPerYear int
	newID          func() string
}

// Option configures a Backtester.
type Option func(*Backtester)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backtester) {
		b.logger = l
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(b *Backtester) {
		b.recorder = r
	}
}

// WithPeriodsPerYear sets the annualization factor (252 for daily bars).
func WithPeriodsPerYear(n int) Option {
	return func(b *Backtester) {
		if n > 0 {
			b.periodsPerYear = n
		}
	}
}

// New creates a new Backtester with the given history provider
func New(provider HistoryProvider, opts ...Option) *Backtester {
	b := &Backtester{
		provider:       provider,
		logger:         zap.NewNop(),
		periodsPerYear: DefaultPeriodsPerYear,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load fetches and validates the series a request names. With a pair symbol
// both legs are fetched concurrently and inner-joined on timestamps.
func (b *Backtester) Load(ctx context.Context, req Request) (strategy.AnalysisContext, error) {
	if err := req.Validate(); err != nil {
		return strategy.AnalysisContext{}, err
	}
	interval := req.Interval
	if interval == "" {
		interval = "1d"
	}

	var primary, secondary core.PriceSeries
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := b.fetch(gctx, req.Symbol, req.Start, req.End, interval)
		primary = s
		return err
	})
	if req.PairSymbol != "" {
		g.Go(func() error {
			s, err := b.fetch(gctx, req.PairSymbol, req.Start, req.End, interval)
			secondary = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return strategy.AnalysisContext{}, err
	}

	if req.PairSymbol == "" {
		return strategy.AnalysisContext{Primary: primary}, nil
	}

	a, c := core.AlignPair(primary, secondary)
	if a.Len() == 0 {
		return strategy.AnalysisContext{}, core.WrapError(core.ErrNoData,
			fmt.Errorf("%s and %s share no timestamps", req.Symbol, req.PairSymbol))
	}
	if dropped := primary.Len() + secondary.Len() - 2*a.Len(); dropped > 0 {
		b.logger.Debug("aligned pair",
			zap.String("symbol", req.Symbol),
			zap.String("pair_symbol", req.PairSymbol),
			zap.Int("points", a.Len()),
			zap.Int("dropped", dropped))
	}
	return strategy.AnalysisContext{Primary: a, Secondary: c}, nil
}

func (b *Backtester) fetch(ctx context.Context, symbol string, start, end time.Time, interval string) (core.PriceSeries, error) {
	bars, err := b.provider.FetchHistory(ctx, symbol, start, end, interval)
	if err != nil {
		return core.PriceSeries{}, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	series := core.SeriesFromOHLCV(symbol, bars)
	if err := series.Validate(); err != nil {
		return core.PriceSeries{}, err
	}
	return series, nil
}

// Run executes a backtest for the given strategy over the requested data.
func (b *Backtester) Run(ctx context.Context, strat strategy.Strategy, req Request) (*Result, error) {
	if strat.RequiredData().Pair && req.PairSymbol == "" {
		return nil, core.InvalidParameter("pair_symbol", "", strat.Name()+" needs a second symbol")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actx, err := b.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Evaluate(strat, actx)
}

// Compare runs several strategies over one fetch of the data. Strategies are
// evaluated concurrently and results come back in the order given.
func (b *Backtester) Compare(ctx context.Context, strats []strategy.Strategy, req Request) ([]*Result, error) {
	if len(strats) == 0 {
		return nil, core.InvalidParameter("strategies", 0, "at least one is required")
	}
	for _, s := range strats {
		if s.RequiredData().Pair && req.PairSymbol == "" {
			return nil, core.InvalidParameter("pair_symbol", "", s.Name()+" needs a second symbol")
		}
	}

	actx, err := b.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(strats))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range strats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := b.Evaluate(s, actx)
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name(), err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Evaluate runs the strategy over already loaded series. It does no I/O:
// the same inputs always give the same series and summary.
func (b *Backtester) Evaluate(strat strategy.Strategy, actx strategy.AnalysisContext) (*Result, error) {
	start := time.Now()
	required := strat.RequiredData()

	if err := actx.Primary.Validate(); err != nil {
		return nil, err
	}
	if required.Pair && actx.Secondary.Len() == 0 {
		return nil, core.InvalidParameter("pair_symbol", "", strat.Name()+" needs a second series")
	}

	out, err := strat.Analyze(actx)
	if err != nil {
		b.record(strat.Name(), "error", 0, start)
		return nil, err
	}

	n := actx.Primary.Len()
	if len(out.Exposure) != n || len(out.PeriodReturns) != n {
		b.record(strat.Name(), "error", n, start)
		return nil, core.WrapError(core.ErrStrategyFailed,
			fmt.Errorf("%s returned %d exposures and %d returns for %d points",
				strat.Name(), len(out.Exposure), len(out.PeriodReturns), n))
	}

	stratReturns, err := StrategyReturns(out.Exposure, out.PeriodReturns)
	if err != nil {
		return nil, err
	}

	times := actx.Primary.Times()
	prices := actx.Primary.Prices()

	result := &Result{
		ID:              b.newID(),
		Strategy:        strat.Name(),
		Symbol:          actx.Primary.Symbol,
		StartDate:       times[0],
		EndDate:         times[n-1],
		Times:           times,
		Prices:          prices,
		Exposure:        out.Exposure,
		PeriodReturns:   out.PeriodReturns,
		StrategyReturns: stratReturns,
		Equity:          EquityCurve(stratReturns),
		Indicators:      out.Indicators,
		Trades:          Trades(out.Exposure, stratReturns, prices, times),
	}
	if required.Pair {
		result.PairSymbol = actx.Secondary.Symbol
		result.PairPrices = actx.Secondary.Prices()
	}

	result.Summary = Summarize(result, b.periodsPerYear)
	if n < required.PriceHistory {
		// The strategy never saw enough history to decide anything.
		result.Summary = withoutPerformance(result.Summary)
		b.logger.Warn("not enough history for strategy",
			zap.String("strategy", strat.Name()),
			zap.String("symbol", result.Symbol),
			zap.Int("points", n),
			zap.Int("required", required.PriceHistory))
	}

	b.record(strat.Name(), string(result.Summary.Status), n, start)
	b.logger.Info("backtest complete",
		zap.String("id", result.ID),
		zap.String("strategy", result.Strategy),
		zap.String("symbol", result.Symbol),
		zap.Int("points", n),
		zap.Float64("total_return", result.Summary.TotalReturn),
		zap.Int("trades", result.Summary.TotalTrades),
		zap.Duration("took", time.Since(start)))

	return result, nil
}

func (b *Backtester) record(strategyName, status string, points int, start time.Time) {
	if b.recorder != nil {
		b.recorder.RecordBacktest(strategyName, status, points, time.Since(start).Seconds())
	}
}
