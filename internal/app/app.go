// Package app wires configuration into the components shared by the CLI and
// the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/collector"
	"github.com/newthinker/quantlab/internal/collector/csvfile"
	"github.com/newthinker/quantlab/internal/collector/yahoo"
	"github.com/newthinker/quantlab/internal/config"
	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/metrics"
	"github.com/newthinker/quantlab/internal/storage/pricecache"
	"github.com/newthinker/quantlab/internal/strategy"
	"github.com/newthinker/quantlab/internal/strategy/builtin"
)

// App is the main application orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *metrics.Registry
	collectors *collector.Registry
	strategies *strategy.Engine
	cache      *pricecache.Cache
	backtester *backtest.Backtester
}

type options struct {
	collectors []collector.Collector
	backend    pricecache.Backend
}

// Option customizes New.
type Option func(*options)

// WithCollector registers c after the configured collectors, replacing any
// with the same name.
func WithCollector(c collector.Collector) Option {
	return func(o *options) {
		o.collectors = append(o.collectors, c)
	}
}

// WithCacheBackend overrides the configured cache backend.
func WithCacheBackend(b pricecache.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// New validates cfg and builds every component.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics.NewRegistry(),
		collectors: collector.NewRegistry(),
		strategies: strategy.NewEngine(logger),
	}

	a.collectors.Register(yahoo.New(
		yahoo.WithBaseURL(cfg.Collector.Yahoo.BaseURL),
		yahoo.WithTimeout(cfg.Collector.Yahoo.Timeout),
		yahoo.WithRawClose(cfg.Collector.Yahoo.RawClose),
		yahoo.WithLogger(logger.Named("yahoo")),
	))
	if cfg.Collector.CSV.Dir != "" {
		a.collectors.Register(csvfile.New(cfg.Collector.CSV.Dir))
	}
	for _, c := range o.collectors {
		a.collectors.Register(c)
	}

	source, err := a.collectors.MustGet(cfg.Collector.Default)
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil && cfg.Storage.Cache.Enabled {
		if backend, err = newBackend(cfg.Storage.Cache); err != nil {
			return nil, err
		}
	}

	a.cache = pricecache.New(source, backend,
		pricecache.WithTTL(cfg.Storage.Cache.TTL),
		pricecache.WithLogger(logger.Named("cache")),
		pricecache.WithRecorder(a.metrics))

	a.backtester = backtest.New(a.cache,
		backtest.WithLogger(logger.Named("backtest")),
		backtest.WithRecorder(a.metrics),
		backtest.WithPeriodsPerYear(cfg.Backtest.PeriodsPerYear))

	if err := builtin.Register(a.strategies, cfg.Backtest); err != nil {
		return nil, err
	}

	logger.Debug("app ready",
		zap.String("collector", source.Name()),
		zap.Bool("cache", backend != nil),
		zap.Strings("strategies", a.strategies.Names()))

	return a, nil
}

func newBackend(cfg config.CacheConfig) (pricecache.Backend, error) {
	switch cfg.Type {
	case "localfs":
		return pricecache.NewLocalFS(cfg.Path)
	case "s3":
		return pricecache.NewS3(pricecache.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	}
	return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown cache type %q", cfg.Type))
}

// Config returns the validated configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Metrics returns the metrics registry.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Strategies returns the strategy engine.
func (a *App) Strategies() *strategy.Engine { return a.strategies }

// Backtester returns the backtester reading through the price cache.
func (a *App) Backtester() *backtest.Backtester { return a.backtester }

// PurgeCache drops the cached history of the active source.
func (a *App) PurgeCache(ctx context.Context) (int, error) {
	return a.cache.Purge(ctx, a.cache.Name())
}

// Exploration describes one symbol's price history without any strategy.
type Exploration struct {
	Symbol               string
	Points               int
	Start                time.Time
	End                  time.Time
	LastPrice            float64
	DailyChange          float64 // last close minus the previous close
	TotalReturn          float64
	AnnualizedVolatility float64
}

// Explore loads req.Symbol and summarizes its price history.
func (a *App) Explore(ctx context.Context, req backtest.Request) (*Exploration, error) {
	req.PairSymbol = ""
	actx, err := a.backtester.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	prices := actx.Primary.Prices()
	n := len(prices)
	if n < 2 {
		return nil, core.InsufficientData("explore "+req.Symbol, n, 2)
	}

	vol, err := backtest.AnnualizedVolatility(indicator.Returns(prices), a.cfg.Backtest.PeriodsPerYear)
	if err != nil && !errors.Is(err, core.ErrInsufficientData) {
		return nil, err
	}

	times := actx.Primary.Times()
	return &Exploration{
		Symbol:               actx.Primary.Symbol,
		Points:               n,
		Start:                times[0],
		End:                  times[n-1],
		LastPrice:            prices[n-1],
		DailyChange:          prices[n-1] - prices[n-2],
		TotalReturn:          prices[n-1]/prices[0] - 1,
		AnnualizedVolatility: vol,
	}, nil
}
