package collector

import (
	"context"
	"time"

	"github.com/newthinker/quantlab/internal/core"
)

// Collector fetches price history from one source.
type Collector interface {
	Name() string
	SupportedMarkets() []core.Market

	// FetchHistory returns bars in [start, end] at the given interval
	// ("1d", "1wk", "1mo"). A zero start means as far back as the source goes.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}
