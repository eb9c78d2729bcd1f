package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/quantlab/internal/core"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	userAgent      = "Mozilla/5.0 (compatible; quantlab/1.0)"
)

// validSymbol matches symbols like AAPL, BRK-B, 0700.HK, ^GSPC
var validSymbol = regexp.MustCompile(`^\^?[A-Za-z0-9-]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return core.InvalidParameter("symbol", symbol, "cannot be empty")
	}
	if len(symbol) > 20 {
		return core.InvalidParameter("symbol", symbol, "too long")
	}
	if !validSymbol.MatchString(symbol) {
		return core.InvalidParameter("symbol", symbol, "invalid format")
	}
	return nil
}

// Yahoo implements the Yahoo Finance chart collector
type Yahoo struct {
	client   *http.Client
	baseURL  string
	rawClose bool
	logger   *zap.Logger
}

// Option configures a Yahoo collector.
type Option func(*Yahoo)

// WithBaseURL points the collector at another chart endpoint.
func WithBaseURL(u string) Option {
	return func(y *Yahoo) {
		if u != "" {
			y.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(y *Yahoo) {
		if d > 0 {
			y.client.Timeout = d
		}
	}
}

// WithRawClose keeps the unadjusted close instead of the adjusted one.
func WithRawClose(raw bool) Option {
	return func(y *Yahoo) {
		y.rawClose = raw
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(y *Yahoo) {
		y.logger = l
	}
}

// New creates a new Yahoo collector
func New(opts ...Option) *Yahoo {
	y := &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

func (y *Yahoo) SupportedMarkets() []core.Market {
	return []core.Market{core.MarketUS, core.MarketHK, core.MarketEU}
}

// toYahooSymbol converts internal symbol format to Yahoo format
func (y *Yahoo) toYahooSymbol(symbol string) string {
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	return symbol
}

// FetchHistory fetches daily, weekly or monthly bars. Close is the
// split and dividend adjusted close when Yahoo supplies one, unless the
// collector was built WithRawClose.
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	yahooInterval, err := toYahooInterval(interval)
	if err != nil {
		return nil, err
	}
	if end.IsZero() {
		end = time.Now()
	}

	q := url.Values{}
	q.Set("interval", yahooInterval)
	q.Set("period1", fmt.Sprint(start.Unix()))
	q.Set("period2", fmt.Sprint(end.Unix()))
	q.Set("events", "div,split")
	reqURL := fmt.Sprintf("%s/%s?%s", y.baseURL, url.PathEscape(y.toYahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	y.logger.Debug("fetching history",
		zap.String("symbol", symbol),
		zap.String("interval", yahooInterval),
		zap.Time("start", start),
		zap.Time("end", end))

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("fetching history: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("symbol %s", symbol))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("decoding response: %w", err))
	}

	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}

	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no data for symbol: %s", symbol))
	}

	data := toBars(symbol, interval, result.Chart.Result[0], !y.rawClose)
	if len(data) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no bars for %s between %s and %s",
			symbol, start.Format(time.DateOnly), end.Format(time.DateOnly)))
	}
	return data, nil
}

func toBars(symbol, interval string, r chartResult, adjusted bool) []core.OHLCV {
	quotes := r.Indicators.Quote[0]
	var adj []*float64
	if adjusted && len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	data := make([]core.OHLCV, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closePrice := at(quotes.Close, i)
		if closePrice == nil {
			continue // Skip missing data
		}
		bar := core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Close:    *closePrice,
			Time:     time.Unix(ts, 0).UTC(),
		}
		if v := at(adj, i); v != nil {
			bar.Close = *v
		}
		if v := at(quotes.Open, i); v != nil {
			bar.Open = *v
		}
		if v := at(quotes.High, i); v != nil {
			bar.High = *v
		}
		if v := at(quotes.Low, i); v != nil {
			bar.Low = *v
		}
		if i < len(quotes.Volume) && quotes.Volume[i] != nil {
			bar.Volume = *quotes.Volume[i]
		}
		data = append(data, bar)
	}
	return data
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func toYahooInterval(interval string) (string, error) {
	switch interval {
	case "", "1d":
		return "1d", nil
	case "1wk", "1w":
		return "1wk", nil
	case "1mo":
		return "1mo", nil
	default:
		return "", core.InvalidParameter("interval", interval, "must be one of 1d, 1wk, 1mo")
	}
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

type indicators struct {
	Quote    []quoteIndicator    `json:"quote"`
	AdjClose []adjCloseIndicator `json:"adjclose"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type adjCloseIndicator struct {
	AdjClose []*float64 `json:"adjclose"`
}
