// internal/api/handler/api/backtest.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/quantlab/internal/api/response"
	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/strategy"
)

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 30 * time.Second

const maxBodyBytes = 1 << 20

// BacktestRequest is the request body for running a backtest.
type BacktestRequest struct {
	Symbol     string `json:"symbol"`
	PairSymbol string `json:"pair_symbol,omitempty"`
	Strategy   string `json:"strategy"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Interval   string `json:"interval,omitempty"`
}

// CompareRequest is the request body for comparing strategies on one symbol.
// An empty Strategies list compares every single-asset strategy.
type CompareRequest struct {
	Symbol     string   `json:"symbol"`
	Strategies []string `json:"strategies,omitempty"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	Interval   string   `json:"interval,omitempty"`
}

// BacktestHandler handles backtest API requests. Backtests run synchronously
// within the request, bounded by timeout.
type BacktestHandler struct {
	backtester *backtest.Backtester
	strategies *strategy.Engine
	timeout    time.Duration
	logger     *zap.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(
	backtester *backtest.Backtester,
	strategies *strategy.Engine,
	timeout time.Duration,
	logger *zap.Logger,
) *BacktestHandler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktestHandler{
		backtester: backtester,
		strategies: strategies,
		timeout:    timeout,
		logger:     logger,
	}
}

// Run executes one strategy and returns the full result.
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := decode(w, r, &req); err != nil {
		response.Fail(w, err)
		return
	}
	if req.Strategy == "" {
		response.Fail(w, core.InvalidParameter("strategy", "", "is required"))
		return
	}

	btReq, err := toRequest(req.Symbol, req.PairSymbol, req.Start, req.End, req.Interval)
	if err != nil {
		response.Fail(w, err)
		return
	}
	strats, err := h.strategies.Lookup(req.Strategy)
	if err != nil {
		response.Fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.backtester.Run(ctx, strats[0], btReq)
	if err != nil {
		h.logger.Warn("backtest failed",
			zap.String("strategy", req.Strategy),
			zap.String("symbol", req.Symbol),
			zap.Error(err))
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, NewResultView(result))
}

// Compare runs several strategies over one fetch of the data.
func (h *BacktestHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decode(w, r, &req); err != nil {
		response.Fail(w, err)
		return
	}

	btReq, err := toRequest(req.Symbol, "", req.Start, req.End, req.Interval)
	if err != nil {
		response.Fail(w, err)
		return
	}

	var strats []strategy.Strategy
	if len(req.Strategies) == 0 {
		for _, s := range h.strategies.GetAll() {
			if !s.RequiredData().Pair {
				strats = append(strats, s)
			}
		}
	} else if strats, err = h.strategies.Lookup(req.Strategies...); err != nil {
		response.Fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results, err := h.backtester.Compare(ctx, strats, btReq)
	if err != nil {
		h.logger.Warn("comparison failed", zap.String("symbol", req.Symbol), zap.Error(err))
		response.Fail(w, err)
		return
	}

	rows := make([]SummaryView, len(results))
	for i, res := range results {
		rows[i] = SummaryView{ID: res.ID, Strategy: res.Strategy, Summary: res.Summary, Equity: res.Equity}
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":  req.Symbol,
		"results": rows,
	})
}

// StrategyInfo describes a registered strategy.
type StrategyInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceHistory int    `json:"price_history"`
	Pair         bool   `json:"pair"`
}

// Strategies lists the registered strategies.
func (h *BacktestHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	all := h.strategies.GetAll()
	infos := make([]StrategyInfo, len(all))
	for i, s := range all {
		req := s.RequiredData()
		infos[i] = StrategyInfo{
			Name:         s.Name(),
			Description:  s.Description(),
			PriceHistory: req.PriceHistory,
			Pair:         req.Pair,
		}
	}
	response.JSON(w, http.StatusOK, infos)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.WrapError(core.ErrInvalidParameter, err)
	}
	return nil
}

func toRequest(symbol, pairSymbol, start, end, interval string) (backtest.Request, error) {
	req := backtest.Request{Symbol: symbol, PairSymbol: pairSymbol, Interval: interval}

	var err error
	if start != "" {
		if req.Start, err = time.Parse(time.DateOnly, start); err != nil {
			return req, core.InvalidParameter("start", start, "want YYYY-MM-DD")
		}
	}
	if end != "" {
		if req.End, err = time.Parse(time.DateOnly, end); err != nil {
			return req, core.InvalidParameter("end", end, "want YYYY-MM-DD")
		}
	}
	return req, req.Validate()
}
