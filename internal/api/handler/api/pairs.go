// internal/api/handler/api/pairs.go
package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/newthinker/quantlab/internal/api/response"
	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/position"
	"github.com/newthinker/quantlab/internal/strategy"
	"github.com/newthinker/quantlab/internal/strategy/pairs"
)

// PairsRequest is the request body for a pairs backtest. Window and
// EntryThreshold override the configured pairs strategy when set.
type PairsRequest struct {
	SymbolA        string  `json:"symbol_a"`
	SymbolB        string  `json:"symbol_b"`
	Window         int     `json:"window,omitempty"`
	EntryThreshold float64 `json:"entry_threshold,omitempty"`
	Start          string  `json:"start,omitempty"`
	End            string  `json:"end,omitempty"`
	Interval       string  `json:"interval,omitempty"`
}

// PairsView adds the latest spread reading to the backtest result.
type PairsView struct {
	LatestZ  *float64   `json:"latest_z"`
	Position string     `json:"position"`
	Events   int        `json:"events"`
	Result   ResultView `json:"result"`
}

// Pairs backtests the spread between two symbols.
func (h *BacktestHandler) Pairs(w http.ResponseWriter, r *http.Request) {
	var req PairsRequest
	if err := decode(w, r, &req); err != nil {
		response.Fail(w, err)
		return
	}
	if req.SymbolB == "" {
		response.Fail(w, core.InvalidParameter("symbol_b", "", "is required"))
		return
	}

	btReq, err := toRequest(req.SymbolA, req.SymbolB, req.Start, req.End, req.Interval)
	if err != nil {
		response.Fail(w, err)
		return
	}

	strat, err := h.pairsStrategy(req)
	if err != nil {
		response.Fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.backtester.Run(ctx, strat, btReq)
	if err != nil {
		h.logger.Warn("pairs backtest failed",
			zap.String("symbol_a", req.SymbolA),
			zap.String("symbol_b", req.SymbolB),
			zap.Error(err))
		response.Fail(w, err)
		return
	}

	states := make([]position.State, len(result.Exposure))
	for i, d := range result.Exposure {
		states[i] = position.State(d)
	}

	view := PairsView{
		Position: position.Flat.String(),
		Events:   len(position.Events(states)),
		Result:   NewResultView(result),
	}
	if n := len(states); n > 0 {
		view.Position = states[n-1].String()
	}
	if z := result.Indicators["zscore"]; len(z) > 0 && !core.IsUndefined(z[len(z)-1]) {
		last := z[len(z)-1]
		view.LatestZ = &last
	}

	response.JSON(w, http.StatusOK, view)
}

func (h *BacktestHandler) pairsStrategy(req PairsRequest) (strategy.Strategy, error) {
	if req.Window == 0 && req.EntryThreshold == 0 {
		strats, err := h.strategies.Lookup("pairs")
		if err != nil {
			return nil, err
		}
		return strats[0], nil
	}

	window, threshold := req.Window, req.EntryThreshold
	if window == 0 {
		window = pairs.DefaultWindow
	}
	if threshold == 0 {
		threshold = pairs.DefaultEntryThreshold
	}
	p, err := pairs.New(window, threshold)
	if err != nil {
		return nil, err
	}
	return p, nil
}
