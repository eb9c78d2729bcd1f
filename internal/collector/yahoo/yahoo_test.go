package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/quantlab/internal/collector"
	"github.com/newthinker/quantlab/internal/core"
)

func TestYahoo_ImplementsCollector(t *testing.T) {
	var _ collector.Collector = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New()
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
	if len(y.SupportedMarkets()) == 0 {
		t.Error("expected at least one supported market")
	}
}

func TestYahoo_ToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"0700.HK", "0700.HK"},
		{"600519.SH", "600519.SS"}, // Shanghai -> SS for Yahoo
		{"000001.SZ", "000001.SZ"},
	}

	y := New()
	for _, tc := range tests {
		got := y.toYahooSymbol(tc.input)
		if got != tc.expected {
			t.Errorf("toYahooSymbol(%s) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"KO", "PEP", "BRK-B", "0700.HK", "^GSPC"}
	for _, s := range valid {
		if err := validateSymbol(s); err != nil {
			t.Errorf("validateSymbol(%q) unexpected error: %v", s, err)
		}
	}

	invalid := []string{"", "A B", "../etc", "TOOLONGSYMBOL123"}
	for _, s := range invalid {
		if err := validateSymbol(s); !errors.Is(err, core.ErrInvalidParameter) {
			t.Errorf("validateSymbol(%q) = %v, want ErrInvalidParameter", s, err)
		}
	}
}

const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "KO", "currency": "USD"},
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {
        "quote": [{
          "open":   [59.5, null, 60.1],
          "high":   [60.0, null, 60.9],
          "low":    [59.2, null, 59.9],
          "close":  [59.8, null, 60.5],
          "volume": [1000, null, 1200]
        }],
        "adjclose": [{"adjclose": [58.8, null, 59.5]}]
      }
    }],
    "error": null
  }
}`

func TestYahoo_FetchHistory(t *testing.T) {
	var gotPath, gotInterval, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	y := New(WithBaseURL(srv.URL), WithTimeout(time.Second))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := y.FetchHistory(context.Background(), "KO", start, start.AddDate(0, 0, 7), "1d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/KO" {
		t.Errorf("expected path /KO, got %s", gotPath)
	}
	if gotInterval != "1d" {
		t.Errorf("expected interval 1d, got %s", gotInterval)
	}
	if !strings.Contains(gotUA, "quantlab") {
		t.Errorf("expected quantlab user agent, got %q", gotUA)
	}

	// The null bar is skipped
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 58.8 {
		t.Errorf("expected adjusted close 58.8, got %v", bars[0].Close)
	}
	if bars[1].Open != 60.1 || bars[1].Volume != 1200 {
		t.Errorf("unexpected second bar %+v", bars[1])
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Error("bars should be in time order")
	}
}

func TestYahoo_FetchHistory_RawClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := New(WithBaseURL(srv.URL), WithRawClose(true)).
		FetchHistory(context.Background(), "KO", start, start.AddDate(0, 0, 7), "1d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 59.8 || bars[1].Close != 60.5 {
		t.Errorf("expected raw closes 59.8/60.5, got %v/%v", bars[0].Close, bars[1].Close)
	}
}

func TestYahoo_FetchHistory_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, "", core.ErrSymbolNotFound},
		{"server error", http.StatusInternalServerError, "", core.ErrCollectorFailed},
		{"yahoo error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, core.ErrCollectorFailed},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, core.ErrNoData},
		{"bad json", http.StatusOK, `{`, core.ErrCollectorFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(WithBaseURL(srv.URL)).FetchHistory(context.Background(), "KO", time.Time{}, time.Now(), "1d")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestYahoo_FetchHistory_BadInterval(t *testing.T) {
	_, err := New().FetchHistory(context.Background(), "KO", time.Time{}, time.Now(), "5m")
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestYahoo_FetchHistory_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithBaseURL(srv.URL)).FetchHistory(ctx, "KO", time.Time{}, time.Now(), "1d")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
