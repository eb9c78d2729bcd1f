package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/newthinker/quantlab/internal/core"
)

func TestMACD_ConstantPrices(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 50
	}

	m, err := MACD(prices, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range prices {
		if m.Line[i] != 0 || m.Signal[i] != 0 || m.Histogram[i] != 0 {
			t.Fatalf("index %d: expected zeros, got line=%f signal=%f hist=%f",
				i, m.Line[i], m.Signal[i], m.Histogram[i])
		}
	}
}

func TestMACD_RisingPricesPositiveLine(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	m, _ := MACD(prices, 12, 26, 9)

	if m.Line[0] != 0 {
		t.Errorf("line[0] = %f, want 0", m.Line[0])
	}
	for i := 1; i < len(prices); i++ {
		if m.Line[i] <= 0 {
			t.Errorf("line[%d] = %f, want > 0 for rising prices", i, m.Line[i])
		}
		if !almostEqual(m.Histogram[i], m.Line[i]-m.Signal[i], 1e-12) {
			t.Errorf("histogram[%d] mismatch", i)
		}
	}
}

func TestMACD_Aligned(t *testing.T) {
	prices := []float64{1, 2, 3}
	m, _ := MACD(prices, 2, 3, 2)
	if len(m.Line) != 3 || len(m.Signal) != 3 || len(m.Histogram) != 3 {
		t.Fatal("MACD outputs must align with input")
	}
	for _, v := range m.Line {
		if math.IsNaN(v) {
			t.Error("MACD line defined from the first price")
		}
	}
}

func TestMACD_InvalidSpans(t *testing.T) {
	tests := []struct {
		name               string
		fast, slow, signal int
	}{
		{"zero fast", 0, 26, 9},
		{"slow not above fast", 26, 12, 9},
		{"equal spans", 12, 12, 9},
		{"zero signal", 12, 26, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MACD([]float64{1, 2, 3}, tt.fast, tt.slow, tt.signal)
			if !errors.Is(err, core.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}
