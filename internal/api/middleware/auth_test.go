// internal/api/middleware/auth_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/quantlab/internal/api/response"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
})

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid key", "secret-key", "/api/backtest", "secret-key", http.StatusOK, ""},
		{"missing key", "secret-key", "/api/backtest", "", http.StatusUnauthorized, "CONFIG_MISSING"},
		{"invalid key", "secret-key", "/api/backtest", "wrong-key", http.StatusUnauthorized, "CONFIG_INVALID"},
		{"auth disabled", "", "/api/backtest", "", http.StatusOK, ""},
		{"open path", "secret-key", "/api/health", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := APIKeyAuth(tt.apiKey, "/api/health", "/metrics")(okHandler)

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantCode == "" {
				return
			}
			var resp response.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, resp.Error.Code)
			}
		})
	}
}
