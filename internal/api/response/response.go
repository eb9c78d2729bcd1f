// internal/api/response/response.go
package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/quantlab/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	switch {
	case errors.As(err, &coreErr):
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	case errors.Is(err, context.DeadlineExceeded):
		detail.Code = "TIMEOUT"
		detail.Message = "request took too long"
	case errors.Is(err, context.Canceled):
		detail.Code = "CANCELED"
		detail.Message = "request canceled"
	}

	resp := ErrorResponse{Error: detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Fail writes err with the status StatusFor picks.
func Fail(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err)
}

// StatusFor maps an error to an HTTP status by its core code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, core.ErrInvalidParameter),
		errors.Is(err, core.ErrInvalidSeries),
		errors.Is(err, core.ErrConfigInvalid),
		errors.Is(err, core.ErrConfigMissing):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSymbolNotFound),
		errors.Is(err, core.ErrStrategyNotFound),
		errors.Is(err, core.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrCollectorFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
