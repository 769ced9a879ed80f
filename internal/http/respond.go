package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/logger"
	"go.uber.org/zap"
)

const (
	codeInternal       = "INTERNAL_ERROR"
	codeTimeout        = "TIMEOUT"
	maxRequestBodySize = 1 << 20 // 1MB
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// missingCaller answers requests that reached a handler without passing
// through IdentityMiddleware.
func missingCaller(w http.ResponseWriter) {
	respondError(w, http.StatusUnauthorized, string(domain.CodeAuthRequired), "missing caller identity")
}

// handleError turns a service error into a response. Domain errors carry
// their own status and code; anything else is logged and reported as 500
// without its message.
func handleError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		respondError(w, de.Status, string(de.Code), de.Message)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		respondError(w, http.StatusGatewayTimeout, codeTimeout, "request timed out")
		return
	}

	logger.WithTrace(r.Context(), log).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", getRequestID(r.Context())),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.InvalidInput("request body is too large")
	}
	return domain.InvalidInput("invalid JSON body")
}
