package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/logging"
)

// errorBody is the JSON error envelope returned on every failed request.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes the error envelope.
// Token failures map to 401; APIError statuses pass through; anything
// else is a 500 with a generic message so internals never leak.
func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	status := common.StatusOf(err)
	message := err.Error()

	switch {
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenScope),
		errors.Is(err, common.ErrorUnauthorized):
		status = http.StatusUnauthorized
	case status == http.StatusInternalServerError:
		logger.Error(ctx, "request failed", "error", err.Error())
		message = "internal server error"
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	writeJSON(w, status, errorBody{Code: status, Message: message})
}
