package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taikodata/internal/model"
	"taikodata/internal/subgraph"
	"taikodata/internal/uniswapapi"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps a service error onto an HTTP status and the message shown to callers.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, subgraph.ErrNoClient),
		errors.Is(err, model.ErrUnsupportedChain),
		errors.Is(err, uniswapapi.ErrNotConfigured):
		return http.StatusNotFound, "unable to load data for this chain"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream timeout"
	default:
		return http.StatusBadGateway, "upstream request failed"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, RequestID: c.GetString(requestIDKey)})
}
