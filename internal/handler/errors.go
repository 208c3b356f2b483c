package handler

import (
	"context"
	"errors"
	"net/http"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/fetch"

	"github.com/gin-gonic/gin"
)

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case domain.IsUserError(err):
		return http.StatusBadRequest
	case domain.IsUpstreamDataError(err):
		return http.StatusBadGateway
	case fetch.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case fetch.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var userErr *domain.UserError
	if errors.As(err, &userErr) && errors.Is(err, domain.ErrUnsupportedPair) {
		body["supported_examples"] = []string{"btc_jpy", "eth_jpy", "xrp_jpy"}
	}
	c.JSON(statusFor(err), body)
}
