package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
	"github.com/alchemix-labs/yieldkit/pkg/slippage"
)

var (
	errInvalidInput  = errors.New("invalid input")
	errUnauthorized  = errors.New("unauthorized")
	errAdminDisabled = errors.New("admin endpoints are disabled")
	errUpstream      = errors.New("upstream call failed")
)

// errorView is the body rendered for any failed request.
type errorView struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Route     string `json:"route,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func statusFor(err error) int {
	var fe *domain.FetchError
	switch {
	case errors.Is(err, errInvalidInput), errors.Is(err, slippage.ErrSlippageOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errAdminDisabled):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, domain.ErrUnsupportedChain),
		errors.Is(err, domain.ErrUnknownContract):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &fe), errors.Is(err, errUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
