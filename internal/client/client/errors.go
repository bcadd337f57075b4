package client

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// StatusError is a non-2xx response from the API. It unwraps to the sentinel
// chosen by mapStatus so callers can match it with errors.Is.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
	sentinel   error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	return e.sentinel
}

// NewStatusError builds a StatusError whose sentinel follows mapStatus.
func NewStatusError(op string, status int, message string) *StatusError {
	return &StatusError{Op: op, StatusCode: status, Message: message, sentinel: mapStatus(status)}
}

func mapStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return common.ErrValidation
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return common.ErrUnavailable
	default:
		return nil
	}
}

// credentialsError narrows a login-type failure: rejected credentials become
// common.ErrInvalidCredentials, everything else is kept.
func credentialsError(e *StatusError) *StatusError {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		e.sentinel = common.ErrInvalidCredentials
	}
	return e
}
