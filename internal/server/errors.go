// Package server provides the HTTP REST API for the placement engine.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/placement-engine/internal/search"
	"github.com/jonathan/placement-engine/internal/store"
)

// ErrMissingParam indicates a required query parameter was absent.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}

// ErrBadFilter indicates the filters parameter could not be decoded.
type ErrBadFilter struct {
	Cause error
}

func (e *ErrBadFilter) Error() string {
	return fmt.Sprintf("invalid filters parameter: %v", e.Cause)
}

func (e *ErrBadFilter) Unwrap() error { return e.Cause }

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var scope *search.ErrUnknownScope
	var missing *ErrMissingParam
	var badFilter *ErrBadFilter
	switch {
	case errors.As(err, &scope), errors.Is(err, store.ErrUnknownCollection):
		return http.StatusNotFound
	case errors.As(err, &missing), errors.As(err, &badFilter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
