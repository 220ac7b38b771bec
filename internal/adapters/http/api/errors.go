package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/boutstats/internal/adapters/repository"
	"github.com/okian/boutstats/internal/domain/analytics"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable")
)

// apiError carries the failing operation and an error kind next to the cause.
type apiError struct {
	op   string
	kind error
	err  error
}

func (e *apiError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
	if e.kind == nil {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
}

func (e *apiError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.err != nil {
		errs = append(errs, e.err)
	}
	return errs
}

// NewKind returns an error of the given kind with no underlying cause.
func NewKind(op string, kind error) error {
	return &apiError{op: op, kind: kind}
}

// WrapKind tags err with kind.
func WrapKind(op string, kind, err error) error {
	return &apiError{op: op, kind: kind, err: err}
}

// Wrap records op on err and classifies it from the domain error it carries.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &apiError{op: op, kind: classify(err), err: err}
}

func classify(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAlreadyExists):
		return ErrConflict
	case errors.Is(err, repository.ErrEventLimit):
		return ErrUnprocessable
	case errors.Is(err, analytics.ErrInvalidInput):
		return ErrBadRequest
	default:
		return nil
	}
}

// statusOf maps an error kind to an HTTP status and a response code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, repository.ErrEventLimit):
		return http.StatusUnprocessableEntity, "event_limit"
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity, "stats_unavailable"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
