package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/pipeline"
)

// ErrValidation indicates a malformed request body or parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		inputErr      *pipeline.InputError
		parseErr      *parsing.ParseError
		notFoundErr   *pipeline.NotFoundError
		fetchErr      *ingestion.FetchError
		tooLargeErr   *http.MaxBytesError
	)

	switch {
	case errors.Is(err, ingestion.ErrBlockedAddress):
		return http.StatusBadRequest
	case errors.As(err, &validationErr), errors.As(err, &inputErr), errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoStore):
		return http.StatusNotImplemented
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
