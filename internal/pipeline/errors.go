package pipeline

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/types"
)

// ErrNoStore is returned by operations that need persistence when none is configured
var ErrNoStore = errors.New("no store configured")

// InputError reports a request that breaks the requirement model's contract
// (empty terms, negative weights, unknown categories)
type InputError struct {
	Field   string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned when a referenced analysis does not exist
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// checkInput runs struct-tag validation followed by the requirement model checks
func (s *Service) checkInput(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &InputError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
				Cause:   err,
			}
		}
		return &InputError{Message: "invalid request", Cause: err}
	}
	return nil
}

// checkRequirements catches what struct tags cannot: blank and duplicate terms
func checkRequirements(reqs []types.Requirement) error {
	err := parsing.CheckRequirements(reqs)
	var ve *parsing.ValidationError
	if errors.As(err, &ve) {
		return &InputError{Field: ve.Field, Message: ve.Message, Cause: err}
	}
	return err
}
