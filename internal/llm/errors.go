package llm

import "fmt"

// APICallError represents a failed call to the model provider
type APICallError struct {
	Message string
	Model   string
	Cause   error
}

func (e *APICallError) Error() string {
	switch {
	case e.Model != "" && e.Cause != nil:
		return fmt.Sprintf("llm call to %s failed: %s: %v", e.Model, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("llm call failed: %s: %v", e.Message, e.Cause)
	default:
		return fmt.Sprintf("llm call failed: %s", e.Message)
	}
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// DecodeError represents a model response that is not the JSON shape asked for
type DecodeError struct {
	Response string
	Cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode model response: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
