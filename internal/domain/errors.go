package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientData marks results that could not be computed because too few
// readings exist. Callers degrade the output instead of failing the request.
var ErrInsufficientData = errors.New("insufficient data")

type InvalidInputError struct {
	Field   string
	Value   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewInvalidInput(field, value, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Message: message}
}

type UpstreamTimeoutError struct {
	Upstream string
	Err      error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("upstream %s timed out: %v", e.Upstream, e.Err)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

type ConfigurationError struct {
	Section string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}

func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

func IsUpstreamTimeout(err error) bool {
	var te *UpstreamTimeoutError
	return errors.As(err, &te)
}
