package core

import "errors"

var (
	// ErrEmptyContent is returned when nothing usable remains after extraction or normalization
	ErrEmptyContent = errors.New("email content is empty")

	// ErrInvalidResponseJSON is returned when the model output cannot be decoded as JSON
	ErrInvalidResponseJSON = errors.New("model response is not valid JSON")

	// ErrInvalidClassification is returned when the decoded classification does not match the expected schema
	ErrInvalidClassification = errors.New("model classification is invalid")

	// ErrInvalidGeneratedResponse is returned when a drafted reply fails the quality checks
	ErrInvalidGeneratedResponse = errors.New("generated reply is invalid")

	// ErrInvalidCategory is returned for labels outside the known categories
	ErrInvalidCategory = errors.New("invalid category")

	// ErrUpstream wraps failures reported by the model provider
	ErrUpstream = errors.New("model provider error")
)

// IsModelOutputError reports whether err was caused by unusable model output,
// as opposed to a transport or internal failure.
func IsModelOutputError(err error) bool {
	return errors.Is(err, ErrInvalidResponseJSON) ||
		errors.Is(err, ErrInvalidClassification) ||
		errors.Is(err, ErrInvalidGeneratedResponse)
}
