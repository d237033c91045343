// Package apierror holds the JSON envelopes of every 4xx/5xx response.
// Handlers never write raw error strings from the database or the driver.
package apierror

// APIError is the envelope of all non-validation errors. State is set on
// 409 responses caused by an illegal payment-state transition.
type APIError struct {
	Detail string `json:"detail"`
	State  string `json:"state,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// WithState reports the sale's current payment state alongside the message.
func WithState(msg, state string) *APIError {
	return &APIError{Detail: msg, State: state}
}

// ValidationError lists field-level binding failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
