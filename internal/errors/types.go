package errors

import "fmt"

// Kind classifies application errors into the categories the presentation
// layer knows how to react to.
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindAPI         Kind = "api_error"
	KindNetwork     Kind = "network_error"
	KindValidation  Kind = "validation_error"
	KindConfig      Kind = "config_error"
)

// AppError is the single error value flowing out of every operation.
// Optional fields are nil when the corresponding knowledge is missing.
type AppError struct {
	Kind    Kind
	Message string

	// API errors: HTTP status actually received and the machine error
	// code from the response body, when present.
	StatusCode int
	Code       string

	// Rate limit errors: retry estimate and last-known quota.
	RetryAfter *int64 // seconds
	Limit      *int
	Remaining  *int

	// Network errors: best-effort connectivity hint.
	IsOffline bool
}

func (e *AppError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidation builds a validation error for input rejected before any
// network or rate limit interaction.
func NewValidation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewConfig builds an error for an unreadable or incomplete configuration store.
func NewConfig(message string) *AppError {
	return &AppError{Kind: KindConfig, Message: message}
}

// NewAPI builds an error for a non-2xx, non-429 response.
func NewAPI(status int, code, message string) *AppError {
	return &AppError{Kind: KindAPI, StatusCode: status, Code: code, Message: message}
}

// NewRateLimited builds an admission-blocked or 429-derived error.
func NewRateLimited(message string, retryAfter *int64, limit, remaining *int) *AppError {
	return &AppError{
		Kind:       KindRateLimited,
		Message:    message,
		RetryAfter: retryAfter,
		Limit:      limit,
		Remaining:  remaining,
	}
}

// AsAppError unwraps err into an *AppError, wrapping foreign errors as
// generic API errors so callers always see the taxonomy.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AppError); ok {
		return ae
	}
	return &AppError{Kind: KindAPI, Message: err.Error()}
}
