package core

import "fmt"

// Stable error codes surfaced to callers; they must not change between
// releases.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeSelection     = "SELECTION_ERROR"
	CodeComposition   = "COMPOSITION_ERROR"
	CodeProvider      = "PROVIDER_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
)

// ValidationError reports a malformed or out-of-range keyword table. Client
// input fault; never retried.
type ValidationError struct {
	Row     int    // 1-based data row index, 0 when the violation is table-level
	Column  string // Offending column, empty when table-level
	Message string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("invalid keyword table: row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return "invalid keyword table: " + e.Message
}

// Code returns the stable error code for this error kind.
func (e *ValidationError) Code() string { return CodeValidation }

// SelectionError reports that no viable primary keyword could be selected.
// Never retried.
type SelectionError struct {
	Keyword string // Rejected keyword, empty when the input itself was empty
	Message string
}

func (e *SelectionError) Error() string {
	if e.Keyword != "" {
		return fmt.Sprintf("keyword selection failed for %q: %s", e.Keyword, e.Message)
	}
	return "keyword selection failed: " + e.Message
}

func (e *SelectionError) Code() string { return CodeSelection }

// CompositionError reports that a field could not be built within its
// constraints. Indicates a logic/config bug or pathological input; never
// retried.
type CompositionError struct {
	Field   string
	Message string
	Err     error
}

func (e *CompositionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot compose %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("cannot compose %s: %s", e.Field, e.Message)
}

func (e *CompositionError) Unwrap() error { return e.Err }
func (e *CompositionError) Code() string  { return CodeComposition }

// ProviderError reports a failure at the external text-generation boundary
// (timeout, rate limit, malformed response). Retryable failures are retried
// with backoff before being surfaced.
type ProviderError struct {
	Op        string // Operation that failed, e.g. "generate"
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("text generation provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
func (e *ProviderError) Code() string  { return CodeProvider }

// ConfigurationError reports an invalid configuration value (unsupported
// language, bad weight set). Fails fast at construction; never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Message }
func (e *ConfigurationError) Code() string  { return CodeConfiguration }
