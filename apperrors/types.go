package apperrors

import "strings"

// ErrorClass is the category of a ClassifiedError.
type ErrorClass string

const (
	ErrClassConfig ErrorClass = "CONFIG"
	// ErrClassBackend is a non-2xx answer of the admin REST backend.
	ErrClassBackend ErrorClass = "BACKEND"
	// ErrClassNetwork covers transport failures and an open circuit breaker.
	ErrClassNetwork ErrorClass = "NETWORK"
	// ErrClassParsing is an undecodable payload.
	ErrClassParsing ErrorClass = "PARSING"
	ErrClassUnknown ErrorClass = "UNKNOWN"
)

// ClassifiedError attaches a class and the failed operation to an error.
// MessageFor names the entity or endpoint the operation ran against.
type ClassifiedError struct {
	Class      ErrorClass
	Operation  string
	Message    string
	MessageFor string
	Err        error
	Context    map[string]any
}

// Error formats as "[CLASS] operation target: message: cause".
func (e *ClassifiedError) Error() string {
	var bld strings.Builder
	bld.WriteString("[" + string(e.Class) + "]")

	for _, s := range []string{e.Operation, e.MessageFor} {
		if s != "" {
			bld.WriteString(" " + s)
		}
	}
	for _, s := range []string{e.Message, causeText(e.Err)} {
		if s != "" {
			bld.WriteString(": " + s)
		}
	}
	return bld.String()
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}
