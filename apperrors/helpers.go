package apperrors

import (
	"errors"

	"github.com/rs/zerolog"
)

// Wrap creates a classified error. A nil err yields nil.
func Wrap(class ErrorClass, operation string, err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	return &ClassifiedError{
		Class:     class,
		Operation: operation,
		Err:       err,
		Context:   make(map[string]any),
	}
}

// New creates a classified error without an underlying cause.
func New(class ErrorClass, operation string, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]any),
	}
}

// WrapWithMessageFor wraps err and records the entity the operation failed for.
func WrapWithMessageFor(class ErrorClass, operation, messageFor string, err error) *ClassifiedError {
	ce := Wrap(class, operation, err)
	if ce != nil {
		ce.MessageFor = messageFor
	}
	return ce
}

// WithContext adds context to a classified error.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	if e == nil {
		return nil
	}
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value

	return e
}

// GetClass extracts the error class from an error.
func GetClass(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	return ErrClassUnknown
}

// GetOperation extracts the operation from an error.
func GetOperation(err error) string {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Operation
	}

	return ""
}

// GetContext extracts context from an error.
func GetContext(err error) map[string]any {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Context
	}

	return nil
}

// IsClass reports whether any error in err's chain is classified as class.
func IsClass(err error, class ErrorClass) bool {
	return err != nil && GetClass(err) == class
}

// LogClassifiedError adds the error and its classification to a log event.
func LogClassifiedError(event *zerolog.Event, err error) *zerolog.Event {
	if err == nil {
		return event
	}

	event = event.Err(err).Str("error_class", string(GetClass(err)))

	if operation := GetOperation(err); operation != "" {
		event = event.Str("operation", operation)
	}

	if context := GetContext(err); len(context) > 0 {
		event = event.Interface("error_context", context)
	}

	return event
}
