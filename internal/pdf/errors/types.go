package errors

import (
	"fmt"
)

// PDFError represents a failure while reading, filling or writing a form document
type PDFError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Context string    `json:"context,omitempty"`
	Page    int       `json:"page,omitempty"`
	Err     error     `json:"-"`
}

// ErrorType represents different categories of form document errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidTemplate
	ErrorTypeMissingAcroForm
	ErrorTypeMalformedObject
	ErrorTypeInvalidFont
	ErrorTypeInvalidPage
	ErrorTypeWriteFailed
	ErrorTypeVerificationFailed
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidTemplate:
		return "INVALID_TEMPLATE"
	case ErrorTypeMissingAcroForm:
		return "MISSING_ACROFORM"
	case ErrorTypeMalformedObject:
		return "MALFORMED_OBJECT"
	case ErrorTypeInvalidFont:
		return "INVALID_FONT"
	case ErrorTypeInvalidPage:
		return "INVALID_PAGE"
	case ErrorTypeWriteFailed:
		return "WRITE_FAILED"
	case ErrorTypeVerificationFailed:
		return "VERIFICATION_FAILED"
	default:
		return "UNKNOWN"
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithPage adds page information to an existing PDFError
func (e *PDFError) WithPage(page int) *PDFError {
	e.Page = page
	return e
}

// FieldNotFoundError is returned when a field path does not name a field of the form
type FieldNotFoundError struct {
	Path string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("no form field named %q", e.Path)
}

// FieldKindError is returned when a field exists but has the wrong kind for an operation
type FieldKindError struct {
	Path     string
	Kind     string
	Expected string
}

func (e *FieldKindError) Error() string {
	return fmt.Sprintf("form field %q is a %s, expected a %s", e.Path, e.Kind, e.Expected)
}
