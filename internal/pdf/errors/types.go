package errors

import (
	stderrors "errors"
	"fmt"
)

// PDFError is the error type shared by every stage of an abstract scan
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Err         error     `json:"-"`
}

// ErrorType represents the categories of failure a scan can hit
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeConfig
	ErrorTypeStructure
	ErrorTypeInvalidRange
	ErrorTypeIO
	ErrorTypeInvalidFile
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

// Unwrap returns the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeStructure:
		return "STRUCTURE"
	case ErrorTypeInvalidRange:
		return "INVALID_RANGE"
	case ErrorTypeIO:
		return "IO"
	case ErrorTypeInvalidFile:
		return "INVALID_FILE"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether a scan may continue past an error of this type.
// Only page structure problems are recoverable: the page is skipped.
func (et ErrorType) IsRecoverable() bool {
	return et == ErrorTypeStructure
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
	}
}

// NewPDFErrorWithContext creates a new PDFError with additional context
func NewPDFErrorWithContext(errorType ErrorType, message, context string) *PDFError {
	e := NewPDFError(errorType, message)
	e.Context = context
	return e
}

// WrapError wraps err as a PDFError of the given type
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := NewPDFError(errorType, message)
	e.Err = err
	return e
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// TypeOf returns the ErrorType of the first PDFError in err's chain,
// or ErrorTypeUnknown when there is none.
func TypeOf(err error) ErrorType {
	var pdfErr *PDFError
	if stderrors.As(err, &pdfErr) {
		return pdfErr.Type
	}
	return ErrorTypeUnknown
}

// IsConfig reports whether err is a configuration error
func IsConfig(err error) bool { return TypeOf(err) == ErrorTypeConfig }

// IsStructure reports whether err is a page structure error
func IsStructure(err error) bool { return TypeOf(err) == ErrorTypeStructure }

// IsInvalidRange reports whether err is a page range error
func IsInvalidRange(err error) bool { return TypeOf(err) == ErrorTypeInvalidRange }

// IsIO reports whether err is an output error
func IsIO(err error) bool { return TypeOf(err) == ErrorTypeIO }

// IsInvalidFile reports whether err is a file validation error
func IsInvalidFile(err error) bool { return TypeOf(err) == ErrorTypeInvalidFile }
