package wrapper

import (
	"fmt"

	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
)

// Document is an opened PDF whose pages can be loaded as structured text
type Document interface {
	// PageCount returns the number of pages
	PageCount() (int, error)
	// Page loads the page at a 0-based index
	Page(index int) (spans.StructuredPage, error)
	// Close releases the underlying file
	Close() error
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// WrapperError reports a failure inside one of the PDF libraries
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = &WrapperError{Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage    = &WrapperError{Op: "page", Err: fmt.Errorf("invalid page number")}
)
