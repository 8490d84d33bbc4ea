// Package pagerange validates the page window an abstract scan walks.
package pagerange

import (
	"fmt"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
)

// DefaultStart is the first page scanned when none is given.
// Page 0 is never scanned for an abstract because it has no preceding page.
const DefaultStart = 1

// PageRange is a half-open window [Start, End) of 0-based page indexes
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of pages in the range
func (r PageRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether index lies inside the range
func (r PageRange) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

// String returns the range in [start, end) form
func (r PageRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Resolve validates start and end against a document of pageCount pages.
// end <= 0 selects the page count, and an end past the page count is clamped to it.
func Resolve(start, end, pageCount int) (PageRange, error) {
	if end <= 0 || end > pageCount {
		end = pageCount
	}

	if start < 1 || start >= pageCount || start >= end {
		return PageRange{}, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidRange,
			"invalid start or end page",
			fmt.Sprintf("start=%d end=%d pages=%d", start, end, pageCount))
	}

	return PageRange{Start: start, End: end}, nil
}
