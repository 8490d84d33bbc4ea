// Package output appends scan results to a plain text file, one record per
// result, separated by a blank line.
package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/a3tai/pdf-abstract-scanner/internal/pdf"
	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
)

// Writer appends records to the file at Path. The file is opened and closed
// for every record, so results already written survive a later failure.
type Writer struct {
	path string
}

// NewWriter creates a Writer appending to path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the output file path
func (w *Writer) Path() string {
	return w.path
}

// Write appends one record. The file is created if it does not exist.
func (w *Writer) Write(r pdf.Result) error {
	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "failed to open output file", err).WithFile(w.path)
	}

	if _, err := f.WriteString(Format(r)); err != nil {
		_ = f.Close()
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "failed to write record", err).
			WithFile(w.path).
			WithPage(r.PageNumber)
	}

	if err := f.Close(); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeIO, "failed to close output file", err).WithFile(w.path)
	}
	return nil
}

// Format renders a record: header, page line, keyword and abstract each on
// their own line, followed by an empty line.
func Format(r pdf.Result) string {
	var b strings.Builder
	b.WriteString(r.Header)
	b.WriteString("\nPage: ")
	b.WriteString(strconv.Itoa(r.PageNumber))
	b.WriteByte('\n')
	b.WriteString(r.Keyword)
	b.WriteByte('\n')
	b.WriteString(r.Abstract)
	b.WriteString("\n\n")
	return b.String()
}

// FormatAll renders records back to back as they would appear in the file
func FormatAll(results []pdf.Result) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(Format(r))
	}
	return b.String()
}

// Summary is a one line description of a finished scan
func Summary(found, skipped int, path string) string {
	return fmt.Sprintf("Found %d abstract(s) in %s (%d page(s) skipped)", found, path, skipped)
}
