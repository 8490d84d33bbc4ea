// Package pdftest writes small PDF files for tests using gofpdf core fonts.
package pdftest

import (
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Run is one piece of text placed on a page. Y is measured from the top of
// the page in points.
type Run struct {
	X, Y  float64
	Text  string
	Bold  bool
	Size  float64
	Color [3]int
}

// Page is the list of runs drawn on one page
type Page []Run

// Heading is a bold Times run
func Heading(x, y float64, text string, size float64) Run {
	return Run{X: x, Y: y, Text: text, Bold: true, Size: size}
}

// Body is a regular 10pt black Times run
func Body(x, y float64, text string) Run {
	return Run{X: x, Y: y, Text: text, Size: 10}
}

// Colored returns a copy of r drawn in the given RGB color
func (r Run) Colored(red, green, blue int) Run {
	r.Color = [3]int{red, green, blue}
	return r
}

// Write renders pages into name under t.TempDir() and returns the file path
func Write(t testing.TB, name string, pages ...Page) string {
	t.Helper()

	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetCompression(false)
	for _, page := range pages {
		doc.AddPage()
		for _, run := range page {
			style := ""
			if run.Bold {
				style = "B"
			}
			doc.SetFont("Times", style, run.Size)
			doc.SetTextColor(run.Color[0], run.Color[1], run.Color[2])
			doc.Text(run.X, run.Y, run.Text)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write fixture PDF: %v", err)
	}
	return path
}
