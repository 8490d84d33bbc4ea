package wrapper

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
)

// LedongthucDocument implements Document using ledongthuc/pdf
type LedongthucDocument struct {
	reader   *pdf.Reader
	file     *os.File
	filePath string
	layout   LayoutConfig
	logger   zerolog.Logger
	closed   bool
}

// OpenLedongthuc opens the PDF at path
func OpenLedongthuc(path string, layout LayoutConfig, logger zerolog.Logger) (*LedongthucDocument, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	return &LedongthucDocument{
		reader:   reader,
		file:     f,
		filePath: path,
		layout:   layout,
		logger:   logger,
	}, nil
}

// PageCount returns the number of pages in the document
func (d *LedongthucDocument) PageCount() (int, error) {
	if d.closed {
		return 0, &WrapperError{Library: LibraryLedongthuc, Op: "page_count", Err: ErrDocumentClosed.Err}
	}
	return d.reader.NumPage(), nil
}

// Page interprets the page at a 0-based index into blocks, lines and spans
func (d *LedongthucDocument) Page(index int) (spans.StructuredPage, error) {
	if d.closed {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "page", Err: ErrDocumentClosed.Err}
	}

	count := d.reader.NumPage()
	if index < 0 || index >= count {
		return nil, fmt.Errorf("page %d of %d: %w", index, count, ErrInvalidPage)
	}

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeStructure, "page dictionary not found").
			WithFile(d.filePath).
			WithPage(index)
	}

	fragments, err := d.interpret(page, index)
	if err != nil {
		return nil, err
	}

	blocks := assemble(fragments, d.layout)
	d.logger.Debug().
		Int("page", index).
		Int("fragments", len(fragments)).
		Int("blocks", len(blocks)).
		Msg("page text structure loaded")

	return &spans.Page{Index: index, BlockList: blocks}, nil
}

// interpret runs the content interpreter, turning its panics on malformed
// content into a structure error for this page only.
func (d *LedongthucDocument) interpret(page pdf.Page, index int) (fragments []fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeStructure,
				"malformed page content", fmt.Sprint(r)).
				WithFile(d.filePath).
				WithPage(index)
		}
	}()

	return newContentInterpreter(page).run(), nil
}

// Close closes the document
func (d *LedongthucDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
