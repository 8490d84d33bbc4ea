package spans

import (
	"fmt"
	"iter"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
)

// Source adapts a StructuredPage into flat span and line sequences.
// The sequences are single-pass views; request them again to restart.
type Source struct {
	page StructuredPage
}

// NewSource creates a Source over page
func NewSource(page StructuredPage) *Source {
	return &Source{page: page}
}

// PageNumber returns the 0-based index of the wrapped page, or -1 without a page
func (s *Source) PageNumber() int {
	if s.page == nil {
		return -1
	}
	return s.page.Number()
}

// Spans returns every span of every text block in reading order
func (s *Source) Spans() (iter.Seq[Span], error) {
	blocks, err := s.validate()
	if err != nil {
		return nil, err
	}

	return func(yield func(Span) bool) {
		for _, block := range blocks {
			if block.Kind != BlockText {
				continue
			}
			for _, line := range block.Lines {
				for _, span := range line.Spans {
					if !yield(span) {
						return
					}
				}
			}
		}
	}, nil
}

// Lines returns every line of every text block in reading order
func (s *Source) Lines() (iter.Seq[Line], error) {
	blocks, err := s.validate()
	if err != nil {
		return nil, err
	}

	return func(yield func(Line) bool) {
		for _, block := range blocks {
			if block.Kind != BlockText {
				continue
			}
			for _, line := range block.Lines {
				if !yield(line) {
					return
				}
			}
		}
	}, nil
}

// validate rejects pages whose text blocks lack the lines/spans substructure,
// so a malformed page is never mistaken for a page with no text.
func (s *Source) validate() ([]Block, error) {
	if s.page == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeStructure, "no page to read")
	}

	blocks := s.page.Blocks()
	for bi, block := range blocks {
		if block.Kind != BlockText {
			continue
		}
		if block.Lines == nil {
			return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeStructure,
				"text block has no lines", fmt.Sprintf("block %d", bi)).WithPage(s.page.Number())
		}
		for li, line := range block.Lines {
			if line.Spans == nil {
				return nil, pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeStructure,
					"line has no spans", fmt.Sprintf("block %d line %d", bi, li)).WithPage(s.page.Number())
			}
		}
	}
	return blocks, nil
}
