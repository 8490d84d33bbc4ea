package pdf

import (
	"context"
	"iter"

	"github.com/rs/zerolog"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/extraction"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/pagerange"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/wrapper"
)

// Scanner walks a page range of a document. For every page with an abstract
// it reads the heading of the page before and yields both as a Result.
type Scanner struct {
	doc       wrapper.Document
	logger    zerolog.Logger
	mergeMode extraction.MergeMode
	keywords  []string
	scanned   pagerange.PageRange
	skipped   []int
}

// ScannerOption configures a Scanner
type ScannerOption func(*Scanner)

// WithLogger sets the logger used for page level diagnostics
func WithLogger(logger zerolog.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = logger }
}

// WithMergeMode selects the heading merge strategy
func WithMergeMode(mode extraction.MergeMode) ScannerOption {
	return func(s *Scanner) { s.mergeMode = mode }
}

// WithKeywords overrides the abstract trigger keywords
func WithKeywords(keywords ...string) ScannerOption {
	return func(s *Scanner) { s.keywords = keywords }
}

// NewScanner creates a Scanner over doc
func NewScanner(doc wrapper.Document, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		doc:       doc,
		logger:    zerolog.Nop(),
		mergeMode: extraction.MergePairwise,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan validates the range and returns a lazy sequence of results for pages
// in [start, end). end <= 0 means the last page of the document.
//
// Pages whose structure cannot be read are logged and skipped. A heading page
// that cannot be read yields the result with an empty header. Cancelling ctx
// yields ctx.Err() once and ends the sequence.
func (s *Scanner) Scan(ctx context.Context, start, end int) (iter.Seq2[Result, error], error) {
	count, err := s.doc.PageCount()
	if err != nil {
		return nil, err
	}

	r, err := pagerange.Resolve(start, end, count)
	if err != nil {
		return nil, err
	}

	s.scanned = r
	s.skipped = nil
	s.logger.Debug().
		Int("pages", count).
		Stringer("range", r).
		Msg("scanning page range")

	return func(yield func(Result, error) bool) {
		for i := r.Start; i < r.End; i++ {
			if err := ctx.Err(); err != nil {
				yield(Result{}, err)
				return
			}

			result, found, err := s.scanPage(i)
			if err != nil {
				yield(Result{}, err)
				return
			}
			if !found {
				continue
			}
			if !yield(result, nil) {
				return
			}
		}
	}, nil
}

// Range returns the page range resolved by the last call to Scan
func (s *Scanner) Range() pagerange.PageRange {
	return s.scanned
}

// Skipped returns the indexes of pages skipped by the last scan
func (s *Scanner) Skipped() []int {
	return append([]int(nil), s.skipped...)
}

func (s *Scanner) scanPage(index int) (Result, bool, error) {
	abstract, err := s.extractAbstract(index)
	if err != nil {
		if pdferrors.IsStructure(err) {
			s.skipped = append(s.skipped, index)
			s.logger.Warn().Err(err).Int("page", index).Msg("skipping page with unreadable structure")
			return Result{}, false, nil
		}
		return Result{}, false, err
	}

	if abstract.Abstract() == "" {
		return Result{}, false, nil
	}

	header, err := s.extractHeader(index - 1)
	if err != nil {
		if !pdferrors.IsStructure(err) {
			return Result{}, false, err
		}
		s.logger.Warn().Err(err).Int("page", index-1).Msg("heading page unreadable, using empty header")
		header = ""
	}

	s.logger.Info().
		Int("page", index).
		Str("keyword", abstract.Keyword()).
		Str("header", header).
		Msg("abstract found")

	return Result{
		Header:     header,
		PageNumber: index,
		Keyword:    abstract.Keyword(),
		Abstract:   abstract.Abstract(),
	}, true, nil
}

func (s *Scanner) extractAbstract(index int) (*extraction.AbstractExtractor, error) {
	page, err := s.doc.Page(index)
	if err != nil {
		return nil, err
	}

	opts := []extraction.AbstractOption{extraction.WithAbstractLogger(s.logger)}
	if s.keywords != nil {
		opts = append(opts, extraction.WithKeywords(s.keywords...))
	}

	abstract := extraction.NewAbstractExtractor(opts...)
	if err := abstract.Extract(spans.NewSource(page)); err != nil {
		return nil, err
	}
	return abstract, nil
}

func (s *Scanner) extractHeader(index int) (string, error) {
	page, err := s.doc.Page(index)
	if err != nil {
		return "", err
	}

	header := extraction.NewHeaderExtractor(
		extraction.WithMergeMode(s.mergeMode),
		extraction.WithHeaderLogger(s.logger),
	)
	if err := header.CollectBold(spans.NewSource(page)); err != nil {
		return "", err
	}
	if err := header.BuildHeader(); err != nil {
		return "", err
	}
	return header.Header(), nil
}
