package extraction

import (
	"iter"
	"strings"

	"github.com/rs/zerolog"

	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
)

// DefaultKeywords are the trigger terms, in precedence order
var DefaultKeywords = []string{"abstract", "summary"}

// LineSource provides a page's lines in reading order
type LineSource interface {
	Lines() (iter.Seq[spans.Line], error)
}

// AbstractExtractor pulls the abstract paragraph out of one page: text after
// a trigger keyword whose formatting matches the first span examined after it.
// Use a fresh extractor per page.
type AbstractExtractor struct {
	keywords []string
	logger   zerolog.Logger

	keyword   string
	triggered bool
	reference *spans.Style
	abstract  string
}

// AbstractOption configures an AbstractExtractor
type AbstractOption func(*AbstractExtractor)

// WithKeywords replaces the trigger keywords. Matching is case-insensitive.
func WithKeywords(keywords ...string) AbstractOption {
	return func(a *AbstractExtractor) {
		a.keywords = make([]string, 0, len(keywords))
		for _, k := range keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				a.keywords = append(a.keywords, k)
			}
		}
	}
}

// WithAbstractLogger sets the logger
func WithAbstractLogger(logger zerolog.Logger) AbstractOption {
	return func(a *AbstractExtractor) { a.logger = logger }
}

// NewAbstractExtractor creates an AbstractExtractor
func NewAbstractExtractor(opts ...AbstractOption) *AbstractExtractor {
	a := &AbstractExtractor{
		keywords: DefaultKeywords,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Extract scans the page's lines once. Collection starts on the line after
// the trigger and runs to the end of the page; spans whose style differs
// from the reference are skipped, not treated as the end of the abstract.
func (a *AbstractExtractor) Extract(src LineSource) error {
	seq, err := src.Lines()
	if err != nil {
		return err
	}

	var fragments []string
	for line := range seq {
		if !a.triggered {
			a.scanForKeyword(line)
			continue
		}

		for _, span := range line.Spans {
			style := span.Style()
			if a.reference == nil {
				a.reference = &style
				a.logger.Debug().
					Float64("size", style.Size).
					Str("font", style.Font).
					Stringer("color", style.Color).
					Msg("locked abstract formatting")
			}
			text := span.Stripped()
			if style == *a.reference && text != "" {
				fragments = append(fragments, text)
			}
		}
	}

	a.abstract = strings.Join(fragments, " ")
	return nil
}

// scanForKeyword checks the line's spans in order and stops at the first match
func (a *AbstractExtractor) scanForKeyword(line spans.Line) {
	for _, span := range line.Spans {
		text := strings.ToLower(span.Stripped())
		for _, keyword := range a.keywords {
			if strings.Contains(text, keyword) {
				a.keyword = keyword
				a.triggered = true
				a.logger.Debug().Str("keyword", keyword).Str("span", span.Text).Msg("abstract trigger found")
				return
			}
		}
	}
}

// Abstract returns the extracted text, empty when nothing matched
func (a *AbstractExtractor) Abstract() string {
	return a.abstract
}

// Keyword returns the keyword that triggered extraction, empty if none did
func (a *AbstractExtractor) Keyword() string {
	return a.keyword
}

// Triggered reports whether a keyword was found
func (a *AbstractExtractor) Triggered() bool {
	return a.triggered
}
