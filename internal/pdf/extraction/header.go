package extraction

import (
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"

	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
)

// SpanSource provides a page's spans in reading order
type SpanSource interface {
	Spans() (iter.Seq[spans.Span], error)
}

// MergeMode selects how bold runs are merged into a header
type MergeMode int

const (
	// MergePairwise keeps every run whose style equals the run before it
	MergePairwise MergeMode = iota
	// MergeLegacyStep skips the run that follows a successful merge,
	// matching headers produced by earlier releases of the scanner
	MergeLegacyStep
)

// String returns the mode name
func (m MergeMode) String() string {
	if m == MergeLegacyStep {
		return "legacy_step"
	}
	return "pairwise"
}

type headerState int

const (
	headerNew headerState = iota
	headerBoldCollected
	headerBuilt
)

// BoldRun is a bold span reduced to its stripped text and style
type BoldRun struct {
	Text string
	Size float64
	Font string
}

func (r BoldRun) sameStyle(o BoldRun) bool {
	return r.Size == o.Size && r.Font == o.Font
}

// HeaderExtractor rebuilds a heading from the bold runs of one page.
// Use a fresh extractor per page.
type HeaderExtractor struct {
	mode   MergeMode
	logger zerolog.Logger
	state  headerState
	runs   []BoldRun
	header string
}

// HeaderOption configures a HeaderExtractor
type HeaderOption func(*HeaderExtractor)

// WithMergeMode sets the bold-run merge mode
func WithMergeMode(mode MergeMode) HeaderOption {
	return func(h *HeaderExtractor) { h.mode = mode }
}

// WithHeaderLogger sets the logger
func WithHeaderLogger(logger zerolog.Logger) HeaderOption {
	return func(h *HeaderExtractor) { h.logger = logger }
}

// NewHeaderExtractor creates a HeaderExtractor
func NewHeaderExtractor(opts ...HeaderOption) *HeaderExtractor {
	h := &HeaderExtractor{
		mode:   MergePairwise,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CollectBold records every bold span with non-empty text, in page order
func (h *HeaderExtractor) CollectBold(src SpanSource) error {
	if h.state != headerNew {
		return fmt.Errorf("bold runs already collected")
	}

	seq, err := src.Spans()
	if err != nil {
		return err
	}

	for span := range seq {
		if !span.IsBold() {
			continue
		}
		text := span.Stripped()
		if text == "" {
			continue
		}
		h.runs = append(h.runs, BoldRun{Text: text, Size: span.RoundedSize(), Font: span.Font})
	}

	h.state = headerBoldCollected
	return nil
}

// BuildHeader merges the collected bold runs into the header string
func (h *HeaderExtractor) BuildHeader() error {
	switch h.state {
	case headerNew:
		return fmt.Errorf("bold runs not collected")
	case headerBuilt:
		return fmt.Errorf("header already built")
	}

	merged := mergeRuns(h.runs, h.mode)
	h.logger.Debug().
		Strs("merged", merged).
		Int("runs", len(h.runs)).
		Stringer("mode", h.mode).
		Msg("merged bold runs")

	h.header = strings.Join(merged, " ")
	h.state = headerBuilt
	return nil
}

// Header returns the last built header, empty before BuildHeader
func (h *HeaderExtractor) Header() string {
	return h.header
}

// Runs returns a copy of the collected bold runs
func (h *HeaderExtractor) Runs() []BoldRun {
	out := make([]BoldRun, len(h.runs))
	copy(out, h.runs)
	return out
}

// mergeRuns keeps the first run and every run styled like its predecessor
func mergeRuns(runs []BoldRun, mode MergeMode) []string {
	if len(runs) == 0 {
		return nil
	}

	merged := []string{runs[0].Text}
	for i := 1; i < len(runs); i++ {
		if !runs[i-1].sameStyle(runs[i]) {
			continue
		}
		merged = append(merged, runs[i].Text)
		if mode == MergeLegacyStep {
			i++
		}
	}
	return merged
}
