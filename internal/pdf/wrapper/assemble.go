package wrapper

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
)

// LayoutConfig tunes how fragments are grouped into lines and blocks.
// All values are multiples of the font size.
type LayoutConfig struct {
	// BaselineTolerance is the vertical drift still treated as the same line
	BaselineTolerance float64
	// BlockGap is the vertical distance between baselines that starts a new block
	BlockGap float64
	// WordGap is the horizontal gap between fragments that implies a space
	WordGap float64
	// GlyphWidth estimates a glyph's advance when the font has no width table
	GlyphWidth float64
}

// DefaultLayoutConfig returns the grouping thresholds used by the scanner
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		BaselineTolerance: 0.5,
		BlockGap:          2.0,
		WordGap:           0.15,
		GlyphWidth:        0.5,
	}
}

// assembler groups fragments, in content stream order, into blocks of lines
// of spans. Adjacent fragments on one baseline with the same style share a span.
type assembler struct {
	cfg    LayoutConfig
	blocks []spans.Block
	lines  []spans.Line
	line   []spans.Span
	last   *fragment
	lineY  float64
}

func assemble(fragments []fragment, cfg LayoutConfig) []spans.Block {
	a := &assembler{cfg: cfg}
	for i := range fragments {
		a.add(&fragments[i])
	}
	a.flushBlock()
	if a.blocks == nil {
		return []spans.Block{}
	}
	return a.blocks
}

func (a *assembler) add(f *fragment) {
	switch {
	case a.last == nil:
		a.lineY = f.Y
	case a.startsBlock(f):
		a.flushBlock()
		a.lineY = f.Y
	case a.startsLine(f):
		a.flushLine()
		a.lineY = f.Y
	}

	span := spans.Span{Text: f.Text, Font: f.Font, Size: f.Size, Color: f.Color}
	if n := len(a.line); n > 0 && a.last != nil && sameStyle(a.line[n-1], span) {
		prev := &a.line[n-1]
		if a.needsSpace(a.last, f, prev.Text) {
			prev.Text += " "
		}
		prev.Text += f.Text
	} else {
		a.line = append(a.line, span)
	}
	a.last = f
}

func (a *assembler) startsLine(f *fragment) bool {
	size := math.Max(math.Min(f.Size, a.last.Size), 1)
	if math.Abs(f.Y-a.lineY) > a.cfg.BaselineTolerance*size {
		return true
	}
	// text moved back to the left on the same baseline: treat as a new line
	return f.Moved && f.X < a.last.X-size
}

func (a *assembler) startsBlock(f *fragment) bool {
	size := math.Max(math.Max(f.Size, a.last.Size), 1)
	return math.Abs(a.lineY-f.Y) > a.cfg.BlockGap*size
}

func (a *assembler) needsSpace(prev, f *fragment, prevText string) bool {
	if endsWithSpace(prevText) || startsWithSpace(f.Text) {
		return false
	}
	if !f.Moved {
		return false
	}
	return f.X-a.estimatedEnd(prev) > a.cfg.WordGap*f.Size
}

func (a *assembler) estimatedEnd(f *fragment) float64 {
	if f.EndX-f.X > 0.01 {
		return f.EndX
	}
	return f.X + a.cfg.GlyphWidth*f.Size*float64(utf8.RuneCountInString(f.Text))
}

func (a *assembler) flushLine() {
	if len(a.line) > 0 {
		a.lines = append(a.lines, spans.Line{Spans: a.line})
	}
	a.line = nil
}

func (a *assembler) flushBlock() {
	a.flushLine()
	if len(a.lines) > 0 {
		a.blocks = append(a.blocks, spans.Block{Kind: spans.BlockText, Lines: a.lines})
	}
	a.lines = nil
}

func sameStyle(a, b spans.Span) bool {
	return a.Font == b.Font && a.Color == b.Color && spans.RoundSize(a.Size) == spans.RoundSize(b.Size)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) == 0
}
