// Package spans models the structured text of one PDF page as
// blocks of lines of styled spans, and adapts it into lazy sequences.
package spans

import (
	"fmt"
	"math"
	"strings"
)

// SizePrecision is the number of decimal places font sizes are compared at
const SizePrecision = 3

// Color is a packed sRGB fill color, 0xRRGGBB. Black is 0.
type Color uint32

// RGB packs 0..1 float components into a Color
func RGB(r, g, b float64) Color {
	return Color(uint32(channel(r))<<16 | uint32(channel(g))<<8 | uint32(channel(b)))
}

// Gray packs a 0..1 gray level into a Color
func Gray(level float64) Color {
	return RGB(level, level, level)
}

// CMYK converts 0..1 CMYK components into a Color
func CMYK(c, m, y, k float64) Color {
	return RGB((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

func channel(f float64) uint8 {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return uint8(math.Round(f * 255))
}

// String renders the color as #rrggbb
func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c))
}

// Span is a run of text sharing one font, size and color within a line
type Span struct {
	Text  string  `json:"text"`
	Font  string  `json:"font"`
	Size  float64 `json:"size"`
	Color Color   `json:"color"`
}

// RoundedSize returns Size rounded to SizePrecision decimal places
func (s Span) RoundedSize() float64 {
	return RoundSize(s.Size)
}

// Stripped returns the span text without leading and trailing whitespace
func (s Span) Stripped() string {
	return strings.TrimSpace(s.Text)
}

// IsBold reports whether the font name marks the span as bold
func (s Span) IsBold() bool {
	return strings.Contains(strings.ToLower(s.Font), "bold")
}

// Style returns the formatting triple used for consistency checks
func (s Span) Style() Style {
	return Style{Size: s.RoundedSize(), Font: s.Font, Color: s.Color}
}

// Style is the (size, font, color) triple of a span
type Style struct {
	Size  float64
	Font  string
	Color Color
}

// Line is an ordered sequence of spans in reading order
type Line struct {
	Spans []Span `json:"spans"`
}

// Text returns the concatenated text of the line's spans
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// BlockKind distinguishes text blocks from image blocks
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
)

// Block is a group of lines. Image blocks carry no lines.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Lines []Line    `json:"lines,omitempty"`
}

// StructuredPage is one page's text structure as reported by a document backend
type StructuredPage interface {
	// Number returns the 0-based page index
	Number() int
	// Blocks returns the page's blocks in reading order
	Blocks() []Block
}

// Page is a StructuredPage held in memory
type Page struct {
	Index     int
	BlockList []Block
}

// Number returns the 0-based page index
func (p *Page) Number() int { return p.Index }

// Blocks returns the page's blocks
func (p *Page) Blocks() []Block { return p.BlockList }

// RoundSize rounds a font size to SizePrecision decimal places
func RoundSize(size float64) float64 {
	scale := math.Pow(10, SizePrecision)
	return math.Round(size*scale) / scale
}
