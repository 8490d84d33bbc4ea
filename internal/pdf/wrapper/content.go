package wrapper

import (
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/spans"
)

// spaceKerning is the TJ adjustment, in thousandths of an em, treated as a word gap
const spaceKerning = 250

type matrix [3][3]float64

var identity = matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (x matrix) mul(y matrix) matrix {
	var z matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				z[i][j] += x[i][k] * y[k][j]
			}
		}
	}
	return z
}

func translate(tx, ty float64) matrix {
	return matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
}

// fragment is the output of one text-showing operator
type fragment struct {
	Text  string
	Font  string
	Size  float64
	Color spans.Color
	X, Y  float64
	EndX  float64
	// Moved is set when the text position was changed explicitly before the fragment
	Moved bool
}

type graphicsState struct {
	Tc, Tw, Th, Tl float64
	Tfs, Trise     float64
	Tm, Tlm, CTM   matrix
	font           pdf.Font
	fontName       string
	enc            pdf.TextEncoding
	fill           spans.Color
}

// contentInterpreter walks a page content stream and records text fragments
// with the font, size and fill color in effect when each was shown.
type contentInterpreter struct {
	page      pdf.Page
	g         graphicsState
	stack     []graphicsState
	fragments []fragment
	moved     bool
	start     matrix
}

func newContentInterpreter(page pdf.Page) *contentInterpreter {
	return &contentInterpreter{
		page: page,
		g: graphicsState{
			Th:  1,
			Tm:  identity,
			Tlm: identity,
			CTM: identity,
		},
	}
}

// run interprets every content stream of the page. Malformed streams panic
// inside pdf.Interpret, so callers must recover.
func (in *contentInterpreter) run() []fragment {
	contents := in.page.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Null:
		return nil
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			pdf.Interpret(contents.Index(i), in.operator)
		}
	default:
		pdf.Interpret(contents, in.operator)
	}
	return in.fragments
}

func (in *contentInterpreter) operator(stk *pdf.Stack, op string) {
	n := stk.Len()
	args := make([]pdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}

	g := &in.g
	switch op {
	case "q":
		in.stack = append(in.stack, *g)
	case "Q":
		if len(in.stack) == 0 {
			return
		}
		*g = in.stack[len(in.stack)-1]
		in.stack = in.stack[:len(in.stack)-1]
	case "cm":
		requireArgs(op, args, 6)
		g.CTM = matrixFrom(args).mul(g.CTM)

	case "g":
		requireArgs(op, args, 1)
		g.fill = spans.Gray(args[0].Float64())
	case "rg":
		requireArgs(op, args, 3)
		g.fill = spans.RGB(args[0].Float64(), args[1].Float64(), args[2].Float64())
	case "k":
		requireArgs(op, args, 4)
		g.fill = spans.CMYK(args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64())
	case "cs":
		// selecting a color space resets the fill color to its initial value
		g.fill = 0
	case "sc", "scn":
		g.fill = colorFromComponents(args, g.fill)

	case "BT":
		g.Tm = identity
		g.Tlm = identity
		in.moved = true
	case "ET":
	case "Tc":
		requireArgs(op, args, 1)
		g.Tc = args[0].Float64()
	case "Tw":
		requireArgs(op, args, 1)
		g.Tw = args[0].Float64()
	case "Tz":
		requireArgs(op, args, 1)
		g.Th = args[0].Float64() / 100
	case "TL":
		requireArgs(op, args, 1)
		g.Tl = args[0].Float64()
	case "Ts":
		requireArgs(op, args, 1)
		g.Trise = args[0].Float64()
	case "Tf":
		requireArgs(op, args, 2)
		g.fontName = args[0].Name()
		g.font = in.page.Font(g.fontName)
		g.enc = g.font.Encoder()
		g.Tfs = args[1].Float64()

	case "TD":
		requireArgs(op, args, 2)
		g.Tl = -args[1].Float64()
		fallthrough
	case "Td":
		requireArgs(op, args, 2)
		g.Tlm = translate(args[0].Float64(), args[1].Float64()).mul(g.Tlm)
		g.Tm = g.Tlm
		in.moved = true
	case "Tm":
		requireArgs(op, args, 6)
		g.Tm = matrixFrom(args)
		g.Tlm = g.Tm
		in.moved = true
	case "T*":
		in.nextLine()

	case "\"":
		requireArgs(op, args, 3)
		g.Tw = args[0].Float64()
		g.Tc = args[1].Float64()
		in.nextLine()
		in.showString(args[2].RawString())
	case "'":
		requireArgs(op, args, 1)
		in.nextLine()
		in.showString(args[0].RawString())
	case "Tj":
		requireArgs(op, args, 1)
		in.showString(args[0].RawString())
	case "TJ":
		requireArgs(op, args, 1)
		in.showArray(args[0])
	}
}

func (in *contentInterpreter) nextLine() {
	in.g.Tlm = translate(0, -in.g.Tl).mul(in.g.Tlm)
	in.g.Tm = in.g.Tlm
	in.moved = true
}

func (in *contentInterpreter) showString(raw string) {
	in.beginShow()
	in.emit(in.decode(raw))
}

func (in *contentInterpreter) showArray(arr pdf.Value) {
	in.beginShow()
	var b strings.Builder
	for i := 0; i < arr.Len(); i++ {
		item := arr.Index(i)
		if item.Kind() == pdf.String {
			b.WriteString(in.decode(item.RawString()))
			continue
		}
		adjust := item.Float64()
		in.g.Tm = translate(-adjust/1000*in.g.Tfs*in.g.Th, 0).mul(in.g.Tm)
		if -adjust >= spaceKerning && b.Len() > 0 {
			b.WriteByte(' ')
		}
	}
	in.emit(b.String())
}

// decode converts raw string bytes to text and advances the text matrix
func (in *contentInterpreter) decode(raw string) string {
	g := &in.g
	var text string
	if g.enc != nil {
		text = g.enc.Decode(raw)
	} else {
		text = raw
	}

	for i := 0; i < len(raw); i++ {
		code := int(raw[i])
		tx := g.font.Width(code)/1000*g.Tfs + g.Tc
		if code == ' ' {
			tx += g.Tw
		}
		g.Tm = translate(tx*g.Th, 0).mul(g.Tm)
	}
	return text
}

// rendering returns the text rendering matrix for the current state
func (in *contentInterpreter) rendering() matrix {
	g := &in.g
	return matrix{{g.Tfs * g.Th, 0, 0}, {0, g.Tfs, 0}, {0, g.Trise, 1}}.mul(g.Tm).mul(g.CTM)
}

func (in *contentInterpreter) beginShow() {
	in.start = in.rendering()
}

func (in *contentInterpreter) emit(text string) {
	if text == "" {
		return
	}
	end := in.rendering()
	in.fragments = append(in.fragments, fragment{
		Text:  text,
		Font:  fontName(in.g.font, in.g.fontName),
		Size:  math.Hypot(in.start[1][0], in.start[1][1]),
		Color: in.g.fill,
		X:     in.start[2][0],
		Y:     in.start[2][1],
		EndX:  end[2][0],
		Moved: in.moved,
	})
	in.moved = false
}

// fontName returns the base font without its subset tag, falling back to
// the resource name when the font dictionary has no BaseFont.
func fontName(font pdf.Font, resource string) string {
	name := font.BaseFont()
	if name == "" {
		return resource
	}
	if i := strings.Index(name, "+"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func matrixFrom(args []pdf.Value) matrix {
	var m matrix
	for i := 0; i < 6; i++ {
		m[i/2][i%2] = args[i].Float64()
	}
	m[2][2] = 1
	return m
}

// colorFromComponents reads numeric sc/scn operands; pattern names leave the color unchanged
func colorFromComponents(args []pdf.Value, current spans.Color) spans.Color {
	var comps []float64
	for _, a := range args {
		switch a.Kind() {
		case pdf.Integer, pdf.Real:
			comps = append(comps, a.Float64())
		default:
			return current
		}
	}
	switch len(comps) {
	case 1:
		return spans.Gray(comps[0])
	case 3:
		return spans.RGB(comps[0], comps[1], comps[2])
	case 4:
		return spans.CMYK(comps[0], comps[1], comps[2], comps[3])
	default:
		return current
	}
}

func requireArgs(op string, args []pdf.Value, n int) {
	if len(args) != n {
		panic(fmt.Errorf("bad %s operator: want %d operands, got %d", op, n, len(args)))
	}
}
