// Package pack places catalog entries into a sprite canvas.
//
// # Algorithm
//
// Entries are sorted by extension, then width, and laid out left to right.
// Every row has the same height (the largest width plus padding). The canvas
// width is sized so that one row holds SlotsPerRow copies of every distinct
// width:
//
//	canvasWidth  = (sum(widths) + len(widths)*padding) * slotsPerRow
//	rowHeight    = max(widths) + padding
//	canvasHeight = rowHeight * round(entries / (len(widths)*slotsPerRow))
//
// The row count uses round-half-to-even by default, which can under-allocate
// the canvas on non-exact divisions. [Layout.Overflow] reports the positions
// that fall outside. [WithRounding] selects ceiling rounding instead.
//
// Packing is a pure function of the input keys: insertion order never
// affects the result.
package pack

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/camalot/fyles/pkg/catalog"
)

// Defaults.
const (
	DefaultSlotsPerRow = 6
	DefaultPadding     = 5
)

// Rounding selects how the row count is derived.
type Rounding string

const (
	// RoundHalfEven rounds the row count to nearest, ties to even.
	RoundHalfEven Rounding = "nearest"
	// RoundCeil always allocates enough rows for every entry.
	RoundCeil Rounding = "ceil"
)

// ParseRounding parses a rounding name. The empty string selects RoundHalfEven.
func ParseRounding(s string) (Rounding, error) {
	switch Rounding(s) {
	case "", RoundHalfEven:
		return RoundHalfEven, nil
	case RoundCeil:
		return RoundCeil, nil
	}
	return "", fmt.Errorf("unknown row rounding: %q (want %q or %q)", s, RoundHalfEven, RoundCeil)
}

// Option configures packing.
type Option func(*packer)

type packer struct {
	slots    int
	padding  int
	rounding Rounding
}

// WithSlotsPerRow sets how many copies of the width set fit in one row.
func WithSlotsPerRow(n int) Option { return func(p *packer) { p.slots = n } }

// WithPadding sets the gap after every icon, horizontally and vertically.
func WithPadding(n int) Option { return func(p *packer) { p.padding = n } }

// WithRounding sets the row count rounding mode.
func WithRounding(r Rounding) Option { return func(p *packer) { p.rounding = r } }

// Position is the placement of one entry.
type Position struct {
	Key   catalog.Key
	X, Y  int
	Width int
}

// Rect returns the pixel rectangle covered by the entry.
func (p Position) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Width)
}

// Layout is the result of packing.
type Layout struct {
	CanvasWidth  int
	CanvasHeight int
	RowHeight    int
	Widths       []int
	Positions    []Position

	// Defaults maps each width of the DEFAULT sentinel to its position.
	Defaults map[int]image.Point
}

// Bounds returns the canvas rectangle.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.CanvasWidth, l.CanvasHeight)
}

// Rows returns the number of rows actually used by the positions.
func (l Layout) Rows() int {
	if len(l.Positions) == 0 || l.RowHeight == 0 {
		return 0
	}
	return l.Positions[len(l.Positions)-1].Y/l.RowHeight + 1
}

// Overflow returns the positions that do not fit inside the canvas.
func (l Layout) Overflow() []Position {
	var out []Position
	b := l.Bounds()
	for _, p := range l.Positions {
		if !p.Rect().In(b) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultWidths returns the widths in Defaults, ascending.
func (l Layout) DefaultWidths() []int {
	out := make([]int, 0, len(l.Defaults))
	for w := range l.Defaults {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// Pack computes the layout for keys. An empty input yields a zero Layout.
func Pack(keys []catalog.Key, opts ...Option) Layout {
	p := packer{slots: DefaultSlotsPerRow, padding: DefaultPadding, rounding: RoundHalfEven}
	for _, opt := range opts {
		opt(&p)
	}
	if p.slots < 1 {
		p.slots = 1
	}
	if p.padding < 0 {
		p.padding = 0
	}

	l := Layout{Defaults: make(map[int]image.Point)}
	if len(keys) == 0 {
		return l
	}

	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, catalog.Key.Compare)

	seen := make(map[int]bool)
	sum, maxW := 0, 0
	for _, k := range sorted {
		if seen[k.Width] {
			continue
		}
		seen[k.Width] = true
		l.Widths = append(l.Widths, k.Width)
		sum += k.Width
		maxW = max(maxW, k.Width)
	}
	slices.Sort(l.Widths)

	distinct := len(l.Widths)
	l.CanvasWidth = (sum + distinct*p.padding) * p.slots
	l.RowHeight = maxW + p.padding
	l.CanvasHeight = l.RowHeight * p.rows(len(sorted), distinct*p.slots)

	x, y := 0, 0
	l.Positions = make([]Position, 0, len(sorted))
	for _, k := range sorted {
		if x > 0 && x+k.Width > l.CanvasWidth {
			x = 0
			y += l.RowHeight
		}
		l.Positions = append(l.Positions, Position{Key: k, X: x, Y: y, Width: k.Width})
		if k.IsDefault() {
			l.Defaults[k.Width] = image.Pt(x, y)
		}
		x += k.Width + p.padding
	}
	return l
}

func (p packer) rows(entries, perRow int) int {
	q := float64(entries) / float64(perRow)
	if p.rounding == RoundCeil {
		return int(math.Ceil(q))
	}
	return int(math.RoundToEven(q))
}
