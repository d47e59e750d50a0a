// internal/puzzle/layout.go
//
// Board geometry.
// Pieces live in board coordinates with (0,0) at the board's top-left corner.
// The board is centred in the viewport, so the visible screen extends past the
// board by the viewport margins on each side (negative on the top and left).

package puzzle

import "math"

// Layout is the board geometry: an N×N grid over a Board-sized image.
type Layout struct {
	Cols  int  // grid dimension N
	Board Size // solved image size in pixels
}

// Validate rejects layouts that cannot be partitioned into cells.
func (l Layout) Validate() error {
	if l.Cols <= 0 {
		return &ConfigurationError{Field: "piecesCols", Reason: "must be positive"}
	}
	if l.Board.Width <= 0 {
		return &ConfigurationError{Field: "width", Reason: "must be positive"}
	}
	if l.Board.Height <= 0 {
		return &ConfigurationError{Field: "height", Reason: "must be positive"}
	}
	return nil
}

// CellSize is the pixel size of one grid cell.
func (l Layout) CellSize() Size {
	return Size{Width: l.Board.Width / float64(l.Cols), Height: l.Board.Height / float64(l.Cols)}
}

// CellOrigin is the top-left pixel of cell c.
func (l Layout) CellOrigin(c Cell) Point {
	cs := l.CellSize()
	return Point{X: float64(c.Col) * cs.Width, Y: float64(c.Row) * cs.Height}
}

// PieceSize is the pixel size of a piece with the given shape.
func (l Layout) PieceSize(s Shape) Size {
	cs := l.CellSize()
	rows, cols := s.Span()
	return Size{Width: cs.Width * float64(cols), Height: cs.Height * float64(rows)}
}

// BoardRect is the board in board coordinates.
func (l Layout) BoardRect() Rect {
	return Rect{Max: Point{X: l.Board.Width, Y: l.Board.Height}}
}

// Offset is the board origin in viewport coordinates; the board is centred.
// A viewport smaller than the board is treated as exactly the board.
func (l Layout) Offset(vp Size) Point {
	return Point{
		X: math.Max(0, (vp.Width-l.Board.Width)/2),
		Y: math.Max(0, (vp.Height-l.Board.Height)/2),
	}
}

// Screen is the visible viewport expressed in board coordinates: the board
// rectangle padded outward by the viewport margins.
func (l Layout) Screen(vp Size) Rect {
	off := l.Offset(vp)
	return Rect{
		Min: Point{X: -off.X, Y: -off.Y},
		Max: Point{X: l.Board.Width + off.X, Y: l.Board.Height + off.Y},
	}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether a piece of size s at p lies fully inside r.
func (r Rect) Contains(p Point, s Size) bool {
	return p.X >= r.Min.X && p.Y >= r.Min.Y && p.X+s.Width <= r.Max.X && p.Y+s.Height <= r.Max.Y
}

// ClampInto moves p so a piece of size s stays inside r.
func (r Rect) ClampInto(p Point, s Size) Point {
	return Point{
		X: clamp(p.X, r.Min.X, r.Max.X-s.Width),
		Y: clamp(p.Y, r.Min.Y, r.Max.Y-s.Height),
	}
}

// clamp restricts v to [lo, hi]; an empty range collapses to lo.
func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
