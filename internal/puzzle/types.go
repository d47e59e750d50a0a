// internal/puzzle/types.go
//
// Core type definitions for the jigsaw puzzle.
// Defines:
//   - Point, Size, Cell: pixel and grid geometry.
//   - Shape: how many grid cells a piece covers.
//   - Piece: one draggable unit of the solved image, or a decoy cut from another image.
//   - Rand: the random source injected into the factory and planner.
//
// Pixel coordinates are board-relative: (0,0) is the top-left corner of the solved image.

package puzzle

// Point is a pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a pixel width/height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Cell identifies a grid cell.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// OffGrid is the cell carried by decoys, which have no slot on the board.
var OffGrid = Cell{Row: -1, Col: -1}

// DecoySentinel is the target of every decoy. All reachable positions are
// clamped into the viewport, so a decoy can never sit on its target.
var DecoySentinel = Point{X: -1e6, Y: -1e6}

// Shape is the footprint of a piece on the grid.
type Shape string

const (
	ShapeSingle     Shape = "single"     // 1×1
	ShapeHorizontal Shape = "horizontal" // 1×2, covers the cell to the right
	ShapeVertical   Shape = "vertical"   // 2×1, covers the cell below
)

// Span reports how many rows and columns the shape covers.
func (s Shape) Span() (rows, cols int) {
	switch s {
	case ShapeHorizontal:
		return 1, 2
	case ShapeVertical:
		return 2, 1
	default:
		return 1, 1
	}
}

// Piece is a single movable piece of the puzzle.
type Piece struct {
	ID      int   `json:"id"`      // Stable for the lifetime of the piece.
	Shape   Shape `json:"shape"`   // Footprint on the grid.
	IsDecoy bool  `json:"isDecoy"` // Decoys can never be placed.
	Cell    Cell  `json:"cell"`    // Origin cell when solved (OffGrid for decoys).
	Target  Point `json:"target"`  // Correct top-left corner (DecoySentinel for decoys).
	Size    Size  `json:"size"`    // Pixel size derived from cell size and shape.
	Current Point `json:"current"` // Present top-left corner.
	Placed  bool  `json:"placed"`  // Snapped into some cell, not necessarily Target. See Solved.

	// Anchor is the pointer offset from the piece origin; non-nil only while dragged.
	Anchor *Point `json:"-"`

	DecoyImage  int   `json:"decoyImage,omitempty"` // Index into the decoy image list.
	DecoyOffset Point `json:"decoyOffset"`          // Crop offset into the decoy image.
}

// Dragging reports whether the piece is between pointer-down and pointer-up.
func (p *Piece) Dragging() bool { return p.Anchor != nil }

// Solved reports whether a board piece is placed on its own target.
func (p *Piece) Solved() bool {
	return !p.IsDecoy && p.Placed && p.Current == p.Target
}

// Covers lists the cells the piece occupies when its origin is at c.
func (p *Piece) Covers(c Cell) []Cell {
	rows, cols := p.Shape.Span()
	out := make([]Cell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for k := 0; k < cols; k++ {
			out = append(out, Cell{Row: c.Row + r, Col: c.Col + k})
		}
	}
	return out
}

// Rand is the subset of *math/rand.Rand used by the factory and planner.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}
