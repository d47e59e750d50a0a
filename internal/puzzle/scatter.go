// internal/puzzle/scatter.go
//
// Scatter planning: moves pieces away from their solved positions when play
// begins. Only Current (and Placed for pre-placed pieces) is touched.

package puzzle

import "math"

// Edge is one of the margins around the board used by ScatterPerimeter.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Planner disperses pieces according to the configured policy.
type Planner struct {
	opts Options
	rng  Rand
}

// NewPlanner returns a Planner drawing from rng. opts is expected to be
// validated already (see NewFactory).
func NewPlanner(opts Options, rng Rand) *Planner {
	return &Planner{opts: opts.WithDefaults(), rng: rng}
}

// Scatter assigns every piece a new position inside the viewport vp.
//
//   - NumPrePlaced board pieces, picked by shuffle-and-take-first-K, are put
//     on their targets and marked placed.
//   - The remaining board pieces are scattered with the active policy and unplaced.
//   - Decoys keep their factory position under DecoyStatic and are re-planned
//     under DecoyDynamic.
//   - Pieces currently being dragged are left under the pointer.
func (p *Planner) Scatter(pieces []*Piece, vp Size) {
	screen := p.opts.Layout.Screen(vp)
	pre := p.prePlaced(pieces)
	for _, pc := range pieces {
		if pc.Dragging() {
			continue
		}
		switch {
		case pc.IsDecoy:
			if p.opts.DecoyPlacement == DecoyDynamic {
				pc.Current = p.position(pc.Size, screen)
			}
		case pre[pc.ID]:
			pc.Current = pc.Target
			pc.Placed = true
		default:
			pc.Current = p.position(pc.Size, screen)
			pc.Placed = false
		}
	}
}

// prePlaced picks the ids of the pieces exempt from scattering.
func (p *Planner) prePlaced(pieces []*Piece) map[int]bool {
	if p.opts.NumPrePlaced <= 0 {
		return nil
	}
	ids := make([]int, 0, len(pieces))
	for _, pc := range pieces {
		if !pc.IsDecoy {
			ids = append(ids, pc.ID)
		}
	}
	p.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	k := min(p.opts.NumPrePlaced, len(ids))
	out := make(map[int]bool, k)
	for _, id := range ids[:k] {
		out[id] = true
	}
	return out
}

func (p *Planner) position(size Size, screen Rect) Point {
	if p.opts.Scatter == ScatterPerimeter {
		return p.perimeterPoint(size, screen)
	}
	return freePoint(p.rng, size, screen)
}

// freePoint is uniform over area, keeping the whole piece inside it.
func freePoint(rng Rand, size Size, area Rect) Point {
	return Point{
		X: area.Min.X + rng.Float64()*math.Max(0, area.Width()-size.Width),
		Y: area.Min.Y + rng.Float64()*math.Max(0, area.Height()-size.Height),
	}
}

// perimeterPoint is uniform along one margin around the board. When a margin
// is too thin for the piece the result is clamped back onto the screen.
func (p *Planner) perimeterPoint(size Size, screen Rect) Point {
	m := p.opts.PerimeterMargin
	board := p.opts.Layout.BoardRect()
	inner := Rect{
		Min: Point{X: screen.Min.X + m, Y: screen.Min.Y + m},
		Max: Point{X: screen.Max.X - m, Y: screen.Max.Y - m},
	}

	edge := Edge(p.rng.Intn(p.opts.PerimeterEdges))
	var x, y float64
	switch edge {
	case EdgeLeft:
		x = p.between(inner.Min.X, board.Min.X-m-size.Width)
		y = p.between(inner.Min.Y, inner.Max.Y-size.Height)
	case EdgeRight:
		x = p.between(board.Max.X+m, inner.Max.X-size.Width)
		y = p.between(inner.Min.Y, inner.Max.Y-size.Height)
	case EdgeTop:
		x = p.between(inner.Min.X, inner.Max.X-size.Width)
		y = p.between(inner.Min.Y, board.Min.Y-m-size.Height)
	default:
		x = p.between(inner.Min.X, inner.Max.X-size.Width)
		y = p.between(board.Max.Y+m, inner.Max.Y-size.Height)
	}
	return screen.ClampInto(Point{X: x, Y: y}, size)
}

// between draws uniformly from [lo, hi]; an empty range yields lo. It always
// consumes one draw so sequences stay reproducible.
func (p *Planner) between(lo, hi float64) float64 {
	r := p.rng.Float64()
	if hi <= lo {
		return lo
	}
	return lo + r*(hi-lo)
}
