// internal/puzzle/placement.go
//
// Drop evaluation.
// On release the piece is matched against the nearest grid cell:
//   - nearest cell = per-axis rounding of Current / cell size, clamped so the
//     whole piece fits on the grid;
//   - snap when both axis distances are within the tolerance and no other
//     placed piece holds any of the cells the piece would cover;
//   - otherwise the piece stays where it was dropped.
//
// A piece may snap into a cell that is not its own; only Solved pieces count
// toward a win. Decoys never snap.

package puzzle

import "math"

// Outcome is the result of a drop.
type Outcome string

const (
	OutcomeSnapped  Outcome = "snapped"
	OutcomeMissed   Outcome = "missed"
	OutcomeConflict Outcome = "conflict"
)

// Verdict describes a drop decision.
type Verdict struct {
	Outcome      Outcome `json:"outcome"`
	Cell         Cell    `json:"cell"`         // nearest cell (OffGrid for decoys)
	Position     Point   `json:"position"`     // where the piece ends up
	Distance     Point   `json:"distance"`     // per-axis distance to the cell origin
	ConflictWith int     `json:"conflictWith"` // occupying piece id, -1 when none
}

// Err returns ErrPlacementConflict for conflicting drops and nil otherwise.
func (v Verdict) Err() error {
	if v.Outcome == OutcomeConflict {
		return ErrPlacementConflict
	}
	return nil
}

// Apply writes the verdict to p. Only snaps move the piece.
func (v Verdict) Apply(p *Piece) {
	if v.Outcome == OutcomeSnapped {
		p.Current = v.Position
		p.Placed = true
	}
}

// Evaluator decides drops on a fixed layout.
type Evaluator struct {
	layout    Layout
	tolerance float64
}

// NewEvaluator returns an Evaluator snapping within tolerance pixels per axis.
func NewEvaluator(layout Layout, tolerance float64) *Evaluator {
	return &Evaluator{layout: layout, tolerance: tolerance}
}

// Nearest returns the cell a piece at pos would snap to and that cell's origin.
func (e *Evaluator) Nearest(shape Shape, pos Point) (Cell, Point) {
	cs := e.layout.CellSize()
	rows, cols := shape.Span()
	n := e.layout.Cols
	c := Cell{
		Row: clampInt(int(math.Round(pos.Y/cs.Height)), 0, n-rows),
		Col: clampInt(int(math.Round(pos.X/cs.Width)), 0, n-cols),
	}
	return c, e.layout.CellOrigin(c)
}

// Evaluate decides the drop of p at its Current position against the other
// pieces. It does not mutate anything; see Verdict.Apply.
func (e *Evaluator) Evaluate(p *Piece, pieces []*Piece) Verdict {
	v := Verdict{Outcome: OutcomeMissed, Cell: OffGrid, Position: p.Current, ConflictWith: -1}
	if p.IsDecoy {
		return v
	}
	cell, origin := e.Nearest(p.Shape, p.Current)
	v.Cell = cell
	v.Distance = Point{X: math.Abs(p.Current.X - origin.X), Y: math.Abs(p.Current.Y - origin.Y)}
	if v.Distance.X > e.tolerance || v.Distance.Y > e.tolerance {
		return v
	}
	if other := e.occupant(p, cell, pieces); other != nil {
		v.Outcome = OutcomeConflict
		v.ConflictWith = other.ID
		return v
	}
	v.Outcome = OutcomeSnapped
	v.Position = origin
	return v
}

// occupant returns the first placed piece holding a cell p would cover at c.
// For single-cell pieces this is exact position equality.
func (e *Evaluator) occupant(p *Piece, c Cell, pieces []*Piece) *Piece {
	want := make(map[Cell]bool)
	for _, cc := range p.Covers(c) {
		want[cc] = true
	}
	for _, o := range pieces {
		if o == p || o.ID == p.ID || !o.Placed || o.IsDecoy {
			continue
		}
		oc, _ := e.Nearest(o.Shape, o.Current)
		for _, cc := range o.Covers(oc) {
			if want[cc] {
				return o
			}
		}
	}
	return nil
}
