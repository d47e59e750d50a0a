package puzzle

import (
	"errors"
	"testing"
)

// 3×3 grid of 200px cells.
func board3() Layout { return layout(3, 600, 600) }

func single(id int, cell Cell) *Piece {
	l := board3()
	t := l.CellOrigin(cell)
	return &Piece{ID: id, Shape: ShapeSingle, Cell: cell, Target: t, Size: l.CellSize(), Current: t}
}

func TestEvaluateToleranceBoundary(t *testing.T) {
	ev := NewEvaluator(board3(), 50)
	cases := []struct {
		drop Point
		want Outcome
	}{
		{Point{200, 200}, OutcomeSnapped},
		{Point{250, 200}, OutcomeSnapped},
		{Point{251, 200}, OutcomeMissed},
		{Point{200, 150}, OutcomeSnapped},
		{Point{200, 149}, OutcomeMissed},
		{Point{150, 250}, OutcomeSnapped},
		{Point{149, 251}, OutcomeMissed},
		{Point{200, 251}, OutcomeMissed},
	}
	for _, tc := range cases {
		p := single(4, Cell{1, 1})
		p.Current = tc.drop
		v := ev.Evaluate(p, []*Piece{p})
		if v.Outcome != tc.want {
			t.Errorf("drop %v: outcome %s (distance %v), want %s", tc.drop, v.Outcome, v.Distance, tc.want)
			continue
		}
		v.Apply(p)
		if tc.want == OutcomeSnapped {
			if !p.Placed || p.Current != (Point{200, 200}) || !p.Solved() {
				t.Errorf("drop %v: placed=%v at %v", tc.drop, p.Placed, p.Current)
			}
		} else if p.Placed || p.Current != tc.drop {
			t.Errorf("drop %v: missed piece moved to %v (placed=%v)", tc.drop, p.Current, p.Placed)
		}
	}
}

func TestEvaluateSnapsIntoForeignCell(t *testing.T) {
	ev := NewEvaluator(board3(), 50)
	p := single(0, Cell{0, 0})
	p.Current = Point{410, 5}
	v := ev.Evaluate(p, []*Piece{p})
	if v.Outcome != OutcomeSnapped || v.Cell != (Cell{0, 2}) {
		t.Fatalf("verdict %+v", v)
	}
	v.Apply(p)
	if !p.Placed || p.Current != (Point{400, 0}) {
		t.Fatalf("placed=%v at %v", p.Placed, p.Current)
	}
	if p.Solved() {
		t.Fatal("piece in a foreign cell reported solved")
	}
}

func TestEvaluateOccupancyFirstComeFirstServed(t *testing.T) {
	ev := NewEvaluator(board3(), 50)
	a := single(0, Cell{1, 1})
	b := single(1, Cell{0, 0})
	pieces := []*Piece{a, b}

	a.Current = Point{220, 180}
	va := ev.Evaluate(a, pieces)
	if va.Outcome != OutcomeSnapped {
		t.Fatalf("first drop: %s", va.Outcome)
	}
	va.Apply(a)

	b.Current = Point{190, 210}
	vb := ev.Evaluate(b, pieces)
	if vb.Outcome != OutcomeConflict || vb.ConflictWith != a.ID {
		t.Fatalf("second drop: %+v", vb)
	}
	if !errors.Is(vb.Err(), ErrPlacementConflict) {
		t.Fatalf("Err() = %v", vb.Err())
	}
	vb.Apply(b)
	if b.Placed || b.Current != (Point{190, 210}) {
		t.Fatalf("rejected piece moved: placed=%v at %v", b.Placed, b.Current)
	}

	// Picking a up frees the cell.
	a.Placed = false
	a.Current = Point{0, 0}
	if v := ev.Evaluate(b, pieces); v.Outcome != OutcomeSnapped {
		t.Fatalf("after re-drag: %s", v.Outcome)
	}
}

func TestEvaluateMultiCellOccupancy(t *testing.T) {
	l := board3()
	ev := NewEvaluator(l, 50)
	pair := &Piece{ID: 0, Shape: ShapeHorizontal, Cell: Cell{0, 0}, Target: Point{}, Size: l.PieceSize(ShapeHorizontal), Placed: true}
	s := single(1, Cell{2, 2})
	s.Current = Point{205, 10}
	v := ev.Evaluate(s, []*Piece{pair, s})
	if v.Outcome != OutcomeConflict || v.ConflictWith != 0 {
		t.Fatalf("single onto pair's second cell: %+v", v)
	}

	// A vertical pair dropped over column 0 overlaps the horizontal pair's origin.
	vert := &Piece{ID: 2, Shape: ShapeVertical, Cell: Cell{1, 2}, Target: l.CellOrigin(Cell{1, 2}), Size: l.PieceSize(ShapeVertical), Current: Point{30, 30}}
	if v := ev.Evaluate(vert, []*Piece{pair, vert}); v.Outcome != OutcomeConflict {
		t.Fatalf("vertical onto pair: %+v", v)
	}
}

func TestEvaluateClampsToGrid(t *testing.T) {
	l := board3()
	ev := NewEvaluator(l, 50)
	cases := []struct {
		name  string
		shape Shape
		drop  Point
		want  Outcome
		cell  Cell
	}{
		{"left of board within tolerance", ShapeSingle, Point{-50, 0}, OutcomeSnapped, Cell{0, 0}},
		{"left of board beyond tolerance", ShapeSingle, Point{-51, 0}, OutcomeMissed, Cell{0, 0}},
		{"far bottom right", ShapeSingle, Point{900, 900}, OutcomeMissed, Cell{2, 2}},
		{"horizontal pair past right edge", ShapeHorizontal, Point{410, 0}, OutcomeMissed, Cell{0, 1}},
		{"horizontal pair fits", ShapeHorizontal, Point{240, 0}, OutcomeSnapped, Cell{0, 1}},
		{"vertical pair at bottom", ShapeVertical, Point{0, 390}, OutcomeMissed, Cell{1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Piece{ID: 0, Shape: tc.shape, Size: l.PieceSize(tc.shape), Current: tc.drop}
			v := ev.Evaluate(p, []*Piece{p})
			if v.Outcome != tc.want || v.Cell != tc.cell {
				t.Fatalf("verdict %s at %v, want %s at %v", v.Outcome, v.Cell, tc.want, tc.cell)
			}
		})
	}
}

func TestEvaluateDecoyNeverSnaps(t *testing.T) {
	l := board3()
	ev := NewEvaluator(l, 50)
	d := &Piece{ID: 9, Shape: ShapeSingle, IsDecoy: true, Cell: OffGrid, Target: DecoySentinel, Size: l.CellSize(), Current: Point{200, 200}}
	v := ev.Evaluate(d, []*Piece{d})
	if v.Outcome != OutcomeMissed || v.Cell != OffGrid {
		t.Fatalf("decoy verdict %+v", v)
	}
	v.Apply(d)
	if d.Placed {
		t.Fatal("decoy placed")
	}
}
