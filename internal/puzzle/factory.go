// internal/puzzle/factory.go
//
// Piece generation.
// Responsibilities:
//   - Partition the N×N grid into pieces (single cells only, or a random
//     domino-style mix of single cells and horizontal/vertical pairs).
//   - Append decoy pieces cut from the decoy images.
//
// The mixed tiling scans cells in row-major order and claims the neighbour a
// pair covers, so the grid is always tiled exactly, whatever the random draws.

package puzzle

// Factory builds the initial piece set for a session.
type Factory struct {
	opts Options
	rng  Rand
}

// NewFactory validates opts and returns a Factory drawing from rng.
// Returns a *ConfigurationError when the grid cannot be built.
func NewFactory(opts Options, rng Rand) (*Factory, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Factory{opts: opts, rng: rng}, nil
}

// Generate returns the board pieces in row-major order followed by the decoys.
// Board pieces start on their targets, unplaced. vp is the viewport used for
// the decoys' resting positions.
func (f *Factory) Generate(vp Size) []*Piece {
	pieces := f.tile()
	return append(pieces, f.decoys(len(pieces), vp)...)
}

func (f *Factory) tile() []*Piece {
	n := f.opts.Layout.Cols
	used := make([][]bool, n)
	for i := range used {
		used[i] = make([]bool, n)
	}

	var out []*Piece
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if used[row][col] {
				continue
			}
			shape := ShapeSingle
			if f.opts.Tiling == TilingMixed {
				canH := col < n-1 && !used[row][col+1]
				canV := row < n-1 && !used[row+1][col]
				shape = f.pickShape(canH, canV)
			}
			switch shape {
			case ShapeHorizontal:
				used[row][col+1] = true
			case ShapeVertical:
				used[row+1][col] = true
			}
			used[row][col] = true
			out = append(out, f.boardPiece(len(out), shape, Cell{Row: row, Col: col}))
		}
	}
	return out
}

// pickShape draws a shape among those that fit: 1/3 each when both
// neighbours are free, 1/2 between the pair and a single cell when one is.
func (f *Factory) pickShape(canH, canV bool) Shape {
	switch {
	case canH && canV:
		r := f.rng.Float64()
		switch {
		case r < 1.0/3:
			return ShapeSingle
		case r < 2.0/3:
			return ShapeHorizontal
		default:
			return ShapeVertical
		}
	case canH:
		if f.rng.Float64() < 0.5 {
			return ShapeHorizontal
		}
	case canV:
		if f.rng.Float64() < 0.5 {
			return ShapeVertical
		}
	}
	return ShapeSingle
}

func (f *Factory) boardPiece(id int, shape Shape, cell Cell) *Piece {
	target := f.opts.Layout.CellOrigin(cell)
	return &Piece{
		ID:      id,
		Shape:   shape,
		Cell:    cell,
		Target:  target,
		Size:    f.opts.Layout.PieceSize(shape),
		Current: target,
	}
}

func (f *Factory) decoys(firstID int, vp Size) []*Piece {
	if f.opts.NumDecoys == 0 {
		return nil
	}
	board := f.opts.Layout.Board
	cell := f.opts.Layout.CellSize()
	screen := f.opts.Layout.Screen(vp)

	// Cycle through the decoy images in a shuffled order so neighbouring
	// decoys come from different images whenever there is more than one.
	order := make([]int, f.opts.DecoyImages)
	for i := range order {
		order[i] = i
	}
	f.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	out := make([]*Piece, 0, f.opts.NumDecoys)
	for i := 0; i < f.opts.NumDecoys; i++ {
		p := &Piece{
			ID:         firstID + i,
			Shape:      ShapeSingle,
			IsDecoy:    true,
			Cell:       OffGrid,
			Target:     DecoySentinel,
			Size:       cell,
			DecoyImage: order[i%len(order)],
			DecoyOffset: Point{
				X: f.rng.Float64() * (board.Width - cell.Width),
				Y: f.rng.Float64() * (board.Height - cell.Height),
			},
		}
		p.Current = freePoint(f.rng, p.Size, screen)
		out = append(out, p)
	}
	return out
}
