// internal/puzzle/options.go
//
// Generation and placement options.
// Responsibilities:
//   - Tiling, scatter and decoy policies.
//   - Defaults for unset knobs (WithDefaults) and validation that reports the
//     offending field as a ConfigurationError.

package puzzle

import "strconv"

// Tiling selects which piece shapes the factory may emit.
type Tiling string

const (
	TilingSingle Tiling = "single" // every piece covers one cell
	TilingMixed  Tiling = "mixed"  // single cells plus horizontal/vertical pairs
)

// ScatterPolicy selects where pieces are dispersed once play begins.
type ScatterPolicy string

const (
	ScatterFree      ScatterPolicy = "free"      // anywhere on screen, board included
	ScatterPerimeter ScatterPolicy = "perimeter" // in the margins around the board
)

// DecoyPlacement selects who decides a decoy's resting position.
type DecoyPlacement string

const (
	DecoyStatic  DecoyPlacement = "static"  // chosen by the factory at generation
	DecoyDynamic DecoyPlacement = "dynamic" // re-planned by the scatter planner
)

// Default tuning values.
const (
	DefaultSnapTolerance   = 50.0
	DefaultPerimeterEdges  = 4
	DefaultPerimeterMargin = 10.0
)

// Options configures piece generation, scattering and placement.
type Options struct {
	Layout Layout
	Tiling Tiling

	NumDecoys      int // extra pieces cut from decoy images
	DecoyImages    int // how many decoy images are available
	DecoyPlacement DecoyPlacement

	Scatter         ScatterPolicy
	PerimeterEdges  int     // 2 (left/right) or 4
	PerimeterMargin float64 // gap kept from the board and the screen edge

	NumPrePlaced  int     // pieces that start already placed
	SnapTolerance float64 // max per-axis distance for a snap
}

// WithDefaults fills unset enum and tuning fields.
func (o Options) WithDefaults() Options {
	if o.Tiling == "" {
		o.Tiling = TilingMixed
	}
	if o.DecoyPlacement == "" {
		o.DecoyPlacement = DecoyStatic
	}
	if o.Scatter == "" {
		o.Scatter = ScatterFree
	}
	if o.PerimeterEdges == 0 {
		o.PerimeterEdges = DefaultPerimeterEdges
	}
	if o.PerimeterMargin == 0 {
		o.PerimeterMargin = DefaultPerimeterMargin
	}
	if o.SnapTolerance == 0 {
		o.SnapTolerance = DefaultSnapTolerance
	}
	return o
}

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	switch o.Tiling {
	case TilingSingle, TilingMixed:
	default:
		return &ConfigurationError{Field: "shapeMode", Reason: "unknown value " + strconv.Quote(string(o.Tiling))}
	}
	switch o.Scatter {
	case ScatterFree, ScatterPerimeter:
	default:
		return &ConfigurationError{Field: "scatterPolicy", Reason: "unknown value " + strconv.Quote(string(o.Scatter))}
	}
	switch o.DecoyPlacement {
	case DecoyStatic, DecoyDynamic:
	default:
		return &ConfigurationError{Field: "decoyPlacement", Reason: "unknown value " + strconv.Quote(string(o.DecoyPlacement))}
	}
	if o.PerimeterEdges != 2 && o.PerimeterEdges != 4 {
		return &ConfigurationError{Field: "perimeterEdges", Reason: "must be 2 or 4"}
	}
	if o.PerimeterMargin < 0 {
		return &ConfigurationError{Field: "perimeterMargin", Reason: "must not be negative"}
	}
	if o.NumDecoys < 0 {
		return &ConfigurationError{Field: "numConfusionPieces", Reason: "must not be negative"}
	}
	if o.NumDecoys > 0 && o.DecoyImages <= 0 {
		return &ConfigurationError{Field: "decoyImageUrls", Reason: "decoy pieces need at least one decoy image"}
	}
	if o.NumPrePlaced < 0 {
		return &ConfigurationError{Field: "numDonePieces", Reason: "must not be negative"}
	}
	if o.SnapTolerance < 0 {
		return &ConfigurationError{Field: "snapTolerance", Reason: "must not be negative"}
	}
	return nil
}
