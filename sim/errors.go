package sim

import "errors"

var (
	// ErrOutOfBounds is returned for coordinate queries outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrNoWalkableCells is returned when a layout leaves no cell a worker can occupy.
	ErrNoWalkableCells = errors.New("layout has no walkable cells")

	// ErrInvalidLayout is returned for malformed or degenerate layouts.
	ErrInvalidLayout = errors.New("invalid warehouse layout")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid simulation config")
)
