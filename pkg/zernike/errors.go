package zernike

import "errors"

var (
	// ErrNoContent is returned when a grid has no occupied voxels and
	// therefore cannot be normalised.
	ErrNoContent = errors.New("no content")
	// ErrInvalidIndex is returned when a moment or basis entry outside the
	// admissible index ranges is requested.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrUninitialised is returned when a computation is attempted before
	// the order or basis tables are set.
	ErrUninitialised = errors.New("uninitialised")
	// ErrNumericalFailure is returned when a non-finite intermediate value
	// is observed.
	ErrNumericalFailure = errors.New("numerical failure")
)
