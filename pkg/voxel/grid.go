package voxel

import (
	"errors"
	"fmt"

	"gorgonia.org/tensor"
)

var ErrNotCubic = errors.New("grid is not cubic")

// Grid is a cubic voxel grid of side Dim backed by a dense float64 tensor.
// The canonical linear offset of (x, y, z) is (z*Dim + y)*Dim + x, i.e. the
// tensor axes are (z, y, x).
type Grid struct {
	dim  int
	t    *tensor.Dense
	data []float64
}

// New allocates a zero filled grid of side dim.
func New(dim int) *Grid {
	t := tensor.New(tensor.WithShape(dim, dim, dim), tensor.Of(tensor.Float64))
	return &Grid{dim: dim, t: t, data: t.Data().([]float64)}
}

// FromValues wraps a value slice in canonical order. The slice is not
// copied; len(values) must be dim cubed.
func FromValues(dim int, values []float64) (*Grid, error) {
	if len(values) != dim*dim*dim {
		return nil, fmt.Errorf("%w: %d values for side %d", ErrNotCubic, len(values), dim)
	}
	t := tensor.New(tensor.WithShape(dim, dim, dim), tensor.WithBacking(values))
	return &Grid{dim: dim, t: t, data: values}, nil
}

func (g *Grid) Dim() int { return g.dim }

// Values exposes the backing slice in canonical order.
func (g *Grid) Values() []float64 { return g.data }

// Tensor exposes the underlying dense tensor with axes (z, y, x).
func (g *Grid) Tensor() *tensor.Dense { return g.t }

// Index returns the canonical linear offset of (x, y, z).
func (g *Grid) Index(x, y, z int) int {
	return (z*g.dim+y)*g.dim + x
}

func (g *Grid) At(x, y, z int) float64 {
	return g.data[(z*g.dim+y)*g.dim+x]
}

func (g *Grid) Set(x, y, z int, v float64) {
	g.data[(z*g.dim+y)*g.dim+x] = v
}

func (g *Grid) Clone() *Grid {
	t := g.t.Clone().(*tensor.Dense)
	return &Grid{dim: g.dim, t: t, data: t.Data().([]float64)}
}
