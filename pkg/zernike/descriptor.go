package zernike

import (
	"fmt"
	"math"

	"github.com/itohio/zernike3d/pkg/voxel"
)

// Theta is the occupancy threshold used during normalisation. Voxels at or
// below it still contribute to the moments but not to the radius estimate.
const Theta = 0.9

// Normalisation maps a grid into the unit ball: the centre of gravity in
// voxel coordinates and a scale factor in 1/voxel units.
type Normalisation struct {
	CX, CY, CZ float64
	Scale      float64
}

// Descriptor is the result of a full computation on one grid.
type Descriptor struct {
	Order      int
	Dim        int
	Invariants []float64
	Norm       Normalisation

	engine *Engine
}

type config struct {
	boundingSphere bool
	basis          *Basis
}

type Option func(*config)

// WithBoundingSphereScale selects the maximum radius scale instead of the
// default RMS radius scale.
func WithBoundingSphereScale() Option {
	return func(c *config) { c.boundingSphere = true }
}

// WithBasis reuses precomputed basis tables. The tables must cover the
// requested order; they are immutable and safe to share across goroutines.
func WithBasis(b *Basis) Option {
	return func(c *config) { c.basis = b }
}

// Compute normalises the grid, computes scaled geometrical moments and
// assembles the Zernike moments and invariants up to the given order.
// The grid is masked in place: voxels outside the unit ball are zeroed.
func Compute(g *voxel.Grid, order int, opts ...Option) (*Descriptor, error) {
	if order <= 0 {
		return nil, fmt.Errorf("%w: order %d must be positive", ErrUninitialised, order)
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	norm, err := normalise(g, cfg.boundingSphere)
	if err != nil {
		return nil, err
	}

	basis := cfg.basis
	if basis == nil {
		basis = NewBasis(order)
	} else if basis.order < order {
		return nil, fmt.Errorf("%w: basis tables of order %d for order %d", ErrUninitialised, basis.order, order)
	}

	moments := NewMoments(g, norm.CX, norm.CY, norm.CZ, norm.Scale, order)
	engine := NewEngine(order, basis)
	if err := engine.Compute(moments); err != nil {
		return nil, err
	}
	inv, err := engine.Invariants()
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		Order:      order,
		Dim:        g.Dim(),
		Invariants: inv,
		Norm:       norm,
		engine:     engine,
	}, nil
}

// Moment exposes the complex Zernike moment Omega(n, l, m).
func (d *Descriptor) Moment(n, l, m int) (complex128, error) {
	return d.engine.Moment(n, l, m)
}

// normalise derives the centre of gravity and scale from a unit scale
// moment pass, then zeroes every voxel outside the unit ball.
func normalise(g *voxel.Grid, boundingSphere bool) (Normalisation, error) {
	gm := NewMoments(g, 0, 0, 0, 1, 1)

	m000, err := gm.At(0, 0, 0)
	if err != nil {
		return Normalisation{}, err
	}
	if m000 == 0 {
		return Normalisation{}, fmt.Errorf("%w: grid has no occupied voxels", ErrNoContent)
	}

	m100, _ := gm.At(1, 0, 0)
	m010, _ := gm.At(0, 1, 0)
	m001, _ := gm.At(0, 0, 1)
	cx := m100 / m000
	cy := m010 / m000
	cz := m001 / m000

	var radius float64
	if boundingSphere {
		radius = maxRadius(g, cx, cy, cz)
	} else {
		radius = 2 * rmsRadius(g, cx, cy, cz)
	}
	if radius == 0 {
		return Normalisation{}, fmt.Errorf("%w: zero radius around centre of gravity", ErrNoContent)
	}

	mask(g, cx, cy, cz, radius)

	return Normalisation{CX: cx, CY: cy, CZ: cz, Scale: 1 / radius}, nil
}

// rmsRadius is the root mean square distance from the centre of gravity to
// the voxels above the occupancy threshold.
func rmsRadius(g *voxel.Grid, cx, cy, cz float64) float64 {
	d := g.Dim()
	sum := 0.0
	count := 0
	for x := 0; x < d; x++ {
		for y := 0; y < d; y++ {
			for z := 0; z < d; z++ {
				if g.At(x, y, z) > Theta {
					mx := float64(x) - cx
					my := float64(y) - cy
					mz := float64(z) - cz
					sum += mx*mx + my*my + mz*mz
					count++
				}
			}
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}

// maxRadius is the largest distance from the centre of gravity to any
// voxel above the occupancy threshold.
func maxRadius(g *voxel.Grid, cx, cy, cz float64) float64 {
	d := g.Dim()
	max := 0.0
	for x := 0; x < d; x++ {
		for y := 0; y < d; y++ {
			for z := 0; z < d; z++ {
				if g.At(x, y, z) > Theta {
					mx := float64(x) - cx
					my := float64(y) - cy
					mz := float64(z) - cz
					if r := mx*mx + my*my + mz*mz; r > max {
						max = r
					}
				}
			}
		}
	}
	return math.Sqrt(max)
}

// mask zeroes every voxel outside the ball of the given radius around the
// centre of gravity. Squared radii avoid the square root per voxel.
func mask(g *voxel.Grid, cx, cy, cz, radius float64) {
	d := g.Dim()
	sqrRadius := radius * radius
	for x := 0; x < d; x++ {
		for y := 0; y < d; y++ {
			for z := 0; z < d; z++ {
				if g.At(x, y, z) == 0 {
					continue
				}
				mx := float64(x) - cx
				my := float64(y) - cy
				mz := float64(z) - cz
				if mx*mx+my*my+mz*mz > sqrRadius {
					g.Set(x, y, z, 0)
				}
			}
		}
	}
}
