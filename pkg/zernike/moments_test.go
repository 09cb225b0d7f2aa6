package zernike

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/zernike3d/pkg/voxel"
)

// patternGrid fills a small grid with a deterministic non symmetric pattern.
func patternGrid(d int) *voxel.Grid {
	g := voxel.New(d)
	for x := 0; x < d; x++ {
		for y := 0; y < d; y++ {
			for z := 0; z < d; z++ {
				if (x*7+y*3+z*5)%4 == 0 {
					g.Set(x, y, z, 1)
				}
			}
		}
	}
	return g
}

// bruteMoment is the direct triple sum definition of M_pqr.
func bruteMoment(g *voxel.Grid, cx, cy, cz, s float64, p, q, r int) float64 {
	d := g.Dim()
	sum := 0.0
	for x := 0; x < d; x++ {
		for y := 0; y < d; y++ {
			for z := 0; z < d; z++ {
				v := g.At(x, y, z)
				if v == 0 {
					continue
				}
				sum += v *
					math.Pow(s*(float64(x)-cx), float64(p)) *
					math.Pow(s*(float64(y)-cy), float64(q)) *
					math.Pow(s*(float64(z)-cz), float64(r))
			}
		}
	}
	return sum
}

func TestMoments_MatchesBruteForce(t *testing.T) {
	const (
		d     = 8
		order = 4
	)
	cx, cy, cz, s := 3.2, 4.1, 3.9, 0.25

	g := patternGrid(d)
	m := NewMoments(g, cx, cy, cz, s, order)

	for p := 0; p <= order; p++ {
		for q := 0; q <= order-p; q++ {
			for r := 0; r <= order-p-q; r++ {
				got, err := m.At(p, q, r)
				require.NoError(t, err)
				want := bruteMoment(g, cx, cy, cz, s, p, q, r)
				assert.InDelta(t, want, got, 1e-9*math.Max(1, math.Abs(want)),
					"M(%d,%d,%d)", p, q, r)
			}
		}
	}
}

func TestMoments_ZeroOrderIsMass(t *testing.T) {
	g := patternGrid(6)
	mass := 0.0
	for _, v := range g.Values() {
		mass += v
	}

	m := NewMoments(g, 0, 0, 0, 1, 2)
	got, err := m.At(0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, mass, got, 1e-12)
}

func TestMoments_InvalidIndex(t *testing.T) {
	m := NewMoments(patternGrid(4), 0, 0, 0, 1, 3)

	tests := []struct {
		name    string
		p, q, r int
	}{
		{name: "sum above order", p: 2, q: 1, r: 1},
		{name: "negative", p: -1, q: 0, r: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.At(tt.p, tt.q, tt.r)
			assert.ErrorIs(t, err, ErrInvalidIndex)
		})
	}

	_, err := m.At(3, 0, 0)
	assert.NoError(t, err)
}
