package zernike

import (
	"fmt"

	"github.com/itohio/zernike3d/pkg/voxel"
)

// Moments holds the scaled geometrical moments M_pqr of a voxel grid for
// all p+q+r <= order. Storage is a nested triangular table with O(1)
// lookup.
type Moments struct {
	order int
	m     [][][]float64
}

// NewMoments computes M_pqr = sum f(x,y,z) * (s(x-cx))^p (s(y-cy))^q (s(z-cz))^r
// over the whole grid. The triple sum is evaluated as three separable 1D
// collapses (over z, then y, then x) so the cost is O(D^3 N) rather than
// O(D^3 N^3).
func NewMoments(g *voxel.Grid, cx, cy, cz, s float64, order int) *Moments {
	d := g.Dim()
	values := g.Values()

	ux := powerTable(d, cx, s, order)
	uy := powerTable(d, cy, s, order)
	uz := powerTable(d, cz, s, order)

	// line moments over z for every (x, y) column
	line := make([][]float64, d*d)
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			lr := make([]float64, order+1)
			for z := 0; z < d; z++ {
				v := values[(z*d+y)*d+x]
				if v == 0 {
					continue
				}
				uzr := uz[z]
				for r := 0; r <= order; r++ {
					lr[r] += v * uzr[r]
				}
			}
			line[y*d+x] = lr
		}
	}

	// collapse over y: plane[x][q][r] for q+r <= order
	plane := make([][][]float64, d)
	for x := 0; x < d; x++ {
		pq := make([][]float64, order+1)
		for q := 0; q <= order; q++ {
			pq[q] = make([]float64, order-q+1)
		}
		for y := 0; y < d; y++ {
			lr := line[y*d+x]
			uyq := uy[y]
			for q := 0; q <= order; q++ {
				uq := uyq[q]
				row := pq[q]
				for r := 0; r <= order-q; r++ {
					row[r] += uq * lr[r]
				}
			}
		}
		plane[x] = pq
	}

	// final collapse over x
	m := make([][][]float64, order+1)
	for p := 0; p <= order; p++ {
		m[p] = make([][]float64, order-p+1)
		for q := 0; q <= order-p; q++ {
			m[p][q] = make([]float64, order-p-q+1)
		}
	}
	for x := 0; x < d; x++ {
		uxp := ux[x]
		pq := plane[x]
		for p := 0; p <= order; p++ {
			up := uxp[p]
			for q := 0; q <= order-p; q++ {
				row := pq[q]
				dst := m[p][q]
				for r := 0; r <= order-p-q; r++ {
					dst[r] += up * row[r]
				}
			}
		}
	}

	return &Moments{order: order, m: m}
}

// powerTable precomputes u^p for u = s*(i - c), i in [0, d), p in [0, order].
func powerTable(d int, c, s float64, order int) [][]float64 {
	t := make([][]float64, d)
	for i := 0; i < d; i++ {
		u := s * (float64(i) - c)
		row := make([]float64, order+1)
		row[0] = 1
		for p := 1; p <= order; p++ {
			row[p] = row[p-1] * u
		}
		t[i] = row
	}
	return t
}

func (m *Moments) Order() int { return m.order }

// At returns M_pqr. Indices with p+q+r > order are a programming error.
func (m *Moments) At(p, q, r int) (float64, error) {
	if p < 0 || q < 0 || r < 0 || p+q+r > m.order {
		return 0, fmt.Errorf("%w: moment (%d,%d,%d) with order %d", ErrInvalidIndex, p, q, r, m.order)
	}
	return m.m[p][q][r], nil
}
