package zernike

import (
	"fmt"
	"math/cmplx"
)

// Reconstruct evaluates the truncated Zernike expansion of the stored
// moments on a fresh grid of side dim. The normalisation must already be
// expressed in output grid coordinates. Bounds on n and l are inclusive;
// nmax is clamped to the engine order. The result is indexed [x][y][z];
// voxels outside the unit ball stay zero.
func (e *Engine) Reconstruct(dim int, norm Normalisation, nmin, nmax, lmin, lmax int) ([][][]complex128, error) {
	if e.zm == nil {
		return nil, fmt.Errorf("%w: moments not computed", ErrUninitialised)
	}
	if nmin < 0 {
		nmin = 0
	}
	if nmax > e.order {
		nmax = e.order
	}

	grid := make([][][]complex128, dim)
	for x := range grid {
		grid[x] = make([][]complex128, dim)
		for y := range grid[x] {
			grid[x][y] = make([]complex128, dim)
		}
	}

	px := make([]float64, e.order+1)
	py := make([]float64, e.order+1)
	pz := make([]float64, e.order+1)

	for x := 0; x < dim; x++ {
		for y := 0; y < dim; y++ {
			for z := 0; z < dim; z++ {
				p0 := (float64(x) - norm.CX) * norm.Scale
				p1 := (float64(y) - norm.CY) * norm.Scale
				p2 := (float64(z) - norm.CZ) * norm.Scale
				if p0*p0+p1*p1+p2*p2 > 1 {
					continue
				}

				fillPowers(px, p0)
				fillPowers(py, p1)
				fillPowers(pz, p2)

				var f complex128
				for n := nmin; n <= nmax; n++ {
					for l := n % 2; l <= n; l += 2 {
						if l < lmin || l > lmax {
							continue
						}
						for m := -l; m <= l; m++ {
							mm := m
							if mm < 0 {
								mm = -mm
							}
							var zp complex128
							for _, t := range e.basis.terms(n, l, mm) {
								c := t.c
								if m < 0 {
									c = cmplx.Conj(c)
									if mm%2 == 1 {
										c = -c
									}
								}
								zp += c * complex(px[t.p]*py[t.q]*pz[t.r], 0)
							}
							w, err := e.Moment(n, l, m)
							if err != nil {
								return nil, err
							}
							f += zp * w
						}
					}
				}
				grid[x][y][z] = f
			}
		}
	}
	return grid, nil
}

// Reconstruct maps the descriptor's moments back onto a grid of side dim,
// rescaling the stored normalisation from source grid coordinates.
func (d *Descriptor) Reconstruct(dim, nmin, nmax, lmin, lmax int) ([][][]complex128, error) {
	fac := float64(dim) / float64(d.Dim)
	norm := Normalisation{
		CX:    d.Norm.CX * fac,
		CY:    d.Norm.CY * fac,
		CZ:    d.Norm.CZ * fac,
		Scale: d.Norm.Scale / fac,
	}
	return d.engine.Reconstruct(dim, norm, nmin, nmax, lmin, lmax)
}

func fillPowers(dst []float64, u float64) {
	dst[0] = 1
	for i := 1; i < len(dst); i++ {
		dst[i] = dst[i-1] * u
	}
}
