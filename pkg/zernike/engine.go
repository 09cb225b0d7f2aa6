package zernike

import (
	"fmt"
	"math"
	"math/cmplx"
)

const threeQuartersDivPi = 3.0 / (4.0 * math.Pi)

// Engine combines geometrical moments with the basis tables to produce
// complex Zernike moments and their rotation invariant norms. Only m >= 0
// is stored; negative m is folded via Omega(n,l,-m) = (-1)^m * conj(Omega(n,l,m)).
type Engine struct {
	order int
	basis *Basis
	zm    [][][]complex128 // zm[n][l/2][m]
}

// NewEngine prepares an engine of the given order on top of shared basis
// tables.
func NewEngine(order int, basis *Basis) *Engine {
	return &Engine{order: order, basis: basis}
}

// Compute evaluates all Zernike moments from the moment table. The engine
// must hold basis tables of at least its own order and the order must be
// positive.
func (e *Engine) Compute(moments *Moments) error {
	if e.order <= 0 || e.basis == nil || e.basis.order < e.order {
		return fmt.Errorf("%w: engine of order %d needs basis tables", ErrUninitialised, e.order)
	}
	if moments == nil || moments.order < e.order {
		return fmt.Errorf("%w: moment table of order %d for engine of order %d", ErrUninitialised, momentsOrder(moments), e.order)
	}

	zm := make([][][]complex128, e.order+1)
	for n := 0; n <= e.order; n++ {
		zm[n] = make([][]complex128, n/2+1)
		for l, li := n%2, 0; l <= n; l, li = l+2, li+1 {
			zm[n][li] = make([]complex128, l+1)
			for m := 0; m <= l; m++ {
				var sum complex128
				for _, t := range e.basis.terms(n, l, m) {
					gm, err := moments.At(t.p, t.q, t.r)
					if err != nil {
						return err
					}
					sum += cmplx.Conj(t.c) * complex(gm, 0)
				}
				sum *= complex(threeQuartersDivPi, 0)
				if !isFinite(sum) {
					return fmt.Errorf("%w: moment (%d,%d,%d) is not finite", ErrNumericalFailure, n, l, m)
				}
				zm[n][li][m] = sum
			}
		}
	}
	e.zm = zm
	return nil
}

// Moment returns Omega(n, l, m). Negative m is folded transparently.
func (e *Engine) Moment(n, l, m int) (complex128, error) {
	if e.zm == nil {
		return 0, fmt.Errorf("%w: moments not computed", ErrUninitialised)
	}
	mm := m
	if mm < 0 {
		mm = -mm
	}
	if n < 0 || n > e.order || l < 0 || l > n || (n-l)%2 != 0 || mm > l {
		return 0, fmt.Errorf("%w: moment (%d,%d,%d) with order %d", ErrInvalidIndex, n, l, m, e.order)
	}
	v := e.zm[n][l/2][mm]
	if m < 0 {
		v = cmplx.Conj(v)
		if mm%2 == 1 {
			v = -v
		}
	}
	return v, nil
}

// Invariants emits one norm per (n, l) pair in lexicographic order, m
// running from -l to l. The squared norm accumulates across successive l
// within the same n; descriptor corpora produced with the reference
// convention depend on this.
func (e *Engine) Invariants() ([]float64, error) {
	if e.zm == nil {
		return nil, fmt.Errorf("%w: moments not computed", ErrUninitialised)
	}
	inv := make([]float64, 0, InvariantLen(e.order))
	for n := 0; n <= e.order; n++ {
		sum := 0.0
		for l := n % 2; l <= n; l += 2 {
			for m := -l; m <= l; m++ {
				v, err := e.Moment(n, l, m)
				if err != nil {
					return nil, err
				}
				sum += real(v)*real(v) + imag(v)*imag(v)
			}
			inv = append(inv, math.Sqrt(sum))
		}
	}
	for i, v := range inv {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: invariant %d is not finite", ErrNumericalFailure, i)
		}
	}
	return inv, nil
}

// InvariantLen returns the invariant vector length for a maximum order,
// i.e. the sum of floor(n/2)+1 over n in [0, order].
func InvariantLen(order int) int {
	total := 0
	for n := 0; n <= order; n++ {
		total += n/2 + 1
	}
	return total
}

func momentsOrder(m *Moments) int {
	if m == nil {
		return -1
	}
	return m.order
}

func isFinite(c complex128) bool {
	return !cmplx.IsNaN(c) && !cmplx.IsInf(c)
}
