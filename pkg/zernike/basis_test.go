package zernike

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasis_C(t *testing.T) {
	b := NewBasis(4)

	tests := []struct {
		name string
		l, m int
		want float64
	}{
		{name: "c00", l: 0, m: 0, want: 1},
		{name: "c10", l: 1, m: 0, want: math.Sqrt(3)},
		{name: "c11", l: 1, m: 1, want: math.Sqrt(6)},
		{name: "c22", l: 2, m: 2, want: math.Sqrt(5.0 * 12.0 / 2.0)},
		{name: "negative m folds", l: 1, m: -1, want: math.Sqrt(6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.C(tt.l, tt.m)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err := b.C(5, 0)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = b.C(2, 3)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestBasis_Q(t *testing.T) {
	b := NewBasis(4)

	sqrt73 := math.Sqrt(7.0 / 3.0)
	tests := []struct {
		name      string
		n, l, mu  int
		want      float64
	}{
		{name: "q000", n: 0, l: 0, mu: 0, want: 1},
		{name: "q110", n: 1, l: 1, mu: 0, want: math.Sqrt(5.0 / 3.0)},
		{name: "q200 mu0", n: 2, l: 0, mu: 0, want: -1.5 * sqrt73},
		{name: "q200 mu1", n: 2, l: 0, mu: 1, want: 2.5 * sqrt73},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Q(tt.n, tt.l, tt.mu)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err := b.Q(2, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidIndex, "n-l must be even")
	_, err = b.Q(2, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestBasis_GConstantTerm(t *testing.T) {
	b := NewBasis(2)

	terms := b.terms(0, 0, 0)
	require.Len(t, terms, 1)
	assert.Equal(t, 0, terms[0].p)
	assert.Equal(t, 0, terms[0].q)
	assert.Equal(t, 0, terms[0].r)
	assert.InDelta(t, 1, real(terms[0].c), 1e-12)
	assert.InDelta(t, 0, imag(terms[0].c), 1e-12)
}

func TestBasis_GRadial(t *testing.T) {
	// Z_200 must assemble to sqrt(7/3) * (2.5 r^2 - 1.5)
	b := NewBasis(2)

	coeff := map[[3]int]float64{}
	for _, term := range b.terms(2, 0, 0) {
		assert.InDelta(t, 0, imag(term.c), 1e-12)
		coeff[[3]int{term.p, term.q, term.r}] += real(term.c)
	}

	sqrt73 := math.Sqrt(7.0 / 3.0)
	assert.InDelta(t, -1.5*sqrt73, coeff[[3]int{0, 0, 0}], 1e-12)
	assert.InDelta(t, 2.5*sqrt73, coeff[[3]int{2, 0, 0}], 1e-12)
	assert.InDelta(t, 2.5*sqrt73, coeff[[3]int{0, 2, 0}], 1e-12)
	assert.InDelta(t, 2.5*sqrt73, coeff[[3]int{0, 0, 2}], 1e-12)
}

func TestBasis_Deterministic(t *testing.T) {
	b1 := NewBasis(8)
	b2 := NewBasis(8)

	assert.Equal(t, b1.cs, b2.cs)
	assert.Equal(t, b1.qs, b2.qs)
	assert.Equal(t, b1.g, b2.g)
}

func TestInvariantLen(t *testing.T) {
	assert.Equal(t, 1, InvariantLen(0))
	assert.Equal(t, 2, InvariantLen(1))
	assert.Equal(t, 9, InvariantLen(4))

	want := 0
	for n := 0; n <= 20; n++ {
		want += n/2 + 1
	}
	assert.Equal(t, want, InvariantLen(20))
}

// monomialIntegral numerically integrates x^p y^q z^r over the unit ball
// sampled on a grid, with the 3/(4 pi) measure used by the moment engine.
func monomialIntegral(p, q, r, dim int) float64 {
	radius := float64(dim-1) / 2
	centre := float64(dim-1) / 2
	scale := 1 / (radius * radius * radius)

	sum := 0.0
	for x := 0; x < dim; x++ {
		px := (float64(x) - centre) / radius
		for y := 0; y < dim; y++ {
			py := (float64(y) - centre) / radius
			for z := 0; z < dim; z++ {
				pz := (float64(z) - centre) / radius
				if px*px+py*py+pz*pz > 1 {
					continue
				}
				sum += math.Pow(px, float64(p)) * math.Pow(py, float64(q)) * math.Pow(pz, float64(r))
			}
		}
	}
	return sum * threeQuartersDivPi * scale
}

func TestBasis_Orthonormality(t *testing.T) {
	if testing.Short() {
		t.Skip("numeric integration is slow")
	}

	b := NewBasis(4)

	inner := func(n1, l1, m1, n2, l2, m2 int) complex128 {
		var sum complex128
		for _, t1 := range b.terms(n1, l1, m1) {
			for _, t2 := range b.terms(n2, l2, m2) {
				integral := monomialIntegral(t1.p+t2.p, t1.q+t2.q, t1.r+t2.r, 64)
				sum += t1.c * complex(real(t2.c), -imag(t2.c)) * complex(integral, 0)
			}
		}
		return sum
	}

	tests := []struct {
		name                   string
		n1, l1, m1, n2, l2, m2 int
		want                   float64
	}{
		{name: "000 with itself", n1: 0, l1: 0, m1: 0, n2: 0, l2: 0, m2: 0, want: 1},
		{name: "200 with itself", n1: 2, l1: 0, m1: 0, n2: 2, l2: 0, m2: 0, want: 1},
		{name: "221 with itself", n1: 2, l1: 2, m1: 1, n2: 2, l2: 2, m2: 1, want: 1},
		{name: "200 against 000", n1: 2, l1: 0, m1: 0, n2: 0, l2: 0, m2: 0, want: 0},
		{name: "421 against 221", n1: 4, l1: 2, m1: 1, n2: 2, l2: 2, m2: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inner(tt.n1, tt.l1, tt.m1, tt.n2, tt.l2, tt.m2)
			assert.InDelta(t, tt.want, real(got), 5e-2)
			assert.InDelta(t, 0, imag(got), 5e-2)
		})
	}
}
