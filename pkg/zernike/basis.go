package zernike

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// monomial is one term of the g expansion: a complex coefficient attached
// to the geometrical moment with exponents (p, q, r).
type monomial struct {
	p, q, r int
	c       complex128
}

// Basis holds the Zernike basis coefficient tables for a maximum order:
// the harmonic normalisation factors c, the radial orthonormalisation
// coefficients q and the expansion g mapping geometrical moments onto
// Zernike moments. All three are pure functions of the order and are
// immutable once built, so a Basis may be shared across concurrent
// computations.
type Basis struct {
	order int
	cs    [][]float64   // cs[l][m], 0 <= m <= l
	qs    [][][]float64 // qs[n][l/2][mu]
	g     [][][][]monomial
}

// NewBasis builds the three tables in dependency order: c, then q, then g.
// The loop order is fixed so that floating point summation downstream is
// reproducible.
func NewBasis(order int) *Basis {
	b := &Basis{order: order}
	b.computeCs()
	b.computeQs()
	b.computeGs()
	return b
}

func (b *Basis) Order() int { return b.order }

// C returns the harmonic normalisation factor c_l^m. Negative m is folded
// using c(l,-m) = c(l,m).
func (b *Basis) C(l, m int) (float64, error) {
	if m < 0 {
		m = -m
	}
	if l < 0 || l > b.order || m > l {
		return 0, fmt.Errorf("%w: c(%d,%d) with order %d", ErrInvalidIndex, l, m, b.order)
	}
	return b.cs[l][m], nil
}

// Q returns the radial orthonormalisation coefficient q_nl^mu.
func (b *Basis) Q(n, l, mu int) (float64, error) {
	if n < 0 || n > b.order || l < 0 || l > n || (n-l)%2 != 0 || mu < 0 || mu > (n-l)/2 {
		return 0, fmt.Errorf("%w: q(%d,%d,%d) with order %d", ErrInvalidIndex, n, l, mu, b.order)
	}
	return b.qs[n][l/2][mu], nil
}

// terms returns the g expansion of (n, l, m) for m >= 0.
func (b *Basis) terms(n, l, m int) []monomial {
	return b.g[n][l/2][m]
}

func (b *Basis) computeCs() {
	b.cs = make([][]float64, b.order+1)
	for l := 0; l <= b.order; l++ {
		b.cs[l] = make([]float64, l+1)
		for m := 0; m <= l; m++ {
			b.cs[l][m] = math.Sqrt(float64(2*l+1) *
				pochhammer(float64(l+1), m) / pochhammer(float64(l-m+1), m))
		}
	}
}

func (b *Basis) computeQs() {
	b.qs = make([][][]float64, b.order+1)
	for n := 0; n <= b.order; n++ {
		b.qs[n] = make([][]float64, n/2+1)
		for l := n % 2; l <= n; l += 2 {
			k := (n - l) / 2
			q := make([]float64, k+1)
			for mu := 0; mu <= k; mu++ {
				nom := binom(2*k, k) * binom(k, mu) * binom(2*(k+l+mu)+1, 2*k)
				if (k+mu)%2 == 1 {
					nom = -nom
				}
				den := math.Pow(2, float64(2*k)) * binom(k+l+mu, k)
				q[mu] = nom / den * math.Sqrt(float64(2*l+4*k+3)/3)
			}
			b.qs[n][l/2] = q
		}
	}
}

func (b *Basis) computeGs() {
	b.g = make([][][][]monomial, b.order+1)
	for n := 0; n <= b.order; n++ {
		b.g[n] = make([][][]monomial, n/2+1)
		for l, li := n%2, 0; l <= n; l, li = l+2, li+1 {
			b.g[n][li] = make([][]monomial, l+1)
			for m := 0; m <= l; m++ {
				w := b.cs[l][m] / math.Pow(2, float64(m))
				k := (n - l) / 2

				var terms []monomial
				for nu := 0; nu <= k; nu++ {
					wNu := w * b.qs[n][li][nu]
					for alpha := 0; alpha <= nu; alpha++ {
						wNuA := wNu * binom(nu, alpha)
						for beta := 0; beta <= nu-alpha; beta++ {
							wNuAB := wNuA * binom(nu-alpha, beta)
							for p := 0; p <= m; p++ {
								wNuABP := wNuAB * binom(m, p)
								for mu := 0; mu <= (l-m)/2; mu++ {
									wNuABPMu := wNuABP * binom(l, mu) *
										binom(l-mu, m+mu) / math.Pow(2, float64(2*mu))
									for qq := 0; qq <= mu; qq++ {
										wFull := wNuABPMu * binom(mu, qq)
										if (m-p+mu)%2 == 1 {
											wFull = -wFull
										}
										// multiply by i^p
										var c complex128
										switch p % 4 {
										case 0:
											c = complex(wFull, 0)
										case 1:
											c = complex(0, wFull)
										case 2:
											c = complex(-wFull, 0)
										case 3:
											c = complex(0, -wFull)
										}
										terms = append(terms, monomial{
											p: 2*qq + p + 2*alpha,
											q: 2*(mu-qq+beta) + m - p,
											r: l - m + 2*(nu-alpha-beta-mu),
											c: c,
										})
									}
								}
							}
						}
					}
				}
				b.g[n][li][m] = terms
			}
		}
	}
}

// binom returns the binomial coefficient, exact for n below 63 (where every
// result fits in an int64) and via gamma functions for larger n.
func binom(n, k int) float64 {
	if n < 63 {
		return float64(combin.Binomial(n, k))
	}
	return combin.GeneralizedBinomial(float64(n), float64(k))
}

// pochhammer computes the rising factorial a(a+1)...(a+k-1).
func pochhammer(a float64, k int) float64 {
	p := 1.0
	for i := 0; i < k; i++ {
		p *= a + float64(i)
	}
	return p
}
