package predicates

import (
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
)

func ratSub(x, y float64) *big.Rat {
	return new(big.Rat).Sub(new(big.Rat).SetFloat64(x), new(big.Rat).SetFloat64(y))
}

func ratOrient(a, b, c r2.Point) int {
	left := new(big.Rat).Mul(ratSub(a.X, c.X), ratSub(b.Y, c.Y))
	right := new(big.Rat).Mul(ratSub(a.Y, c.Y), ratSub(b.X, c.X))
	return left.Sub(left, right).Sign()
}

func ratInCircle(a, b, c, d r2.Point) int {
	rows := [3][3]*big.Rat{}
	for i, p := range []r2.Point{a, b, c} {
		dx, dy := ratSub(p.X, d.X), ratSub(p.Y, d.Y)
		lift := new(big.Rat).Add(new(big.Rat).Mul(dx, dx), new(big.Rat).Mul(dy, dy))
		rows[i] = [3]*big.Rat{dx, dy, lift}
	}
	minor := func(u, v [3]*big.Rat) *big.Rat {
		return new(big.Rat).Sub(new(big.Rat).Mul(u[0], v[1]), new(big.Rat).Mul(v[0], u[1]))
	}
	det := new(big.Rat).Mul(rows[0][2], minor(rows[1], rows[2]))
	det.Add(det, new(big.Rat).Mul(rows[1][2], minor(rows[2], rows[0])))
	det.Add(det, new(big.Rat).Mul(rows[2][2], minor(rows[0], rows[1])))
	return det.Sign()
}

func TestOrient(t *testing.T) {
	a, b, c := r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0, Y: 1}
	assert.Equal(t, 1, Orient(a, b, c))
	assert.Equal(t, -1, Orient(a, c, b))
	assert.Equal(t, 1, Orient(b, c, a), "rotation must not change the sign")
	assert.Equal(t, 0, Orient(a, r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 2}))
	assert.Equal(t, 0, Orient(a, a, c))
}

func TestOrientNearlyCollinear(t *testing.T) {
	// The classic failure case for naive orientation: a lattice of points a few
	// ulps around a line through two distant points.
	b := r2.Point{X: 12, Y: 12}
	c := r2.Point{X: 24, Y: 24}
	ulp := math.Pow(2, -53)
	for i := 0; i < 32; i++ {
		for j := 0; j < 32; j++ {
			a := r2.Point{X: 0.5 + float64(i)*ulp, Y: 0.5 + float64(j)*ulp}
			expected := ratOrient(a, b, c)
			assert.Equal(t, expected, Orient(a, b, c), "orient(%v, %v, %v)", a, b, c)
			assert.Equal(t, -expected, Orient(b, a, c))
			assert.Equal(t, expected, Orient(b, c, a))
		}
	}
}

func TestOrient2D(t *testing.T) {
	a, b, c := r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 0, Y: 2}
	assert.InDelta(t, 4, Orient2D(a, b, c), 1e-12)
	assert.InDelta(t, -4, Orient2D(a, c, b), 1e-12)
	assert.Zero(t, Orient2D(a, b, r2.Point{X: 4, Y: 0}))

	ulp := math.Pow(2, -53)
	p := r2.Point{X: 0.5 + 3*ulp, Y: 0.5}
	q, r := r2.Point{X: 12, Y: 12}, r2.Point{X: 24, Y: 24}
	det := Orient2D(p, q, r)
	switch ratOrient(p, q, r) {
	case 1:
		assert.Greater(t, det, 0.0)
	case -1:
		assert.Less(t, det, 0.0)
	default:
		assert.Zero(t, det)
	}
}

func TestInCircle(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 1, Y: 0}
	c := r2.Point{X: 1, Y: 1}

	t.Run("cocircular", func(t *testing.T) {
		assert.Equal(t, 0, InCircle(a, b, c, r2.Point{X: 0, Y: 1}))
	})
	t.Run("inside", func(t *testing.T) {
		assert.Equal(t, 1, InCircle(a, b, c, r2.Point{X: 0.5, Y: 0.5}))
	})
	t.Run("outside", func(t *testing.T) {
		assert.Equal(t, -1, InCircle(a, b, c, r2.Point{X: 2, Y: 2}))
	})
	t.Run("clockwise input flips the sign", func(t *testing.T) {
		assert.Equal(t, -1, InCircle(a, c, b, r2.Point{X: 0.5, Y: 0.5}))
	})
}

func TestInCircleNearlyCocircular(t *testing.T) {
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 1, Y: 0}
	c := r2.Point{X: 1, Y: 1}
	ulp := math.Pow(2, -52)
	for i := -8; i <= 8; i++ {
		for j := -8; j <= 8; j++ {
			d := r2.Point{X: float64(i) * ulp, Y: 1 + float64(j)*ulp}
			t.Run(fmt.Sprintf("%d,%d", i, j), func(t *testing.T) {
				assert.Equal(t, ratInCircle(a, b, c, d), InCircle(a, b, c, d))
			})
		}
	}
}
