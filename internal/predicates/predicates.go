// Package predicates contains the orientation and in-circle tests that every
// topological decision in the mesh is built on. Both are guaranteed to return
// the exact sign of their determinant. A cheap floating point evaluation is
// tried first, and only when its result is within the rounding error bound do
// we fall back to exact arithmetic.
//
// The error bounds are the static "A" bounds from Shewchuk's adaptive
// predicates. They are conservative for any finite float64 input.
package predicates

import (
	"math"
	"math/big"

	"github.com/golang/geo/r2"
)

const (
	// epsilon is half of the machine epsilon, the relative rounding error of
	// a single float64 operation.
	epsilon = 1.1102230246251565e-16

	orientErrBound   = (3 + 16*epsilon) * epsilon
	inCircleErrBound = (10 + 96*epsilon) * epsilon
)

// Orient returns 1 if a, b, c wind counterclockwise, -1 if they wind
// clockwise, and 0 if they are exactly collinear.
func Orient(a, b, c r2.Point) int {
	if sign, ok := triageOrient(a, b, c); ok {
		return sign
	}
	return exactOrient(a, b, c)
}

// Orient2D returns twice the signed area of the triangle a, b, c. The sign is
// exact; the magnitude is only a floating point approximation.
func Orient2D(a, b, c r2.Point) float64 {
	det := (a.X-c.X)*(b.Y-c.Y) - (a.Y-c.Y)*(b.X-c.X)
	sign := Orient(a, b, c)
	switch {
	case sign == 0:
		return 0
	case sign > 0 && det <= 0:
		return math.SmallestNonzeroFloat64
	case sign < 0 && det >= 0:
		return -math.SmallestNonzeroFloat64
	}
	return det
}

// InCircle returns 1 if d lies strictly inside the circle through a, b, c,
// -1 if it lies strictly outside, and 0 if the four points are cocircular.
// a, b, c must be in counterclockwise order; for clockwise input the sign is
// reversed.
func InCircle(a, b, c, d r2.Point) int {
	if sign, ok := triageInCircle(a, b, c, d); ok {
		return sign
	}
	return exactInCircle(a, b, c, d)
}

// triageOrient evaluates the orientation determinant in floating point. The
// second result is false when the rounding error could have flipped the sign.
func triageOrient(a, b, c r2.Point) (int, bool) {
	detLeft := (a.X - c.X) * (b.Y - c.Y)
	detRight := (a.Y - c.Y) * (b.X - c.X)
	det := detLeft - detRight

	var detSum float64
	switch {
	case detLeft > 0:
		if detRight <= 0 {
			return sign(det), true
		}
		detSum = detLeft + detRight
	case detLeft < 0:
		if detRight >= 0 {
			return sign(det), true
		}
		detSum = -detLeft - detRight
	default:
		return sign(det), true
	}

	if math.Abs(det) > orientErrBound*detSum {
		return sign(det), true
	}
	return 0, false
}

func triageInCircle(a, b, c, d r2.Point) (int, bool) {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	bdxcdy, cdxbdy := bdx*cdy, cdx*bdy
	alift := adx*adx + ady*ady

	cdxady, adxcdy := cdx*ady, adx*cdy
	blift := bdx*bdx + bdy*bdy

	adxbdy, bdxady := adx*bdy, bdx*ady
	clift := cdx*cdx + cdy*cdy

	det := alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)
	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift

	if math.Abs(det) > inCircleErrBound*permanent {
		return sign(det), true
	}
	return 0, false
}

// newBigFloat constructs a new big.Float with maximum precision, so that sums
// and products of float64 values are exact.
func newBigFloat() *big.Float { return new(big.Float).SetPrec(big.MaxPrec) }

func bigFloat(x float64) *big.Float { return newBigFloat().SetFloat64(x) }

func bigSub(x, y float64) *big.Float {
	return newBigFloat().Sub(bigFloat(x), bigFloat(y))
}

func bigMul(x, y *big.Float) *big.Float { return newBigFloat().Mul(x, y) }

// exactOrient computes the orientation determinant without rounding.
func exactOrient(a, b, c r2.Point) int {
	acx, acy := bigSub(a.X, c.X), bigSub(a.Y, c.Y)
	bcx, bcy := bigSub(b.X, c.X), bigSub(b.Y, c.Y)
	det := newBigFloat().Sub(bigMul(acx, bcy), bigMul(acy, bcx))
	return det.Sign()
}

func exactInCircle(a, b, c, d r2.Point) int {
	adx, ady := bigSub(a.X, d.X), bigSub(a.Y, d.Y)
	bdx, bdy := bigSub(b.X, d.X), bigSub(b.Y, d.Y)
	cdx, cdy := bigSub(c.X, d.X), bigSub(c.Y, d.Y)

	lift := func(x, y *big.Float) *big.Float {
		return newBigFloat().Add(bigMul(x, x), bigMul(y, y))
	}
	cross := func(x1, y1, x2, y2 *big.Float) *big.Float {
		return newBigFloat().Sub(bigMul(x1, y2), bigMul(x2, y1))
	}

	det := bigMul(lift(adx, ady), cross(bdx, bdy, cdx, cdy))
	det.Add(det, bigMul(lift(bdx, bdy), cross(cdx, cdy, adx, ady)))
	det.Add(det, bigMul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return det.Sign()
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
