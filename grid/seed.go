package grid

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	clipper "github.com/ctessum/go.clipper"
)

// ErrNoSeed is reported when no point strictly inside a ring could be found
// within the configured number of attempts.
var ErrNoSeed = errors.New("no interior point found for region seed")

var axisOffsets = [4][2]clipper.CInt{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// seedPoint returns a point strictly inside ring and outside each of holes.
// It prefers the middle of the widest span of a scanline through the ring,
// then tries the neighbours of the ring's first vertex, and finally samples
// the ring's bounding box.
func seedPoint(ring clipper.Path, holes clipper.Paths, rnd *rand.Rand, attempts int) (*clipper.IntPoint, error) {
	if len(ring) < 3 {
		return nil, errors.Wrapf(ErrNoSeed, "ring of %d points", len(ring))
	}
	if p, ok := scanlinePoint(ring, holes); ok && inside(p, ring, holes) {
		return p, nil
	}
	first := ring[0]
	for _, d := range axisOffsets {
		p := &clipper.IntPoint{X: first.X + d[0], Y: first.Y + d[1]}
		if inside(p, ring, holes) {
			return p, nil
		}
	}
	return samplePoint(ring, holes, rnd, attempts)
}

// scanlinePoint crosses the ring with the horizontal line through the middle
// of the widest gap between vertex heights, and returns the middle of the
// widest span of that line inside the ring.
func scanlinePoint(ring clipper.Path, holes clipper.Paths) (*clipper.IntPoint, bool) {
	all := append(clipper.Paths{ring}, holes...)
	var ys []clipper.CInt
	for _, path := range all {
		for _, p := range path {
			ys = append(ys, p.Y)
		}
	}
	sort.Slice(ys, func(i, j int) bool { return ys[i] < ys[j] })
	var y, gap clipper.CInt
	for i := 1; i < len(ys); i++ {
		if d := ys[i] - ys[i-1]; d > gap {
			gap = d
			y = ys[i-1] + d/2
		}
	}
	// No vertex may lie on the line.
	if gap < 2 {
		return nil, false
	}

	var xs []float64
	for _, path := range all {
		for i, a := range path {
			b := path[(i+1)%len(path)]
			if (a.Y < y) == (b.Y < y) {
				continue
			}
			t := float64(y-a.Y) / float64(b.Y-a.Y)
			xs = append(xs, float64(a.X)+t*float64(b.X-a.X))
		}
	}
	sort.Float64s(xs)
	var best, mid float64
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > best {
			best = w
			mid = (xs[i] + xs[i+1]) / 2
		}
	}
	if best < 2 {
		return nil, false
	}
	return &clipper.IntPoint{X: clipper.Round(mid), Y: y}, true
}

func samplePoint(ring clipper.Path, holes clipper.Paths, rnd *rand.Rand, attempts int) (*clipper.IntPoint, error) {
	lo := clipper.IntPoint{X: ring[0].X, Y: ring[0].Y}
	hi := lo
	for _, p := range ring[1:] {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	for i := 0; i < attempts; i++ {
		p := &clipper.IntPoint{
			X: lo.X + clipper.CInt(rnd.Int63n(int64(hi.X-lo.X)+1)),
			Y: lo.Y + clipper.CInt(rnd.Int63n(int64(hi.Y-lo.Y)+1)),
		}
		if inside(p, ring, holes) {
			return p, nil
		}
	}
	return nil, errors.Wrapf(ErrNoSeed, "%d samples", attempts)
}

func inside(p *clipper.IntPoint, ring clipper.Path, holes clipper.Paths) bool {
	if clipper.PointInPolygon(p, ring) != 1 {
		return false
	}
	for _, hole := range holes {
		if clipper.PointInPolygon(p, hole) != 0 {
			return false
		}
	}
	return true
}

// holesOf returns the negatively oriented rings of paths that lie inside
// paths[i].
func holesOf(paths clipper.Paths, i int) clipper.Paths {
	var holes clipper.Paths
	for j, path := range paths {
		if j == i || len(path) == 0 || clipper.Orientation(path) {
			continue
		}
		if contains(paths[i], path) {
			holes = append(holes, path)
		}
	}
	return holes
}

// contains reports whether inner lies within outer, judged by the first
// vertex of inner that is not on outer's boundary.
func contains(outer, inner clipper.Path) bool {
	for _, p := range inner {
		switch clipper.PointInPolygon(p, outer) {
		case 1:
			return true
		case 0:
			return false
		}
	}
	return false
}
