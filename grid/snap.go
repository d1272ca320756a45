package grid

import (
	"math"
	"sort"

	clipper "github.com/ctessum/go.clipper"
)

// snapTolerance is how far, in clipper units, a vertex may lie off an edge of
// another ring and still count as lying on it. Clipper rounds intersections
// to the nearest integer, so rings that share a boundary agree to within a
// unit.
const snapTolerance = 2

const maxSnapPasses = 4

// snapRings inserts every vertex of each path into the edges of the other
// paths that pass within snapTolerance of it. Afterwards rings that touch do
// so at shared vertices along identical edges, so no sliver is left between
// them once the coordinates are scaled down. Paths are replaced in place; the
// number of inserted vertices is returned.
func snapRings(paths clipper.Paths) int {
	total := 0
	for pass := 0; pass < maxSnapPasses; pass++ {
		inserted := 0
		for i := range paths {
			var n int
			paths[i], n = snapPath(paths, i)
			inserted += n
		}
		total += inserted
		if inserted == 0 {
			break
		}
	}
	return total
}

type snapHit struct {
	t float64
	p *clipper.IntPoint
}

func snapPath(paths clipper.Paths, self int) (clipper.Path, int) {
	path := paths[self]
	if len(path) < 2 {
		return path, 0
	}
	own := make(map[clipper.IntPoint]bool, len(path))
	for _, p := range path {
		own[*p] = true
	}

	out := make(clipper.Path, 0, len(path))
	inserted := 0
	for j, a := range path {
		b := path[(j+1)%len(path)]
		out = append(out, a)
		var hits []snapHit
		for k, other := range paths {
			if k == self {
				continue
			}
			for _, v := range other {
				if own[*v] {
					continue
				}
				if t, ok := nearEdge(a, b, v); ok {
					hits = append(hits, snapHit{t: t, p: v})
				}
			}
		}
		sort.Slice(hits, func(x, y int) bool { return hits[x].t < hits[y].t })
		for _, h := range hits {
			if own[*h.p] {
				continue
			}
			own[*h.p] = true
			out = append(out, &clipper.IntPoint{X: h.p.X, Y: h.p.Y})
			inserted++
		}
	}
	if inserted == 0 {
		return path, 0
	}
	return out, inserted
}

// nearEdge reports whether v lies within snapTolerance of the edge a-b and
// projects strictly between its endpoints. t is the position of the
// projection along the edge.
func nearEdge(a, b, v *clipper.IntPoint) (float64, bool) {
	if v.X < min(a.X, b.X)-snapTolerance || v.X > max(a.X, b.X)+snapTolerance ||
		v.Y < min(a.Y, b.Y)-snapTolerance || v.Y > max(a.Y, b.Y)+snapTolerance {
		return 0, false
	}
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length2 := dx*dx + dy*dy
	if length2 == 0 {
		return 0, false
	}
	vx, vy := float64(v.X-a.X), float64(v.Y-a.Y)
	t := (vx*dx + vy*dy) / length2
	if t <= 0 || t >= 1 {
		return 0, false
	}
	cross := dx*vy - dy*vx
	if math.Abs(cross) > snapTolerance*math.Sqrt(length2) {
		return 0, false
	}
	return t, true
}
