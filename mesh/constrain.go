package mesh

import (
	"sort"

	"github.com/pkg/errors"
)

type direction uint8

const (
	dirNone direction = iota
	// The segment is already an edge of the mesh.
	dirEdge
	// An edge leaves the origin along the segment but stops at a vertex short of
	// its end.
	dirCollinear
	// The segment leaves the origin through the interior of a triangle.
	dirCross
)

const maxSplitDepth = 64

// findDirection looks around vertex a for the way toward b. For dirEdge the
// handle is the edge a-b. For dirCollinear, v is the vertex the segment
// passes through. For dirCross, the handle is the first crossed edge,
// running from the right of a→b to its left.
func (m *Mesh) findDirection(a, b int) (Otri, int, direction) {
	var (
		found Otri
		via   = -1
		res   = dirNone
	)
	pa, pb := m.pt(a), m.pt(b)
	ahead := func(v int) bool {
		return m.pt(v).Sub(pa).Dot(pb.Sub(pa)) > 0
	}
	m.forEachAround(a, func(o Otri) bool {
		d, c := m.Dest(o), m.Apex(o)
		switch {
		case d == b:
			found, res = o, dirEdge
			return false
		case c == b:
			found, res = o.Lprev(), dirEdge
			return false
		}
		od, oc := m.orient(a, d, b), m.orient(a, c, b)
		switch {
		case od == 0 && ahead(d):
			found, via, res = o, d, dirCollinear
			return false
		case oc == 0 && ahead(c):
			found, via, res = o.Lprev(), c, dirCollinear
			return false
		case od > 0 && oc < 0:
			found, res = o.Lnext(), dirCross
			return false
		}
		return true
	})
	return found, via, res
}

// insertSegment makes a-b a chain of constrained edges carrying mark. Vertices
// lying exactly on a-b split it into several subsegments.
func (m *Mesh) insertSegment(a, b, mark int) {
	m.insertSegmentDepth(a, b, mark, 0)
}

func (m *Mesh) insertSegmentDepth(a, b, mark, depth int) {
	for a != b {
		o, via, res := m.findDirection(a, b)
		switch res {
		case dirEdge:
			m.markSegment(o, mark)
			return
		case dirCollinear:
			m.markSegment(o, mark)
			a = via
		case dirCross:
			next, ok := m.recoverSegment(o, a, b, mark, depth)
			if !ok {
				return
			}
			a = next
		default:
			fatalf("no direction from vertex %d toward %d", a, b)
		}
	}
}

// recoverSegment forces a→b (or its prefix up to a vertex lying on it) into
// the mesh by flipping away the edges it crosses, starting at the crossed edge
// first. It returns the vertex it stopped at and false when the rest of a→b
// was handled recursively.
func (m *Mesh) recoverSegment(first Otri, a, b, mark, depth int) (int, bool) {
	var crossed [][2]int
	cur := first
	end := b
	for {
		if m.IsSegment(cur) {
			m.splitCrossing(cur, a, b, mark, depth)
			return b, false
		}
		nb := m.Sym(cur)
		if nb.IsOuter() {
			fatalf("segment %d-%d leaves the mesh", a, b)
		}
		crossed = append(crossed, [2]int{m.Org(cur), m.Dest(cur)})
		e := m.Apex(nb)
		if e == b {
			break
		}
		side := m.orient(a, b, e)
		if side == 0 {
			end = e
			break
		}
		if side > 0 {
			cur = nb.Lnext()
		} else {
			cur = nb.Lprev()
		}
	}

	created := m.flipCrossed(crossed, a, end)
	o, ok := m.findEdge(a, end)
	if !ok {
		fatalf("recovered edge %d-%d is missing", a, end)
	}
	m.markSegment(o, mark)
	m.legalizeEdges(created)
	return end, true
}

// flipCrossed removes every edge in crossed from the path of a-b. It returns
// the new edges that do not cross a-b, for Delaunay restoration.
func (m *Mesh) flipCrossed(crossed [][2]int, a, b int) [][2]int {
	var created [][2]int
	limit := 64*len(crossed)*len(crossed) + 1024
	queue := crossed
	for steps := 0; len(queue) > 0; steps++ {
		if steps > limit {
			fatalf("recovery of %d-%d does not terminate", a, b)
		}
		edge := queue[0]
		queue = queue[1:]
		o, ok := m.findEdge(edge[0], edge[1])
		if !ok {
			fatalf("crossed edge %d-%d vanished", edge[0], edge[1])
		}
		nb := m.Sym(o)
		if nb.IsOuter() {
			fatalf("crossed edge %d-%d is on the hull", edge[0], edge[1])
		}
		u, w, c, d := m.Org(o), m.Dest(o), m.Apex(o), m.Apex(nb)
		if m.orient(c, u, d) <= 0 || m.orient(d, w, c) <= 0 {
			queue = append(queue, edge)
			continue
		}
		m.flip(o)
		if m.crosses(c, d, a, b) {
			queue = append(queue, [2]int{c, d})
		} else {
			created = append(created, [2]int{c, d})
		}
	}
	return created
}

// crosses reports whether c-d and a-b cross at a point interior to both.
func (m *Mesh) crosses(c, d, a, b int) bool {
	if c == a || c == b || d == a || d == b {
		return false
	}
	return m.orient(a, b, c)*m.orient(a, b, d) < 0 &&
		m.orient(c, d, a)*m.orient(c, d, b) < 0
}

// splitCrossing handles a-b running into the subsegment under cur. Unless
// SplitCrossings is set this is a conflict. Otherwise both constraints are
// split at their intersection, and a-b is inserted as two halves.
func (m *Mesh) splitCrossing(cur Otri, a, b, mark, depth int) {
	p, q := m.Org(cur), m.Dest(cur)
	if !m.opts.SplitCrossings {
		throw(errors.Wrapf(ErrConstraintConflict,
			"segment %v-%v crosses segment %v-%v", m.pt(a), m.pt(b), m.pt(p), m.pt(q)))
	}
	if depth >= maxSplitDepth {
		throw(errors.Wrapf(ErrConstraintConflict,
			"segment %v-%v crosses too many segments", m.pt(a), m.pt(b)))
	}
	x := intersection(m.pt(a), m.pt(b), m.pt(p), m.pt(q))
	var v int
	switch x {
	case m.pt(p):
		v = p
	case m.pt(q):
		v = q
	default:
		s, _ := m.SegPivot(cur)
		v = m.addVertex(x, SegmentVertex, m.SegMark(s))
		m.splitEdge(cur, v)
		m.recent = m.verts[v].tri
	}
	m.insertSegmentDepth(a, v, mark, depth+1)
	m.insertSegmentDepth(v, b, mark, depth+1)
}

// intersection returns the intersection of line a-b with line p-q, clamped to
// p-q. The lines must not be parallel.
func intersection(a, b, p, q Point) Point {
	ab, pq := b.Sub(a), q.Sub(p)
	den := pq.Cross(ab)
	if den == 0 {
		return p
	}
	t := a.Sub(p).Cross(ab) / den
	switch {
	case t <= 0:
		return p
	case t >= 1:
		return q
	}
	return p.Add(pq.Mul(t))
}

// convexHull returns the hull of the given vertices in counterclockwise order,
// without collinear points.
func (m *Mesh) convexHull(ids []int) []int {
	pts := append([]int(nil), ids...)
	sort.Slice(pts, func(i, j int) bool {
		pi, pj := m.pt(pts[i]), m.pt(pts[j])
		if pi.X != pj.X {
			return pi.X < pj.X
		}
		return pi.Y < pj.Y
	})
	if len(pts) < 3 {
		return pts
	}
	hull := make([]int, 0, 2*len(pts))
	for _, v := range pts {
		for len(hull) >= 2 && m.orient(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		v := pts[i]
		for len(hull) >= lower && m.orient(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	return hull[:len(hull)-1]
}
