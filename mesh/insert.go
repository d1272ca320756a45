package mesh

import "github.com/osuushi/tilemesh/internal/predicates"

type location uint8

const (
	outside location = iota
	inside
	onEdge
	onVertex
)

func (l location) String() string {
	switch l {
	case inside:
		return "inside"
	case onEdge:
		return "on edge"
	case onVertex:
		return "on vertex"
	}
	return "outside"
}

// classify reports where p lies relative to triangle t. For onEdge, the
// returned handle is the edge p lies on. For onVertex, its origin is the
// vertex.
func (m *Mesh) classify(t int, p Point) (location, Otri) {
	tr := &m.tris[t]
	for e, v := range tr.v {
		if m.pt(v) == p {
			return onVertex, Otri{t, e}
		}
	}
	zero := -1
	for e := 0; e < 3; e++ {
		switch m.orientPt(tr.v[e], tr.v[plus1[e]], p) {
		case -1:
			return outside, outerTri
		case 0:
			zero = e
		}
	}
	if zero >= 0 {
		return onEdge, Otri{t, zero}
	}
	return inside, Otri{t, 0}
}

// locate finds the triangle containing p. It walks from the most recently
// touched triangle, choosing randomly among the edges p lies beyond, and
// falls back to a scan of every triangle when the walk runs into the
// boundary of the mesh.
func (m *Mesh) locate(p Point) (location, Otri) {
	if len(m.tris) == 0 {
		return outside, outerTri
	}
	t := m.recent.T
	if t < 0 || t >= len(m.tris) || m.tris[t].dead {
		t = m.liveTri()
		if t == Outer {
			return outside, outerTri
		}
	}
	limit := 4*len(m.tris) + 16
	for step := 0; step < limit; step++ {
		next := Outer
		start := m.rnd.Intn(3)
		blocked := false
		for i := 0; i < 3; i++ {
			e := (start + i) % 3
			tr := &m.tris[t]
			if m.orientPt(tr.v[e], tr.v[plus1[e]], p) >= 0 {
				continue
			}
			nb := tr.n[e]
			if nb.IsOuter() || m.tris[nb.T].dead {
				blocked = true
				continue
			}
			next = nb.T
			break
		}
		if next == Outer {
			if blocked {
				break
			}
			loc, o := m.classify(t, p)
			m.recent = Otri{t, 0}
			return loc, o
		}
		t = next
	}
	return m.bruteLocate(p)
}

func (m *Mesh) liveTri() int {
	for t := range m.tris {
		if !m.tris[t].dead {
			return t
		}
	}
	return Outer
}

func (m *Mesh) bruteLocate(p Point) (location, Otri) {
	for t := range m.tris {
		if m.tris[t].dead {
			continue
		}
		if loc, o := m.classify(t, p); loc != outside {
			m.recent = Otri{t, 0}
			return loc, o
		}
	}
	return outside, outerTri
}

// insertPoint adds p to the triangulation. When p coincides with an existing
// vertex, that vertex is returned and ok is true with inserted false. When p
// lies outside the mesh, ok is false.
func (m *Mesh) insertPoint(p Point, kind VertexKind, mark int) (v int, inserted, ok bool) {
	loc, o := m.locate(p)
	switch loc {
	case onVertex:
		return m.Org(o), false, true
	case outside:
		return -1, false, false
	}
	v = m.addVertex(p, kind, mark)
	m.insertAt(loc, o, v)
	return v, true, true
}

func (m *Mesh) insertAt(loc location, o Otri, v int) {
	switch loc {
	case inside:
		m.splitTriangle(o.T, v)
	case onEdge:
		m.splitEdge(o, v)
	default:
		fatalf("cannot insert vertex %d %v a triangle", v, loc)
	}
	m.recent = m.verts[v].tri
}

// legalize restores the Delaunay property after vertex v was inserted. Every
// handle on the stack faces v, and the edge it names is flipped when the
// opposite vertex lies inside its circumcircle.
func (m *Mesh) legalize(stack []Otri, v int) {
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.Apex(o) != v || m.IsSegment(o) {
			continue
		}
		nb := m.Sym(o)
		if nb.IsOuter() {
			continue
		}
		a, b, d := m.Org(o), m.Dest(o), m.Apex(nb)
		if predicates.InCircle(m.pt(a), m.pt(b), m.pt(v), m.pt(d)) <= 0 {
			continue
		}
		m.flip(o)
		stack = append(stack, Otri{o.T, 1}, Otri{nb.T, 0})
	}
}

// legalizeEdges runs Lawson's flip algorithm over the given edges until none
// of them, nor any edge exposed by a flip, violates the Delaunay property.
// Constrained edges are never flipped.
func (m *Mesh) legalizeEdges(edges [][2]int) {
	limit := 8*len(m.tris) + 64
	for steps := 0; len(edges) > 0; steps++ {
		if steps > limit*4 {
			fatalf("edge legalization does not terminate")
		}
		e := edges[len(edges)-1]
		edges = edges[:len(edges)-1]
		o, ok := m.findEdge(e[0], e[1])
		if !ok || m.IsSegment(o) {
			continue
		}
		nb := m.Sym(o)
		if nb.IsOuter() {
			continue
		}
		a, b, c, d := m.Org(o), m.Dest(o), m.Apex(o), m.Apex(nb)
		if predicates.InCircle(m.pt(a), m.pt(b), m.pt(c), m.pt(d)) <= 0 {
			continue
		}
		m.flip(o)
		edges = append(edges, [2]int{c, a}, [2]int{a, d}, [2]int{d, b}, [2]int{b, c})
	}
}
