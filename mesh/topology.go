package mesh

import "github.com/osuushi/tilemesh/internal/predicates"

// Navigation. All of these are pure: they read the arena and return a new
// handle or vertex id.

func (o Otri) Lnext() Otri   { return Otri{o.T, plus1[o.E]} }
func (o Otri) Lprev() Otri   { return Otri{o.T, minus1[o.E]} }
func (o Otri) IsOuter() bool { return o.T == Outer }

func (s Osub) Sym() Osub { return Osub{s.S, 1 - s.Side} }

// Handle returns the handle for edge e of triangle t.
func (m *Mesh) Handle(t, e int) Otri { return Otri{t, e} }

func (m *Mesh) Org(o Otri) int  { return m.tris[o.T].v[o.E] }
func (m *Mesh) Dest(o Otri) int { return m.tris[o.T].v[plus1[o.E]] }
func (m *Mesh) Apex(o Otri) int { return m.tris[o.T].v[minus1[o.E]] }

// Sym returns the same edge seen from the neighbouring triangle, or an Outer
// handle on the hull.
func (m *Mesh) Sym(o Otri) Otri { return m.tris[o.T].n[o.E] }

// Onext rotates counterclockwise around the origin.
func (m *Mesh) Onext(o Otri) Otri { return m.Sym(o.Lprev()) }

// Oprev rotates clockwise around the origin.
func (m *Mesh) Oprev(o Otri) Otri {
	sym := m.Sym(o)
	if sym.IsOuter() {
		return sym
	}
	return sym.Lnext()
}

// SegPivot returns the subsegment lying on o's edge, oriented to run the same
// way as o.
func (m *Mesh) SegPivot(o Otri) (Osub, bool) {
	s := m.tris[o.T].s[o.E]
	if s == noSeg {
		return Osub{}, false
	}
	side := 0
	if m.segs[s].v[0] != m.Org(o) {
		side = 1
	}
	return Osub{S: s, Side: side}, true
}

func (m *Mesh) IsSegment(o Otri) bool { return m.tris[o.T].s[o.E] != noSeg }

func (m *Mesh) SegOrg(s Osub) int  { return m.segs[s.S].v[s.Side] }
func (m *Mesh) SegDest(s Osub) int { return m.segs[s.S].v[1-s.Side] }
func (m *Mesh) SegMark(s Osub) int { return m.segs[s.S].mark }

func (m *Mesh) seg(o Otri) int { return m.tris[o.T].s[o.E] }

func (m *Mesh) pt(v int) Point { return m.verts[v].Point }

func (m *Mesh) orient(a, b, c int) int {
	return predicates.Orient(m.pt(a), m.pt(b), m.pt(c))
}

func (m *Mesh) orientPt(a, b int, p Point) int {
	return predicates.Orient(m.pt(a), m.pt(b), p)
}

// forEachAround calls fn for every triangle that has v as a corner, with a
// handle whose origin is v. It stops early when fn returns false.
func (m *Mesh) forEachAround(v int, fn func(o Otri) bool) {
	start := m.verts[v].tri
	if m.Org(start) != v {
		fatalf("vertex %d has a stale triangle reference %v", v, start)
	}
	limit := len(m.tris) + 1
	o := start
	for i := 0; ; i++ {
		if i > limit {
			fatalf("rotation around vertex %d does not terminate", v)
		}
		if !fn(o) {
			return
		}
		o = m.Onext(o)
		if o.IsOuter() {
			break
		}
		if o == start {
			return
		}
	}
	// v is on the boundary; sweep the other way from the start.
	o = m.Oprev(start)
	for i := 0; !o.IsOuter(); i++ {
		if i > limit || o == start {
			fatalf("rotation around boundary vertex %d does not terminate", v)
		}
		if !fn(o) {
			return
		}
		o = m.Oprev(o)
	}
}

// findEdge returns a handle on the edge between a and b. The handle runs a→b
// unless that side of the edge is Outer, in which case it runs b→a.
func (m *Mesh) findEdge(a, b int) (Otri, bool) {
	var found Otri
	ok := false
	m.forEachAround(a, func(o Otri) bool {
		switch b {
		case m.Dest(o):
			found, ok = o, true
			return false
		case m.Apex(o):
			found, ok = o.Lprev(), true
		}
		return true
	})
	return found, ok
}

// Mutations. Every mutation rebonds all the edges it touches before
// returning, so neighbour links are mutually consistent between calls.

func (m *Mesh) addVertex(p Point, kind VertexKind, mark int) int {
	id := len(m.verts)
	m.verts = append(m.verts, Vertex{Point: p, ID: id, Mark: mark, Kind: kind, tri: outerTri})
	if kind == SegmentVertex || kind == FreeVertex {
		m.steiner++
	}
	return id
}

func (m *Mesh) newTri() int {
	m.tris = append(m.tris, triangle{
		n: [3]Otri{outerTri, outerTri, outerTri},
		s: [3]int{noSeg, noSeg, noSeg},
	})
	return len(m.tris) - 1
}

// newTriLike allocates a triangle carrying the region attributes of t.
func (m *Mesh) newTriLike(t int) int {
	id := m.newTri()
	m.tris[id].region = m.tris[t].region
	m.tris[id].maxArea = m.tris[t].maxArea
	return id
}

// setTri overwrites the corners of t, clears its links, and points the back
// references of the corners at it. The caller rebonds every edge.
func (m *Mesh) setTri(t, a, b, c int) {
	tr := &m.tris[t]
	tr.v = [3]int{a, b, c}
	tr.n = [3]Otri{outerTri, outerTri, outerTri}
	tr.s = [3]int{noSeg, noSeg, noSeg}
	tr.dead = false
	for e, v := range tr.v {
		m.verts[v].tri = Otri{t, e}
	}
}

func (m *Mesh) bond(a, b Otri) {
	if !a.IsOuter() {
		m.tris[a.T].n[a.E] = b
	}
	if !b.IsOuter() {
		m.tris[b.T].n[b.E] = a
	}
}

// bondSeg bonds o to its neighbour and records the subsegment on o's side.
// The neighbour already stores the same subsegment.
func (m *Mesh) bondSeg(o, nb Otri, s int) {
	m.bond(o, nb)
	m.tris[o.T].s[o.E] = s
}

// flip replaces the diagonal of the quadrilateral formed by o's triangle and
// its neighbour. With o running a→b with apex c, and the neighbour's apex d,
// o.T becomes (c, a, d) and the neighbour becomes (d, b, c).
func (m *Mesh) flip(o Otri) {
	u := m.Sym(o)
	if u.IsOuter() {
		fatalf("flip of hull edge %d-%d", m.Org(o), m.Dest(o))
	}
	if m.IsSegment(o) {
		fatalf("flip of segment %d-%d", m.Org(o), m.Dest(o))
	}
	a, b, c := m.Org(o), m.Dest(o), m.Apex(o)
	d := m.Apex(u)

	nbc, sbc := m.Sym(o.Lnext()), m.seg(o.Lnext())
	nca, sca := m.Sym(o.Lprev()), m.seg(o.Lprev())
	nad, sad := m.Sym(u.Lnext()), m.seg(u.Lnext())
	ndb, sdb := m.Sym(u.Lprev()), m.seg(u.Lprev())

	t, w := o.T, u.T
	m.setTri(t, c, a, d)
	m.setTri(w, d, b, c)
	m.bondSeg(Otri{t, 0}, nca, sca)
	m.bondSeg(Otri{t, 1}, nad, sad)
	m.bondSeg(Otri{w, 0}, ndb, sdb)
	m.bondSeg(Otri{w, 1}, nbc, sbc)
	m.bond(Otri{t, 2}, Otri{w, 2})
}

// splitTriangle inserts vertex p strictly inside triangle t, replacing it with
// three triangles, then restores the Delaunay property around p.
func (m *Mesh) splitTriangle(t, p int) {
	old := m.tris[t]
	a, b, c := old.v[0], old.v[1], old.v[2]
	t1 := m.newTriLike(t)
	t2 := m.newTriLike(t)

	m.setTri(t, a, b, p)
	m.setTri(t1, b, c, p)
	m.setTri(t2, c, a, p)
	m.bondSeg(Otri{t, 0}, old.n[0], old.s[0])
	m.bondSeg(Otri{t1, 0}, old.n[1], old.s[1])
	m.bondSeg(Otri{t2, 0}, old.n[2], old.s[2])
	m.bond(Otri{t, 1}, Otri{t1, 2})
	m.bond(Otri{t1, 1}, Otri{t2, 2})
	m.bond(Otri{t2, 1}, Otri{t, 2})

	m.legalize([]Otri{{t, 0}, {t1, 0}, {t2, 0}}, p)
}

// splitEdge inserts vertex p on the edge of o, splitting the triangles on
// both sides (or the one triangle, on the hull). A subsegment on the edge is
// split with it.
func (m *Mesh) splitEdge(o Otri, p int) {
	u := m.Sym(o)
	a, b, c := m.Org(o), m.Dest(o), m.Apex(o)
	sab := m.seg(o)
	nbc, sbc := m.Sym(o.Lnext()), m.seg(o.Lnext())
	nca, sca := m.Sym(o.Lprev()), m.seg(o.Lprev())

	var (
		d        int
		nad, ndb Otri
		sad, sdb int
	)
	if !u.IsOuter() {
		d = m.Apex(u)
		nad, sad = m.Sym(u.Lnext()), m.seg(u.Lnext())
		ndb, sdb = m.Sym(u.Lprev()), m.seg(u.Lprev())
	}

	sap, spb := noSeg, noSeg
	if sab != noSeg {
		sap, spb = m.splitSeg(sab, a, b, p)
	}

	t1 := o.T
	t2 := m.newTriLike(t1)
	m.setTri(t1, c, a, p)
	m.setTri(t2, b, c, p)
	m.bondSeg(Otri{t1, 0}, nca, sca)
	m.bondSeg(Otri{t2, 0}, nbc, sbc)
	m.bond(Otri{t1, 2}, Otri{t2, 1})
	stack := []Otri{{t1, 0}, {t2, 0}}

	if u.IsOuter() {
		m.bondSeg(Otri{t1, 1}, outerTri, sap)
		m.bondSeg(Otri{t2, 2}, outerTri, spb)
	} else {
		u1 := u.T
		u2 := m.newTriLike(u1)
		m.setTri(u1, a, d, p)
		m.setTri(u2, d, b, p)
		m.bondSeg(Otri{u1, 0}, nad, sad)
		m.bondSeg(Otri{u2, 0}, ndb, sdb)
		m.bond(Otri{u1, 1}, Otri{u2, 2})
		m.bondSeg(Otri{t1, 1}, Otri{u1, 2}, sap)
		m.tris[u1].s[2] = sap
		m.bondSeg(Otri{t2, 2}, Otri{u2, 1}, spb)
		m.tris[u2].s[1] = spb
		stack = append(stack, Otri{u1, 0}, Otri{u2, 0})
	}

	m.legalize(stack, p)
}

// splitSeg shortens subsegment s to run a→p and adds a new subsegment p→b with
// the same marker.
func (m *Mesh) splitSeg(s, a, b, p int) (int, int) {
	mark := m.segs[s].mark
	m.segs[s].v = [2]int{a, p}
	m.segs = append(m.segs, subseg{v: [2]int{p, b}, mark: mark})
	if m.verts[p].Mark == 0 {
		m.verts[p].Mark = mark
	}
	return s, len(m.segs) - 1
}

// markSegment records a subsegment on o's edge. An edge that is already
// constrained keeps its subsegment, picking up the marker if it had none.
func (m *Mesh) markSegment(o Otri, mark int) {
	if s := m.seg(o); s != noSeg {
		if m.segs[s].mark == 0 {
			m.segs[s].mark = mark
		}
		return
	}
	s := len(m.segs)
	a, b := m.Org(o), m.Dest(o)
	m.segs = append(m.segs, subseg{v: [2]int{a, b}, mark: mark})
	m.tris[o.T].s[o.E] = s
	if nb := m.Sym(o); !nb.IsOuter() {
		m.tris[nb.T].s[nb.E] = s
	}
	for _, v := range []int{a, b} {
		if m.verts[v].Mark == 0 {
			m.verts[v].Mark = mark
		}
	}
}

// unmarkSegment removes the subsegment on o's edge, leaving a free edge.
func (m *Mesh) unmarkSegment(o Otri) {
	s := m.seg(o)
	if s == noSeg {
		return
	}
	m.segs[s].dead = true
	m.tris[o.T].s[o.E] = noSeg
	if nb := m.Sym(o); !nb.IsOuter() {
		m.tris[nb.T].s[nb.E] = noSeg
	}
}
