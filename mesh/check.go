package mesh

import "github.com/osuushi/tilemesh/internal/predicates"

// Check verifies the topological invariants of the mesh: every triangle is
// counterclockwise, neighbour links are mutual, both sides of an edge agree
// on its subsegment, every hull edge is constrained and every vertex refers
// to a triangle it belongs to. It returns a *DefectError for the first
// violation.
func (m *Mesh) Check() error {
	for t := range m.tris {
		tr := &m.tris[t]
		if m.orient(tr.v[0], tr.v[1], tr.v[2]) <= 0 {
			return Defectf("triangle %d %v is not counterclockwise", t, tr.v)
		}
		for e := 0; e < 3; e++ {
			a, b := tr.v[e], tr.v[plus1[e]]
			s := tr.s[e]
			if s != noSeg {
				if s < 0 || s >= len(m.segs) {
					return Defectf("triangle %d edge %d refers to missing subsegment %d", t, e, s)
				}
				sv := m.segs[s].v
				if !(sv == [2]int{a, b} || sv == [2]int{b, a}) {
					return Defectf("subsegment %d %v does not match edge %d-%d", s, sv, a, b)
				}
			}
			nb := tr.n[e]
			if nb.IsOuter() {
				if s == noSeg {
					return Defectf("hull edge %d-%d of triangle %d is not constrained", a, b, t)
				}
				continue
			}
			if nb.T < 0 || nb.T >= len(m.tris) {
				return Defectf("triangle %d edge %d refers to missing triangle %d", t, e, nb.T)
			}
			other := &m.tris[nb.T]
			if other.n[nb.E] != (Otri{t, e}) {
				return Defectf("triangle %d edge %d links to %v, which links back to %v", t, e, nb, other.n[nb.E])
			}
			if other.v[nb.E] != b || other.v[plus1[nb.E]] != a {
				return Defectf("triangles %d and %d disagree on the edge %d-%d", t, nb.T, a, b)
			}
			if other.s[nb.E] != s {
				return Defectf("triangles %d and %d disagree on the subsegment of %d-%d", t, nb.T, a, b)
			}
		}
	}
	for v := range m.verts {
		o := m.verts[v].tri
		if o.T < 0 || o.T >= len(m.tris) || m.Org(o) != v {
			return Defectf("vertex %d refers to %v, which does not start at it", v, o)
		}
	}
	return nil
}

// CheckDelaunay verifies that no unconstrained edge has a vertex inside the
// circumcircle of the triangle across it.
func (m *Mesh) CheckDelaunay() error {
	for t := range m.tris {
		tr := &m.tris[t]
		for e := 0; e < 3; e++ {
			nb := tr.n[e]
			if nb.IsOuter() || nb.T < t || tr.s[e] != noSeg {
				continue
			}
			d := m.Apex(nb)
			a, b, c := m.corners(t)
			if predicates.InCircle(a, b, c, m.pt(d)) > 0 {
				return Defectf("vertex %d lies inside the circumcircle of triangle %d", d, t)
			}
		}
	}
	return nil
}
