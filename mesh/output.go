package mesh

// Vertices returns a copy of the mesh vertices, indexed by ID.
func (m *Mesh) Vertices() []Vertex {
	return append([]Vertex(nil), m.verts...)
}

func (m *Mesh) Vertex(id int) Vertex { return m.verts[id] }

func (m *Mesh) NumVertices() int  { return len(m.verts) }
func (m *Mesh) NumTriangles() int { return len(m.tris) }

// Triangles returns the exported view of every triangle, indexed by ID.
func (m *Mesh) Triangles() []Triangle {
	out := make([]Triangle, len(m.tris))
	for t := range m.tris {
		out[t] = m.Triangle(t)
	}
	return out
}

func (m *Mesh) Triangle(t int) Triangle {
	tr := &m.tris[t]
	out := Triangle{ID: t, V: tr.v, Region: tr.region}
	for e := 0; e < 3; e++ {
		out.N[e] = tr.n[e].T
	}
	return out
}

// Subsegments returns every constrained edge.
func (m *Mesh) Subsegments() []Subsegment {
	out := make([]Subsegment, len(m.segs))
	for s, sg := range m.segs {
		out[s] = Subsegment{ID: s, A: sg.v[0], B: sg.v[1], Marker: sg.mark}
	}
	return out
}

// Edges enumerates every edge once. Each interior edge is reported by the
// triangle with the lower ID.
func (m *Mesh) Edges() []Edge {
	out := make([]Edge, 0, len(m.tris)*3/2+1)
	for t := range m.tris {
		tr := &m.tris[t]
		for e := 0; e < 3; e++ {
			nb := tr.n[e]
			if !nb.IsOuter() && nb.T < t {
				continue
			}
			edge := Edge{A: tr.v[e], B: tr.v[plus1[e]], Left: t, Right: nb.T}
			if s := tr.s[e]; s != noSeg {
				edge.Marker = m.segs[s].mark
				edge.Kind = EdgeSegment
				if nb.IsOuter() {
					edge.Kind = EdgeHull
				}
			}
			out = append(out, edge)
		}
	}
	return out
}

// HullSize is the number of edges on the boundary of the mesh, which is also
// the number of boundary vertices.
func (m *Mesh) HullSize() int {
	n := 0
	for t := range m.tris {
		for _, nb := range m.tris[t].n {
			if nb.IsOuter() {
				n++
			}
		}
	}
	return n
}

// Steiner is the number of vertices added by refinement or by splitting
// crossing segments.
func (m *Mesh) Steiner() int { return m.steiner }

// LimitReached reports whether the last refinement stopped at its Steiner
// point limit.
func (m *Mesh) LimitReached() bool { return m.limitReached }

// Unrefined is the number of triangles refinement had to leave outside the
// quality bounds without reaching the Steiner point limit.
func (m *Mesh) Unrefined() int { return m.unrefined }

func (m *Mesh) Options() Options { return m.opts }
