package mesh

import "github.com/osuushi/tilemesh/internal/logger"

// flood visits every triangle reachable from start without crossing a
// subsegment or entering a triangle for which enter returns false.
func (m *Mesh) flood(start int, enter func(t int) bool) {
	if start == Outer || !enter(start) {
		return
	}
	stack := []int{start}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		tr := &m.tris[t]
		for e := 0; e < 3; e++ {
			if tr.s[e] != noSeg {
				continue
			}
			nb := tr.n[e].T
			if nb == Outer || !enter(nb) {
				continue
			}
			stack = append(stack, nb)
		}
	}
}

// kill floods dead triangles from t.
func (m *Mesh) kill(t int) {
	m.flood(t, func(t int) bool {
		if m.tris[t].dead {
			return false
		}
		m.tris[t].dead = true
		return true
	})
}

// carve removes the triangles outside the domain: everything connected to the
// bounding triangle, every area reached from a hole seed, and the inside of
// every hole contour.
func (m *Mesh) carve(holes []Point, holeContours [][]int) {
	for t := range m.tris {
		for _, v := range m.tris[t].v {
			if m.verts[v].Kind == superVertex {
				m.kill(t)
				break
			}
		}
	}

	for _, h := range holes {
		loc, o := m.locate(h)
		if loc == outside {
			logger.L().Debug("hole seed outside the mesh", "point", h)
			continue
		}
		m.kill(o.T)
	}

	for _, ring := range holeContours {
		if t := m.insideOf(ring); t != Outer {
			m.kill(t)
		}
	}

	// Segments with nothing alive on either side belong to carved areas.
	for t := range m.tris {
		tr := &m.tris[t]
		if !tr.dead {
			continue
		}
		for e := 0; e < 3; e++ {
			s := tr.s[e]
			if s == noSeg {
				continue
			}
			nb := tr.n[e]
			if nb.IsOuter() || m.tris[nb.T].dead {
				m.segs[s].dead = true
			}
		}
	}
}

// insideOf returns the live triangle on the inner side of the first edge of a
// ring, or Outer.
func (m *Mesh) insideOf(ring []int) int {
	if len(ring) < 3 {
		return Outer
	}
	a, b := ring[0], ring[1]
	o, _, res := m.findDirection(a, b)
	if res != dirEdge && res != dirCollinear {
		return Outer
	}
	left, right := o.T, m.Sym(o).T
	if m.Org(o) != a {
		left, right = right, left
	}
	t := right
	if m.ringArea(ring) > 0 {
		t = left
	}
	if t == Outer || m.tris[t].dead {
		return Outer
	}
	return t
}

func (m *Mesh) ringArea(ring []int) float64 {
	var area float64
	for i, v := range ring {
		p, q := m.pt(v), m.pt(ring[(i+1)%len(ring)])
		area += p.Cross(q)
	}
	return area / 2
}

// compact drops dead triangles, dead subsegments and vertices no live
// triangle uses, renumbering everything densely in the original order.
func (m *Mesh) compact() {
	vmap := make([]int, len(m.verts))
	tmap := make([]int, len(m.tris))
	smap := make([]int, len(m.segs))
	for i := range vmap {
		vmap[i] = -1
	}
	for i := range smap {
		smap[i] = noSeg
	}

	nt := 0
	for t := range m.tris {
		tmap[t] = Outer
		if m.tris[t].dead {
			continue
		}
		tmap[t] = nt
		nt++
		for e := 0; e < 3; e++ {
			vmap[m.tris[t].v[e]] = 0
			if s := m.tris[t].s[e]; s != noSeg && !m.segs[s].dead {
				smap[s] = 0
			}
		}
	}

	verts := make([]Vertex, 0, len(m.verts))
	for v := range m.verts {
		if vmap[v] < 0 {
			continue
		}
		vmap[v] = len(verts)
		vx := m.verts[v]
		vx.ID = len(verts)
		verts = append(verts, vx)
	}

	segs := make([]subseg, 0, len(m.segs))
	for s := range m.segs {
		if smap[s] == noSeg {
			continue
		}
		smap[s] = len(segs)
		sg := m.segs[s]
		sg.v = [2]int{vmap[sg.v[0]], vmap[sg.v[1]]}
		segs = append(segs, sg)
	}

	tris := make([]triangle, 0, nt)
	for t := range m.tris {
		if tmap[t] == Outer {
			continue
		}
		tr := m.tris[t]
		id := len(tris)
		for e := 0; e < 3; e++ {
			tr.v[e] = vmap[tr.v[e]]
			if nb := tr.n[e]; !nb.IsOuter() && tmap[nb.T] != Outer {
				tr.n[e] = Otri{tmap[nb.T], nb.E}
			} else {
				tr.n[e] = outerTri
			}
			if tr.s[e] != noSeg {
				tr.s[e] = smap[tr.s[e]]
			}
			verts[tr.v[e]].tri = Otri{id, e}
		}
		tris = append(tris, tr)
	}

	m.verts, m.tris, m.segs = verts, tris, segs
	m.recent = Otri{}
}

// applyRegions tags the triangles reachable from each region seed.
func (m *Mesh) applyRegions(regions []Region) {
	for _, r := range regions {
		loc, o := m.locate(r.Point)
		if loc == outside {
			logger.L().Warn("region seed outside the mesh", "point", r.Point, "region", r.ID)
			continue
		}
		seen := make(map[int]bool)
		m.flood(o.T, func(t int) bool {
			if seen[t] {
				return false
			}
			seen[t] = true
			m.tris[t].region = r.ID
			m.tris[t].maxArea = r.MaxArea
			return true
		})
	}
}
