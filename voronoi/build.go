package voronoi

import (
	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/internal/logger"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/pkg/errors"
)

// Build returns the unbounded Voronoi diagram of m. Voronoi vertex i is the
// circumcenter of triangle i. Each hull edge gets a pair of rays to a far
// vertex placed outward along the edge's normal.
func Build(m *mesh.Mesh) (*Diagram, error) {
	if m == nil || m.NumTriangles() == 0 {
		return nil, errors.New("voronoi: empty mesh")
	}
	d := build(m)
	if err := d.Check(); err != nil {
		return nil, err
	}
	return d, nil
}

type faceOrigin struct {
	face, origin int
}

func build(m *mesh.Mesh) *Diagram {
	d := &Diagram{m: m}
	for t := 0; t < m.NumTriangles(); t++ {
		d.addVertex(m.Circumcenter(t))
	}
	for _, v := range m.Vertices() {
		d.Faces = append(d.Faces, Face{ID: v.ID, Generator: v.ID, Site: v.Point, Edge: None, Bounded: true})
	}

	for t := 0; t < m.NumTriangles(); t++ {
		for e := 0; e < 3; e++ {
			o := m.Handle(t, e)
			nb := m.Sym(o)
			if !nb.IsOuter() && nb.T < t {
				continue
			}
			org, dest := m.Org(o), m.Dest(o)

			var from int
			if nb.IsOuter() {
				a, b := m.Vertex(org).Point, m.Vertex(dest).Point
				normal := r2.Point{X: b.Y - a.Y, Y: a.X - b.X}
				from = d.addVertex(d.point(t).Add(normal))
			} else {
				from = nb.T
			}
			// The origin's cell lies to the left of from→t.
			he := d.addEdge(from, org)
			tw := d.addEdge(t, dest)
			d.twinPair(he, tw)
			if nb.IsOuter() {
				d.rays = append(d.rays, ray{hull: o, out: tw, in: he})
			}
		}
	}

	byOrigin := make(map[faceOrigin]int, len(d.HalfEdges))
	for _, he := range d.HalfEdges {
		byOrigin[faceOrigin{he.Face, he.Origin}] = he.ID
	}
	for i := range d.HalfEdges {
		he := &d.HalfEdges[i]
		if next, ok := byOrigin[faceOrigin{he.Face, d.HalfEdges[he.Twin].Origin}]; ok {
			he.Next = next
		}
		if d.Faces[he.Face].Edge == None {
			d.Faces[he.Face].Edge = he.ID
		}
	}
	for _, r := range d.rays {
		f := &d.Faces[d.HalfEdges[r.in].Face]
		f.Edge = r.in
		f.Bounded = false
	}

	logger.L().Debug("built voronoi diagram",
		"vertices", len(d.Vertices), "halfedges", len(d.HalfEdges), "rays", len(d.rays))
	return d
}
