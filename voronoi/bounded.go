package voronoi

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/internal/logger"
	"github.com/osuushi/tilemesh/internal/predicates"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/pkg/errors"
)

// ErrNotConforming is returned by BuildBounded when the closed cells do not
// tile the mesh. This happens when a circumcenter lies outside the mesh across
// an interior edge; refining the mesh so that no boundary subsegment is
// encroached removes such triangles.
var ErrNotConforming = errors.New("voronoi: mesh does not conform near its boundary")

// BuildBounded returns the Voronoi diagram of m with every cell clipped to
// the mesh boundary. The mesh should be conforming near its hull: a ray whose
// circumcenter lies outside the mesh is bent back onto the hull line, which
// is exact only when a single obtuse triangle sits on that hull edge.
// Otherwise it fails with ErrNotConforming.
func BuildBounded(m *mesh.Mesh) (*Diagram, error) {
	if m == nil || m.NumTriangles() == 0 {
		return nil, errors.New("voronoi: empty mesh")
	}
	d := build(m)
	if err := d.bound(); err != nil {
		return nil, err
	}
	if err := d.Check(); err != nil {
		return nil, err
	}
	if err := d.checkTiling(); err != nil {
		return nil, err
	}
	return d, nil
}

// checkTiling verifies that every closed cell is counterclockwise and that
// together they cover exactly the area of the mesh.
func (d *Diagram) checkTiling() error {
	want := d.m.Area()
	var sum float64
	for _, c := range d.Cells() {
		a := signedArea(c.Polygon)
		if a < -1e-9*math.Max(1, want) {
			return errors.Wrapf(ErrNotConforming, "cell of vertex %d is clockwise (area %g)", c.Generator, a)
		}
		sum += a
	}
	if math.Abs(sum-want) > 1e-6*math.Max(1, want) {
		return errors.Wrapf(ErrNotConforming, "cells cover %g of a mesh of area %g", sum, want)
	}
	return nil
}

func signedArea(points []r2.Point) float64 {
	var a float64
	for i, p := range points {
		a += p.Cross(points[(i+1)%len(points)])
	}
	return a / 2
}

// closing is the half-edge that ends the cell of a hull edge's destination at
// the position of that vertex. Its Next is filled in once every ray has been
// processed.
type closing struct {
	hull mesh.Otri
	edge int
}

func (d *Diagram) bound() error {
	m := d.m
	incoming := make(map[mesh.Otri]int, len(d.rays))
	closings := make([]closing, 0, len(d.rays))

	for _, r := range d.rays {
		incoming[r.hull] = r.in
	}

	caseB := 0
	for _, r := range d.rays {
		org, dest := m.Org(r.hull), m.Dest(r.hull)
		a, b := m.Vertex(org).Point, m.Vertex(dest).Point
		out, in := r.out, r.in
		face := d.HalfEdges[out].Face
		c := d.HalfEdges[out].Origin

		if predicates.Orient(b, a, d.point(c)) <= 0 {
			// The circumcenter is on the mesh side of the hull edge: end the ray
			// at the edge's midpoint and walk along the hull to its
			// destination.
			far := d.HalfEdges[in].Origin
			d.Vertices[far].Point = a.Add(b).Mul(0.5)
			g := d.addVertex(b)
			h1 := d.addEdge(far, face)
			h2 := d.addEdge(g, face)
			d.HalfEdges[out].Next = h1
			d.HalfEdges[h1].Next = h2
			closings = append(closings, closing{hull: r.hull, edge: h2})
			continue
		}

		// The circumcenter is beyond the hull. The cell of the triangle's
		// apex reaches the hull between the points where the bisectors
		// through the circumcenter cross it.
		caseB++
		e1 := d.HalfEdges[in].Next
		if e1 == None || d.HalfEdges[e1].Twin == None {
			return mesh.Defectf("voronoi: ray into vertex %d has no successor", org)
		}
		t1 := d.HalfEdges[e1].Twin
		e2 := d.HalfEdges[t1].Next
		if e2 == None || d.HalfEdges[e2].Twin == None {
			return mesh.Defectf("voronoi: ray into vertex %d has no successor", org)
		}

		p2 := d.HalfEdges[in].Origin
		cross2, ok2 := d.crossHull(a, b, e1)
		cross1, ok1 := d.crossHull(a, b, e2)
		if !ok1 || !ok2 {
			return mesh.Defectf("voronoi: bisector parallel to hull edge %d-%d", org, dest)
		}
		d.Vertices[p2].Point = cross2
		d.Vertices[c].Point = cross1

		d.HalfEdges[e1].Origin = p2
		d.HalfEdges[t1].Next = in
		d.HalfEdges[in].Next = e2
		d.HalfEdges[in].Face = d.HalfEdges[e2].Face
		incoming[r.hull] = e1

		d.HalfEdges[in].Twin = None
		d.HalfEdges[out].Twin = None
		g := d.addVertex(b)
		h := d.addEdge(g, face)
		d.HalfEdges[out].Next = h
		closings = append(closings, closing{hull: r.hull, edge: h})
	}

	for _, cl := range closings {
		next := nextHullEdge(m, cl.hull)
		in, ok := incoming[next]
		if !ok {
			return mesh.Defectf("voronoi: no hull edge leaves vertex %d", m.Dest(cl.hull))
		}
		d.HalfEdges[cl.edge].Next = in
		f := &d.Faces[d.HalfEdges[cl.edge].Face]
		f.Edge = cl.edge
		f.Bounded = true
	}
	d.rays = nil

	// Boundary half-edges get twins on the exterior.
	n := len(d.HalfEdges)
	for i := 0; i < n; i++ {
		if d.HalfEdges[i].Twin != None {
			continue
		}
		tw := d.addEdge(d.Dest(i), None)
		d.twinPair(i, tw)
	}

	logger.L().Debug("bounded voronoi diagram", "rays", len(closings), "outside", caseB)
	return nil
}

// nextHullEdge returns the hull edge leaving the destination of hull edge o.
func nextHullEdge(m *mesh.Mesh, o mesh.Otri) mesh.Otri {
	h := o.Lnext()
	for i := 0; i <= m.NumTriangles(); i++ {
		if m.Sym(h).IsOuter() {
			return h
		}
		h = m.Oprev(h)
	}
	return mesh.Otri{T: mesh.Outer}
}

// crossHull intersects the line through a and b with the bisector of the two
// sites on either side of half-edge e.
func (d *Diagram) crossHull(a, b r2.Point, e int) (r2.Point, bool) {
	s := d.Faces[d.HalfEdges[e].Face].Site
	u := d.Faces[d.HalfEdges[d.HalfEdges[e].Twin].Face].Site
	mid := s.Add(u).Mul(0.5)
	return lineIntersection(a, b, mid, mid.Add(u.Sub(s).Ortho()))
}

// lineIntersection intersects the line through a and b with the line through
// p and q.
func lineIntersection(a, b, p, q r2.Point) (r2.Point, bool) {
	ab, pq := b.Sub(a), q.Sub(p)
	den := ab.Cross(pq)
	if den == 0 {
		return r2.Point{}, false
	}
	t := p.Sub(a).Cross(pq) / den
	return a.Add(ab.Mul(t)), true
}
