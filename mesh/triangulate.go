package mesh

import (
	"math"

	"github.com/osuushi/tilemesh/internal/logger"
	"github.com/osuushi/tilemesh/internal/predicates"
	"github.com/pkg/errors"
)

// Triangulate builds the constrained Delaunay triangulation of p with the
// default options.
func Triangulate(p *Polygon) (*Mesh, error) {
	return TriangulateWith(p, DefaultOptions())
}

// TriangulateWith builds the constrained Delaunay triangulation of p, carves
// away its holes and exterior, tags regions and refines it to opts.Quality.
//
// When refinement stops at its Steiner point limit, the mesh is returned along
// with an error wrapping ErrRefinementLimit. Every other error comes with a
// nil mesh.
func TriangulateWith(p *Polygon, opts Options) (result *Mesh, err error) {
	defer func() {
		if recovered := handlePanicRecover(recover()); recovered != nil {
			result, err = nil, recovered
		}
	}()

	if err := validate(p); err != nil {
		return nil, err
	}
	m := newMesh(opts)
	refineErr := m.build(p)
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, refineErr
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// validate rejects input that cannot be triangulated before any work starts.
func validate(p *Polygon) error {
	if p == nil {
		return errors.Wrap(ErrInputDegenerate, "nil polygon")
	}
	var all []Point
	add := func(pts ...Point) error {
		for _, pt := range pts {
			if !finite(pt) {
				return errors.Wrapf(ErrInputDegenerate, "non-finite coordinate %v", pt)
			}
			all = append(all, pt)
		}
		return nil
	}

	for i, c := range p.Contours {
		if err := add(c.Points...); err != nil {
			return err
		}
		if n := len(dedupeRing(c.Points)); n < 3 {
			return errors.Wrapf(ErrInputDegenerate, "contour %d has %d distinct points", i, n)
		}
	}
	for i, s := range p.Segments {
		if err := add(s.A, s.B); err != nil {
			return err
		}
		if s.A == s.B {
			return errors.Wrapf(ErrInputDegenerate, "segment %d has zero length", i)
		}
	}
	if err := add(p.Points...); err != nil {
		return err
	}
	for _, h := range p.Holes {
		if err := add(h); err != nil {
			return err
		}
	}
	for _, r := range p.Regions {
		if !finite(r.Point) {
			return errors.Wrapf(ErrInputDegenerate, "non-finite region seed %v", r.Point)
		}
	}

	// Holes are not mesh vertices, so only the others count from here on.
	all = all[:len(all)-len(p.Holes)]
	if len(all) == 0 {
		return errors.Wrap(ErrInputDegenerate, "no points")
	}
	a := all[0]
	b := -1
	for i, pt := range all {
		if pt != a {
			b = i
			break
		}
	}
	if b < 0 {
		return errors.Wrap(ErrInputDegenerate, "fewer than 3 distinct points")
	}
	for _, c := range all[b+1:] {
		if predicates.Orient(a, all[b], c) != 0 {
			return nil
		}
	}
	return errors.Wrap(ErrInputDegenerate, "all points are collinear")
}

// dedupeRing drops consecutive repeated points, including a closing point
// equal to the first.
func dedupeRing(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// build runs every stage on a validated polygon. It returns the refinement
// error, if any.
func (m *Mesh) build(p *Polygon) error {
	m.initSuper(p)

	insert := func(pt Point, mark int) int {
		v, _, ok := m.insertPoint(pt, InputVertex, mark)
		if !ok {
			fatalf("input point %v is outside the bounding triangle", pt)
		}
		return v
	}

	rings := make([][]int, len(p.Contours))
	var ids []int
	for i, c := range p.Contours {
		for _, pt := range dedupeRing(c.Points) {
			v := insert(pt, c.Marker)
			if n := len(rings[i]); n == 0 || rings[i][n-1] != v {
				rings[i] = append(rings[i], v)
			}
		}
		ids = append(ids, rings[i]...)
	}
	segs := make([][2]int, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = [2]int{insert(s.A, s.Marker), insert(s.B, s.Marker)}
		ids = append(ids, segs[i][0], segs[i][1])
	}
	for _, pt := range p.Points {
		ids = append(ids, insert(pt, 0))
	}
	logger.L().Debug("inserted vertices", "vertices", len(m.verts)-3, "triangles", len(m.tris))

	var holeRings [][]int
	for i, ring := range rings {
		for j, a := range ring {
			if b := ring[(j+1)%len(ring)]; a != b {
				m.insertSegment(a, b, p.Contours[i].Marker)
			}
		}
		if p.Contours[i].Hole {
			holeRings = append(holeRings, ring)
		}
	}
	for i, s := range segs {
		if s[0] != s[1] {
			m.insertSegment(s[0], s[1], p.Segments[i].Marker)
		}
	}
	if m.opts.Convex || len(m.segs) == 0 {
		hull := m.convexHull(unique(ids))
		for i, a := range hull {
			m.insertSegment(a, hull[(i+1)%len(hull)], HullMarker)
		}
	}
	logger.L().Debug("recovered segments", "subsegments", len(m.segs))

	m.carve(p.Holes, holeRings)
	m.compact()
	if len(m.tris) == 0 {
		throw(errors.Wrap(ErrInputDegenerate, "no triangles left after removing holes"))
	}
	if m.opts.UseRegions {
		m.applyRegions(p.Regions)
	}
	return m.refine()
}

func unique(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0:0]
	for _, v := range ids {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// initSuper creates a triangle far larger than the input, which every input
// point is inserted into. It is carved away afterwards.
func (m *Mesh) initSuper(p *Polygon) {
	lo := Point{X: math.Inf(1), Y: math.Inf(1)}
	hi := Point{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(pt Point) {
		lo = Point{X: math.Min(lo.X, pt.X), Y: math.Min(lo.Y, pt.Y)}
		hi = Point{X: math.Max(hi.X, pt.X), Y: math.Max(hi.Y, pt.Y)}
	}
	for _, c := range p.Contours {
		for _, pt := range c.Points {
			grow(pt)
		}
	}
	for _, s := range p.Segments {
		grow(s.A)
		grow(s.B)
	}
	for _, pt := range p.Points {
		grow(pt)
	}

	size := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	c := lo.Add(hi).Mul(0.5)
	a := m.addVertex(Point{X: c.X - 20*size, Y: c.Y - 20*size}, superVertex, 0)
	b := m.addVertex(Point{X: c.X + 20*size, Y: c.Y - 20*size}, superVertex, 0)
	d := m.addVertex(Point{X: c.X, Y: c.Y + 20*size}, superVertex, 0)
	t := m.newTri()
	m.setTri(t, a, b, d)
	m.recent = Otri{t, 0}
}
