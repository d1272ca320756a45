package mesh

import (
	"math"

	"github.com/osuushi/tilemesh/internal/logger"
	"github.com/osuushi/tilemesh/internal/predicates"
	"github.com/pkg/errors"
)

// Below this ratio of area to squared longest edge, a triangle is treated as
// flat and left alone.
const flatRatio = 1e-14

type queuedTri struct {
	t int
	v [3]int
}

type queuedSeg struct {
	s int
	v [2]int
}

// refiner inserts Steiner points until every triangle meets the quality
// bounds. Encroached subsegments are always split before any bad triangle is
// handled.
type refiner struct {
	m     *Mesh
	q     Quality
	limit int

	segs []queuedSeg
	tris []queuedTri
	// Subsegments too short to split any further.
	stuck map[int]bool
}

func (q Quality) active() bool {
	return q.hasArea() || q.MinimumAngle > 0
}

func (m *Mesh) hasRegionalArea() bool {
	for t := range m.tris {
		if m.tris[t].maxArea > 0 {
			return true
		}
	}
	return false
}

// refine runs the refiner with the mesh options. It returns
// ErrRefinementLimit when it stopped early.
func (m *Mesh) refine() error {
	q := m.opts.Quality
	if !q.active() && !m.hasRegionalArea() {
		return nil
	}
	r := newRefiner(m, q)
	before := len(m.verts)
	r.run()
	logger.L().Debug("refined mesh",
		"steiner", len(m.verts)-before, "triangles", len(m.tris), "limit", m.limitReached)
	if m.limitReached {
		logger.L().Warn("refinement stopped at the Steiner point limit", "limit", q.steinerLimit())
		return errors.Wrapf(ErrRefinementLimit, "%d Steiner points", q.steinerLimit())
	}
	if m.unrefined > 0 {
		logger.L().Warn("triangles left outside the quality bounds", "triangles", m.unrefined)
	}
	return nil
}

func newRefiner(m *Mesh, q Quality) *refiner {
	return &refiner{m: m, q: q, limit: m.steiner + q.steinerLimit(), stuck: make(map[int]bool)}
}

// Refine inserts Steiner points into an existing mesh until it meets q. Like
// Triangulate, it returns ErrRefinementLimit along with a usable mesh when it
// runs out of Steiner points.
func (m *Mesh) Refine(q Quality) (err error) {
	defer func() {
		if recovered := handlePanicRecover(recover()); recovered != nil {
			err = recovered
		}
	}()
	m.opts.Quality = q
	m.limitReached = false
	m.unrefined = 0
	err = m.refine()
	if checkErr := m.Check(); checkErr != nil {
		return checkErr
	}
	return err
}

func (r *refiner) run() {
	r.start()
	for r.step() {
	}
	r.finish()
}

func (r *refiner) start() {
	m := r.m
	for s := range m.segs {
		r.checkSeg(s)
	}
	for t := range m.tris {
		if r.bad(t) {
			r.pushTri(t)
		}
	}
}

// step handles one queued subsegment or triangle. It returns false once both
// queues are empty or the Steiner point limit is reached.
func (r *refiner) step() bool {
	m := r.m
	if len(r.segs) == 0 && len(r.tris) == 0 {
		return false
	}
	if m.steiner >= r.limit {
		m.limitReached = true
		return false
	}
	if len(r.segs) > 0 {
		qs := r.segs[0]
		r.segs = r.segs[1:]
		if m.segs[qs.s].v == qs.v {
			r.splitSegment(qs.s)
		}
		return true
	}
	qt := r.tris[0]
	r.tris = r.tris[1:]
	if m.tris[qt.t].v == qt.v && r.bad(qt.t) {
		r.splitTriangle(qt)
	}
	return true
}

// finish counts the triangles still out of bounds after the queues ran dry.
// They sit next to subsegments too short to split or have their
// circumcenter outside the mesh.
func (r *refiner) finish() {
	m := r.m
	if m.limitReached {
		return
	}
	m.unrefined = 0
	for t := range m.tris {
		if r.bad(t) {
			m.unrefined++
		}
	}
}

func (r *refiner) pushTri(t int) {
	r.tris = append(r.tris, queuedTri{t: t, v: r.m.tris[t].v})
}

func (r *refiner) pushSeg(s int) {
	r.segs = append(r.segs, queuedSeg{s: s, v: r.m.segs[s].v})
}

// checkSeg queues s if the apex of either adjacent triangle encroaches it.
func (r *refiner) checkSeg(s int) {
	m := r.m
	a, b := m.segs[s].v[0], m.segs[s].v[1]
	o, ok := m.findEdge(a, b)
	if !ok {
		fatalf("subsegment %d (%d-%d) is not a mesh edge", s, a, b)
	}
	pa, pb := m.pt(a), m.pt(b)
	if encroaches(pa, pb, m.pt(m.Apex(o))) {
		r.pushSeg(s)
		return
	}
	if nb := m.Sym(o); !nb.IsOuter() && encroaches(pa, pb, m.pt(m.Apex(nb))) {
		r.pushSeg(s)
	}
}

func (r *refiner) bad(t int) bool {
	m := r.m
	tr := &m.tris[t]
	area := m.TriangleArea(t)
	if area < flatRatio*m.longestSquared(t) {
		return false
	}
	maxArea := tr.maxArea
	if maxArea <= 0 && r.q.hasArea() {
		maxArea = r.q.MaximumArea
	}
	if maxArea > 0 && area > maxArea {
		return true
	}
	if r.q.MinimumAngle <= 0 {
		return false
	}
	angle, k := m.minAngle(t)
	if angle >= r.q.MinimumAngle {
		return false
	}
	// Small input angles between two segments cannot be improved.
	return tr.s[k] == noSeg || tr.s[minus1[k]] == noSeg
}

// splitPoint chooses where to split the subsegment a-b. Next to a single
// input vertex the split lands on a power-of-two shell around it, so that
// segments sharing that vertex are split at matching distances.
func (m *Mesh) splitPoint(a, b int) Point {
	pa, pb := m.pt(a), m.pt(b)
	ia, ib := m.verts[a].Kind == InputVertex, m.verts[b].Kind == InputVertex
	if ia == ib {
		return pa.Add(pb).Mul(0.5)
	}
	from, to := pa, pb
	if ib {
		from, to = pb, pa
	}
	length := to.Sub(from).Norm()
	d := math.Exp2(math.Round(math.Log2(length / 2)))
	t := d / length
	if t <= 0.25 || t >= 0.75 {
		t = 0.5
	}
	return from.Add(to.Sub(from).Mul(t))
}

// safeSplitPoint picks the point splitting the edge o. A point computed in
// floating point is only close to the edge, and next to a nearly flat
// triangle it can land on the wrong side; such points are refused, falling
// back from the shell point to the midpoint.
func (m *Mesh) safeSplitPoint(o Otri) (Point, bool) {
	a, b := m.Org(o), m.Dest(o)
	candidates := [2]Point{m.splitPoint(a, b), m.pt(a).Add(m.pt(b)).Mul(0.5)}
	for _, p := range candidates {
		if p != m.pt(a) && p != m.pt(b) && m.splitKeepsOrientation(o, p) {
			return p, true
		}
	}
	return Point{}, false
}

// splitKeepsOrientation reports whether splitting the edge o at p leaves all
// the new triangles counterclockwise.
func (m *Mesh) splitKeepsOrientation(o Otri, p Point) bool {
	for _, e := range []Otri{o, m.Sym(o)} {
		if e.IsOuter() {
			continue
		}
		org, dest, apex := m.pt(m.Org(e)), m.pt(m.Dest(e)), m.pt(m.Apex(e))
		if predicates.Orient(org, p, apex) <= 0 || predicates.Orient(p, dest, apex) <= 0 {
			return false
		}
	}
	return true
}

func (r *refiner) splitSegment(s int) {
	m := r.m
	if r.stuck[s] {
		return
	}
	a, b := m.segs[s].v[0], m.segs[s].v[1]
	o, ok := m.findEdge(a, b)
	if !ok {
		fatalf("subsegment %d (%d-%d) is not a mesh edge", s, a, b)
	}
	p, ok := m.safeSplitPoint(o)
	if !ok {
		r.stuck[s] = true
		return
	}
	v := m.addVertex(p, SegmentVertex, m.segs[s].mark)
	m.insertAt(onEdge, o, v)
	r.scanStar(v)
}

func (r *refiner) splitTriangle(qt queuedTri) {
	m := r.m
	c := m.Circumcenter(qt.t)
	if s := r.blockingSeg(qt.t, c); s != noSeg {
		if r.stuck[s] {
			return
		}
		r.pushSeg(s)
		r.pushTri(qt.t)
		return
	}
	loc, o := m.locate(c)
	switch loc {
	case outside, onVertex:
		return
	case onEdge:
		if s := m.seg(o); s != noSeg {
			if r.stuck[s] {
				return
			}
			r.pushSeg(s)
			r.pushTri(qt.t)
			return
		}
	}
	v := m.addVertex(c, FreeVertex, 0)
	m.insertAt(loc, o, v)
	r.scanStar(v)
}

// blockingSeg returns a subsegment that prevents inserting the circumcenter c
// of t: one that c encroaches, or one lying between t and c.
func (r *refiner) blockingSeg(t int, c Point) int {
	m := r.m
	pa, pb, pc := m.corners(t)
	g := pa.Add(pb).Add(pc).Mul(1.0 / 3)
	for s := range m.segs {
		sa, sb := m.pt(m.segs[s].v[0]), m.pt(m.segs[s].v[1])
		if encroaches(sa, sb, c) {
			return s
		}
		if segmentsTouch(g, c, sa, sb) {
			return s
		}
	}
	return noSeg
}

func segmentsTouch(p, q, a, b Point) bool {
	return predicates.Orient(a, b, p)*predicates.Orient(a, b, q) <= 0 &&
		predicates.Orient(p, q, a)*predicates.Orient(p, q, b) <= 0
}

// scanStar queues the bad triangles and encroached subsegments around a newly
// inserted vertex.
func (r *refiner) scanStar(v int) {
	m := r.m
	m.forEachAround(v, func(o Otri) bool {
		if r.bad(o.T) {
			r.pushTri(o.T)
		}
		for _, e := range []Otri{o, o.Lnext()} {
			if s := m.seg(e); s != noSeg {
				r.checkSeg(s)
			}
		}
		return true
	})
}
