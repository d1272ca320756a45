package mesh

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
)

// Point is a position in the plane.
type Point = r2.Point

const (
	// Outer is the id of the sentinel triangle on the far side of every hull
	// edge. Neighbour traversal stops when it reaches Outer.
	Outer = -1
	// Exterior is the region of triangles that no region seed reached.
	Exterior = 0
	// HullMarker is the boundary marker given to hull edges that did not come
	// from an input segment.
	HullMarker = 1

	noSeg = -1
)

type VertexKind uint8

const (
	InputVertex VertexKind = iota
	// SegmentVertex is a Steiner point that splits a segment.
	SegmentVertex
	// FreeVertex is a Steiner point in the interior of the domain.
	FreeVertex
	superVertex
)

type Vertex struct {
	Point
	ID   int
	Mark int
	Kind VertexKind

	// One triangle that has this vertex as the origin of the handle.
	tri Otri
}

// Otri is an oriented triangle: triangle T, looking at edge E. Edge E runs
// from corner E to corner E+1 (mod 3), and the remaining corner is the apex.
// Handles are plain values; navigation returns new handles.
type Otri struct {
	T, E int
}

// Osub is an oriented subsegment: segment S seen from Side 0 (running from
// its first endpoint to its second) or Side 1.
type Osub struct {
	S, Side int
}

var outerTri = Otri{T: Outer}

var (
	plus1  = [3]int{1, 2, 0}
	minus1 = [3]int{2, 0, 1}
)

type triangle struct {
	v       [3]int
	n       [3]Otri
	s       [3]int
	region  int
	maxArea float64
	dead    bool
}

type subseg struct {
	v    [2]int
	mark int
	dead bool
}

// Triangle is the exported view of a mesh triangle. V lists the corners
// counterclockwise, and N[i] is the triangle across the edge V[i]→V[i+1], or
// Outer.
type Triangle struct {
	ID     int
	V      [3]int
	N      [3]int
	Region int
}

type EdgeKind uint8

const (
	// EdgeFree is an unconstrained edge.
	EdgeFree EdgeKind = iota
	// EdgeHull is a constrained edge on the boundary of the meshed domain.
	EdgeHull
	// EdgeSegment is a constrained edge with triangles on both sides.
	EdgeSegment
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeHull:
		return "hull"
	case EdgeSegment:
		return "segment"
	}
	return "free"
}

// Edge is one undirected mesh edge. Left is the triangle on the left of A→B
// and Right is the one on the right, which is Outer for hull edges.
type Edge struct {
	A, B        int
	Left, Right int
	Kind        EdgeKind
	Marker      int
}

// Subsegment is a constrained edge of the mesh.
type Subsegment struct {
	ID     int
	A, B   int
	Marker int
}

// Contour is a closed ring of points. The last point connects back to the
// first, so it must not be repeated. Hole contours are removed from the mesh
// along with everything they enclose that is not separated from them by
// another contour.
type Contour struct {
	Points []Point
	Marker int
	Hole   bool
}

// Segment is an explicit constraint between two points.
type Segment struct {
	A, B   Point
	Marker int
}

// Region tags every triangle reachable from Point without crossing a segment.
// A positive MaxArea overrides the global area bound inside the region.
type Region struct {
	Point   Point
	ID      int
	MaxArea float64
}

// Polygon is a planar straight line graph: the input of the triangulator.
type Polygon struct {
	Points   []Point
	Contours []Contour
	Segments []Segment
	Holes    []Point
	Regions  []Region
}

func (p *Polygon) AddContour(points []Point, marker int, hole bool) {
	p.Contours = append(p.Contours, Contour{Points: points, Marker: marker, Hole: hole})
}

func (p *Polygon) AddSegment(a, b Point, marker int) {
	p.Segments = append(p.Segments, Segment{A: a, B: b, Marker: marker})
}

func (p *Polygon) AddHole(point Point) {
	p.Holes = append(p.Holes, point)
}

func (p *Polygon) AddRegion(point Point, id int) {
	p.Regions = append(p.Regions, Region{Point: point, ID: id})
}

// DefaultMaxSteinerPoints bounds refinement when Quality leaves it unset.
const DefaultMaxSteinerPoints = 1 << 16

// Quality bounds the triangles produced by refinement. A MaximumArea of zero
// or +Inf and a MinimumAngle of zero disable the respective bound.
// MinimumAngle is in degrees.
type Quality struct {
	MaximumArea      float64
	MinimumAngle     float64
	MaxSteinerPoints int
}

func DefaultQuality() Quality {
	return Quality{MaximumArea: math.Inf(1), MaxSteinerPoints: DefaultMaxSteinerPoints}
}

func (q Quality) hasArea() bool {
	return q.MaximumArea > 0 && !math.IsInf(q.MaximumArea, 1)
}

func (q Quality) steinerLimit() int {
	if q.MaxSteinerPoints <= 0 {
		return DefaultMaxSteinerPoints
	}
	return q.MaxSteinerPoints
}

type Options struct {
	// UseRegions applies the polygon's region seeds. Triangles no seed reaches
	// keep the Exterior region.
	UseRegions bool
	// Convex keeps the whole convex hull of the input instead of carving the
	// area outside the contours.
	Convex bool
	// SplitCrossings resolves crossing constraints by inserting their
	// intersection point instead of failing with ErrConstraintConflict.
	SplitCrossings bool
	Quality        Quality
}

func DefaultOptions() Options {
	return Options{UseRegions: true, Quality: DefaultQuality()}
}

// Mesh is a constrained Delaunay triangulation stored in flat arenas.
// Triangles, vertices and subsegments are addressed by their index, which is
// also their ID.
type Mesh struct {
	verts []Vertex
	tris  []triangle
	segs  []subseg

	opts   Options
	rnd    *rand.Rand
	recent Otri

	steiner      int
	limitReached bool
	unrefined    int
}

func newMesh(opts Options) *Mesh {
	return &Mesh{
		opts: opts,
		rnd:  rand.New(rand.NewSource(1)),
	}
}
