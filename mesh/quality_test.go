package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vertexAt(t *testing.T, m *Mesh, p Point) int {
	t.Helper()
	for v := range m.verts {
		if m.pt(v) == p {
			return v
		}
	}
	require.FailNow(t, "no vertex", "%v", p)
	return -1
}

func TestSplitKeepsOrientation(t *testing.T) {
	var poly Polygon
	poly.AddContour([]Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, 1, false)
	poly.Points = []Point{{X: 5, Y: 0.5}}
	m, err := Triangulate(&poly)
	require.NoError(t, err)

	o, ok := m.findEdge(vertexAt(t, m, Point{X: 0, Y: 0}), vertexAt(t, m, Point{X: 10, Y: 0}))
	require.True(t, ok)
	require.Equal(t, Point{X: 5, Y: 0.5}, m.pt(m.Apex(o)))

	assert.True(t, m.splitKeepsOrientation(o, Point{X: 5, Y: 0}))
	assert.True(t, m.splitKeepsOrientation(o, Point{X: 2, Y: 0.1}))
	// Beyond the apex, the new triangles would turn clockwise.
	assert.False(t, m.splitKeepsOrientation(o, Point{X: 5, Y: 0.6}))

	p, ok := m.safeSplitPoint(o)
	require.True(t, ok)
	assert.Equal(t, Point{X: 5, Y: 0}, p)
}

// A ring with vertices a thousandth off another ring's edge, as left by
// scaling rounded clipping output back down.
func nearlyTouchingRings() *Polygon {
	var poly Polygon
	poly.AddContour([]Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}, 1, false)
	// A band along y = x.
	poly.AddContour([]Point{
		{X: 0, Y: 0}, {X: 4.95, Y: 0}, {X: 100, Y: 95.05},
		{X: 100, Y: 100}, {X: 95.05, Y: 100}, {X: 0, Y: 4.95},
	}, 3, false)
	// Below the band, with its top edge just under the band's lower edge.
	poly.AddContour([]Point{{X: 30, Y: 25.049}, {X: 50, Y: 10}, {X: 80, Y: 30}, {X: 70, Y: 65.049}}, 2, false)
	poly.AddRegion(Point{X: 60, Y: 25}, 1)
	poly.AddRegion(Point{X: 50, Y: 50}, 2)
	return &poly
}

func TestRefinementStepsKeepMeshValid(t *testing.T) {
	opts := DefaultOptions()
	opts.SplitCrossings = true
	opts.Quality = Quality{}
	m, err := TriangulateWith(nearlyTouchingRings(), opts)
	require.NoError(t, err)

	r := newRefiner(m, Quality{MaximumArea: 20, MinimumAngle: 20, MaxSteinerPoints: 2000})
	r.start()
	count := m.NumTriangles()
	steps := 0
	for r.step() {
		steps++
		require.NoError(t, m.Check(), "after step %d", steps)
		require.GreaterOrEqual(t, m.NumTriangles(), count, "after step %d", steps)
		count = m.NumTriangles()
	}
	r.finish()
	assert.Greater(t, steps, 0)
	assert.Greater(t, m.Steiner(), 0)
}

func TestUnrefinedTriangles(t *testing.T) {
	// A single obtuse triangle. Its circumcenter lies below the base, which
	// cannot be split here.
	poly := &Polygon{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 1}}}
	m, err := Triangulate(poly)
	require.NoError(t, err)
	require.Equal(t, 1, m.NumTriangles())

	r := newRefiner(m, Quality{MaximumArea: 1})
	for s := range m.segs {
		r.stuck[s] = true
	}
	r.run()
	assert.Equal(t, 1, m.NumTriangles())
	assert.False(t, m.LimitReached())
	assert.Equal(t, 1, m.Unrefined())

	require.NoError(t, m.Refine(Quality{MaximumArea: 1}))
	assert.Zero(t, m.Unrefined())
	for tri := range m.tris {
		assert.LessOrEqual(t, m.TriangleArea(tri), 1.0)
	}
}
