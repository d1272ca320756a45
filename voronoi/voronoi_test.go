package voronoi_test

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/internal/fixture"
	"github.com/osuushi/tilemesh/mesh"
	. "github.com/osuushi/tilemesh/voronoi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func polygonArea(points []r2.Point) float64 {
	var area float64
	for i, p := range points {
		area += p.Cross(points[(i+1)%len(points)])
	}
	return area / 2
}

func contour(points []r2.Point) *mesh.Polygon {
	var poly mesh.Polygon
	poly.AddContour(points, 1, false)
	return &poly
}

func triangulate(t *testing.T, poly *mesh.Polygon, q mesh.Quality) *mesh.Mesh {
	opts := mesh.DefaultOptions()
	opts.Quality = q
	m, err := mesh.TriangulateWith(poly, opts)
	require.NoError(t, err)
	return m
}

func assertInvariants(t *testing.T, d *Diagram) {
	t.Helper()
	require.NoError(t, d.Check())
	for i, he := range d.HalfEdges {
		require.NotEqual(t, None, he.Twin, "half-edge %d has no twin", i)
		assert.Equal(t, i, d.HalfEdges[he.Twin].Twin)
	}
	for _, f := range d.Faces {
		if !f.Bounded {
			continue
		}
		steps := 0
		e := f.Edge
		for {
			e = d.HalfEdges[e].Next
			steps++
			require.NotEqual(t, None, e)
			require.LessOrEqual(t, steps, len(d.HalfEdges))
			if e == f.Edge {
				break
			}
		}
	}
}

// Every cell is counterclockwise, and the cells tile the domain.
func assertTiles(t *testing.T, d *Diagram, area float64) {
	t.Helper()
	var sum float64
	for _, c := range d.Cells() {
		a := polygonArea(c.Polygon)
		assert.Greater(t, a, -epsilon, "cell of %d is clockwise", c.Generator)
		sum += a
	}
	assert.InDelta(t, area, sum, epsilon*math.Max(1, area))
}

func TestUnitSquare(t *testing.T) {
	m := triangulate(t, contour(fixture.Square(0, 0, 1, 1)), mesh.DefaultQuality())
	d, err := BuildBounded(m)
	require.NoError(t, err)
	assertInvariants(t, d)

	cells := d.Cells()
	require.Len(t, cells, 4)
	for _, c := range cells {
		assert.InDelta(t, 0.25, polygonArea(c.Polygon), epsilon)
	}
}

func TestHexagon(t *testing.T) {
	hexagon := fixture.RegularPolygon(6, 1)
	m := triangulate(t, contour(hexagon), mesh.DefaultQuality())
	d, err := BuildBounded(m)
	require.NoError(t, err)
	assertInvariants(t, d)

	assert.Equal(t, 6, d.NumBounded())
	assert.Len(t, d.Cells(), 6)
	assertTiles(t, d, polygonArea(hexagon))
	for _, c := range d.Cells() {
		assert.InDelta(t, polygonArea(hexagon)/6, polygonArea(c.Polygon), 1e-9)
	}
}

func TestObtuseHullTriangle(t *testing.T) {
	poly := &mesh.Polygon{Points: []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 1}}}
	m := triangulate(t, poly, mesh.DefaultQuality())
	require.Equal(t, 1, m.NumTriangles())

	d, err := BuildBounded(m)
	require.NoError(t, err)
	assertInvariants(t, d)

	areas := map[r2.Point]float64{}
	for _, c := range d.Cells() {
		areas[c.Site] = polygonArea(c.Polygon)
	}
	assert.InDelta(t, 0.65, areas[r2.Point{X: 0, Y: 0}], epsilon)
	assert.InDelta(t, 0.65, areas[r2.Point{X: 10, Y: 0}], epsilon)
	assert.InDelta(t, 3.7, areas[r2.Point{X: 5, Y: 1}], epsilon)
	assertTiles(t, d, 5)
}

func TestRefinedSquare(t *testing.T) {
	q := mesh.DefaultQuality()
	q.MaximumArea = 0.02
	m := triangulate(t, contour(fixture.Square(0, 0, 1, 1)), q)

	t.Run("bounded", func(t *testing.T) {
		d, err := BuildBounded(m)
		require.NoError(t, err)
		assertInvariants(t, d)
		assert.Equal(t, m.NumVertices(), d.NumBounded())
		assert.Len(t, d.Cells(), m.NumVertices())
		assertTiles(t, d, 1)

		// New boundary vertices are numbered after the circumcenters.
		for i, v := range d.Vertices {
			assert.Equal(t, i, v.ID)
		}
		assert.Greater(t, len(d.Vertices), m.NumTriangles())
	})

	t.Run("unbounded", func(t *testing.T) {
		d, err := Build(m)
		require.NoError(t, err)
		require.NoError(t, d.Check())
		assert.Equal(t, m.NumVertices()-m.HullSize(), d.NumBounded())
		assert.Len(t, d.Cells(), d.NumBounded())
		assert.Len(t, d.Vertices, m.NumTriangles()+m.HullSize())
		for _, f := range d.Faces {
			if f.Bounded {
				continue
			}
			// The cycle of an open face starts at the incoming ray.
			in := d.HalfEdges[f.Edge]
			assert.GreaterOrEqual(t, in.Origin, m.NumTriangles())
		}
	})
}

// Both triangles of the trapezoid are obtuse, and one of them has its
// circumcenter outside the trapezoid across the diagonal. Bending rays at the
// hull cannot close the cells around it.
func TestTrapezoid(t *testing.T) {
	trapezoid := []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 8, Y: 1}, {X: 1, Y: 1}}

	t.Run("unrefined", func(t *testing.T) {
		m := triangulate(t, contour(trapezoid), mesh.DefaultQuality())
		require.Equal(t, 2, m.NumTriangles())
		_, err := BuildBounded(m)
		assert.ErrorIs(t, err, ErrNotConforming)
	})

	t.Run("refined", func(t *testing.T) {
		q := mesh.DefaultQuality()
		q.MaximumArea = 0.5
		m := triangulate(t, contour(trapezoid), q)
		d, err := BuildBounded(m)
		require.NoError(t, err)
		assertInvariants(t, d)
		assertTiles(t, d, 8.5)
	})
}

func TestEmptyMesh(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)
	_, err = BuildBounded(nil)
	assert.Error(t, err)
}
