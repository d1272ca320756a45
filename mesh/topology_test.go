package mesh

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareWithCenter(t *testing.T) *Mesh {
	var poly Polygon
	poly.AddContour([]Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}, 1, false)
	poly.Points = []Point{{X: 2, Y: 2}, {X: 1, Y: 3}, {X: 3, Y: 1}}
	m, err := Triangulate(&poly)
	require.NoError(t, err)
	return m
}

func TestNavigation(t *testing.T) {
	m := squareWithCenter(t)
	for tri := range m.tris {
		for e := 0; e < 3; e++ {
			o := m.Handle(tri, e)
			assert.Equal(t, o, o.Lnext().Lnext().Lnext())
			assert.Equal(t, o, o.Lprev().Lnext())
			assert.Equal(t, m.Dest(o), m.Org(o.Lnext()))
			assert.Equal(t, m.Apex(o), m.Org(o.Lprev()))

			sym := m.Sym(o)
			if sym.IsOuter() {
				assert.True(t, m.IsSegment(o), "hull edge %v must be a segment", o)
				continue
			}
			assert.Equal(t, o, m.Sym(sym))
			assert.Equal(t, m.Dest(o), m.Org(sym))
			assert.Equal(t, m.Org(o), m.Dest(sym))

			if next := m.Onext(o); !next.IsOuter() {
				assert.Equal(t, m.Org(o), m.Org(next))
				assert.Equal(t, o, m.Oprev(next))
			}
		}
	}
}

func TestSegPivot(t *testing.T) {
	m := squareWithCenter(t)
	for tri := range m.tris {
		for e := 0; e < 3; e++ {
			o := m.Handle(tri, e)
			s, ok := m.SegPivot(o)
			assert.Equal(t, m.IsSegment(o), ok)
			if !ok {
				continue
			}
			assert.Equal(t, m.Org(o), m.SegOrg(s))
			assert.Equal(t, m.Dest(o), m.SegDest(s))
			assert.Equal(t, m.Dest(o), m.SegOrg(s.Sym()))
			assert.Equal(t, 1, m.SegMark(s))
		}
	}
}

func TestForEachAround(t *testing.T) {
	m := squareWithCenter(t)
	for v := range m.verts {
		want := 0
		for _, tr := range m.tris {
			for _, c := range tr.v {
				if c == v {
					want++
				}
			}
		}
		got := 0
		m.forEachAround(v, func(o Otri) bool {
			assert.Equal(t, v, m.Org(o))
			got++
			return true
		})
		assert.Equal(t, want, got, "vertex %d", v)
	}
}

func TestFindEdge(t *testing.T) {
	m := squareWithCenter(t)
	for _, e := range m.Edges() {
		o, ok := m.findEdge(e.A, e.B)
		require.True(t, ok)
		assert.ElementsMatch(t, []int{e.A, e.B}, []int{m.Org(o), m.Dest(o)})
		if e.Kind != EdgeHull {
			assert.Equal(t, e.A, m.Org(o))
		}
	}
	_, ok := m.findEdge(0, 0)
	assert.False(t, ok)
}

func TestCheckFindsDefects(t *testing.T) {
	t.Run("broken neighbour link", func(t *testing.T) {
		m := squareWithCenter(t)
		require.NoError(t, m.Check())
		for e, nb := range m.tris[0].n {
			if !nb.IsOuter() {
				m.tris[0].n[e] = outerTri
				break
			}
		}
		err := m.Check()
		require.Error(t, err)
		assert.True(t, IsDefect(err))
	})

	t.Run("clockwise triangle", func(t *testing.T) {
		m := squareWithCenter(t)
		m.tris[0].v[0], m.tris[0].v[1] = m.tris[0].v[1], m.tris[0].v[0]
		assert.True(t, IsDefect(m.Check()))
	})

	t.Run("stale vertex reference", func(t *testing.T) {
		m := squareWithCenter(t)
		m.verts[0].tri = Otri{T: len(m.tris)}
		assert.True(t, IsDefect(m.Check()))
	})
}

func TestHandlePanicRecover(t *testing.T) {
	assert.NoError(t, handlePanicRecover(nil))

	err := func() (err error) {
		defer func() { err = handlePanicRecover(recover()) }()
		fatalf("broken %d", 1)
		return nil
	}()
	assert.True(t, IsDefect(err))
	assert.Contains(t, err.Error(), "broken 1")

	err = func() (err error) {
		defer func() { err = handlePanicRecover(recover()) }()
		throw(errors.Wrap(ErrConstraintConflict, "x"))
		return nil
	}()
	assert.True(t, errors.Is(err, ErrConstraintConflict))
	assert.False(t, IsDefect(err))

	assert.Panics(t, func() {
		defer func() { _ = handlePanicRecover(recover()) }()
		panic("not ours")
	})
}

func TestSplitPoint(t *testing.T) {
	m := newMesh(DefaultOptions())
	a := m.addVertex(Point{X: 0, Y: 0}, InputVertex, 0)
	b := m.addVertex(Point{X: 3, Y: 0}, SegmentVertex, 0)
	c := m.addVertex(Point{X: 0, Y: 4}, InputVertex, 0)

	// Shell around the input vertex: 2 is the power of two nearest 1.5.
	assert.Equal(t, Point{X: 2, Y: 0}, m.splitPoint(a, b))
	assert.Equal(t, Point{X: 2, Y: 0}, m.splitPoint(b, a))
	assert.Equal(t, Point{X: 0, Y: 2}, m.splitPoint(a, c))
}

func TestIntersection(t *testing.T) {
	x := intersection(Point{X: 0, Y: 0}, Point{X: 4, Y: 4}, Point{X: 0, Y: 4}, Point{X: 4, Y: 0})
	assert.InDelta(t, 2, x.X, 1e-12)
	assert.InDelta(t, 2, x.Y, 1e-12)

	// Parallel lines fall back to the start of the crossed segment.
	x = intersection(Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 0, Y: 1}, Point{X: 1, Y: 1})
	assert.Equal(t, Point{X: 0, Y: 1}, x)
}

func TestCircumcenter(t *testing.T) {
	c := circumcenter(Point{X: 0, Y: 0}, Point{X: 10, Y: 0}, Point{X: 5, Y: 1})
	assert.InDelta(t, 5, c.X, 1e-12)
	assert.InDelta(t, -12, c.Y, 1e-12)
}

func TestMinAngle(t *testing.T) {
	m := newMesh(DefaultOptions())
	m.addVertex(Point{X: 0, Y: 0}, InputVertex, 0)
	m.addVertex(Point{X: 1, Y: 0}, InputVertex, 0)
	m.addVertex(Point{X: 0, Y: 1}, InputVertex, 0)
	tri := m.newTri()
	m.setTri(tri, 0, 1, 2)

	angle, k := m.minAngle(tri)
	assert.InDelta(t, 45, angle, 1e-9)
	assert.NotEqual(t, 0, k)
}
