package tilemesh

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smoke test. The internals are tested in their packages.
func TestTriangulateContours(t *testing.T) {
	square := []Point{
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
		{X: -1, Y: -1},
	}

	m, err := TriangulateContours(square)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumTriangles())
	assert.InDelta(t, 4, m.Area(), 1e-12)

	d, err := Voronoi(m)
	require.NoError(t, err)
	assert.Len(t, d.Cells(), 4)

	hole := []Point{
		{X: -0.5, Y: -0.5},
		{X: -0.5, Y: 0.5},
		{X: 0.5, Y: 0.5},
		{X: 0.5, Y: -0.5},
	}
	m, err = TriangulateContours(square, hole)
	require.NoError(t, err)
	assert.Equal(t, 8, m.NumTriangles())
	assert.InDelta(t, 3, m.Area(), 1e-12)
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	defer SetLogger(nil)

	opts := Options{Quality: Quality{MaximumArea: 0.001, MaxSteinerPoints: 3}}
	polygon := &Polygon{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}}
	m, err := TriangulateWith(polygon, opts)
	assert.ErrorIs(t, err, ErrRefinementLimit)
	require.NotNil(t, m)
	assert.Contains(t, buf.String(), "Steiner point limit")

	buf.Reset()
	SetLogger(nil)
	_, err = TriangulateWith(polygon, opts)
	assert.ErrorIs(t, err, ErrRefinementLimit)
	assert.Zero(t, buf.Len())
}
