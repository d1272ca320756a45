package draw

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/grid"
	"github.com/osuushi/tilemesh/internal/fixture"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/osuushi/tilemesh/voronoi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshImage(t *testing.T) {
	m, err := mesh.Triangulate(fixture.Load("square_hole"))
	require.NoError(t, err)

	opts := DefaultOptions()
	img := Mesh(m, opts)
	size := m.Bounds().Size()
	assert.Equal(t, int(size.X*opts.Scale)+2*opts.Padding, img.Bounds().Dx())
	assert.Equal(t, int(size.Y*opts.Scale)+2*opts.Padding, img.Bounds().Dy())

	path := filepath.Join(t.TempDir(), "mesh.png")
	require.NoError(t, SavePNG(img, path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestDiagramImage(t *testing.T) {
	var poly mesh.Polygon
	poly.AddContour(fixture.Square(0, 0, 10, 10), mesh.HullMarker, false)
	opts := mesh.DefaultOptions()
	opts.Quality.MaximumArea = 5
	m, err := mesh.TriangulateWith(&poly, opts)
	require.NoError(t, err)
	d, err := voronoi.BuildBounded(m)
	require.NoError(t, err)

	img := Diagram(m, d, DefaultOptions())
	assert.GreaterOrEqual(t, img.Bounds().Dx(), 140)
	assert.LessOrEqual(t, img.Bounds().Dx(), 141)
}

func TestGridImage(t *testing.T) {
	tile := grid.Tile{Bounds: r2.RectFromPoints(r2.Point{}, r2.Point{X: 40, Y: 20})}
	cfg := grid.DefaultConfig()
	cfg.MaxCellSize = 20
	cfg.MaximumArea = 50
	g, err := grid.Build(context.Background(), tile, cfg)
	require.NoError(t, err)

	img := Grid(g, Options{Scale: 2})
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestCat(t *testing.T) {
	m, err := mesh.Triangulate(&mesh.Polygon{Points: fixture.Square(0, 0, 1, 1)})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Cat(Mesh(m, DefaultOptions()), &buf))
	assert.NotZero(t, buf.Len())
}
