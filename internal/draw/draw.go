// Package draw renders meshes, Voronoi diagrams and grids to images for
// debugging.
package draw

import (
	"image"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/osuushi/tilemesh/grid"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/osuushi/tilemesh/voronoi"
	"github.com/pkg/errors"
)

type Options struct {
	// Scale is the number of pixels per unit.
	Scale float64
	// Padding in pixels around the drawing.
	Padding   int
	LineWidth float64
}

func DefaultOptions() Options {
	return Options{Scale: 10, Padding: 20, LineWidth: 1}
}

// Region fill colors, picked by region ID. The exterior region is dark.
var palette = [][3]float64{
	{0.20, 0.45, 0.25},
	{0.55, 0.55, 0.55},
	{0.70, 0.55, 0.30},
	{0.30, 0.45, 0.70},
	{0.60, 0.35, 0.55},
	{0.45, 0.65, 0.60},
}

func regionColor(region int) (r, g, b float64) {
	if region == mesh.Exterior {
		return 0.12, 0.12, 0.12
	}
	c := palette[(region-1)%len(palette)]
	return c[0], c[1], c[2]
}

// canvas is a gg context flipped so that y grows upward, with the drawing's
// bounds mapped inside the padding.
type canvas struct {
	*gg.Context
	opts Options
}

func newCanvas(bounds r2.Rect, opts Options) *canvas {
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = 1
	}
	size := bounds.Size()
	width := int(math.Ceil(opts.Scale*size.X)) + opts.Padding*2
	height := int(math.Ceil(opts.Scale*size.Y)) + opts.Padding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(float64(opts.Padding), float64(opts.Padding))
	c.Scale(opts.Scale, opts.Scale)
	c.Translate(-bounds.X.Lo, -bounds.Y.Lo)
	return &canvas{Context: c, opts: opts}
}

// Line widths are given in pixels, independent of the scale.
func (c *canvas) lineWidth(factor float64) {
	c.SetLineWidth(c.opts.LineWidth * factor / c.opts.Scale)
}

func (c *canvas) polygon(points []r2.Point) {
	c.NewSubPath()
	for i, p := range points {
		if i == 0 {
			c.MoveTo(p.X, p.Y)
		} else {
			c.LineTo(p.X, p.Y)
		}
	}
	c.ClosePath()
}

func (c *canvas) line(a, b r2.Point) {
	c.MoveTo(a.X, a.Y)
	c.LineTo(b.X, b.Y)
}

func (c *canvas) mesh(m *mesh.Mesh) {
	for _, tri := range m.Triangles() {
		c.polygon([]r2.Point{
			m.Vertex(tri.V[0]).Point,
			m.Vertex(tri.V[1]).Point,
			m.Vertex(tri.V[2]).Point,
		})
		c.SetRGB(regionColor(tri.Region))
		c.Fill()
	}

	for _, e := range m.Edges() {
		a, b := m.Vertex(e.A).Point, m.Vertex(e.B).Point
		c.line(a, b)
		switch e.Kind {
		case mesh.EdgeHull:
			c.SetRGB(0, 0.8, 0.8)
			c.lineWidth(2)
		case mesh.EdgeSegment:
			c.SetRGB(0.9, 0.2, 0.2)
			c.lineWidth(2)
		default:
			c.SetRGBA(1, 1, 1, 0.5)
			c.lineWidth(1)
		}
		c.Stroke()
	}
}

func (c *canvas) diagram(d *voronoi.Diagram) {
	c.SetRGB(1, 0.85, 0.2)
	c.lineWidth(1.5)
	for _, cell := range d.Cells() {
		c.polygon(cell.Polygon)
		c.Stroke()
	}
	c.SetRGB(1, 1, 1)
	radius := 2 / c.opts.Scale
	for _, f := range d.Faces {
		c.DrawCircle(f.Site.X, f.Site.Y, radius)
		c.Fill()
	}
}

// Mesh draws the triangles of m, filled by region, with constrained edges
// highlighted.
func Mesh(m *mesh.Mesh, opts Options) image.Image {
	c := newCanvas(m.Bounds(), opts)
	c.mesh(m)
	return c.Image()
}

// Diagram draws the closed cells of d over the mesh it was built from.
func Diagram(m *mesh.Mesh, d *voronoi.Diagram, opts Options) image.Image {
	bounds := m.Bounds()
	for _, v := range d.Vertices {
		bounds = bounds.AddPoint(v.Point)
	}
	c := newCanvas(bounds, opts)
	c.mesh(m)
	c.diagram(d)
	return c.Image()
}

// Grid draws every cell mesh, the cell borders and the water outlines.
func Grid(g *grid.Grid, opts Options) image.Image {
	c := newCanvas(g.Bounds, opts)
	for i := range g.Cells {
		cell := &g.Cells[i]
		if cell.Mesh != nil {
			c.mesh(cell.Mesh)
		}
	}
	c.SetRGB(1, 1, 0)
	c.lineWidth(2)
	for _, cell := range g.Cells {
		v := cell.Bounds.Vertices()
		c.polygon(v[:])
		c.Stroke()
	}
	c.SetRGB(0.2, 0.5, 1)
	for _, ring := range g.Water {
		c.polygon(ring)
		c.Stroke()
	}
	return c.Image()
}

func SavePNG(img image.Image, path string) error {
	return errors.Wrapf(gg.SavePNG(path, img), "saving %s", path)
}

// Cat prints img to w with the iTerm inline image protocol.
func Cat(img image.Image, w io.Writer) error {
	f, err := os.CreateTemp("", "tilemesh-*.png")
	if err != nil {
		return errors.WithStack(err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := SavePNG(img, path); err != nil {
		return err
	}
	imgcat.CatFile(path, w)
	return nil
}
