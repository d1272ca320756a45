// Package fixture provides test polygons: SVG files embedded from the
// fixtures/ directory, available by name sans extension, and a few shapes
// built in code.
package fixture

import (
	"embed"
	"log"
	"math"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/grid"
	"github.com/osuushi/tilemesh/internal/svgin"
	"github.com/osuushi/tilemesh/mesh"
)

//go:embed fixtures
var fixtures embed.FS

// Load parses a polygon fixture. If anything goes wrong, it exits.
func Load(name string) *mesh.Polygon {
	f, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}
	defer f.Close()

	poly, err := svgin.ParsePolygon(f)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}
	return poly
}

// LoadTile parses a tile fixture. If anything goes wrong, it exits.
func LoadTile(name string) grid.Tile {
	f, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}
	defer f.Close()

	tile, err := svgin.ParseTile(f)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}
	return tile
}

func Square(x0, y0, x1, y1 float64) []r2.Point {
	return []r2.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// RegularPolygon returns n points on a circle, counterclockwise.
func RegularPolygon(n int, radius float64) []r2.Point {
	points := make([]r2.Point, n)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(n)
		points[i] = r2.Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
	}
	return points
}

// Star returns a star with the given number of tips, alternating between the
// two radii.
func Star(cx, cy float64, tips int, outerRadius, innerRadius float64) []r2.Point {
	points := make([]r2.Point, 2*tips)
	for i := range points {
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		angle := 2 * math.Pi * float64(i) / float64(len(points))
		points[i] = r2.Point{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return points
}

func SimpleStar() *mesh.Polygon {
	var poly mesh.Polygon
	poly.AddContour(Star(0, 0, 5, 5, 2), 1, false)
	return &poly
}

func StarOutline() *mesh.Polygon {
	var poly mesh.Polygon
	poly.AddContour(Star(0, 0, 5, 10, 5), 1, false)
	poly.AddContour(Star(0, 0, 5, 8, 3), 2, true)
	return &poly
}

// MultiLayeredHoles has holes which contain filled shapes inside. The filled
// shapes survive because they are separated from the hole's interior by their
// own contour, and their region seeds tag them separately.
func MultiLayeredHoles() *mesh.Polygon {
	var poly mesh.Polygon
	poly.AddContour(Star(0, 0, 5, 10, 7), 1, false)
	poly.AddContour(Square(-6, -2, -2, 2), 2, true)
	poly.AddContour(Square(-5, -1, -3, 1), 3, false)
	poly.AddContour(Square(1, -2, 5, 2), 2, true)
	poly.AddContour(Square(2, -1, 4, 1), 3, false)
	poly.AddRegion(r2.Point{X: 0, Y: 4}, 1)
	poly.AddRegion(r2.Point{X: -4, Y: 0}, 2)
	poly.AddRegion(r2.Point{X: 3, Y: 0}, 2)
	return &poly
}
