// Package tilemesh builds constrained, quality-refined Delaunay meshes of
// polygons with holes and regions, the bounded Voronoi diagrams dual to them,
// and grids of independently meshed cells covering a map tile.
//
// This package re-exports the main entry points. The mesh, voronoi and grid
// packages expose the full API.
package tilemesh

import (
	"context"
	"log/slog"

	"github.com/osuushi/tilemesh/grid"
	"github.com/osuushi/tilemesh/internal/logger"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/osuushi/tilemesh/voronoi"
)

type Point = mesh.Point
type Polygon = mesh.Polygon
type Mesh = mesh.Mesh
type Options = mesh.Options
type Quality = mesh.Quality
type Diagram = voronoi.Diagram
type Cell = voronoi.Cell
type Tile = grid.Tile
type Grid = grid.Grid
type GridConfig = grid.Config

var (
	ErrInputDegenerate    = mesh.ErrInputDegenerate
	ErrConstraintConflict = mesh.ErrConstraintConflict
	ErrRefinementLimit    = mesh.ErrRefinementLimit
	ErrNoSeed             = grid.ErrNoSeed
	ErrNotConforming      = voronoi.ErrNotConforming
)

// SetLogger directs the engine's log output to l. Nothing is logged by
// default. Passing nil silences it again.
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}

func Triangulate(polygon *Polygon) (*Mesh, error) {
	return mesh.Triangulate(polygon)
}

func TriangulateWith(polygon *Polygon, opts Options) (*Mesh, error) {
	return mesh.TriangulateWith(polygon, opts)
}

// TriangulateContours meshes a set of closed rings. Counterclockwise rings
// are solid and clockwise rings are holes. A hole should lie inside exactly
// one solid ring.
func TriangulateContours(contours ...[]Point) (*Mesh, error) {
	var polygon Polygon
	for _, points := range contours {
		polygon.AddContour(points, mesh.HullMarker, signedArea(points) < 0)
	}
	return mesh.Triangulate(&polygon)
}

func signedArea(points []Point) float64 {
	var a float64
	for i, p := range points {
		a += p.Cross(points[(i+1)%len(points)])
	}
	return a / 2
}

// Voronoi returns the Voronoi diagram of m with every cell closed against the
// mesh boundary.
func Voronoi(m *Mesh) (*Diagram, error) {
	return voronoi.BuildBounded(m)
}

func BuildGrid(ctx context.Context, tile Tile, cfg GridConfig) (*Grid, error) {
	return grid.Build(ctx, tile, cfg)
}
