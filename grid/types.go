// Package grid partitions a map tile into a regular grid of cells and
// triangulates each cell independently. Surface, road and water outlines are
// combined with polygon boolean operations in integer space, and the rings
// that fall inside a cell become contours and region seeds of that cell's
// mesh.
package grid

import (
	"runtime"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/mesh"
)

type RoadKind uint8

const (
	Car RoadKind = iota
	Pedestrian
)

func (k RoadKind) String() string {
	if k == Pedestrian {
		return "pedestrian"
	}
	return "car"
}

// Road is a polyline with a stroke width.
type Road struct {
	Points []r2.Point
	Width  float64
	Kind   RoadKind
}

// Tile is the input of Build. Water and Surfaces are closed rings in either
// orientation.
type Tile struct {
	Bounds   r2.Rect
	Water    [][]r2.Point
	Surfaces [][]r2.Point
	Roads    []Road
}

// Boundary markers of the contours in a cell's polygon.
const (
	CellMarker   = mesh.HullMarker
	GroundMarker = 2
	RoadMarker   = 3
)

// Config controls Build. Zero fields take their value from DefaultConfig.
type Config struct {
	// Scale converts coordinates to the integers used for clipping.
	Scale float64
	// MaxCellSize bounds the width and height of a cell.
	MaxCellSize float64
	// MaximumArea and MinimumAngle are the quality bounds of every cell mesh.
	MaximumArea      float64
	MinimumAngle     float64
	MaxSteinerPoints int
	// Workers is the number of cells triangulated at once.
	Workers int
	// Seed drives region seed sampling. Cell i samples from Seed+i, so a
	// build is reproducible regardless of scheduling.
	Seed         int64
	SeedAttempts int
}

func DefaultConfig() Config {
	return Config{
		Scale:            1000,
		MaxCellSize:      100,
		MaximumArea:      30,
		MaxSteinerPoints: mesh.DefaultMaxSteinerPoints,
		Workers:          runtime.GOMAXPROCS(0),
		SeedAttempts:     1000,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Scale <= 0 {
		c.Scale = def.Scale
	}
	if c.MaxCellSize <= 0 {
		c.MaxCellSize = def.MaxCellSize
	}
	if c.MaximumArea <= 0 {
		c.MaximumArea = def.MaximumArea
	}
	if c.MaxSteinerPoints <= 0 {
		c.MaxSteinerPoints = def.MaxSteinerPoints
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.SeedAttempts <= 0 {
		c.SeedAttempts = def.SeedAttempts
	}
	return c
}

// Region is a ring of a cell layer together with the seed that tags its
// triangles with ID.
type Region struct {
	ID   int
	Seed r2.Point
	Ring []r2.Point
}

type Cell struct {
	Row, Col int
	Bounds   r2.Rect
	Mesh     *mesh.Mesh
	Surfaces []Region
	Roads    []Region
	// Water is clipped to the cell but not meshed.
	Water [][]r2.Point
	// Fallback is set when the cell's rings could not be triangulated and
	// the mesh covers the bare rectangle.
	Fallback bool
}

// Grid is the output of Build. Cells are stored row by row, starting at the
// low corner of the tile.
type Grid struct {
	Rows, Cols int
	Bounds     r2.Rect
	Cells      []Cell

	// Tile layers, clipped to Bounds.
	Ground [][]r2.Point
	Roads  [][]r2.Point
	Water  [][]r2.Point
}

func (g *Grid) Cell(row, col int) *Cell {
	return &g.Cells[row*g.Cols+col]
}
