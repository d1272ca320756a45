package grid_test

import (
	"context"
	"testing"

	"github.com/golang/geo/r2"
	. "github.com/osuushi/tilemesh/grid"
	"github.com/osuushi/tilemesh/internal/fixture"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-6

func ringArea(ring []r2.Point) float64 {
	var a float64
	for i, p := range ring {
		a += p.Cross(ring[(i+1)%len(ring)])
	}
	return a / 2
}

func regionAreas(m *mesh.Mesh) map[int]float64 {
	areas := map[int]float64{}
	for _, tri := range m.Triangles() {
		areas[tri.Region] += m.TriangleArea(tri.ID)
	}
	return areas
}

func TestBuildTile(t *testing.T) {
	tile := fixture.LoadTile("tile")
	cfg := DefaultConfig()
	cfg.Workers = 3
	g, err := Build(context.Background(), tile, cfg)
	require.NoError(t, err)

	require.Equal(t, 2, g.Rows)
	require.Equal(t, 2, g.Cols)
	require.Len(t, g.Cells, 4)
	assert.Equal(t, tile.Bounds, g.Bounds)

	var ground, roads float64
	for i := range g.Cells {
		cell := &g.Cells[i]
		m := cell.Mesh
		require.NotNil(t, m, "cell %d,%d", cell.Row, cell.Col)
		assert.False(t, cell.Fallback, "cell %d,%d fell back", cell.Row, cell.Col)
		require.NoError(t, m.Check())

		size := cell.Bounds.Size()
		assert.InDelta(t, size.X*size.Y, m.Area(), epsilon)
		if !m.LimitReached() {
			for _, tri := range m.Triangles() {
				assert.LessOrEqual(t, m.TriangleArea(tri.ID), cfg.MaximumArea+epsilon)
			}
		}

		areas := regionAreas(m)
		ids := map[int]bool{mesh.Exterior: true}
		for _, r := range cell.Surfaces {
			ids[r.ID] = true
			assert.True(t, cell.Bounds.ContainsPoint(r.Seed))
			assert.InDelta(t, ringArea(r.Ring), areas[r.ID], epsilon)
			ground += areas[r.ID]
		}
		for _, r := range cell.Roads {
			ids[r.ID] = true
			assert.InDelta(t, ringArea(r.Ring), areas[r.ID], epsilon)
			roads += areas[r.ID]
		}
		for id := range areas {
			assert.True(t, ids[id], "unexpected region %d", id)
		}
	}

	// Two overlapping surfaces cut by the pedestrian road, and a car road
	// crossing the pedestrian one.
	assert.InDelta(t, 4800+3200-900-180, ground, epsilon)
	assert.InDelta(t, 1600+450-24, roads, epsilon)

	// Neighbouring cells share their boundary exactly.
	assert.Equal(t, g.Cell(0, 0).Bounds.X.Hi, g.Cell(0, 1).Bounds.X.Lo)
	assert.Equal(t, g.Cell(0, 0).Bounds.Y.Hi, g.Cell(1, 0).Bounds.Y.Lo)

	assert.Empty(t, g.Cell(0, 0).Water)
	assert.Len(t, g.Cell(1, 1).Water, 1)
	assert.Len(t, g.Water, 1)
}

// Clipping rounds the points where surfaces meet diagonal roads, so their
// rings only nearly share edges.
func TestBuildDiagonalRoads(t *testing.T) {
	tests := []struct {
		name string
		tile Tile
	}{
		{
			name: "tilted surface",
			tile: Tile{
				Bounds:   r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 100, Y: 100}),
				Surfaces: [][]r2.Point{{{X: 10, Y: 10}, {X: 90, Y: 17}, {X: 85, Y: 90}, {X: 15, Y: 80}}},
				Roads: []Road{
					{Points: []r2.Point{{X: -10, Y: -10}, {X: 110, Y: 110}}, Width: 7, Kind: Car},
				},
			},
		},
		{
			name: "crossing roads",
			tile: Tile{
				Bounds: r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 300, Y: 200}),
				Surfaces: [][]r2.Point{
					{{X: 10, Y: 10}, {X: 290, Y: 20}, {X: 280, Y: 190}, {X: 20, Y: 180}},
					{{X: 120, Y: 40}, {X: 200, Y: 60}, {X: 190, Y: 150}, {X: 110, Y: 140}},
				},
				Roads: []Road{
					{Points: []r2.Point{{X: -10, Y: -10}, {X: 310, Y: 210}}, Width: 7, Kind: Car},
					{Points: []r2.Point{{X: 0, Y: 200}, {X: 300, Y: 0}}, Width: 7, Kind: Car},
					{Points: []r2.Point{{X: 50, Y: 150}, {X: 150, Y: 120}, {X: 250, Y: 160}}, Width: 3, Kind: Pedestrian},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxSteinerPoints = 20000
			g, err := Build(context.Background(), tt.tile, cfg)
			require.NoError(t, err)

			var ground, roads float64
			for i := range g.Cells {
				cell := &g.Cells[i]
				m := cell.Mesh
				require.NoError(t, m.Check())
				assert.False(t, cell.Fallback, "cell %d,%d fell back", cell.Row, cell.Col)
				assert.False(t, m.LimitReached(), "cell %d,%d hit the Steiner point limit", cell.Row, cell.Col)
				size := cell.Bounds.Size()
				assert.InDelta(t, size.X*size.Y, m.Area(), epsilon*size.X*size.Y)

				// Every ring's triangles carry its region.
				areas := regionAreas(m)
				for _, r := range append(cell.Surfaces, cell.Roads...) {
					want := ringArea(r.Ring)
					assert.InDelta(t, want, areas[r.ID], epsilon*(1+want),
						"cell %d,%d region %d seeded at %v", cell.Row, cell.Col, r.ID, r.Seed)
				}
				for _, r := range cell.Surfaces {
					ground += areas[r.ID]
				}
				for _, r := range cell.Roads {
					roads += areas[r.ID]
				}
			}

			var wantGround, wantRoads float64
			for _, ring := range g.Ground {
				wantGround += ringArea(ring)
			}
			for _, ring := range g.Roads {
				wantRoads += ringArea(ring)
			}
			assert.Greater(t, wantRoads, 0.0)
			assert.InDelta(t, wantGround, ground, 0.5)
			assert.InDelta(t, wantRoads, roads, 0.5)
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	tile := fixture.LoadTile("tile")
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.MaximumArea = 200

	seeds := func() []r2.Point {
		g, err := Build(context.Background(), tile, cfg)
		require.NoError(t, err)
		var seeds []r2.Point
		for _, cell := range g.Cells {
			for _, r := range append(cell.Surfaces, cell.Roads...) {
				seeds = append(seeds, r.Seed)
			}
		}
		return seeds
	}
	first := seeds()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, seeds())
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, fixture.LoadTile("tile"), DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildEmptyTile(t *testing.T) {
	_, err := Build(context.Background(), Tile{}, DefaultConfig())
	assert.Error(t, err)
}

func TestBuildBareTile(t *testing.T) {
	tile := Tile{Bounds: r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 250, Y: 40})}
	cfg := DefaultConfig()
	cfg.MaximumArea = 500
	g, err := Build(context.Background(), tile, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Rows)
	assert.Equal(t, 3, g.Cols)
	for _, cell := range g.Cells {
		assert.Empty(t, cell.Surfaces)
		assert.Empty(t, cell.Roads)
		for _, tri := range cell.Mesh.Triangles() {
			assert.Equal(t, mesh.Exterior, tri.Region)
		}
	}
}
