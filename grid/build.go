package grid

import (
	"context"
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/internal/logger"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	clipper "github.com/ctessum/go.clipper"
)

// layers holds the tile's polygons in clipper space, clipped to the tile.
type layers struct {
	ground, roads, water clipper.Paths
}

type builder struct {
	cfg Config
	s   scaler
}

// Build clips the tile's layers, splits the tile into cells no larger than
// cfg.MaxCellSize and triangulates every cell. Cells run concurrently on
// cfg.Workers goroutines; ctx is checked between cells.
//
// A cell whose rings cannot be triangulated falls back to its bare rectangle.
// Only an internal defect in a cell mesh fails the build.
func Build(ctx context.Context, tile Tile, cfg Config) (*Grid, error) {
	cfg = cfg.withDefaults()
	b := &builder{cfg: cfg, s: scaler(cfg.Scale)}

	size := tile.Bounds.Size()
	if tile.Bounds.IsEmpty() || size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf("grid: empty tile bounds %v", tile.Bounds)
	}
	bounds := b.s.intRect(tile.Bounds)
	if bounds.x1 <= bounds.x0 || bounds.y1 <= bounds.y0 {
		return nil, errors.Errorf("grid: tile bounds %v vanish at scale %v", tile.Bounds, cfg.Scale)
	}

	l, err := b.layers(ctx, tile, bounds)
	if err != nil {
		return nil, err
	}

	rows := int(math.Ceil(size.Y / cfg.MaxCellSize))
	cols := int(math.Ceil(size.X / cfg.MaxCellSize))
	g := &Grid{
		Rows:   rows,
		Cols:   cols,
		Bounds: b.s.rect(bounds),
		Cells:  make([]Cell, rows*cols),
		Ground: b.s.rings(l.ground),
		Roads:  b.s.rings(l.roads),
		Water:  b.s.rings(l.water),
	}
	logger.L().Info("building grid", "rows", rows, "cols", cols,
		"ground", len(l.ground), "roads", len(l.roads), "water", len(l.water))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for idx := range g.Cells {
		if egctx.Err() != nil {
			break
		}
		idx := idx
		row, col := idx/cols, idx%cols
		r := cellRect(bounds, row, col, rows, cols)
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			cell, err := b.cell(idx, row, col, r, l)
			if err != nil {
				return errors.Wrapf(err, "cell %d,%d", row, col)
			}
			g.Cells[idx] = cell
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *builder) layers(ctx context.Context, tile Tile, bounds intRect) (layers, error) {
	rect := bounds.path()
	water := intersect("water", union("water", b.s.areas(tile.Water)), rect)
	surfaces := intersect("surfaces", union("surfaces", b.s.areas(tile.Surfaces)), rect)

	roads, err := buildRoads(ctx, b.s, tile.Roads, b.cfg.Workers)
	if err != nil {
		return layers{}, err
	}
	roads = intersect("roads", roads, rect)

	// Ground is the paintable part of the surfaces.
	ground := surfaces
	if len(roads) > 0 {
		ground = difference("ground", surfaces, roads)
	}
	return layers{ground: ground, roads: roads, water: water}, nil
}

// cellRect splits bounds in integer space, so neighbouring cells share their
// edges exactly.
func cellRect(bounds intRect, row, col, rows, cols int) intRect {
	w, h := bounds.x1-bounds.x0, bounds.y1-bounds.y0
	return intRect{
		x0: bounds.x0 + w*clipper.CInt(col)/clipper.CInt(cols),
		x1: bounds.x0 + w*clipper.CInt(col+1)/clipper.CInt(cols),
		y0: bounds.y0 + h*clipper.CInt(row)/clipper.CInt(rows),
		y1: bounds.y0 + h*clipper.CInt(row+1)/clipper.CInt(rows),
	}
}

func (b *builder) cell(idx, row, col int, r intRect, l layers) (Cell, error) {
	rect := r.path()
	cell := Cell{Row: row, Col: col, Bounds: b.s.rect(r)}
	ground := simplify("ground", intersect("ground", l.ground, rect))
	roads := simplify("roads", intersect("roads", l.roads, rect))
	cell.Water = b.s.rings(simplify("water", intersect("water", l.water, rect)))

	// Rings sharing a boundary only agree to within a clipper unit. Snap them
	// together so the shared part is the same segment in the mesh. The cell
	// rectangle stays as it is; vertices on it are exactly collinear already.
	paths := make(clipper.Paths, 0, len(ground)+len(roads))
	paths = append(append(paths, ground...), roads...)
	if n := snapRings(paths); n > 0 {
		logger.L().Debug("snapped ring vertices", "row", row, "col", col, "vertices", n)
	}
	ground, roads = paths[:len(ground)], paths[len(ground):]

	var poly mesh.Polygon
	poly.AddContour(corners(cell.Bounds), CellMarker, false)
	rnd := rand.New(rand.NewSource(b.cfg.Seed + int64(idx)))
	next := 1
	cell.Surfaces = b.regions(&poly, ground, GroundMarker, rnd, &next)
	cell.Roads = b.regions(&poly, roads, RoadMarker, rnd, &next)

	opts := mesh.DefaultOptions()
	opts.UseRegions = true
	opts.SplitCrossings = true
	opts.Quality = mesh.Quality{
		MaximumArea:      b.cfg.MaximumArea,
		MinimumAngle:     b.cfg.MinimumAngle,
		MaxSteinerPoints: b.cfg.MaxSteinerPoints,
	}

	m, err := mesh.TriangulateWith(&poly, opts)
	switch {
	case err == nil:
	case errors.Is(err, mesh.ErrRefinementLimit):
		logger.L().Warn("cell refinement stopped early", "row", row, "col", col, "steiner", m.Steiner())
	case mesh.IsDefect(err):
		return cell, err
	default:
		logger.L().Warn("cell rings rejected, meshing bare rectangle", "row", row, "col", col, "err", err)
		cell.Surfaces, cell.Roads = nil, nil
		cell.Fallback = true
		var bare mesh.Polygon
		bare.AddContour(corners(cell.Bounds), CellMarker, false)
		m, err = mesh.TriangulateWith(&bare, opts)
		if err != nil && !errors.Is(err, mesh.ErrRefinementLimit) {
			return cell, err
		}
	}
	cell.Mesh = m
	logger.L().Debug("meshed cell", "row", row, "col", col,
		"triangles", m.NumTriangles(), "regions", next-1)
	return cell, nil
}

// regions adds every ring of paths to poly as a contour, and a region seed
// inside every positively oriented one. Region IDs are taken from next.
func (b *builder) regions(poly *mesh.Polygon, paths clipper.Paths, marker int, rnd *rand.Rand, next *int) []Region {
	var regions []Region
	for i, path := range paths {
		ring := b.s.ring(path)
		poly.AddContour(ring, marker, false)
		if !clipper.Orientation(path) {
			continue
		}
		seed, err := seedPoint(path, holesOf(paths, i), rnd, b.cfg.SeedAttempts)
		if err != nil {
			logger.L().Warn("ring left without region", "marker", marker, "points", len(path), "err", err)
			continue
		}
		region := Region{ID: *next, Seed: b.s.point(seed), Ring: ring}
		*next++
		poly.AddRegion(region.Seed, region.ID)
		regions = append(regions, region)
	}
	return regions
}

func corners(r r2.Rect) []r2.Point {
	v := r.Vertices()
	return v[:]
}
