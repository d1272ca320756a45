package grid

import (
	"context"
	"sort"
	"sync"

	"github.com/osuushi/tilemesh/internal/logger"
	"golang.org/x/sync/errgroup"

	clipper "github.com/ctessum/go.clipper"
)

type indexedPath struct {
	index int
	path  clipper.Path
}

// roadMap groups road centerlines by their scaled half-width. It is filled
// from several goroutines.
type roadMap struct {
	mu      sync.Mutex
	byWidth map[clipper.CInt][]indexedPath
}

func (rm *roadMap) add(halfWidth clipper.CInt, index int, path clipper.Path) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.byWidth[halfWidth] = append(rm.byWidth[halfWidth], indexedPath{index: index, path: path})
}

func groupRoads(ctx context.Context, s scaler, roads []Road, kind RoadKind, workers int) (*roadMap, error) {
	rm := &roadMap{byWidth: map[clipper.CInt][]indexedPath{}}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, road := range roads {
		if road.Kind != kind {
			continue
		}
		i, road := i, road
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			halfWidth := clipper.Round(road.Width * float64(s) / 2)
			if len(road.Points) < 2 || halfWidth <= 0 {
				logger.L().Warn("skipping degenerate road", "index", i, "kind", kind, "points", len(road.Points), "width", road.Width)
				return nil
			}
			rm.add(halfWidth, i, s.path(road.Points))
			return nil
		})
	}
	return rm, g.Wait()
}

// polygons offsets each width class and unions the results. Widths and roads
// are visited in a fixed order so that the output does not depend on
// scheduling.
func (rm *roadMap) polygons(kind RoadKind) clipper.Paths {
	widths := make([]clipper.CInt, 0, len(rm.byWidth))
	for w := range rm.byWidth {
		widths = append(widths, w)
	}
	sort.Slice(widths, func(i, j int) bool { return widths[i] < widths[j] })

	var strokes clipper.Paths
	for _, w := range widths {
		group := rm.byWidth[w]
		sort.Slice(group, func(i, j int) bool { return group[i].index < group[j].index })
		paths := make(clipper.Paths, len(group))
		for i, p := range group {
			paths[i] = p.path
		}
		strokes = append(strokes, offset(kind.String()+" roads", paths, float64(w))...)
	}
	return execute(kind.String()+" road union", clipper.CtUnion, clipper.PftPositive, strokes, nil)
}

// buildRoads returns the union of all car and pedestrian road polygons.
func buildRoads(ctx context.Context, s scaler, roads []Road, workers int) (clipper.Paths, error) {
	var layers [2]clipper.Paths
	for i, kind := range []RoadKind{Car, Pedestrian} {
		rm, err := groupRoads(ctx, s, roads, kind, workers)
		if err != nil {
			return nil, err
		}
		layers[i] = rm.polygons(kind)
	}
	return union("road union", append(layers[0], layers[1]...)), nil
}
