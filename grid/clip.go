package grid

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/internal/logger"

	clipper "github.com/ctessum/go.clipper"
)

// scaler converts between plane coordinates and clipper's integer space.
type scaler float64

func (s scaler) intPoint(p r2.Point) *clipper.IntPoint {
	return &clipper.IntPoint{X: clipper.Round(p.X * float64(s)), Y: clipper.Round(p.Y * float64(s))}
}

func (s scaler) point(p *clipper.IntPoint) r2.Point {
	return r2.Point{X: float64(p.X) / float64(s), Y: float64(p.Y) / float64(s)}
}

func (s scaler) path(points []r2.Point) clipper.Path {
	path := make(clipper.Path, len(points))
	for i, p := range points {
		path[i] = s.intPoint(p)
	}
	return path
}

// areas converts closed rings, turning each one counterclockwise so that
// overlapping rings add up under the non-zero fill rule.
func (s scaler) areas(rings [][]r2.Point) clipper.Paths {
	paths := make(clipper.Paths, 0, len(rings))
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		path := s.path(ring)
		if !clipper.Orientation(path) {
			reverse(path)
		}
		paths = append(paths, path)
	}
	return paths
}

func (s scaler) ring(path clipper.Path) []r2.Point {
	points := make([]r2.Point, len(path))
	for i, p := range path {
		points[i] = s.point(p)
	}
	return points
}

func (s scaler) rings(paths clipper.Paths) [][]r2.Point {
	rings := make([][]r2.Point, 0, len(paths))
	for _, path := range paths {
		rings = append(rings, s.ring(path))
	}
	return rings
}

func reverse(path clipper.Path) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}

// intRect is an axis-aligned rectangle in clipper space.
type intRect struct {
	x0, y0, x1, y1 clipper.CInt
}

func (s scaler) intRect(r r2.Rect) intRect {
	return intRect{
		x0: clipper.Round(r.X.Lo * float64(s)), y0: clipper.Round(r.Y.Lo * float64(s)),
		x1: clipper.Round(r.X.Hi * float64(s)), y1: clipper.Round(r.Y.Hi * float64(s)),
	}
}

func (r intRect) path() clipper.Path {
	return clipper.Path{
		{X: r.x0, Y: r.y0},
		{X: r.x1, Y: r.y0},
		{X: r.x1, Y: r.y1},
		{X: r.x0, Y: r.y1},
	}
}

func (s scaler) rect(r intRect) r2.Rect {
	return r2.RectFromPoints(s.point(&clipper.IntPoint{X: r.x0, Y: r.y0}), s.point(&clipper.IntPoint{X: r.x1, Y: r.y1}))
}

// execute runs one boolean operation. A failure or a panic inside clipper
// degrades to an empty result.
func execute(op string, clipType clipper.ClipType, fill clipper.PolyFillType, subject, clip clipper.Paths) (result clipper.Paths) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Warn("clipping failed, layer dropped", "op", op, "panic", fmt.Sprint(r))
			result = nil
		}
	}()
	if len(subject) == 0 {
		return nil
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(subject, clipper.PtSubject, true)
	if len(clip) > 0 {
		c.AddPaths(clip, clipper.PtClip, true)
	}
	solution, ok := c.Execute1(clipType, fill, fill)
	if !ok {
		logger.L().Warn("clipping failed, layer dropped", "op", op)
		return nil
	}
	return solution
}

func union(op string, paths clipper.Paths) clipper.Paths {
	return execute(op, clipper.CtUnion, clipper.PftNonZero, paths, nil)
}

func intersect(op string, subject clipper.Paths, clip clipper.Path) clipper.Paths {
	return execute(op, clipper.CtIntersection, clipper.PftNonZero, subject, clipper.Paths{clip})
}

func difference(op string, subject, clip clipper.Paths) clipper.Paths {
	return execute(op, clipper.CtDifference, clipper.PftNonZero, subject, clip)
}

// simplify splits self-touching rings and drops rings without area.
func simplify(op string, paths clipper.Paths) (result clipper.Paths) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Warn("simplifying failed, layer dropped", "op", op, "panic", fmt.Sprint(r))
			result = nil
		}
	}()
	if len(paths) == 0 {
		return nil
	}
	simple := clipper.NewClipper(clipper.IoNone).SimplifyPolygons(paths, clipper.PftNonZero)
	result = simple[:0]
	for _, path := range simple {
		if len(path) >= 3 && clipper.Area(path) != 0 {
			result = append(result, path)
		}
	}
	return result
}

// offset strokes open paths with miter joins and round caps, delta to each
// side.
func offset(op string, paths clipper.Paths, delta float64) (result clipper.Paths) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Warn("offsetting failed, roads dropped", "op", op, "panic", fmt.Sprint(r))
			result = nil
		}
	}()
	co := clipper.NewClipperOffset()
	co.AddPaths(paths, clipper.JtMiter, clipper.EtOpenRound)
	return co.Execute(delta)
}
