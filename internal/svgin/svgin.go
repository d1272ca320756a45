// Package svgin reads triangulation input from SVG documents. It is not a
// full (or even correct) SVG reader: it only looks at a handful of elements,
// distinguished by their class attribute.
//
// For polygons:
//
//	<polygon points="..."/>                   a contour
//	<polygon class="hole" points="..."/>      a hole contour
//	<line x1 y1 x2 y2/>                       an explicit segment
//	<circle class="region" cx cy data-id/>    a region seed
//	<circle class="hole" cx cy/>              a hole seed
//	<circle cx cy/>                           a free point
//
// For tiles:
//
//	<rect class="tile" x y width height/>
//	<polygon class="water|surface" points="..."/>
//	<polyline class="road" data-kind="car|pedestrian" stroke-width="..." points="..."/>
//
// Markers come from data-marker and regional area bounds from data-max-area.
package svgin

import (
	"io"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/grid"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/pkg/errors"
)

// ParsePoints parses an SVG points attribute: whitespace separated x,y pairs.
func ParsePoints(s string) ([]r2.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	points := make([]r2.Point, 0, len(fields))
	for _, field := range fields {
		parts := strings.Split(field, ",")
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid point %q", field)
		}
		x, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid x value %q", parts[0])
		}
		y, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid y value %q", parts[1])
		}
		points = append(points, r2.Point{X: x, Y: y})
	}
	return points, nil
}

func float(el *svgparser.Element, name string) (float64, error) {
	s, ok := el.Attributes[name]
	if !ok {
		return 0, errors.Errorf("<%s> has no %s attribute", el.Name, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	return v, errors.Wrapf(err, "<%s> %s", el.Name, name)
}

func optionalFloat(el *svgparser.Element, name string) (float64, error) {
	if _, ok := el.Attributes[name]; !ok {
		return 0, nil
	}
	return float(el, name)
}

func optionalInt(el *svgparser.Element, name string) (int, error) {
	s, ok := el.Attributes[name]
	if !ok {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	return v, errors.Wrapf(err, "<%s> %s", el.Name, name)
}

func point(el *svgparser.Element, xName, yName string) (r2.Point, error) {
	x, err := float(el, xName)
	if err != nil {
		return r2.Point{}, err
	}
	y, err := float(el, yName)
	return r2.Point{X: x, Y: y}, err
}

func class(el *svgparser.Element) string {
	return el.Attributes["class"]
}

// ParsePolygon reads a planar straight line graph.
func ParsePolygon(r io.Reader) (*mesh.Polygon, error) {
	root, err := svgparser.Parse(r, false)
	if err != nil {
		return nil, errors.Wrap(err, "parsing svg")
	}
	var poly mesh.Polygon

	for _, el := range root.FindAll("polygon") {
		points, err := ParsePoints(el.Attributes["points"])
		if err != nil {
			return nil, err
		}
		marker, err := optionalInt(el, "data-marker")
		if err != nil {
			return nil, err
		}
		poly.AddContour(points, marker, class(el) == "hole")
	}

	for _, el := range root.FindAll("line") {
		a, err := point(el, "x1", "y1")
		if err != nil {
			return nil, err
		}
		b, err := point(el, "x2", "y2")
		if err != nil {
			return nil, err
		}
		marker, err := optionalInt(el, "data-marker")
		if err != nil {
			return nil, err
		}
		poly.AddSegment(a, b, marker)
	}

	for _, el := range root.FindAll("circle") {
		p, err := point(el, "cx", "cy")
		if err != nil {
			return nil, err
		}
		switch class(el) {
		case "region":
			id, err := optionalInt(el, "data-id")
			if err != nil {
				return nil, err
			}
			maxArea, err := optionalFloat(el, "data-max-area")
			if err != nil {
				return nil, err
			}
			poly.Regions = append(poly.Regions, mesh.Region{Point: p, ID: id, MaxArea: maxArea})
		case "hole":
			poly.AddHole(p)
		default:
			poly.Points = append(poly.Points, p)
		}
	}

	if len(poly.Contours) == 0 && len(poly.Segments) == 0 && len(poly.Points) == 0 {
		return nil, errors.New("no polygon, line or circle elements")
	}
	return &poly, nil
}

// ParseTile reads the input of a grid build.
func ParseTile(r io.Reader) (grid.Tile, error) {
	var tile grid.Tile
	root, err := svgparser.Parse(r, false)
	if err != nil {
		return tile, errors.Wrap(err, "parsing svg")
	}

	found := false
	for _, el := range root.FindAll("rect") {
		if class(el) != "tile" {
			continue
		}
		lo, err := point(el, "x", "y")
		if err != nil {
			return tile, err
		}
		size, err := point(el, "width", "height")
		if err != nil {
			return tile, err
		}
		tile.Bounds = r2.RectFromPoints(lo, lo.Add(size))
		found = true
		break
	}
	if !found {
		return tile, errors.New(`no <rect class="tile"> element`)
	}

	for _, el := range root.FindAll("polygon") {
		points, err := ParsePoints(el.Attributes["points"])
		if err != nil {
			return tile, err
		}
		switch class(el) {
		case "water":
			tile.Water = append(tile.Water, points)
		case "surface":
			tile.Surfaces = append(tile.Surfaces, points)
		}
	}

	for _, el := range root.FindAll("polyline") {
		if class(el) != "road" {
			continue
		}
		points, err := ParsePoints(el.Attributes["points"])
		if err != nil {
			return tile, err
		}
		width, err := optionalFloat(el, "stroke-width")
		if err != nil {
			return tile, err
		}
		kind := grid.Car
		if el.Attributes["data-kind"] == "pedestrian" {
			kind = grid.Pedestrian
		}
		tile.Roads = append(tile.Roads, grid.Road{Points: points, Width: width, Kind: kind})
	}
	return tile, nil
}
