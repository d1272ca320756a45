package main

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/osuushi/tilemesh/mesh"
	"github.com/pkg/errors"
)

// readContours reads newline separated points in the form "x y", with each
// contour separated by an extra newline. Counterclockwise contours are solid
// and clockwise ones are holes.
func readContours(in io.Reader) (*mesh.Polygon, error) {
	var poly mesh.Polygon
	var points []mesh.Point
	flush := func() {
		if len(points) > 0 {
			poly.AddContour(points, mesh.HullMarker, signedArea(points) < 0)
			points = nil
		}
	}

	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			flush()
			continue
		}
		if strings.HasPrefix(text, "#") {
			continue
		}
		point, err := parsePoint(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	flush()

	if len(poly.Contours) == 0 {
		return nil, errors.New("no points")
	}
	return &poly, nil
}

func parsePoint(line string) (mesh.Point, error) {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return mesh.Point{}, errors.Errorf("expected two coordinates, got %q", line)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return mesh.Point{}, errors.WithStack(err)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return mesh.Point{}, errors.WithStack(err)
	}
	return mesh.Point{X: x, Y: y}, nil
}

func signedArea(points []mesh.Point) float64 {
	var a float64
	for i, p := range points {
		a += p.Cross(points[(i+1)%len(points)])
	}
	return a / 2
}
