package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/osuushi/tilemesh"
	"github.com/osuushi/tilemesh/grid"
	"github.com/osuushi/tilemesh/internal/draw"
	"github.com/osuushi/tilemesh/internal/svgin"
	"github.com/osuushi/tilemesh/mesh"
	"github.com/osuushi/tilemesh/voronoi"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app     = kingpin.New("tilemesh", "Mesh polygons and map tiles.")
	verbose = app.Flag("verbose", "Log debug output to stderr.").Short('v').Bool()
	pngPath = app.Flag("png", "Write a picture of the result to this file.").String()
	show    = app.Flag("show", "Print a picture of the result to the terminal (iTerm).").Bool()
	scale   = app.Flag("scale", "Pixels per unit in pictures.").Default("10").Float64()

	meshCmd        = app.Command("mesh", "Triangulate a polygon read from an SVG file or a point list.")
	meshInput      = meshCmd.Arg("input", `SVG file, or a point list ("-" for stdin).`).Required().String()
	maxArea        = meshCmd.Flag("max-area", "Maximum triangle area. Zero for no bound.").Float64()
	minAngle       = meshCmd.Flag("min-angle", "Minimum angle in degrees. Zero for no bound.").Float64()
	maxSteiner     = meshCmd.Flag("max-steiner", "Maximum number of Steiner points.").Int()
	convex         = meshCmd.Flag("convex", "Mesh the convex hull of the input.").Bool()
	splitCrossings = meshCmd.Flag("split-crossings", "Split crossing segments instead of failing.").Bool()
	noRegions      = meshCmd.Flag("no-regions", "Ignore region seeds.").Bool()
	withVoronoi    = meshCmd.Flag("voronoi", "Build the bounded Voronoi diagram of the mesh.").Bool()
	dump           = meshCmd.Flag("dump", "Print every triangle with its neighbours.").Bool()

	gridCmd      = app.Command("grid", "Build the cell grid of a tile read from an SVG file.")
	gridInput    = gridCmd.Arg("input", "SVG file.").Required().ExistingFile()
	cellSize     = gridCmd.Flag("cell-size", "Maximum cell width and height.").Default("100").Float64()
	gridMaxArea  = gridCmd.Flag("max-area", "Maximum triangle area.").Default("30").Float64()
	gridMinAngle = gridCmd.Flag("min-angle", "Minimum angle in degrees.").Float64()
	workers      = gridCmd.Flag("workers", "Cells meshed at once. Zero for one per CPU.").Int()
	seed         = gridCmd.Flag("seed", "Seed for region seed sampling.").Int64()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	tilemesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	switch command {
	case meshCmd.FullCommand():
		err = runMesh(os.Stdout)
	case gridCmd.FullCommand():
		err = runGrid(os.Stdout)
	}
	app.FatalIfError(err, "%s", command)
}

func runMesh(out io.Writer) error {
	poly, err := readPolygon(*meshInput)
	if err != nil {
		return err
	}

	opts := mesh.DefaultOptions()
	opts.UseRegions = !*noRegions
	opts.Convex = *convex
	opts.SplitCrossings = *splitCrossings
	if *maxArea > 0 {
		opts.Quality.MaximumArea = *maxArea
	}
	opts.Quality.MinimumAngle = *minAngle
	if *maxSteiner > 0 {
		opts.Quality.MaxSteinerPoints = *maxSteiner
	}

	m, err := mesh.TriangulateWith(poly, opts)
	if errors.Is(err, mesh.ErrRefinementLimit) {
		fmt.Fprintln(out, "warning:", err)
	} else if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d vertices, %d triangles, %d hull edges, %d Steiner points, area %g\n",
		m.NumVertices(), m.NumTriangles(), m.HullSize(), m.Steiner(), m.Area())
	if *dump {
		if err := m.Dump(out); err != nil {
			return err
		}
	}

	drawOpts := draw.Options{Scale: *scale, Padding: 20, LineWidth: 1}
	if !*withVoronoi {
		return output(draw.Mesh(m, drawOpts), out)
	}
	d, err := voronoi.BuildBounded(m)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d Voronoi cells, %d half-edges\n", len(d.Cells()), len(d.HalfEdges))
	return output(draw.Diagram(m, d, drawOpts), out)
}

func runGrid(out io.Writer) error {
	f, err := os.Open(*gridInput)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	tile, err := svgin.ParseTile(f)
	if err != nil {
		return err
	}

	cfg := grid.DefaultConfig()
	cfg.MaxCellSize = *cellSize
	cfg.MaximumArea = *gridMaxArea
	cfg.MinimumAngle = *gridMinAngle
	cfg.Workers = *workers
	cfg.Seed = *seed
	g, err := grid.Build(context.Background(), tile, cfg)
	if err != nil {
		return err
	}

	for _, cell := range g.Cells {
		note := ""
		if cell.Fallback {
			note = " (bare)"
		}
		fmt.Fprintf(out, "cell %d,%d: %d triangles, %d surfaces, %d roads%s\n",
			cell.Row, cell.Col, cell.Mesh.NumTriangles(), len(cell.Surfaces), len(cell.Roads), note)
	}
	return output(draw.Grid(g, draw.Options{Scale: *scale, Padding: 20, LineWidth: 1}), out)
}

func output(img image.Image, out io.Writer) error {
	if *pngPath != "" {
		if err := draw.SavePNG(img, *pngPath); err != nil {
			return err
		}
	}
	if *show {
		return draw.Cat(img, out)
	}
	return nil
}

func readPolygon(path string) (*mesh.Polygon, error) {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer f.Close()
		return svgin.ParsePolygon(f)
	}

	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer f.Close()
		in = f
	}
	return readContours(in)
}
