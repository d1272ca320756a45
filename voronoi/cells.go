package voronoi

import (
	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/mesh"
)

// Cell is a closed Voronoi cell. Polygon lists its corners counterclockwise.
type Cell struct {
	Generator int
	Site      r2.Point
	Polygon   []r2.Point
}

// Cells returns the closed cells of the diagram, in generator order.
// Unbounded faces are skipped.
func (d *Diagram) Cells() []Cell {
	cells := make([]Cell, 0, len(d.Faces))
	for _, f := range d.Faces {
		if !f.Bounded || f.Edge == None {
			continue
		}
		cell := Cell{Generator: f.Generator, Site: f.Site}
		d.walk(f.Edge, func(e int) {
			cell.Polygon = append(cell.Polygon, d.point(d.HalfEdges[e].Origin))
		})
		cells = append(cells, cell)
	}
	return cells
}

// walk visits the cycle starting at e, stopping at its end or after as many
// steps as there are half-edges. It reports whether the cycle closed.
func (d *Diagram) walk(e int, visit func(e int)) bool {
	cur := e
	for i := 0; i < len(d.HalfEdges); i++ {
		visit(cur)
		cur = d.HalfEdges[cur].Next
		if cur == None {
			return false
		}
		if cur == e {
			return true
		}
	}
	return false
}

// NumBounded counts the closed faces.
func (d *Diagram) NumBounded() int {
	n := 0
	for _, f := range d.Faces {
		if f.Bounded {
			n++
		}
	}
	return n
}

// Check verifies that twins are mutual, that consecutive half-edges share a
// face and meet at a vertex, and that every bounded face's cycle returns to
// its start. It returns a *mesh.DefectError for the first violation.
func (d *Diagram) Check() error {
	for i, he := range d.HalfEdges {
		if he.Twin == None {
			continue
		}
		if he.Twin < 0 || he.Twin >= len(d.HalfEdges) || d.HalfEdges[he.Twin].Twin != i {
			return mesh.Defectf("voronoi: half-edge %d and its twin %d disagree", i, he.Twin)
		}
		if he.Face == None || he.Next == None {
			continue
		}
		next := d.HalfEdges[he.Next]
		if next.Face != he.Face {
			return mesh.Defectf("voronoi: half-edge %d is followed by %d on another face", i, he.Next)
		}
		if next.Origin != d.HalfEdges[he.Twin].Origin {
			return mesh.Defectf("voronoi: half-edge %d ends at %d but %d starts at %d",
				i, d.HalfEdges[he.Twin].Origin, he.Next, next.Origin)
		}
	}

	for _, f := range d.Faces {
		if f.Edge == None {
			return mesh.Defectf("voronoi: face %d has no edge", f.ID)
		}
		closed := d.walk(f.Edge, func(int) {})
		if f.Bounded && !closed {
			return mesh.Defectf("voronoi: the cycle of face %d does not close", f.ID)
		}
		if !f.Bounded && closed {
			return mesh.Defectf("voronoi: unbounded face %d has a closed cycle", f.ID)
		}
	}
	return nil
}
