// Package voronoi builds the Voronoi diagram dual to a mesh as a doubly
// connected edge list. Build leaves the cells of hull vertices open, with
// rays to synthetic far vertices. BuildBounded closes every cell against the
// boundary of the mesh.
package voronoi

import (
	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/mesh"
)

// None is the null reference for vertices, half-edges and faces.
const None = -1

type Vertex struct {
	r2.Point
	ID int
}

// HalfEdge runs from Origin to the origin of its Twin, with Face on its left.
// Next is the following half-edge counterclockwise around Face.
type HalfEdge struct {
	ID     int
	Origin int
	Twin   int
	Next   int
	Face   int
}

// Face is the Voronoi cell of one mesh vertex. Edge is a half-edge on its
// boundary. The cycle of an unbounded face starts at its incoming ray.
type Face struct {
	ID        int
	Generator int
	Site      r2.Point
	Edge      int
	Bounded   bool
}

type Diagram struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face

	m *mesh.Mesh
	// Rays by hull edge, before bounding.
	rays []ray
}

// ray is the pair of half-edges dual to a hull edge: out leaves the
// circumcenter inside the face of the hull edge's destination, and in comes
// back into the face of its origin.
type ray struct {
	hull    mesh.Otri
	out, in int
}

func (d *Diagram) addVertex(p r2.Point) int {
	id := len(d.Vertices)
	d.Vertices = append(d.Vertices, Vertex{Point: p, ID: id})
	return id
}

func (d *Diagram) addEdge(origin, face int) int {
	id := len(d.HalfEdges)
	d.HalfEdges = append(d.HalfEdges, HalfEdge{ID: id, Origin: origin, Twin: None, Next: None, Face: face})
	return id
}

func (d *Diagram) twinPair(a, b int) {
	d.HalfEdges[a].Twin = b
	d.HalfEdges[b].Twin = a
}

func (d *Diagram) point(v int) r2.Point { return d.Vertices[v].Point }

// Dest returns the vertex half-edge e ends at, or None for a ray that has not
// been closed.
func (d *Diagram) Dest(e int) int {
	he := &d.HalfEdges[e]
	if he.Twin != None {
		return d.HalfEdges[he.Twin].Origin
	}
	if he.Next != None {
		return d.HalfEdges[he.Next].Origin
	}
	return None
}
