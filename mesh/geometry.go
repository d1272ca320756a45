package mesh

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/osuushi/tilemesh/internal/predicates"
)

// circumcenter of the triangle a, b, c, computed relative to a to keep the
// magnitudes small.
func circumcenter(a, b, c Point) Point {
	ba, ca := b.Sub(a), c.Sub(a)
	bl, cl := ba.Dot(ba), ca.Dot(ca)
	d := 2 * ba.Cross(ca)
	if d == 0 {
		return a.Add(ba.Add(ca).Mul(1.0 / 3))
	}
	return Point{
		X: a.X + (ca.Y*bl-ba.Y*cl)/d,
		Y: a.Y + (ba.X*cl-ca.X*bl)/d,
	}
}

func triangleArea(a, b, c Point) float64 {
	return math.Abs(predicates.Orient2D(a, b, c)) / 2
}

// encroaches reports whether v lies strictly inside the diametral circle of
// the segment a-b.
func encroaches(a, b, v Point) bool {
	return a.Sub(v).Dot(b.Sub(v)) < 0
}

func (m *Mesh) corners(t int) (Point, Point, Point) {
	v := m.tris[t].v
	return m.pt(v[0]), m.pt(v[1]), m.pt(v[2])
}

// Circumcenter returns the center of the circle through the corners of
// triangle t.
func (m *Mesh) Circumcenter(t int) Point {
	return circumcenter(m.corners(t))
}

// TriangleArea returns the area of triangle t.
func (m *Mesh) TriangleArea(t int) float64 {
	return triangleArea(m.corners(t))
}

// Area is the total area of the mesh.
func (m *Mesh) Area() float64 {
	var sum float64
	for t := range m.tris {
		sum += m.TriangleArea(t)
	}
	return sum
}

// Bounds returns the bounding rectangle of the mesh vertices.
func (m *Mesh) Bounds() r2.Rect {
	rect := r2.EmptyRect()
	for _, v := range m.verts {
		rect = rect.AddPoint(v.Point)
	}
	return rect
}

// minAngle returns the smallest angle of t in degrees, along with the corner
// it sits at.
func (m *Mesh) minAngle(t int) (float64, int) {
	v := m.tris[t].v
	// l[i] is the squared length of the edge opposite corner i.
	var l [3]float64
	for i := 0; i < 3; i++ {
		d := m.pt(v[plus1[i]]).Sub(m.pt(v[minus1[i]]))
		l[i] = d.Dot(d)
	}
	k := 0
	for i := 1; i < 3; i++ {
		if l[i] < l[k] {
			k = i
		}
	}
	p, q := l[plus1[k]], l[minus1[k]]
	cos := (p + q - l[k]) / (2 * math.Sqrt(p*q))
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, k
}

func (m *Mesh) longestSquared(t int) float64 {
	v := m.tris[t].v
	var longest float64
	for i := 0; i < 3; i++ {
		d := m.pt(v[plus1[i]]).Sub(m.pt(v[i]))
		longest = math.Max(longest, d.Dot(d))
	}
	return longest
}
