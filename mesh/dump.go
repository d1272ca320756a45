package mesh

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
	"github.com/osuushi/tilemesh/dbg"
)

type triKey struct {
	m *Mesh
	t int
}

// DbgName returns a readable name for triangle t, coloured by its state:
// cyan on the hull, red when flat, green otherwise.
func (m *Mesh) DbgName(t int) string {
	name := dbg.Name(triKey{m, t})
	tr := &m.tris[t]
	switch {
	case tr.n[0].IsOuter() || tr.n[1].IsOuter() || tr.n[2].IsOuter():
		return aurora.Cyan(name).String()
	case m.orient(tr.v[0], tr.v[1], tr.v[2]) == 0:
		return aurora.Red(name).String()
	}
	return aurora.Green(name).String()
}

func (m *Mesh) dbgNeighbor(o Otri) string {
	if o.IsOuter() {
		return "Ø"
	}
	return dbg.Name(triKey{m, o.T})
}

// Dump writes a human readable listing of every triangle and subsegment.
func (m *Mesh) Dump(w io.Writer) error {
	for t := range m.tris {
		tr := &m.tris[t]
		_, err := fmt.Fprintf(w, "Triangle %s #%d %v region=%d <%s, %s, %s> segs=%v\n",
			m.DbgName(t), t, tr.v, tr.region,
			m.dbgNeighbor(tr.n[0]), m.dbgNeighbor(tr.n[1]), m.dbgNeighbor(tr.n[2]),
			tr.s,
		)
		if err != nil {
			return err
		}
	}
	for s, sg := range m.segs {
		if _, err := fmt.Fprintf(w, "Subsegment #%d %v mark=%d\n", s, sg.v, sg.mark); err != nil {
			return err
		}
	}
	return nil
}
