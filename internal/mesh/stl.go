package mesh

import (
	"bufio"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// EncodeSTL writes the mesh as an ASCII STL solid, triangulating each quad
// into two facets. STL is the narrow preview format handed to external
// viewers; it carries geometry only, so the material is not encoded.
func EncodeSTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "solid %s\n", m.Name); err != nil {
		return fmt.Errorf("failed to write STL header: %w", err)
	}

	for _, f := range m.Faces {
		tris := [][3]int{
			{f[0], f[1], f[2]},
			{f[0], f[2], f[3]},
		}
		for _, tri := range tris {
			if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
				continue
			}
			a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
			n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
			if r3.Norm(n) > 0 {
				n = r3.Unit(n)
			}
			fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
			fmt.Fprintf(bw, "    outer loop\n")
			for _, v := range []r3.Vec{a, b, c} {
				fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
			}
			fmt.Fprintf(bw, "    endloop\n")
			fmt.Fprintf(bw, "  endfacet\n")
		}
	}

	if _, err := fmt.Fprintf(bw, "endsolid %s\n", m.Name); err != nil {
		return fmt.Errorf("failed to write STL footer: %w", err)
	}
	return bw.Flush()
}
