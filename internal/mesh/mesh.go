// Package mesh builds procedural tire surfaces from tire specifications
// using a profile-revolve construction: a 2D cross-section polyline is swept
// a full turn about the wheel axis, seam duplicates are welded, and vertex
// normals are recomputed from the final topology.
package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a revolved tire surface. Faces are quads indexing into Vertices;
// Normals holds one unit vector per vertex, derived from the welded
// topology.
type Mesh struct {
	Name     string
	Vertices []r3.Vec
	Faces    [][4]int
	Normals  []r3.Vec
	Material *Material
}

// Material describes the shared surface appearance attached to generated
// tires. Materials are created once per name by the generator and reused
// across meshes, never duplicated per call.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA, linear
	Roughness float64
	Specular  float64
}

// Bounds returns the axis-aligned bounding box of the mesh as its minimum
// and maximum corners. An empty mesh yields two zero vectors.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	return min, max
}
