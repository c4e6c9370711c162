package mesh

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/treadlab/fitment/internal/models"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateProfile reports tire inputs that cannot form a valid
// cross-section (non-positive width, aspect ratio, or wheel diameter).
// Generation rejects these outright rather than emitting a self-intersecting
// or inverted surface.
var ErrDegenerateProfile = errors.New("degenerate tire profile")

// Profile shape constants. The shoulder sits at 80% of the half-width, the
// sidewall transition at 95% of the outer radius, and the tread crowns by
// 10mm at the centerline, decaying to zero at the shoulders.
const (
	sidewallTransition = 0.95
	shoulderRatio      = 0.8
	treadCrown         = 0.01 // meters
)

// Options controls tessellation density. Lower-than-minimum values are
// clamped back to the defaults.
type Options struct {
	Segments      int     // angular steps for the full revolve
	TreadPoints   int     // sub-points across each tread half
	WeldTolerance float64 // seam merge distance, modeling units
}

// DefaultOptions returns the design-default tessellation: 32 angular steps,
// 5 tread points, 0.001 weld tolerance.
func DefaultOptions() Options {
	return Options{Segments: 32, TreadPoints: 5, WeldTolerance: 0.001}
}

// Generator builds tire meshes and owns the shared material registry, so a
// material is created once and looked up by name on every later call.
type Generator struct {
	opts Options

	mu        sync.Mutex
	materials map[string]*Material
}

// NewGenerator creates a Generator with the given options. Out-of-range
// option values fall back to the defaults.
func NewGenerator(opts Options) *Generator {
	def := DefaultOptions()
	if opts.Segments < 3 {
		opts.Segments = def.Segments
	}
	if opts.TreadPoints < 2 {
		opts.TreadPoints = def.TreadPoints
	}
	if opts.WeldTolerance <= 0 {
		opts.WeldTolerance = def.WeldTolerance
	}
	return &Generator{
		opts:      opts,
		materials: make(map[string]*Material),
	}
}

// profilePoint is one cross-section sample: radial distance from the wheel
// axis and axial offset from the tire centerline, both in meters.
type profilePoint struct {
	Radius float64
	Axial  float64
}

// GenerateTire converts a tire spec and a wheel diameter in millimeters into
// a closed revolved surface with the shared tire material attached.
func (g *Generator) GenerateTire(spec models.TireSpec, wheelDiameterMM float64) (*Mesh, error) {
	if spec.Width <= 0 || spec.AspectRatio <= 0 || wheelDiameterMM <= 0 {
		return nil, fmt.Errorf("%w: width=%g aspect_ratio=%g wheel_diameter=%gmm",
			ErrDegenerateProfile, spec.Width, spec.AspectRatio, wheelDiameterMM)
	}

	// Keep the derived geometry consistent with the inputs regardless of
	// what the caller last mutated.
	spec.Recompute()

	widthM := spec.Width / 1000
	sidewallM := spec.SidewallHeightMM / 1000
	wheelRadiusM := wheelDiameterMM / 2000
	outerRadiusM := wheelRadiusM + sidewallM

	profile := tireProfile(widthM, wheelRadiusM, outerRadiusM, g.opts.TreadPoints)
	verts, faces := revolve(profile, g.opts.Segments)
	verts, faces = weld(verts, faces, g.opts.WeldTolerance)

	return &Mesh{
		Name:     "Tire_" + spec.SizeString(),
		Vertices: verts,
		Faces:    faces,
		Normals:  vertexNormals(verts, faces),
		Material: g.TireMaterial(),
	}, nil
}

// TireMaterial returns the shared dark rubber material, creating it on first
// use and reusing the same instance for every generated tire afterwards.
func (g *Generator) TireMaterial() *Material {
	g.mu.Lock()
	defer g.mu.Unlock()

	const name = "TireRubber"
	if mat, ok := g.materials[name]; ok {
		return mat
	}
	mat := &Material{
		Name:      name,
		BaseColor: [4]float64{0.1, 0.1, 0.1, 1.0},
		Roughness: 0.8,
		Specular:  0.2,
	}
	g.materials[name] = mat
	return mat
}

// tireProfile builds the ordered cross-section polyline for one tire:
// inner sidewall at the wheel radius, transition at 95% of the outer radius,
// shoulder at the full outer radius with a narrowed axial offset, then tread
// points sweeping from the shoulder to the centerline with a crown that
// decays toward the profile's ends. The sequence is mirrored across the
// centerline in reverse order, so the profile is symmetric and ends at the
// opposite bead.
func tireProfile(width, wheelRadius, outerRadius float64, treadPoints int) []profilePoint {
	half := width / 2
	shoulder := half * shoulderRatio

	pts := []profilePoint{
		{Radius: wheelRadius, Axial: -half},
		{Radius: outerRadius * sidewallTransition, Axial: -half},
		{Radius: outerRadius, Axial: -shoulder},
	}

	for i := 0; i < treadPoints; i++ {
		f := float64(i) / float64(treadPoints-1)
		pts = append(pts, profilePoint{
			Radius: outerRadius + treadCrown*f,
			Axial:  -shoulder * (1 - f),
		})
	}

	for i := len(pts) - 1; i >= 0; i-- {
		pts = append(pts, profilePoint{Radius: pts[i].Radius, Axial: -pts[i].Axial})
	}
	return pts
}

// revolve sweeps the profile polyline a full turn about the Z axis in the
// given number of angular steps. The seam ring at 2π duplicates the ring at
// 0; weld merges them afterwards.
func revolve(profile []profilePoint, segments int) ([]r3.Vec, [][4]int) {
	rings := segments + 1
	verts := make([]r3.Vec, 0, rings*len(profile))
	for s := 0; s < rings; s++ {
		theta := 2 * math.Pi * float64(s) / float64(segments)
		sin, cos := math.Sincos(theta)
		for _, p := range profile {
			verts = append(verts, r3.Vec{
				X: p.Radius * cos,
				Y: p.Radius * sin,
				Z: p.Axial,
			})
		}
	}

	// Each profile edge sweeps into a strip of quads across all steps.
	faces := make([][4]int, 0, segments*(len(profile)-1))
	for s := 0; s < segments; s++ {
		base := s * len(profile)
		next := (s + 1) * len(profile)
		for i := 0; i < len(profile)-1; i++ {
			faces = append(faces, [4]int{base + i, base + i + 1, next + i + 1, next + i})
		}
	}
	return verts, faces
}

// weld merges vertices closer than tol and remaps faces onto the surviving
// set, turning the revolved strips into a single connected surface. Faces
// that collapse below three distinct corners are dropped.
func weld(verts []r3.Vec, faces [][4]int, tol float64) ([]r3.Vec, [][4]int) {
	type cell [3]int
	quantize := func(v r3.Vec) cell {
		return cell{
			int(math.Floor(v.X / tol)),
			int(math.Floor(v.Y / tol)),
			int(math.Floor(v.Z / tol)),
		}
	}

	kept := make([]r3.Vec, 0, len(verts))
	buckets := make(map[cell][]int)
	remap := make([]int, len(verts))

	for i, v := range verts {
		c := quantize(v)
		match := -1
	search:
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, k := range buckets[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if r3.Norm(r3.Sub(kept[k], v)) <= tol {
							match = k
							break search
						}
					}
				}
			}
		}
		if match >= 0 {
			remap[i] = match
			continue
		}
		kept = append(kept, v)
		idx := len(kept) - 1
		buckets[c] = append(buckets[c], idx)
		remap[i] = idx
	}

	welded := make([][4]int, 0, len(faces))
	for _, f := range faces {
		q := [4]int{remap[f[0]], remap[f[1]], remap[f[2]], remap[f[3]]}
		if distinctCorners(q) < 3 {
			continue
		}
		welded = append(welded, q)
	}
	return kept, welded
}

func distinctCorners(q [4]int) int {
	n := 0
	for i, a := range q {
		seen := false
		for _, b := range q[:i] {
			if a == b {
				seen = true
				break
			}
		}
		if !seen {
			n++
		}
	}
	return n
}

// vertexNormals accumulates area-weighted face normals onto each vertex of
// the welded topology and normalizes, so shading is consistent across the
// seam.
func vertexNormals(verts []r3.Vec, faces [][4]int) []r3.Vec {
	normals := make([]r3.Vec, len(verts))
	for _, f := range faces {
		// Cross of the quad diagonals; magnitude weights by area.
		n := r3.Cross(
			r3.Sub(verts[f[2]], verts[f[0]]),
			r3.Sub(verts[f[3]], verts[f[1]]),
		)
		for _, idx := range f {
			normals[idx] = r3.Add(normals[idx], n)
		}
	}
	for i, n := range normals {
		if r3.Norm(n) > 0 {
			normals[i] = r3.Unit(n)
		}
	}
	return normals
}
