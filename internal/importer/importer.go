// Package importer normalizes externally loaded wheel geometry to its
// real-world size. The host 3D environment supplies only bounding-box
// dimensions; the importer computes a uniform scale factor toward the target
// rim diameter and tags the chosen object with the wheel's fitment fields.
package importer

import (
	"errors"

	"github.com/treadlab/fitment/internal/models"
	"gonum.org/v1/gonum/spatial/r3"
)

// MetersPerInch converts rim diameters to the modeling unit.
const MetersPerInch = 0.0254

// ErrNoObjects reports an import that yielded nothing to normalize.
var ErrNoObjects = errors.New("import produced no objects")

// Object is one candidate from an external import: a name and its
// axis-aligned bounding-box dimensions in the source file's native units.
type Object struct {
	Name string
	BBox r3.Vec
}

// Volume returns the bounding-box volume used to rank candidates.
func (o Object) Volume() float64 {
	return o.BBox.X * o.BBox.Y * o.BBox.Z
}

// Result describes a completed normalization.
type Result struct {
	// Object is the selected candidate with its bounding box already
	// scaled.
	Object Object

	// ScaleFactor is the uniform factor applied to all three axes; 1 when
	// scaling was skipped.
	ScaleFactor float64

	// Scaled is false when the candidate's horizontal extent was zero and
	// the native scale was kept (documented fallback, not an error).
	Scaled bool

	// Metadata carries the wheel's fitment fields for the host to attach
	// to the object.
	Metadata map[string]any
}

// SelectPrimary picks "the wheel" out of a multi-object import: the
// candidate with the greatest bounding-box volume. This is a best-effort
// heuristic, not a guarantee; multi-part models may rank a tub or brake disc
// above the rim. Callers that know the right object should pass it alone.
func SelectPrimary(objects []Object) (Object, error) {
	if len(objects) == 0 {
		return Object{}, ErrNoObjects
	}
	best := objects[0]
	for _, o := range objects[1:] {
		if o.Volume() > best.Volume() {
			best = o
		}
	}
	return best, nil
}

// Normalize selects the primary object and scales it uniformly so its
// horizontal extent matches the spec's rim diameter.
//
// The horizontal extent is max(bbox.X, bbox.Y); the importer assumes the rim
// lies flat in XY and does not attempt to detect orientation. A zero
// horizontal extent keeps the native scale.
func Normalize(objects []Object, spec models.WheelSpec) (*Result, error) {
	obj, err := SelectPrimary(objects)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Object:      obj,
		ScaleFactor: 1,
		Metadata:    FitmentTags(spec),
	}

	targetM := spec.Diameter * MetersPerInch
	current := obj.BBox.X
	if obj.BBox.Y > current {
		current = obj.BBox.Y
	}
	if current <= 0 {
		return res, nil
	}

	factor := targetM / current
	res.ScaleFactor = factor
	res.Scaled = true
	res.Object.BBox = r3.Scale(factor, obj.BBox)
	return res, nil
}

// FitmentTags builds the metadata attached to an imported wheel object,
// mirroring the fitment fields of its spec.
func FitmentTags(spec models.WheelSpec) map[string]any {
	return map[string]any{
		"wheel_diameter": spec.Diameter,
		"wheel_width":    spec.Width,
		"wheel_offset":   spec.Offset,
		"bolt_pattern":   spec.BoltPattern,
		"center_bore":    spec.CenterBore,
	}
}
