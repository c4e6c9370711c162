package models

import (
	"encoding/json"
	"fmt"
)

// Factory defaults for a wheel created with only a name. These mirror a
// common aftermarket fitment (17x7.5 ET35, 5x114.3, 64.1mm bore).
const (
	DefaultWheelDiameter = 17.0   // inches
	DefaultWheelWidth    = 7.5    // inches
	DefaultWheelOffset   = 35.0   // mm (ET)
	DefaultBoltPattern   = "5x114.3"
	DefaultCenterBore    = 64.1   // mm
	DefaultLoadRating    = 1500.0 // lbs
)

// WheelSpec holds the geometry and fitment fields for a single wheel. Name is
// the unique key within a database; re-adding a wheel under an existing name
// overwrites it in place.
//
// Unknown keys encountered while decoding are preserved verbatim in Extra and
// re-emitted on encode, so documents written by newer schema revisions
// round-trip without loss and without polluting the known fields.
type WheelSpec struct {
	Name         string  `json:"name"`
	Diameter     float64 `json:"diameter"` // inches
	Width        float64 `json:"width"`    // inches
	Offset       float64 `json:"offset"`   // mm (ET), signed
	BoltPattern  string  `json:"bolt_pattern"`
	CenterBore   float64 `json:"center_bore"` // mm
	LoadRating   float64 `json:"load_rating"` // lbs
	ModelPath    string  `json:"model_path"`
	PreviewImage string  `json:"preview_image"`

	// Extra carries unknown document keys through a load/save cycle.
	Extra map[string]json.RawMessage `json:"-"`
}

// NewWheelSpec builds a WheelSpec for the given name with factory defaults
// for every other field.
func NewWheelSpec(name string) WheelSpec {
	return WheelSpec{
		Name:        name,
		Diameter:    DefaultWheelDiameter,
		Width:       DefaultWheelWidth,
		Offset:      DefaultWheelOffset,
		BoltPattern: DefaultBoltPattern,
		CenterBore:  DefaultCenterBore,
		LoadRating:  DefaultLoadRating,
	}
}

// wheelKeys lists every known document key, used to split known fields from
// Extra during decode.
var wheelKeys = map[string]struct{}{
	"name": {}, "diameter": {}, "width": {}, "offset": {},
	"bolt_pattern": {}, "center_bore": {}, "load_rating": {},
	"model_path": {}, "preview_image": {},
}

// MarshalJSON emits the known fields plus any preserved unknown keys as a
// single flat object. Known fields win over Extra on key collision.
func (w WheelSpec) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(wheelKeys)+len(w.Extra))
	for key, raw := range w.Extra {
		if _, known := wheelKeys[key]; known {
			continue
		}
		doc[key] = raw
	}
	doc["name"] = w.Name
	doc["diameter"] = w.Diameter
	doc["width"] = w.Width
	doc["offset"] = w.Offset
	doc["bolt_pattern"] = w.BoltPattern
	doc["center_bore"] = w.CenterBore
	doc["load_rating"] = w.LoadRating
	doc["model_path"] = w.ModelPath
	doc["preview_image"] = w.PreviewImage
	return json.Marshal(doc)
}

// UnmarshalJSON performs a tolerant field-by-field decode: every present
// known key is assigned onto a freshly defaulted spec, and unknown keys are
// kept in Extra rather than rejected.
func (w *WheelSpec) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal wheel spec: %w", err)
	}

	spec := NewWheelSpec("")
	fields := map[string]any{
		"name":          &spec.Name,
		"diameter":      &spec.Diameter,
		"width":         &spec.Width,
		"offset":        &spec.Offset,
		"bolt_pattern":  &spec.BoltPattern,
		"center_bore":   &spec.CenterBore,
		"load_rating":   &spec.LoadRating,
		"model_path":    &spec.ModelPath,
		"preview_image": &spec.PreviewImage,
	}

	for key, raw := range doc {
		dst, known := fields[key]
		if !known {
			if spec.Extra == nil {
				spec.Extra = make(map[string]json.RawMessage)
			}
			spec.Extra[key] = raw
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("failed to decode wheel field %q: %w", key, err)
		}
	}

	*w = spec
	return nil
}
