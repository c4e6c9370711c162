package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Default tire rating codes used when a combination is created without them.
const (
	DefaultLoadIndex   = 91
	DefaultSpeedRating = "Y"
)

// MMPerInch converts wheel diameters from inches to millimeters.
const MMPerInch = 25.4

// TireSpec describes a tire by its nominal size inputs plus two derived
// geometry values. The inputs follow the standard sidewall marking
// (e.g. 225/45R17): section width in mm, aspect ratio as a percentage of the
// width, and the wheel diameter in inches it mounts on.
//
// The derived fields are always a function of the three size inputs. They are
// recomputed on construction and on decode, and must be refreshed via
// Recompute after any direct mutation of the inputs. They are never
// persisted; the JSON form carries only the five inputs.
type TireSpec struct {
	Width       float64 `json:"width"`        // nominal section width, mm
	AspectRatio float64 `json:"aspect_ratio"` // percent of section width
	Diameter    float64 `json:"diameter"`     // wheel diameter, inches
	LoadIndex   int     `json:"load_index"`   // load capacity code
	SpeedRating string  `json:"speed_rating"` // maximum speed code

	// Derived from the size inputs, excluded from serialization.
	SidewallHeightMM  float64 `json:"-"`
	OverallDiameterMM float64 `json:"-"`
}

// NewTireSpec builds a TireSpec with default rating codes and computes the
// derived geometry. Inputs are taken as given; range checking happens at the
// geometry-generation boundary, not here.
func NewTireSpec(width, aspectRatio, diameter float64) TireSpec {
	t := TireSpec{
		Width:       width,
		AspectRatio: aspectRatio,
		Diameter:    diameter,
		LoadIndex:   DefaultLoadIndex,
		SpeedRating: DefaultSpeedRating,
	}
	t.Recompute()
	return t
}

// Recompute refreshes the derived geometry from the current size inputs:
//
//	sidewall height (mm) = width * aspect_ratio / 100
//	overall diameter (mm) = diameter * 25.4 + 2 * sidewall height
func (t *TireSpec) Recompute() {
	t.SidewallHeightMM = t.Width * t.AspectRatio / 100
	t.OverallDiameterMM = t.Diameter*MMPerInch + 2*t.SidewallHeightMM
}

// SizeString formats the spec in the standard sidewall notation, e.g.
// "225/45R17". Consumers of the export format rely on this exact pattern.
func (t TireSpec) SizeString() string {
	return fmt.Sprintf("%s/%sR%s",
		formatSize(t.Width), formatSize(t.AspectRatio), formatSize(t.Diameter))
}

// UnmarshalJSON decodes the five size/rating inputs and recomputes the
// derived fields so a loaded spec is immediately consistent. Absent rating
// codes fall back to the defaults.
func (t *TireSpec) UnmarshalJSON(data []byte) error {
	type plain TireSpec
	p := plain{
		LoadIndex:   DefaultLoadIndex,
		SpeedRating: DefaultSpeedRating,
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to unmarshal tire spec: %w", err)
	}
	*t = TireSpec(p)
	t.Recompute()
	return nil
}

// formatSize renders a size component without a trailing fractional part for
// whole numbers, so 225.0 prints as "225" but 7.5 keeps its decimals.
func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
