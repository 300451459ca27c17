// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

// Thickness represents a stocked glass thickness
type Thickness string

const (
	ThicknessEighth     Thickness = "1/8"
	ThicknessThreeSix   Thickness = "3/16"
	ThicknessQuarter    Thickness = "1/4"
	ThicknessThreeEight Thickness = "3/8"
	ThicknessHalf       Thickness = "1/2"
)

// String returns the string representation of the thickness
func (t Thickness) String() string {
	return string(t)
}

// IsValid checks if the thickness is a stocked tier
func (t Thickness) IsValid() bool {
	switch t {
	case ThicknessEighth, ThicknessThreeSix, ThicknessQuarter, ThicknessThreeEight, ThicknessHalf:
		return true
	default:
		return false
	}
}

// AllThicknesses returns every stocked thickness, thinnest first
func AllThicknesses() []Thickness {
	return []Thickness{ThicknessEighth, ThicknessThreeSix, ThicknessQuarter, ThicknessThreeEight, ThicknessHalf}
}

// GlassType represents a glass product line
type GlassType string

const (
	GlassClear  GlassType = "clear"
	GlassBronze GlassType = "bronze"
	GlassGray   GlassType = "gray"
	GlassMirror GlassType = "mirror"
)

// String returns the string representation of the glass type
func (g GlassType) String() string {
	return string(g)
}

// IsValid checks if the glass type is a known product line
func (g GlassType) IsValid() bool {
	switch g {
	case GlassClear, GlassBronze, GlassGray, GlassMirror:
		return true
	default:
		return false
	}
}

// Shape represents the cut shape of a piece
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeCircle    Shape = "circle"
	ShapeCustom    Shape = "custom"
)

// String returns the string representation of the shape
func (s Shape) String() string {
	return string(s)
}

// IsValid checks if the shape is supported
func (s Shape) IsValid() bool {
	switch s {
	case ShapeRectangle, ShapeCircle, ShapeCustom:
		return true
	default:
		return false
	}
}

// ClipSize classifies a clipped corner by its clip length
type ClipSize string

const (
	ClipUnderInch ClipSize = "under_1in"
	ClipOverInch  ClipSize = "over_1in"
)

// String returns the string representation of the clip size
func (c ClipSize) String() string {
	return string(c)
}

// IsValid checks if the clip size is a known tier
func (c ClipSize) IsValid() bool {
	return c == ClipUnderInch || c == ClipOverInch
}

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// GlassSpec is the immutable lookup key for the price table
type GlassSpec struct {
	// Thickness is the stocked thickness tier
	Thickness Thickness `json:"thickness"`

	// Type is the glass product line
	Type GlassType `json:"type"`
}

// String returns a string representation for logging/lookup
func (s GlassSpec) String() string {
	return string(s.Thickness) + "/" + string(s.Type)
}

// EdgeWorkSelection captures the per-quote edge work and sale options
type EdgeWorkSelection struct {
	// Shape is the requested cut shape
	Shape Shape `json:"shape"`

	// Polish requests polished edges
	Polish bool `json:"polish"`

	// Bevel requests beveled edges
	Bevel bool `json:"bevel"`

	// ClippedCorners requests clipped corners
	ClippedCorners bool `json:"clipped_corners"`

	// ClipSize is the clip tier, meaningful only when ClippedCorners is set
	ClipSize ClipSize `json:"clip_size,omitempty"`

	// Tempered requests tempering
	Tempered bool `json:"tempered"`

	// Contractor marks the sale as contractor pricing
	Contractor bool `json:"contractor"`
}

// Geometry carries the caller-derived measurements of a piece.
// The core never computes these from raw width/height - that
// conversion belongs to the input collector.
type Geometry struct {
	// AreaSqFt is the piece area in square feet
	AreaSqFt float64 `json:"area_sq_ft"`

	// PerimeterIn is the edge perimeter in inches
	PerimeterIn float64 `json:"perimeter_in"`

	// CornerCount is the number of clipped corners
	CornerCount int `json:"corner_count"`
}
