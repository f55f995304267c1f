package domain

// Region is the fixed set of geographic territories an underwriter covers.
type Region string

const (
	RegionSoutheast Region = "Southeast"
	RegionNortheast Region = "Northeast"
	RegionMidwest   Region = "Midwest"
	RegionSouthwest Region = "Southwest"
	RegionPNW       Region = "PNW"
	RegionWest      Region = "West"
)

// SpecialtyTier grades how strong an underwriter's claim to an industry code is.
type SpecialtyTier string

const (
	TierPrimary   SpecialtyTier = "primary"
	TierSecondary SpecialtyTier = "secondary"
)

// UnderwriterRecord is a read-only directory row. The engine never mutates one;
// workload is whatever the caller read at scoring time.
type UnderwriterRecord struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Email             string                   `json:"email"`
	Phone             string                   `json:"phone,omitempty"`
	Region            Region                   `json:"region"`
	Specialties       map[string]SpecialtyTier `json:"specialties"`
	Appetite          []string                 `json:"appetite"`
	Aversions         []string                 `json:"aversions"`
	AvgTurnaroundDays float64                  `json:"avg_turnaround_days"`
	AcceptanceRate    float64                  `json:"acceptance_rate"`
	CurrentWorkload   int                      `json:"current_workload"`
	Notes             string                   `json:"notes,omitempty"`
}
