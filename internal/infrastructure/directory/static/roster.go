package static

import (
	"context"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

// Directory serves the built-in underwriter roster. Useful for development
// and for deployments that have not externalized roster management yet.
type Directory struct {
	records []domain.UnderwriterRecord
}

func NewDirectory() *Directory {
	return &Directory{records: seedRoster()}
}

// ListUnderwriters returns a fresh copy each call so callers can't mutate the
// shared seed.
func (d *Directory) ListUnderwriters(_ context.Context) ([]domain.UnderwriterRecord, error) {
	out := make([]domain.UnderwriterRecord, len(d.records))
	for i, uw := range d.records {
		out[i] = copyRecord(uw)
	}
	return out, nil
}

func copyRecord(uw domain.UnderwriterRecord) domain.UnderwriterRecord {
	cp := uw
	cp.Specialties = make(map[string]domain.SpecialtyTier, len(uw.Specialties))
	for code, tier := range uw.Specialties {
		cp.Specialties[code] = tier
	}
	cp.Appetite = append([]string(nil), uw.Appetite...)
	cp.Aversions = append([]string(nil), uw.Aversions...)
	return cp
}

func seedRoster() []domain.UnderwriterRecord {
	return []domain.UnderwriterRecord{
		{
			ID:     "UW-001",
			Name:   "Sarah Mitchell",
			Email:  "sarah.mitchell@insureco.com",
			Phone:  "(404) 555-1234",
			Region: domain.RegionSoutheast,
			Specialties: map[string]domain.SpecialtyTier{
				"722410": domain.TierPrimary,
				"722511": domain.TierSecondary,
				"722513": domain.TierSecondary,
			},
			Appetite:          []string{"Bars", "Restaurants", "Nightclubs", "Taverns"},
			Aversions:         []string{"Heavy Manufacturing", "Mining"},
			AvgTurnaroundDays: 2.5,
			AcceptanceRate:    0.82,
			CurrentWorkload:   5,
			Notes:             "15 years experience in hospitality sector. Prefers detailed loss runs.",
		},
		{
			ID:     "UW-002",
			Name:   "Michael Chen",
			Email:  "m.chen@pacificuw.com",
			Phone:  "(206) 555-5678",
			Region: domain.RegionPNW,
			Specialties: map[string]domain.SpecialtyTier{
				"541511": domain.TierPrimary,
				"541512": domain.TierSecondary,
				"541519": domain.TierSecondary,
			},
			Appetite:          []string{"Technology", "Software", "Professional Services"},
			Aversions:         []string{"Bars", "Nightclubs", "Cannabis"},
			AvgTurnaroundDays: 1.5,
			AcceptanceRate:    0.88,
			CurrentWorkload:   2,
			Notes:             "Fast turnaround for tech companies. Requires cyber liability details.",
		},
		{
			ID:     "UW-003",
			Name:   "Jennifer Rodriguez",
			Email:  "jrodriguez@sunbeltins.com",
			Phone:  "(305) 555-9012",
			Region: domain.RegionSoutheast,
			Specialties: map[string]domain.SpecialtyTier{
				"722511": domain.TierPrimary,
				"721110": domain.TierSecondary,
				"445110": domain.TierSecondary,
			},
			Appetite:          []string{"Restaurants", "Hotels", "Retail"},
			Aversions:         []string{"Construction", "Roofing"},
			AvgTurnaroundDays: 3.0,
			AcceptanceRate:    0.79,
			CurrentWorkload:   10,
			Notes:             "Bilingual (English/Spanish). Strong relationships with Florida markets.",
		},
		{
			ID:     "UW-004",
			Name:   "David Thompson",
			Email:  "david.t@midwestmutual.com",
			Phone:  "(312) 555-3456",
			Region: domain.RegionMidwest,
			Specialties: map[string]domain.SpecialtyTier{
				"332999": domain.TierPrimary,
				"493110": domain.TierSecondary,
				"484110": domain.TierSecondary,
			},
			Appetite:          []string{"Manufacturing", "Warehousing", "Distribution"},
			Aversions:         []string{"Bars", "Adult Entertainment"},
			AvgTurnaroundDays: 4.0,
			AcceptanceRate:    0.71,
			CurrentWorkload:   5,
			Notes:             "Extensive experience with product liability. Prefers face-to-face meetings.",
		},
		{
			ID:     "UW-005",
			Name:   "Amanda Foster",
			Email:  "afoster@eastcoastuw.com",
			Phone:  "(212) 555-7890",
			Region: domain.RegionNortheast,
			Specialties: map[string]domain.SpecialtyTier{
				"448140": domain.TierPrimary,
				"541110": domain.TierSecondary,
				"621111": domain.TierSecondary,
			},
			Appetite:          []string{"Retail", "Professional Services", "Medical Offices"},
			Aversions:         []string{"Heavy Construction", "Hazardous Materials"},
			AvgTurnaroundDays: 2.0,
			AcceptanceRate:    0.85,
			CurrentWorkload:   2,
			Notes:             "Quick responses. Specializes in small to mid-market accounts.",
		},
		{
			ID:     "UW-006",
			Name:   "Robert Garcia",
			Email:  "rgarcia@desertuw.com",
			Phone:  "(602) 555-2345",
			Region: domain.RegionSouthwest,
			Specialties: map[string]domain.SpecialtyTier{
				"722410": domain.TierPrimary,
				"722511": domain.TierSecondary,
				"713940": domain.TierSecondary,
			},
			Appetite:          []string{"Bars", "Restaurants", "Entertainment Venues"},
			Aversions:         []string{"Mining", "Oil & Gas"},
			AvgTurnaroundDays: 3.5,
			AcceptanceRate:    0.76,
			CurrentWorkload:   5,
			Notes:             "Strong liquor liability experience. Familiar with Arizona/Nevada regulations.",
		},
		{
			ID:     "UW-007",
			Name:   "Lisa Park",
			Email:  "lpark@goldengate.com",
			Phone:  "(415) 555-6789",
			Region: domain.RegionWest,
			Specialties: map[string]domain.SpecialtyTier{
				"541511": domain.TierPrimary,
				"522320": domain.TierSecondary,
				"518210": domain.TierSecondary,
			},
			Appetite:          []string{"Technology Startups", "SaaS", "Fintech"},
			Aversions:         []string{"Heavy Manufacturing", "Agriculture"},
			AvgTurnaroundDays: 1.0,
			AcceptanceRate:    0.92,
			CurrentWorkload:   10,
			Notes:             "Fastest turnaround in the region. Premium pricing but high acceptance rate.",
		},
		{
			ID:     "UW-008",
			Name:   "James Wilson",
			Email:  "jwilson@atlanticins.com",
			Phone:  "(617) 555-0123",
			Region: domain.RegionNortheast,
			Specialties: map[string]domain.SpecialtyTier{
				"236220": domain.TierPrimary,
				"238210": domain.TierSecondary,
				"531210": domain.TierSecondary,
			},
			Appetite:          []string{"Construction", "Contractors", "Real Estate"},
			Aversions:         []string{"Restaurants", "Bars"},
			AvgTurnaroundDays: 5.0,
			AcceptanceRate:    0.68,
			CurrentWorkload:   2,
			Notes:             "Conservative underwriter. Thorough review process but reliable approvals.",
		},
		{
			ID:     "UW-009",
			Name:   "Maria Santos",
			Email:  "msantos@heartlanduw.com",
			Phone:  "(816) 555-4567",
			Region: domain.RegionMidwest,
			Specialties: map[string]domain.SpecialtyTier{
				"111998": domain.TierPrimary,
				"311999": domain.TierSecondary,
				"445110": domain.TierSecondary,
			},
			Appetite:          []string{"Agriculture", "Food Processing", "Retail"},
			Aversions:         []string{"Nightclubs", "Cannabis"},
			AvgTurnaroundDays: 4.5,
			AcceptanceRate:    0.73,
			CurrentWorkload:   5,
			Notes:             "Deep expertise in agricultural risks. Familiar with crop insurance programs.",
		},
		{
			ID:     "UW-010",
			Name:   "Kevin O'Brien",
			Email:  "kobrien@peachstateuw.com",
			Phone:  "(770) 555-8901",
			Region: domain.RegionSoutheast,
			Specialties: map[string]domain.SpecialtyTier{
				"722410": domain.TierPrimary,
				"722511": domain.TierSecondary,
				"312120": domain.TierSecondary,
				"312130": domain.TierSecondary,
			},
			Appetite:          []string{"Restaurants", "Bars", "Breweries", "Wineries"},
			Aversions:         []string{"Heavy Industry", "Chemical Processing"},
			AvgTurnaroundDays: 2.0,
			AcceptanceRate:    0.87,
			CurrentWorkload:   2,
			Notes:             "Hospitality specialist. Great for craft beverage accounts. Very responsive.",
		},
	}
}
