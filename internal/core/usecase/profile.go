package usecase

import (
	"strings"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

// stateNameToAbbrev lets callers pass either a postal code or a full state name.
var stateNameToAbbrev = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS",
	"KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
	"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS",
	"MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY",
	"NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK",
	"OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT",
	"VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY",
}

var stateToRegion = map[string]domain.Region{
	"ME": domain.RegionNortheast, "NH": domain.RegionNortheast, "VT": domain.RegionNortheast,
	"MA": domain.RegionNortheast, "RI": domain.RegionNortheast, "CT": domain.RegionNortheast,
	"NY": domain.RegionNortheast, "NJ": domain.RegionNortheast, "PA": domain.RegionNortheast,

	"DE": domain.RegionSoutheast, "MD": domain.RegionSoutheast, "VA": domain.RegionSoutheast,
	"WV": domain.RegionSoutheast, "NC": domain.RegionSoutheast, "SC": domain.RegionSoutheast,
	"GA": domain.RegionSoutheast, "FL": domain.RegionSoutheast, "KY": domain.RegionSoutheast,
	"TN": domain.RegionSoutheast, "AL": domain.RegionSoutheast, "MS": domain.RegionSoutheast,
	"AR": domain.RegionSoutheast, "LA": domain.RegionSoutheast,

	"OH": domain.RegionMidwest, "MI": domain.RegionMidwest, "IN": domain.RegionMidwest,
	"IL": domain.RegionMidwest, "WI": domain.RegionMidwest, "MN": domain.RegionMidwest,
	"IA": domain.RegionMidwest, "MO": domain.RegionMidwest, "ND": domain.RegionMidwest,
	"SD": domain.RegionMidwest, "NE": domain.RegionMidwest, "KS": domain.RegionMidwest,

	"TX": domain.RegionSouthwest, "OK": domain.RegionSouthwest, "NM": domain.RegionSouthwest,
	"AZ": domain.RegionSouthwest,

	"WA": domain.RegionPNW, "OR": domain.RegionPNW,

	"CO": domain.RegionWest, "WY": domain.RegionWest, "MT": domain.RegionWest,
	"ID": domain.RegionWest, "UT": domain.RegionWest, "NV": domain.RegionWest,
	"CA": domain.RegionWest, "AK": domain.RegionWest, "HI": domain.RegionWest,
}

// naicsBusinessType classifies well-known hospitality/retail codes; the prefix
// table catches the rest of each industry group.
var naicsBusinessType = map[string]string{
	"722410": "bar",
	"722511": "restaurant",
	"722513": "restaurant",
	"722514": "restaurant",
	"722515": "restaurant",
	"445110": "retail",
	"445120": "retail",
	"448110": "retail",
	"448120": "retail",
	"721110": "hotel",
	"721120": "hotel",
}

var naicsPrefixBusinessType = map[string]string{
	"7224": "bar",
	"7225": "restaurant",
	"4451": "retail",
	"4481": "retail",
	"7211": "hotel",
}

// BuildRiskProfile derives the normalized matching profile from mapped form
// output. Total: absent fields leave the corresponding profile field empty and
// unrecognized values contribute nothing.
func BuildRiskProfile(mapped domain.MappedFormOutput) domain.RiskProfile {
	profile := domain.RiskProfile{
		IndustryCode: strings.TrimSpace(mapped.IndustryCode),
		Region:       regionForState(mapped.State),
	}

	hazards := make([]string, 0, len(mapped.Hazards)+2)
	seen := make(map[string]struct{}, len(mapped.Hazards)+2)
	addHazard := func(h string) {
		h = strings.TrimSpace(h)
		if h == "" {
			return
		}
		key := strings.ToLower(h)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		hazards = append(hazards, h)
	}
	for _, h := range mapped.Hazards {
		addHazard(h)
	}

	if mapped.LiquorLiabilityRequired || mapped.AlcoholPercentage > 0 {
		profile.RequiresLiquorLiability = true
		addHazard("alcohol_service")
	}
	if mapped.LiveEntertainment {
		addHazard("live_entertainment")
	}
	profile.Hazards = hazards

	tags := make([]string, 0, 3)
	if bt := businessTypeForNAICS(profile.IndustryCode); bt != "" {
		tags = append(tags, bt)
	}
	if profile.RequiresLiquorLiability {
		for _, t := range []string{"bar", "liquor"} {
			if !containsTag(tags, t) {
				tags = append(tags, t)
			}
		}
	}
	profile.BusinessTypeTags = tags

	return profile
}

func regionForState(state string) domain.Region {
	s := strings.ToUpper(strings.TrimSpace(state))
	if s == "" {
		return ""
	}
	if abbrev, ok := stateNameToAbbrev[s]; ok {
		s = abbrev
	}
	return stateToRegion[s]
}

func businessTypeForNAICS(code string) string {
	if code == "" {
		return ""
	}
	if bt, ok := naicsBusinessType[code]; ok {
		return bt
	}
	prefix := code
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return naicsPrefixBusinessType[prefix]
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
