package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/coastalins/broker-engine/internal/core/domain"
	"github.com/coastalins/broker-engine/internal/core/ports"
)

// ScoringConfig carries the fixed weights and benchmarks. Weights are
// configuration, never learned from outcomes.
type ScoringConfig struct {
	RegionMatchPoints    float64
	SpecialtyPoints      float64
	SpecialtyGroupFactor float64
	AppetitePoints       float64
	AversionPenalty      float64

	TurnaroundMaxPoints   float64
	TurnaroundFloorDays   float64
	TurnaroundCeilingDays float64

	AcceptanceMaxPoints float64

	WorkloadBonusMax      float64
	WorkloadPenaltyMax    float64
	WorkloadLowWatermark  int
	WorkloadHighWatermark int
	WorkloadPenaltyCap    int
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RegionMatchPoints:    25,
		SpecialtyPoints:      30,
		SpecialtyGroupFactor: 0.7,
		AppetitePoints:       20,
		AversionPenalty:      -50,

		TurnaroundMaxPoints:   15,
		TurnaroundFloorDays:   1,
		TurnaroundCeilingDays: 7,

		AcceptanceMaxPoints: 10,

		WorkloadBonusMax:      10,
		WorkloadPenaltyMax:    -15,
		WorkloadLowWatermark:  3,
		WorkloadHighWatermark: 8,
		WorkloadPenaltyCap:    16,
	}
}

func (c ScoringConfig) normalize() ScoringConfig {
	out := c
	def := DefaultScoringConfig()
	if out.TurnaroundCeilingDays <= out.TurnaroundFloorDays {
		out.TurnaroundFloorDays = def.TurnaroundFloorDays
		out.TurnaroundCeilingDays = def.TurnaroundCeilingDays
	}
	if out.WorkloadLowWatermark <= 0 {
		out.WorkloadLowWatermark = def.WorkloadLowWatermark
	}
	if out.WorkloadHighWatermark < out.WorkloadLowWatermark {
		out.WorkloadHighWatermark = def.WorkloadHighWatermark
	}
	if out.WorkloadPenaltyCap <= out.WorkloadHighWatermark {
		out.WorkloadPenaltyCap = out.WorkloadHighWatermark * 2
	}
	return out
}

// Scorer evaluates underwriters against a risk profile. Stateless across
// invocations; safe for concurrent use.
type Scorer struct {
	cfg       ScoringConfig
	directory ports.UnderwriterDirectory
}

func NewScorer(cfg ScoringConfig, directory ports.UnderwriterDirectory) *Scorer {
	return &Scorer{cfg: cfg.normalize(), directory: directory}
}

// Score sums the independent, order-stable terms. A term contributes to the
// justification trace only when non-zero, in evaluation order.
func (s *Scorer) Score(profile domain.RiskProfile, uw domain.UnderwriterRecord) domain.ScoredCandidate {
	total := 0.0
	justification := make([]string, 0, 7)
	add := func(points float64, note string) {
		if points == 0 {
			return
		}
		total += points
		justification = append(justification, fmt.Sprintf("%s (%+.1f)", note, points))
	}

	add(s.scoreRegion(profile, uw))
	add(s.scoreSpecialty(profile, uw))
	add(s.scoreAppetite(profile, uw))
	add(s.scoreAversion(profile, uw))
	add(s.scoreTurnaround(uw))
	add(s.scoreAcceptance(uw))
	add(s.scoreWorkload(uw))

	return domain.ScoredCandidate{
		Underwriter:   uw,
		Score:         total,
		Justification: justification,
	}
}

// RankCandidates scores every underwriter and returns the top N in a fully
// deterministic order: score desc, then acceptance rate desc, then turnaround
// asc, then underwriter ID. Scoring fans out across goroutines; the final sort
// makes the result identical to sequential evaluation. The result holds
// min(topN, len(underwriters)) entries, so a non-positive topN yields none.
func (s *Scorer) RankCandidates(profile domain.RiskProfile, underwriters []domain.UnderwriterRecord, topN int) []domain.ScoredCandidate {
	if topN <= 0 {
		return []domain.ScoredCandidate{}
	}
	scored := make([]domain.ScoredCandidate, len(underwriters))
	if len(underwriters) == 0 {
		return scored
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(underwriters) {
		workers = len(underwriters)
	}
	var wg sync.WaitGroup
	chunk := (len(underwriters) + workers - 1) / workers
	for start := 0; start < len(underwriters); start += chunk {
		end := start + chunk
		if end > len(underwriters) {
			end = len(underwriters)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				scored[i] = s.Score(profile, underwriters[i])
			}
		}(start, end)
	}
	wg.Wait()

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Underwriter.AcceptanceRate != scored[j].Underwriter.AcceptanceRate {
			return scored[i].Underwriter.AcceptanceRate > scored[j].Underwriter.AcceptanceRate
		}
		if scored[i].Underwriter.AvgTurnaroundDays != scored[j].Underwriter.AvgTurnaroundDays {
			return scored[i].Underwriter.AvgTurnaroundDays < scored[j].Underwriter.AvgTurnaroundDays
		}
		return scored[i].Underwriter.ID < scored[j].Underwriter.ID
	})

	if topN < len(scored) {
		scored = scored[:topN]
	}
	return scored
}

// Rank pulls the directory and ranks it. An empty directory yields an empty
// list, not an error.
func (s *Scorer) Rank(ctx context.Context, profile domain.RiskProfile, topN int) ([]domain.ScoredCandidate, error) {
	underwriters, err := s.directory.ListUnderwriters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list underwriters: %w", err)
	}
	return s.RankCandidates(profile, underwriters, topN), nil
}

func (s *Scorer) scoreRegion(profile domain.RiskProfile, uw domain.UnderwriterRecord) (float64, string) {
	if profile.Region == "" || uw.Region != profile.Region {
		return 0, ""
	}
	return s.cfg.RegionMatchPoints, fmt.Sprintf("region match: %s", profile.Region)
}

func (s *Scorer) scoreSpecialty(profile domain.RiskProfile, uw domain.UnderwriterRecord) (float64, string) {
	if profile.IndustryCode == "" || len(uw.Specialties) == 0 {
		return 0, ""
	}
	if tier, ok := uw.Specialties[profile.IndustryCode]; ok {
		return s.cfg.SpecialtyPoints, fmt.Sprintf("industry specialty: %s (%s)", profile.IndustryCode, tier)
	}

	// Same 4-digit industry group as a primary specialty earns partial credit.
	prefix := profile.IndustryCode
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	for code, tier := range uw.Specialties {
		if tier != domain.TierPrimary {
			continue
		}
		if strings.HasPrefix(code, prefix) {
			return s.cfg.SpecialtyPoints * s.cfg.SpecialtyGroupFactor,
				fmt.Sprintf("industry group specialty: %s via %s", prefix, code)
		}
	}
	return 0, ""
}

func (s *Scorer) scoreAppetite(profile domain.RiskProfile, uw domain.UnderwriterRecord) (float64, string) {
	tag := firstTagMatch(profile.BusinessTypeTags, uw.Appetite)
	if tag == "" {
		return 0, ""
	}
	return s.cfg.AppetitePoints, fmt.Sprintf("appetite match: %s", tag)
}

// scoreAversion runs independently of appetite; matching both sets leaves the
// net strongly negative, which is a hard discourage, not an exclusion.
func (s *Scorer) scoreAversion(profile domain.RiskProfile, uw domain.UnderwriterRecord) (float64, string) {
	tag := firstTagMatch(profile.BusinessTypeTags, uw.Aversions)
	if tag == "" {
		return 0, ""
	}
	return s.cfg.AversionPenalty, fmt.Sprintf("aversion hit: %s", tag)
}

func (s *Scorer) scoreTurnaround(uw domain.UnderwriterRecord) (float64, string) {
	if uw.AvgTurnaroundDays <= 0 {
		return 0, ""
	}
	t := uw.AvgTurnaroundDays
	var points float64
	switch {
	case t <= s.cfg.TurnaroundFloorDays:
		points = s.cfg.TurnaroundMaxPoints
	case t >= s.cfg.TurnaroundCeilingDays:
		points = 0
	default:
		span := s.cfg.TurnaroundCeilingDays - s.cfg.TurnaroundFloorDays
		points = s.cfg.TurnaroundMaxPoints * (s.cfg.TurnaroundCeilingDays - t) / span
	}
	return points, fmt.Sprintf("turnaround: %.1f days", t)
}

func (s *Scorer) scoreAcceptance(uw domain.UnderwriterRecord) (float64, string) {
	if uw.AcceptanceRate <= 0 {
		return 0, ""
	}
	rate := uw.AcceptanceRate
	if rate > 1 {
		rate = 1
	}
	return rate * s.cfg.AcceptanceMaxPoints, fmt.Sprintf("acceptance rate: %.0f%%", rate*100)
}

func (s *Scorer) scoreWorkload(uw domain.UnderwriterRecord) (float64, string) {
	w := uw.CurrentWorkload
	low := s.cfg.WorkloadLowWatermark
	high := s.cfg.WorkloadHighWatermark
	switch {
	case w < low:
		points := s.cfg.WorkloadBonusMax * float64(low-w) / float64(low)
		return points, fmt.Sprintf("workload: %d open submissions", w)
	case w > high:
		over := float64(w - high)
		span := float64(s.cfg.WorkloadPenaltyCap - high)
		if over > span {
			over = span
		}
		return s.cfg.WorkloadPenaltyMax * over / span, fmt.Sprintf("workload: %d open submissions", w)
	default:
		return 0, ""
	}
}

// firstTagMatch compares tags case-insensitively and tolerates plural roster
// entries ("Bars" matches the profile tag "bar"). Returns the profile tag that
// matched, for the justification trace.
func firstTagMatch(profileTags, underwriterTags []string) string {
	if len(profileTags) == 0 || len(underwriterTags) == 0 {
		return ""
	}
	normalized := make(map[string]struct{}, len(underwriterTags))
	for _, t := range underwriterTags {
		normalized[normalizeTag(t)] = struct{}{}
	}
	for _, t := range profileTags {
		if _, ok := normalized[normalizeTag(t)]; ok {
			return t
		}
	}
	return ""
}

func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.TrimSuffix(tag, "s")
	return tag
}
