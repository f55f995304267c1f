package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning overrides the built-in scoring weights and scheduling boundaries.
// Fields are pointers so a tuning file can override a subset and leave the
// rest at their defaults.
type Tuning struct {
	Scoring  ScoringTuning  `yaml:"scoring"`
	Schedule ScheduleTuning `yaml:"schedule"`
}

type ScoringTuning struct {
	RegionMatchPoints    *float64 `yaml:"region_match_points"`
	SpecialtyPoints      *float64 `yaml:"specialty_points"`
	SpecialtyGroupFactor *float64 `yaml:"specialty_group_factor"`
	AppetitePoints       *float64 `yaml:"appetite_points"`
	AversionPenalty      *float64 `yaml:"aversion_penalty"`

	TurnaroundMaxPoints   *float64 `yaml:"turnaround_max_points"`
	TurnaroundFloorDays   *float64 `yaml:"turnaround_floor_days"`
	TurnaroundCeilingDays *float64 `yaml:"turnaround_ceiling_days"`

	AcceptanceMaxPoints *float64 `yaml:"acceptance_max_points"`

	WorkloadBonusMax      *float64 `yaml:"workload_bonus_max"`
	WorkloadPenaltyMax    *float64 `yaml:"workload_penalty_max"`
	WorkloadLowWatermark  *int     `yaml:"workload_low_watermark"`
	WorkloadHighWatermark *int     `yaml:"workload_high_watermark"`
	WorkloadPenaltyCap    *int     `yaml:"workload_penalty_cap"`
}

type ScheduleTuning struct {
	BusinessStartHour *int `yaml:"business_start_hour"`
	AfternoonHour     *int `yaml:"afternoon_hour"`
}

// LoadTuning reads the optional tuning file. An empty path means no overrides.
func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return t, nil
}
