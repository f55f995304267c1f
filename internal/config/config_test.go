package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoutingAndTrafficDefaults(t *testing.T) {
	t.Setenv("ROUTING_TOP_N", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("API_RATE_LIMIT_BURST", "")
	t.Setenv("API_MAX_CONCURRENT", "")
	t.Setenv("DIRECTORY_SOURCE", "")

	cfg := Load()
	if cfg.RoutingTopN != 3 {
		t.Fatalf("expected default top n 3, got %d", cfg.RoutingTopN)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("expected default rate limit 50 rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIRateLimitBurst != 100 {
		t.Fatalf("expected default burst 100, got %d", cfg.APIRateLimitBurst)
	}
	if cfg.APIMaxConcurrent != 64 {
		t.Fatalf("expected default max concurrent 64, got %d", cfg.APIMaxConcurrent)
	}
	if cfg.DirectorySource != "static" {
		t.Fatalf("expected default directory source static, got %q", cfg.DirectorySource)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("ROUTING_TOP_N", "5")
	t.Setenv("API_RATE_LIMIT_RPS", "12.5")
	t.Setenv("DIRECTORY_SOURCE", "xlsx")
	t.Setenv("DIRECTORY_XLSX_PATH", "/srv/roster.xlsx")
	t.Setenv("NATS_DISPATCH_SUBJECT", "submissions.dispatch.test")

	cfg := Load()
	if cfg.RoutingTopN != 5 {
		t.Fatalf("expected top n 5, got %d", cfg.RoutingTopN)
	}
	if cfg.APIRateLimitRPS != 12.5 {
		t.Fatalf("expected rate limit 12.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.DirectorySource != "xlsx" || cfg.DirectoryXLSXPath != "/srv/roster.xlsx" {
		t.Fatalf("expected xlsx source override, got %q %q", cfg.DirectorySource, cfg.DirectoryXLSXPath)
	}
	if cfg.NATSDispatchSubject != "submissions.dispatch.test" {
		t.Fatalf("expected subject override, got %q", cfg.NATSDispatchSubject)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("ROUTING_TOP_N", "many")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.RoutingTopN != 3 {
		t.Fatalf("unparsable int should fall back, got %d", cfg.RoutingTopN)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("unparsable float should fall back, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadTuningEmptyPathMeansNoOverrides(t *testing.T) {
	tuning, err := LoadTuning("")
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}
	if tuning.Scoring.RegionMatchPoints != nil || tuning.Schedule.BusinessStartHour != nil {
		t.Fatalf("empty path should yield zero tuning, got %+v", tuning)
	}
}

func TestLoadTuningParsesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	content := []byte("scoring:\n  region_match_points: 40\n  aversion_penalty: -80\nschedule:\n  business_start_hour: 8\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}
	if tuning.Scoring.RegionMatchPoints == nil || *tuning.Scoring.RegionMatchPoints != 40 {
		t.Fatalf("region points override not parsed: %+v", tuning.Scoring.RegionMatchPoints)
	}
	if tuning.Scoring.AversionPenalty == nil || *tuning.Scoring.AversionPenalty != -80 {
		t.Fatalf("aversion override not parsed: %+v", tuning.Scoring.AversionPenalty)
	}
	if tuning.Scoring.SpecialtyPoints != nil {
		t.Fatalf("untouched fields must stay nil, got %v", *tuning.Scoring.SpecialtyPoints)
	}
	if tuning.Schedule.BusinessStartHour == nil || *tuning.Schedule.BusinessStartHour != 8 {
		t.Fatalf("schedule override not parsed: %+v", tuning.Schedule.BusinessStartHour)
	}
}

func TestLoadTuningErrors(t *testing.T) {
	if _, err := LoadTuning("/nonexistent/tuning.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Fatal("expected parse error")
	}
}
