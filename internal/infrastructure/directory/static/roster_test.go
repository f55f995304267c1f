package static

import (
	"context"
	"testing"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

func TestListUnderwritersReturnsFullRoster(t *testing.T) {
	d := NewDirectory()
	out, err := d.ListUnderwriters(context.Background())
	if err != nil {
		t.Fatalf("ListUnderwriters() error = %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("roster size = %d, want 10", len(out))
	}

	seen := make(map[string]bool, len(out))
	for _, uw := range out {
		if uw.ID == "" || uw.Name == "" || uw.Region == "" {
			t.Fatalf("incomplete record: %+v", uw)
		}
		if seen[uw.ID] {
			t.Fatalf("duplicate ID %s", uw.ID)
		}
		seen[uw.ID] = true
		if uw.AcceptanceRate <= 0 || uw.AcceptanceRate > 1 {
			t.Fatalf("%s acceptance rate out of range: %v", uw.ID, uw.AcceptanceRate)
		}
		if len(uw.Specialties) == 0 {
			t.Fatalf("%s has no specialties", uw.ID)
		}
	}
}

func TestListUnderwritersIsolatesCallersFromSeed(t *testing.T) {
	d := NewDirectory()
	first, _ := d.ListUnderwriters(context.Background())

	first[0].Name = "mutated"
	first[0].Appetite[0] = "mutated"
	first[0].Specialties["722410"] = domain.TierSecondary

	second, _ := d.ListUnderwriters(context.Background())
	if second[0].Name == "mutated" || second[0].Appetite[0] == "mutated" {
		t.Fatal("caller mutation leaked into the seed roster")
	}
	if second[0].Specialties["722410"] != domain.TierPrimary {
		t.Fatal("specialty map is shared with callers")
	}
}

func TestSeedRosterCoversBarSpecialists(t *testing.T) {
	d := NewDirectory()
	out, _ := d.ListUnderwriters(context.Background())

	barSpecialists := 0
	for _, uw := range out {
		if _, ok := uw.Specialties["722410"]; ok {
			barSpecialists++
		}
	}
	if barSpecialists < 2 {
		t.Fatalf("expected at least two drinking-place specialists, got %d", barSpecialists)
	}
}
