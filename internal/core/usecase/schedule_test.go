package usecase

import (
	"strings"
	"testing"
	"time"
)

func mustDate(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestResolveExplicitUntilDayAndTime(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 24, 10, 0) // Monday

	window := r.Resolve(now, "Unavailable until Tuesday 1:00 PM")

	want := mustDate(t, 2026, time.August, 25, 13, 0)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
	if window.Rule != "explicit availability" {
		t.Fatalf("rule = %q", window.Rule)
	}
	if !strings.Contains(window.Reason, "until tuesday 1:00 pm") {
		t.Fatalf("reason should carry the literal cue, got %q", window.Reason)
	}
}

func TestResolveExplicitUntilRoundsToHalfHour(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 24, 10, 0) // Monday

	window := r.Resolve(now, "out until wednesday 2:10 pm")

	want := mustDate(t, 2026, time.August, 26, 14, 30)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
}

func TestResolveExplicitUntilDefaultsToBusinessStart(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 24, 10, 0) // Monday

	window := r.Resolve(now, "unavailable until thursday")

	want := mustDate(t, 2026, time.August, 27, 9, 0)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
}

func TestResolveRestrictionTomorrowMorning(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 24, 15, 0) // Monday

	window := r.Resolve(now, "please don't call tomorrow morning")

	want := mustDate(t, 2026, time.August, 25, 13, 0)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
	if window.Rule != "contact restriction" {
		t.Fatalf("rule = %q", window.Rule)
	}
}

func TestResolveRestrictionTomorrowMorningOnFridayRollsToMonday(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 28, 10, 0) // Friday

	window := r.Resolve(now, "don't call tomorrow morning")

	// Tomorrow is Saturday; the afternoon window is not a business window,
	// so contact rolls to Monday morning.
	want := mustDate(t, 2026, time.August, 31, 9, 0)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
	if window.Rule != "contact restriction" {
		t.Fatalf("rule = %q", window.Rule)
	}
}

func TestResolveRestrictionWholeTomorrowRollsPastWeekend(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 27, 11, 0) // Thursday

	window := r.Resolve(now, "don't contact me tomorrow")

	// Day after tomorrow is Saturday; first uncovered business morning is Monday.
	want := mustDate(t, 2026, time.August, 31, 9, 0)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
}

func TestResolveNextWeekPreference(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 26, 9, 30) // Wednesday

	window := r.Resolve(now, "client prefers next week")

	want := mustDate(t, 2026, time.August, 31, 9, 0)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
}

func TestResolveVagueActivityBlocksRestOfDay(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 27, 18, 0) // Thursday evening

	window := r.Resolve(now, "At daughter's game this evening")

	want := mustDate(t, 2026, time.August, 28, 9, 0) // Friday 9 AM
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
	if window.Rule != "day blocked by activity" {
		t.Fatalf("rule = %q", window.Rule)
	}
}

func TestResolveVagueActivityOnFridayRollsToMonday(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 28, 17, 0) // Friday

	window := r.Resolve(now, "attending a wedding tonight")

	want := mustDate(t, 2026, time.August, 31, 9, 0)
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
}

func TestResolveWeekendNowWithEmptyNotes(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 29, 11, 0) // Saturday

	window := r.Resolve(now, "")

	want := mustDate(t, 2026, time.August, 31, 9, 0) // Monday 9 AM
	if !window.EarliestContact.Equal(want) {
		t.Fatalf("earliest contact = %v, want %v", window.EarliestContact, want)
	}
	if window.Rule != "weekend" {
		t.Fatalf("rule = %q", window.Rule)
	}
}

func TestResolveMalformedNotesFallThroughToDefault(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 26, 14, 0) // Wednesday

	window := r.Resolve(now, "@@@ gibberish ### 99:99")

	if !window.EarliestContact.Equal(now) {
		t.Fatalf("earliest contact = %v, want now", window.EarliestContact)
	}
	if window.Rule != "default" {
		t.Fatalf("rule = %q", window.Rule)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver(DefaultScheduleConfig())
	now := mustDate(t, 2026, time.August, 24, 10, 0)
	notes := "unavailable until tuesday 1 pm"

	first := r.Resolve(now, notes)
	second := r.Resolve(now, notes)

	if !first.EarliestContact.Equal(second.EarliestContact) || first.Reason != second.Reason {
		t.Fatalf("resolve not deterministic: %+v vs %+v", first, second)
	}
}

func TestResolveCustomRuleSlotsBeforeWeekend(t *testing.T) {
	custom := ContactRule{
		Name: "quiet fridays",
		Match: func(now time.Time, notes string) (time.Time, string, bool) {
			if now.Weekday() != time.Friday || !strings.Contains(notes, "quiet") {
				return time.Time{}, "", false
			}
			return now.AddDate(0, 0, 3), "quiet", true
		},
	}
	r := NewResolver(DefaultScheduleConfig(), custom)
	now := mustDate(t, 2026, time.August, 28, 10, 0) // Friday

	window := r.Resolve(now, "keep it quiet please")
	if window.Rule != "quiet fridays" {
		t.Fatalf("rule = %q, want custom rule to fire", window.Rule)
	}
}
