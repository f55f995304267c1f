package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

// ScheduleConfig fixes the business-hours boundaries the resolver normalizes
// against.
type ScheduleConfig struct {
	BusinessStartHour int
	AfternoonHour     int
}

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		BusinessStartHour: 9,
		AfternoonHour:     13,
	}
}

func (c ScheduleConfig) normalize() ScheduleConfig {
	out := c
	def := DefaultScheduleConfig()
	if out.BusinessStartHour <= 0 || out.BusinessStartHour > 23 {
		out.BusinessStartHour = def.BusinessStartHour
	}
	if out.AfternoonHour <= out.BusinessStartHour || out.AfternoonHour > 23 {
		out.AfternoonHour = def.AfternoonHour
	}
	return out
}

// ContactRule is one pattern-matcher in the resolver's priority chain. Match
// returns the candidate instant and the literal cue it fired on.
type ContactRule struct {
	Name  string
	Match func(now time.Time, notes string) (time.Time, string, bool)
}

// Resolver turns free-form availability notes into the earliest valid contact
// instant. Deterministic in (now, notes); malformed notes fall through to the
// default instead of failing.
type Resolver struct {
	cfg   ScheduleConfig
	rules []ContactRule
}

// NewResolver builds the default rule chain. Extra rules slot in ahead of the
// weekend rule, after the built-in note matchers.
func NewResolver(cfg ScheduleConfig, extra ...ContactRule) *Resolver {
	r := &Resolver{cfg: cfg.normalize()}
	r.rules = append(r.rules,
		ContactRule{Name: "explicit availability", Match: r.matchExplicitUntil},
		ContactRule{Name: "contact restriction", Match: r.matchRestriction},
		ContactRule{Name: "day blocked by activity", Match: r.matchDayBlocked},
	)
	r.rules = append(r.rules, extra...)
	r.rules = append(r.rules, ContactRule{Name: "weekend", Match: r.matchWeekend})
	return r
}

// Resolve evaluates rules in priority order; first match wins. No rule firing
// means contact as soon as possible.
func (r *Resolver) Resolve(now time.Time, notes string) domain.ContactWindow {
	normalized := normalizeNotes(notes)
	for _, rule := range r.rules {
		if instant, cue, ok := rule.Match(now, normalized); ok {
			return domain.ContactWindow{
				EarliestContact: instant,
				Rule:            rule.Name,
				Reason:          fmt.Sprintf("rule %q matched cue %q", rule.Name, cue),
			}
		}
	}
	return domain.ContactWindow{
		EarliestContact: now,
		Rule:            "default",
		Reason:          "no availability constraints recognized; contact as soon as possible",
	}
}

var dayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

var untilPattern = regexp.MustCompile(
	`until\s+(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)\b(?:\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?)?`)

// matchExplicitUntil handles "unavailable until tuesday 1:00 pm" style notes.
// The stated instant is taken literally, rounded forward to the next
// 30-minute boundary when unaligned.
func (r *Resolver) matchExplicitUntil(now time.Time, notes string) (time.Time, string, bool) {
	m := untilPattern.FindStringSubmatch(notes)
	if m == nil {
		return time.Time{}, "", false
	}

	target := dayNames[m[1]]
	hour := r.cfg.BusinessStartHour
	minute := 0
	if m[2] != "" {
		hour, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		}
		switch m[4] {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, "", false
	}

	daysAhead := int(target-now.Weekday()+7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	instant := at(now.AddDate(0, 0, daysAhead), hour, minute)
	return roundUpHalfHour(instant), strings.TrimSpace(m[0]), true
}

var restrictionVerb = regexp.MustCompile(`don'?t|do not|no call|no contact|avoid|not during`)
var tomorrowPart = regexp.MustCompile(`tomorrow(?:\s+(morning|afternoon|evening))?`)

// matchRestriction handles negative windows: "don't call tomorrow morning",
// "no contact tomorrow", "next week". The result is the start of the next
// period the restriction does not cover.
func (r *Resolver) matchRestriction(now time.Time, notes string) (time.Time, string, bool) {
	if strings.Contains(notes, "next week") {
		daysUntilMonday := int(time.Monday-now.Weekday()+7) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		instant := at(now.AddDate(0, 0, daysUntilMonday), r.cfg.BusinessStartHour, 0)
		return instant, "next week", true
	}

	if !restrictionVerb.MatchString(notes) {
		return time.Time{}, "", false
	}
	m := tomorrowPart.FindStringSubmatch(notes)
	if m == nil {
		return time.Time{}, "", false
	}

	tomorrow := now.AddDate(0, 0, 1)
	if m[1] == "morning" {
		if tomorrow.Weekday() == time.Saturday || tomorrow.Weekday() == time.Sunday {
			// Tomorrow's afternoon falls on a weekend; roll to the next
			// business morning instead.
			return r.nextBusinessMorning(tomorrow), strings.TrimSpace(m[0]), true
		}
		// Morning blocked; the afternoon window is the next uncovered period.
		return at(tomorrow, r.cfg.AfternoonHour, 0), strings.TrimSpace(m[0]), true
	}
	// Afternoon, evening, or the whole day blocked: next business morning
	// after tomorrow.
	return r.nextBusinessMorning(tomorrow.AddDate(0, 0, 1)), strings.TrimSpace(m[0]), true
}

var activityCues = []string{
	"game", "recital", "wedding", "funeral", "graduation", "ceremony",
	"tournament", "concert", "attending", "tonight", "this evening",
}

// matchDayBlocked handles vague activities with no stated end time; the rest
// of the day is treated as unavailable.
func (r *Resolver) matchDayBlocked(now time.Time, notes string) (time.Time, string, bool) {
	for _, cue := range activityCues {
		if strings.Contains(notes, cue) {
			return r.nextBusinessMorning(now.AddDate(0, 0, 1)), cue, true
		}
	}
	return time.Time{}, "", false
}

// matchWeekend fires on the clock alone, notes or not.
func (r *Resolver) matchWeekend(now time.Time, _ string) (time.Time, string, bool) {
	if now.Weekday() != time.Saturday && now.Weekday() != time.Sunday {
		return time.Time{}, "", false
	}
	return r.nextBusinessMorning(now.AddDate(0, 0, 1)), strings.ToLower(now.Weekday().String()), true
}

func (r *Resolver) nextBusinessMorning(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return at(t, r.cfg.BusinessStartHour, 0)
}

func at(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

func roundUpHalfHour(t time.Time) time.Time {
	aligned := t.Truncate(30 * time.Minute)
	if aligned.Equal(t) {
		return t
	}
	return aligned.Add(30 * time.Minute)
}

func normalizeNotes(notes string) string {
	return strings.Join(strings.Fields(strings.ToLower(notes)), " ")
}
