package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

// Directory loads the underwriter roster from an xlsx workbook, the format
// brokerage operations teams actually maintain rosters in. The workbook is
// read once at construction; ListUnderwriters serves the parsed snapshot.
type Directory struct {
	records []domain.UnderwriterRecord
}

// Expected header row, case-insensitive:
//
//	id | name | email | phone | region | specialties | appetite | aversions |
//	avg_turnaround_days | acceptance_rate | current_workload | notes
//
// specialties cells hold "code:tier" pairs separated by ";", e.g.
// "722410:primary;722511:secondary". appetite and aversions are ";" lists.
func Load(path string) (*Directory, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("roster workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read roster sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("roster sheet %s has no data rows", sheets[0])
	}

	columns, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var records []domain.UnderwriterRecord
	for i, row := range rows[1:] {
		uw, err := parseRow(columns, row)
		if err != nil {
			// One bad row must not take the whole roster down.
			slog.Warn("roster_row_skipped", "row", i+2, "error", err)
			continue
		}
		records = append(records, uw)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("roster sheet %s yielded no valid rows", sheets[0])
	}
	return &Directory{records: records}, nil
}

func (d *Directory) ListUnderwriters(_ context.Context) ([]domain.UnderwriterRecord, error) {
	out := make([]domain.UnderwriterRecord, len(d.records))
	copy(out, d.records)
	return out, nil
}

var requiredColumns = []string{"id", "name", "region"}

func headerIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("roster header is missing column %q", name)
		}
	}
	return columns, nil
}

func parseRow(columns map[string]int, row []string) (domain.UnderwriterRecord, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	id := cell("id")
	name := cell("name")
	if id == "" || name == "" {
		return domain.UnderwriterRecord{}, fmt.Errorf("id and name are required")
	}

	specialties, err := parseSpecialties(cell("specialties"))
	if err != nil {
		return domain.UnderwriterRecord{}, fmt.Errorf("underwriter %s: %w", id, err)
	}

	uw := domain.UnderwriterRecord{
		ID:          id,
		Name:        name,
		Email:       cell("email"),
		Phone:       cell("phone"),
		Region:      domain.Region(cell("region")),
		Specialties: specialties,
		Appetite:    splitList(cell("appetite")),
		Aversions:   splitList(cell("aversions")),
		Notes:       cell("notes"),
	}

	if v := cell("avg_turnaround_days"); v != "" {
		uw.AvgTurnaroundDays, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.UnderwriterRecord{}, fmt.Errorf("underwriter %s: bad avg_turnaround_days %q", id, v)
		}
	}
	if v := cell("acceptance_rate"); v != "" {
		uw.AcceptanceRate, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.UnderwriterRecord{}, fmt.Errorf("underwriter %s: bad acceptance_rate %q", id, v)
		}
	}
	if v := cell("current_workload"); v != "" {
		uw.CurrentWorkload, err = strconv.Atoi(v)
		if err != nil {
			return domain.UnderwriterRecord{}, fmt.Errorf("underwriter %s: bad current_workload %q", id, v)
		}
	}
	return uw, nil
}

func parseSpecialties(raw string) (map[string]domain.SpecialtyTier, error) {
	out := make(map[string]domain.SpecialtyTier)
	for _, pair := range splitList(raw) {
		code, tier, found := strings.Cut(pair, ":")
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		t := domain.TierSecondary
		if !found || strings.TrimSpace(tier) == string(domain.TierPrimary) {
			t = domain.TierPrimary
		} else if strings.TrimSpace(tier) != string(domain.TierSecondary) {
			return nil, fmt.Errorf("unknown specialty tier %q", tier)
		}
		out[code] = t
	}
	return out, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
