package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/coastalins/broker-engine/internal/core/domain"
)

var rosterHeader = []any{
	"id", "name", "email", "phone", "region", "specialties", "appetite", "aversions",
	"avg_turnaround_days", "acceptance_rate", "current_workload", "notes",
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &rosterHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoadParsesRosterRows(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{
			"UW-001", "Sarah Mitchell", "sarah@insureco.example", "(404) 555-1234", "Southeast",
			"722410:primary;722511:secondary", "Bars;Restaurants", "Mining",
			"2.5", "0.82", "5", "hospitality",
		},
		{
			"UW-002", "Michael Chen", "", "", "PNW",
			"541511:primary", "Technology", "",
			"1.5", "0.88", "2", "",
		},
	})

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	out, err := d.ListUnderwriters(context.Background())
	if err != nil {
		t.Fatalf("ListUnderwriters() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("roster size = %d", len(out))
	}

	first := out[0]
	if first.Region != domain.RegionSoutheast {
		t.Fatalf("region = %q", first.Region)
	}
	if first.Specialties["722410"] != domain.TierPrimary || first.Specialties["722511"] != domain.TierSecondary {
		t.Fatalf("specialties = %+v", first.Specialties)
	}
	if len(first.Appetite) != 2 || first.Appetite[1] != "Restaurants" {
		t.Fatalf("appetite = %v", first.Appetite)
	}
	if first.AvgTurnaroundDays != 2.5 || first.AcceptanceRate != 0.82 || first.CurrentWorkload != 5 {
		t.Fatalf("numeric fields: %+v", first)
	}
}

func TestLoadSkipsMalformedRowsButKeepsGoodOnes(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"", "No ID", "", "", "West", "", "", "", "", "", "", ""},
		{"UW-BAD", "Bad Rate", "", "", "West", "", "", "", "1.0", "often", "0", ""},
		{"UW-OK", "Good Row", "", "", "West", "541511:primary", "SaaS", "", "1.0", "0.9", "3", ""},
	})

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	out, _ := d.ListUnderwriters(context.Background())
	if len(out) != 1 || out[0].ID != "UW-OK" {
		t.Fatalf("expected only the valid row, got %+v", out)
	}
}

func TestLoadRejectsMissingRequiredColumns(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []any{"name", "email"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	row := []any{"No ID Column", "x@example.com"}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatalf("write row: %v", err)
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing id column")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Fatal("expected error for missing workbook")
	}
}
