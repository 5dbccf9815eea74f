package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/smartcare/smartcare-api/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetReadings = "Readings"
	SheetSummary  = "Summary"
)

var readingsHeader = []string{"#", "Timestamp", "Heart Rate (bpm)", "SpO2 (%)", "Temperature (°C)"}

// VitalsWorkbook renders a snapshot as an XLSX workbook: one row per sample
// on the Readings sheet, averages and assessment on the Summary sheet.
func VitalsWorkbook(s *domain.VitalsSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReadings); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeRow(f, SheetReadings, 1, toAny(readingsHeader)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetReadings, "A1", "E1", headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}
	if err := f.SetColWidth(SheetReadings, "B", "B", 22); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	for i, sm := range s.Stream {
		row := []any{i + 1, sm.Timestamp.UTC().Format(time.RFC3339), sm.HeartRate, sm.SpO2, sm.Temperature}
		if err := writeRow(f, SheetReadings, i+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	a := s.Assessment()
	summary := [][]any{
		{"User", s.UserID},
		{"Run", s.RunID},
		{"Recorded At", s.RecordedAt.UTC().Format(time.RFC3339)},
		{"Samples", len(s.Stream)},
		{"Average Heart Rate", s.HeartRate},
		{"Average SpO2", s.SpO2},
		{"Average Temperature", s.Temperature},
		{"Score", a.Score},
		{"Status", a.Label},
		{"SOS", a.SOS},
	}
	for i, row := range summary {
		if err := writeRow(f, SheetSummary, i+1, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 22); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name for userID's export.
func Filename(userID string, at time.Time) string {
	return fmt.Sprintf("vitals_%s_%s.xlsx", userID, at.UTC().Format("20060102_150405"))
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
