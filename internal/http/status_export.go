package httpapi

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// StatusExportHeader is the column layout for the statuses sheet.
var StatusExportHeader = []string{
	"Resident UID",
	"Condition",
	"Hazards",
	"People",
	"Location Shared",
	"Location",
	"Contact Shared",
	"Phone",
	"Created At",
	"Expires At",
}

// GenerateStatusExport renders the latest statuses into a workbook with a
// per-condition summary sheet for the dashboard.
func GenerateStatusExport(statuses []*domain.StatusRecord) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; Close only on error paths.

	sheetName := "Statuses"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, title := range StatusExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	counts := map[domain.Condition]int{}
	for i, s := range statuses {
		counts[s.Condition]++
		row := []any{
			s.UID,
			string(s.Condition),
			strings.Join(s.Categories, ", "),
			s.People,
			s.ShareLocation,
			strOrEmpty(s.LocationName),
			s.ShareContact,
			strOrEmpty(s.PhoneNumber),
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.ExpiresAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	summary := "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	_ = f.SetCellValue(summary, "A1", "Condition")
	_ = f.SetCellValue(summary, "B1", "Count")
	conditions := []domain.Condition{
		domain.ConditionSafe, domain.ConditionEvacuated, domain.ConditionAffected, domain.ConditionMissing,
	}
	for i, c := range conditions {
		_ = f.SetCellValue(summary, fmt.Sprintf("A%d", i+2), string(c))
		_ = f.SetCellValue(summary, fmt.Sprintf("B%d", i+2), counts[c])
	}

	out, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
