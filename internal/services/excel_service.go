package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"qc-monitor/internal/models"
	"qc-monitor/internal/utils"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet columns the extractor requires. Missing columns or
// unparseable dates are fatal here, before the core pipeline runs: the
// downstream stages never re-validate.
var requiredColumns = []string{
	"Tool_Number",
	"Tool Column",
	"Customer schedule",
	"Responsible User",
}

// Optional columns feeding vendor archive validation. Sheets without
// them load fine; their records simply skip vendor checks.
const (
	vendorColumn     = "Vendor"
	technologyColumn = "technology"
)

// scheduleDateLayouts covers the formats spreadsheets commonly render
// date cells in. Two-digit-year layouts are deliberately absent: a cell
// like "03-04-05" is ambiguous and must fail loudly instead of parsing
// as an arbitrary ordering.
var scheduleDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// ExcelService reads task records out of the tracking spreadsheet.
type ExcelService struct{}

// NewExcelService creates a new excel service
func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// LoadRecords loads and validates all task records from the first sheet
// of an Excel workbook, preserving row order. Fully empty rows are
// skipped; any other malformed row is an error.
func (s *ExcelService) LoadRecords(inputPath string) ([]models.TaskRecord, error) {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var records []models.TaskRecord
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		if isEmptyRow(row) {
			continue
		}

		toolNumber := cellAt(row, columns["Tool_Number"])
		toolColumn := cellAt(row, columns["Tool Column"])
		scheduleRaw := cellAt(row, columns["Customer schedule"])
		responsible := cellAt(row, columns["Responsible User"])

		if toolNumber == "" || toolColumn == "" || responsible == "" {
			return nil, fmt.Errorf("row %d: missing required value", rowNum)
		}

		schedule, err := parseScheduleDate(scheduleRaw)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad customer schedule %q: %w", rowNum, scheduleRaw, err)
		}

		record := models.TaskRecord{
			ToolNumber:       toolNumber,
			ToolColumn:       toolColumn,
			CustomerSchedule: schedule,
			ResponsibleUser:  responsible,
		}

		if idx, ok := columns[vendorColumn]; ok {
			record.Vendor = cellAt(row, idx)
		}
		if idx, ok := columns[technologyColumn]; ok {
			if raw := cellAt(row, idx); raw != "" {
				tech, err := strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d: bad technology value %q", rowNum, raw)
				}
				record.Technology = tech
			}
		}

		records = append(records, record)
	}

	return records, nil
}

// mapColumns resolves each required column name to its index.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseScheduleDate accepts the usual rendered date formats plus raw
// Excel serial numbers (unformatted date cells).
func parseScheduleDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range scheduleDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return utils.DateOnly(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return utils.DateOnly(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format")
}
