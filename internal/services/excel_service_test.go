package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, header []string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, name))
	}
	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var taskHeader = []string{"Tool_Number", "Tool Column", "Customer schedule", "Responsible User"}

func TestLoadRecords(t *testing.T) {
	path := writeWorkbook(t, taskHeader, [][]interface{}{
		{"T100", "ProjectA", "2024-06-10", "alice@example.com"},
		{"T200", "ProjectB", "2024/06/14", "bob@example.com"},
	})

	svc := NewExcelService()
	records, err := svc.LoadRecords(path)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "T100", records[0].ToolNumber)
	assert.Equal(t, "ProjectA", records[0].ToolColumn)
	assert.Equal(t, date("2024-06-10"), records[0].CustomerSchedule)
	assert.Equal(t, "alice@example.com", records[0].ResponsibleUser)
	assert.Equal(t, date("2024-06-14"), records[1].CustomerSchedule)
}

func TestLoadRecordsExtraColumnsIgnored(t *testing.T) {
	header := []string{"Status", "Tool_Number", "Tool Column", "Notes", "Customer schedule", "Responsible User"}
	path := writeWorkbook(t, header, [][]interface{}{
		{"active", "T100", "ProjectA", "rush order", "2024-06-10", "alice@example.com"},
	})

	records, err := NewExcelService().LoadRecords(path)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "T100", records[0].ToolNumber)
}

func TestLoadRecordsSkipsEmptyRows(t *testing.T) {
	path := writeWorkbook(t, taskHeader, [][]interface{}{
		{"T100", "ProjectA", "2024-06-10", "alice@example.com"},
		{"", "", "", ""},
		{"T200", "ProjectB", "2024-06-12", "bob@example.com"},
	})

	records, err := NewExcelService().LoadRecords(path)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLoadRecordsMissingColumn(t *testing.T) {
	header := []string{"Tool_Number", "Tool Column", "Responsible User"}
	path := writeWorkbook(t, header, [][]interface{}{
		{"T100", "ProjectA", "alice@example.com"},
	})

	_, err := NewExcelService().LoadRecords(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "Customer schedule")
}

func TestLoadRecordsMissingValue(t *testing.T) {
	path := writeWorkbook(t, taskHeader, [][]interface{}{
		{"T100", "", "2024-06-10", "alice@example.com"},
	})

	_, err := NewExcelService().LoadRecords(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadRecordsBadDate(t *testing.T) {
	path := writeWorkbook(t, taskHeader, [][]interface{}{
		{"T100", "ProjectA", "2024-06-10", "alice@example.com"},
		{"T200", "ProjectB", "next tuesday", "bob@example.com"},
	})

	_, err := NewExcelService().LoadRecords(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "next tuesday")
}

func TestLoadRecordsMissingFile(t *testing.T) {
	_, err := NewExcelService().LoadRecords(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestParseScheduleDateRejectsTwoDigitYears(t *testing.T) {
	// "03-04-05" could be any of three date orderings; it must not
	// silently parse as one of them.
	_, err := parseScheduleDate("03-04-05")
	require.Error(t, err)

	_, err = parseScheduleDate("1/2/06")
	require.Error(t, err)
}

func TestParseScheduleDateSerialNumber(t *testing.T) {
	// 45453 is the Excel serial for 2024-06-10
	parsed, err := parseScheduleDate("45453")
	require.NoError(t, err)
	assert.Equal(t, date("2024-06-10"), parsed)
}

func TestLoadRecordsVendorColumns(t *testing.T) {
	header := append(append([]string{}, taskHeader...), "Vendor", "technology")
	path := writeWorkbook(t, header, [][]interface{}{
		{"T100", "ProjectA", "2024-06-10", "alice@example.com", "vendor_a", 7},
		{"T200", "ProjectB", "2024-06-12", "bob@example.com", "", ""},
	})

	records, err := NewExcelService().LoadRecords(path)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "vendor_a", records[0].Vendor)
	assert.Equal(t, 7, records[0].Technology)
	assert.Empty(t, records[1].Vendor)
	assert.Zero(t, records[1].Technology)
}

func TestLoadRecordsRejectsBadTechnology(t *testing.T) {
	header := append(append([]string{}, taskHeader...), "technology")
	path := writeWorkbook(t, header, [][]interface{}{
		{"T100", "ProjectA", "2024-06-10", "alice@example.com", "seven"},
	})

	_, err := NewExcelService().LoadRecords(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `bad technology value "seven"`)
}
