package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName       = "Attendance"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	notAvailable    = "N/A"
)

// Columns is the header row of an attendance export.
var Columns = []string{
	"Date",
	"Employee ID",
	"Employee Name",
	"Department",
	"Check In",
	"Check Out",
	"Status",
	"Total Hours",
}

// FileName is the download name for an export of [start, end].
func FileName(start, end string) string {
	return fmt.Sprintf("attendance-%s-to-%s.xlsx", start, end)
}

// WriteAttendance renders records as a single-sheet workbook. Times are shown
// as HH:MM:SS in loc.
func WriteAttendance(records []attendance.Record, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := rowFor(r, loc)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 16); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rowFor(r attendance.Record, loc *time.Location) []interface{} {
	checkOut := notAvailable
	if r.CheckOutTime != nil {
		checkOut = r.CheckOutTime.In(loc).Format(time.TimeOnly)
	}
	return []interface{}{
		r.Date.String(),
		r.EmployeeID,
		deref(r.EmployeeName),
		deref(r.Department),
		r.CheckInTime.In(loc).Format(time.TimeOnly),
		checkOut,
		string(r.Status),
		fmt.Sprintf("%.2f", r.TotalHours),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
