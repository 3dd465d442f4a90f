package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxListSheet = "Entries"
	xlsxGridSheet = "Timetable"
)

var xlsxHeaders = []interface{}{"Day", "Shift", "Start", "End", "Course Code", "Course Name", "Instructor", "Room", "Session"}

// XLSXExporter renders a workbook with a flat entry list and a day by shift grid.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render creates the workbook bytes.
func (e *XLSXExporter) Render(t Timetable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxListSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCE4F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(xlsxListSheet, "A1", &xlsxHeaders); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}
	_ = f.SetCellStyle(xlsxListSheet, "A1", "I1", headerStyle)
	_ = f.SetColWidth(xlsxListSheet, "A", "I", 16)
	for i, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{row.Day, row.Shift, row.StartTime, row.EndTime, row.CourseCode, row.CourseName, row.Instructor, row.Room, row.Session}
		if err := f.SetSheetRow(xlsxListSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(xlsxGridSheet); err != nil {
		return nil, fmt.Errorf("create grid sheet: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, fmt.Errorf("create wrap style: %w", err)
	}
	if t.Title != "" {
		_ = f.SetCellValue(xlsxGridSheet, "A1", t.Title)
		_ = f.MergeCell(xlsxGridSheet, "A1", "C1")
		_ = f.SetCellStyle(xlsxGridSheet, "A1", "A1", headerStyle)
	}
	gridHeader := []interface{}{"Day", "Morning", "Afternoon"}
	if err := f.SetSheetRow(xlsxGridSheet, "A2", &gridHeader); err != nil {
		return nil, fmt.Errorf("write grid header: %w", err)
	}
	_ = f.SetCellStyle(xlsxGridSheet, "A2", "C2", headerStyle)
	_ = f.SetColWidth(xlsxGridSheet, "A", "A", 14)
	_ = f.SetColWidth(xlsxGridSheet, "B", "C", 48)
	for i, day := range t.Days {
		rowNum := i + 3
		values := []interface{}{day, joinLabels(t.Cell(day, ShiftMorning)), joinLabels(t.Cell(day, ShiftAfternoon))}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(xlsxGridSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write grid row %s: %w", day, err)
		}
		end, _ := excelize.CoordinatesToCellName(3, rowNum)
		_ = f.SetCellStyle(xlsxGridSheet, cell, end, wrapStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func joinLabels(rows []Row) string {
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Label())
	}
	return strings.Join(labels, "\n")
}
