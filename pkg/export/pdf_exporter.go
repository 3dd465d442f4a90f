package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfDayWidth   = 37.0
	pdfShiftWidth = 120.0
	pdfLineHeight = 5.0
)

// PDFExporter renders a timetable as a day by shift grid on a landscape page.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF document.
func (e *PDFExporter) Render(t Timetable) ([]byte, error) {
	if len(t.Days) == 0 {
		return nil, fmt.Errorf("pdf requires at least one day")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if t.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, strings.ToUpper(t.Title), "", 1, "C", false, 0, "")
	}
	if t.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, t.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(220, 228, 240)
	pdf.CellFormat(pdfDayWidth, 8, "Day", "1", 0, "C", true, 0, "")
	pdf.CellFormat(pdfShiftWidth, 8, "Morning", "1", 0, "C", true, 0, "")
	pdf.CellFormat(pdfShiftWidth, 8, "Afternoon", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, day := range t.Days {
		morning := cellLines(pdf, t.Cell(day, ShiftMorning))
		afternoon := cellLines(pdf, t.Cell(day, ShiftAfternoon))
		lines := len(morning)
		if len(afternoon) > lines {
			lines = len(afternoon)
		}
		if lines == 0 {
			lines = 1
		}
		height := float64(lines)*pdfLineHeight + 2

		x, y := pdf.GetXY()
		pdf.Rect(x, y, pdfDayWidth, height, "D")
		pdf.Rect(x+pdfDayWidth, y, pdfShiftWidth, height, "D")
		pdf.Rect(x+pdfDayWidth+pdfShiftWidth, y, pdfShiftWidth, height, "D")

		pdf.SetXY(x, y+1)
		pdf.CellFormat(pdfDayWidth, pdfLineHeight, day, "", 0, "C", false, 0, "")
		writeLines(pdf, x+pdfDayWidth, y+1, morning)
		writeLines(pdf, x+pdfDayWidth+pdfShiftWidth, y+1, afternoon)

		pdf.SetXY(x, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func cellLines(pdf *gofpdf.Fpdf, rows []Row) []string {
	var lines []string
	for _, row := range rows {
		for _, chunk := range pdf.SplitLines([]byte(row.Label()), pdfShiftWidth-2) {
			lines = append(lines, string(chunk))
		}
	}
	return lines
}

func writeLines(pdf *gofpdf.Fpdf, x, y float64, lines []string) {
	for i, line := range lines {
		pdf.SetXY(x+1, y+float64(i)*pdfLineHeight)
		pdf.CellFormat(pdfShiftWidth-2, pdfLineHeight, line, "", 0, "L", false, 0, "")
	}
}
