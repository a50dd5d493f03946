package services

import (
	"bytes"
	"fmt"

	"qc-monitor/internal/models"

	"github.com/jung-kurt/gofpdf/v2"
)

// PDFService renders a failure report as the PDF attached to
// notification emails.
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

// GenerateFailureReportPDF generates a PDF from a failure report
func (s *PDFService) GenerateFailureReportPDF(report *models.FailureReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("invalid report data")
	}

	// A4 portrait
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125) // Gray
		pdf.SetX(15)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	// Title
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 102, 204) // Blue
	pdf.CellFormat(0, 20, "Outsourcing QC Failure Report", "", 0, "C", false, 0, "")

	pdf.Ln(15)
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 8, fmt.Sprintf("Sweep date: %s", report.Today), "", 0, "C", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(0, 8, fmt.Sprintf("%d records checked, %d failures", report.TotalRecords, report.TotalFailures()), "", 0, "C", false, 0, "")
	pdf.Ln(12)

	for _, ruleName := range report.RuleOrder {
		s.addRuleSection(pdf, ruleName, report.Failures[ruleName])
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addRuleSection adds one rule's header and failure table
func (s *PDFService) addRuleSection(pdf *gofpdf.Fpdf, ruleName string, failures []models.Failure) {
	if pdf.GetY() > 240 {
		pdf.AddPage()
	}

	// Rule header with underline
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41) // Dark gray
	pdf.CellFormat(0, 10, ruleName, "", 0, "L", false, 0, "")
	pdf.Ln(10)
	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(0, 102, 204)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	if len(failures) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(0, 8, "All checks passed.", "", 0, "L", false, 0, "")
		pdf.Ln(10)
		return
	}

	// Column layout inside the 180mm printable width
	col1Width := 35.0 // tool number
	col2Width := 35.0 // project
	col3Width := 45.0 // responsible user
	col4Width := 65.0 // reason
	rowHeight := 7.0

	// Table header
	headerY := pdf.GetY()
	pdf.SetFillColor(0, 102, 204)   // Blue background
	pdf.SetTextColor(255, 255, 255) // White text
	pdf.SetFont("Arial", "B", 9)
	pdf.SetXY(15, headerY)
	pdf.CellFormat(col1Width, rowHeight, "Tool Number", "", 0, "L", true, 0, "")
	pdf.CellFormat(col2Width, rowHeight, "Project", "", 0, "L", true, 0, "")
	pdf.CellFormat(col3Width, rowHeight, "Responsible", "", 0, "L", true, 0, "")
	pdf.CellFormat(col4Width, rowHeight, "Reason", "", 0, "L", true, 0, "")
	pdf.Ln(rowHeight)

	// Table rows, alternating fill
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(33, 37, 41)
	for i, failure := range failures {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}
		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(248, 249, 250) // Light gray
		}
		pdf.SetX(15)
		pdf.CellFormat(col1Width, rowHeight, failure.ToolNumber, "", 0, "L", true, 0, "")
		pdf.CellFormat(col2Width, rowHeight, failure.Project, "", 0, "L", true, 0, "")
		pdf.CellFormat(col3Width, rowHeight, failure.ResponsibleUser, "", 0, "L", true, 0, "")
		pdf.CellFormat(col4Width, rowHeight, truncateForCell(failure.FailReason, 60), "", 0, "L", true, 0, "")
		pdf.Ln(rowHeight)
	}
	pdf.Ln(8)
}

func truncateForCell(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
