package services

import (
	"context"
	"log"
	"time"

	"qc-monitor/internal/models"
)

// ReportService orchestrates one QC sweep: extract records, filter to
// the monitoring window, evaluate the checkpoint rules and hand the
// grouped failure report to the notifier. A sweep either completes with
// a fully-evaluated report or fails before the core runs (bad input,
// bad configuration) — there is no partial outcome.
type ReportService struct {
	excelService      *ExcelService
	transformService  *TransformService
	checkpointService *CheckpointService
	emailService      *EmailService   // nil when SendGrid is not configured
	pdfService        *PDFService     // nil when SendGrid is not configured
	summaryService    *SummaryService // nil when OpenAI is not configured
}

// NewReportService creates a new report service
func NewReportService(
	excelService *ExcelService,
	transformService *TransformService,
	checkpointService *CheckpointService,
	emailService *EmailService,
	pdfService *PDFService,
	summaryService *SummaryService,
) *ReportService {
	return &ReportService{
		excelService:      excelService,
		transformService:  transformService,
		checkpointService: checkpointService,
		emailService:      emailService,
		pdfService:        pdfService,
		summaryService:    summaryService,
	}
}

// GenerateReport runs the sweep over a spreadsheet and returns the
// failure report without notifying anyone.
func (s *ReportService) GenerateReport(inputPath string, today time.Time) (*models.FailureReport, error) {
	records, err := s.excelService.LoadRecords(inputPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d records from %s", len(records), inputPath)

	monitored := s.transformService.FilterAndEnrich(records, today)
	log.Printf("%d records fall inside the monitoring window", len(monitored))

	return s.checkpointService.Evaluate(monitored, today), nil
}

// GenerateAndNotify runs the sweep and, when there are failures and a
// notifier is configured, emails each responsible user. Delivery
// problems are logged but never invalidate the report.
func (s *ReportService) GenerateAndNotify(ctx context.Context, inputPath string, today time.Time) (*models.FailureReport, error) {
	report, err := s.GenerateReport(inputPath, today)
	if err != nil {
		return nil, err
	}

	if report.TotalFailures() == 0 {
		log.Printf("All checks passed, no notifications to send")
		return report, nil
	}

	summary := PlainSummary(report)
	if s.summaryService != nil {
		if aiSummary, err := s.summaryService.Summarize(ctx, report); err != nil {
			log.Printf("WARNING: AI summary failed, using plain summary: %v", err)
		} else {
			summary = aiSummary
		}
	}

	if s.emailService == nil {
		log.Printf("SendGrid not configured, skipping notifications (%d failures)", report.TotalFailures())
		return report, nil
	}

	var pdfData []byte
	if s.pdfService != nil {
		pdfData, err = s.pdfService.GenerateFailureReportPDF(report)
		if err != nil {
			log.Printf("WARNING: Failed to generate PDF attachment, continuing without it: %v", err)
			pdfData = nil
		}
	}

	if err := s.emailService.SendFailureNotifications(report, summary, pdfData); err != nil {
		log.Printf("ERROR: Some QC notifications failed to send: %v", err)
	}

	return report, nil
}
