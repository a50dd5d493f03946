package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"log"

	"qc-monitor/internal/config"
	"qc-monitor/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService delivers failure notifications via SendGrid. Each
// responsible user receives one email covering their own failures,
// grouped by rule.
type EmailService struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig) *EmailService {
	return &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    sendgrid.NewSendClient(cfg.APIKey),
	}
}

// SendFailureNotifications sends one email per responsible user with
// that user's failures. Delivery errors are collected, not fatal: the
// report itself is already complete.
func (s *EmailService) SendFailureNotifications(report *models.FailureReport, summary string, pdfData []byte) error {
	var firstErr error
	for _, user := range report.ResponsibleUsers() {
		failures := report.FailuresForUser(user)
		if err := s.sendFailureEmail(user, report, failures, summary, pdfData); err != nil {
			log.Printf("ERROR: Failed to send QC notification to %s: %v", user, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Printf("Sent QC notification to %s (%d failures)", user, len(failures))
	}
	return firstErr
}

// sendFailureEmail sends a single notification with HTML and plain text
// bodies and an optional PDF attachment.
func (s *EmailService) sendFailureEmail(toEmail string, report *models.FailureReport, failures []models.Failure, summary string, pdfData []byte) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	subject := fmt.Sprintf("Outsourcing QC Alert - %d failed checks (%s)", len(failures), report.Today)

	htmlContent := s.buildFailureEmailHTML(report, failures, summary)
	plainTextContent := s.buildFailureEmailText(report, failures, summary)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	if len(pdfData) > 0 {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(pdfData))
		attachment.SetType("application/pdf")
		attachment.SetFilename(fmt.Sprintf("qc-failures-%s.pdf", report.Today))
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// buildFailureEmailHTML builds the HTML body for a failure notification
func (s *EmailService) buildFailureEmailHTML(report *models.FailureReport, failures []models.Failure, summary string) string {
	var b bytes.Buffer

	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; color: #212529; }
        h1 { color: #0066cc; }
        h2 { color: #212529; border-bottom: 2px solid #0066cc; padding-bottom: 4px; }
        table { border-collapse: collapse; width: 100%; margin-bottom: 16px; }
        th { background-color: #0066cc; color: #ffffff; text-align: left; padding: 6px; }
        td { padding: 6px; border-bottom: 1px solid #dee2e6; }
        .summary { background-color: #f8f9fa; border-left: 4px solid #0066cc; padding: 10px; }
    </style>
</head>
<body>
`)
	fmt.Fprintf(&b, "<h1>Outsourcing QC Alert</h1>\n")
	fmt.Fprintf(&b, "<p>Sweep date: %s. The following checks failed for items assigned to you.</p>\n", html.EscapeString(report.Today))

	if summary != "" {
		fmt.Fprintf(&b, "<div class=\"summary\">%s</div>\n", html.EscapeString(summary))
	}

	for _, ruleName := range report.RuleOrder {
		var ruleFailures []models.Failure
		for _, f := range failures {
			if f.RuleName == ruleName {
				ruleFailures = append(ruleFailures, f)
			}
		}
		if len(ruleFailures) == 0 {
			continue
		}

		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(ruleName))
		b.WriteString("<table>\n<tr><th>Tool Number</th><th>Project</th><th>Reason</th></tr>\n")
		for _, f := range ruleFailures {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
				html.EscapeString(f.ToolNumber), html.EscapeString(f.Project), html.EscapeString(f.FailReason))
		}
		b.WriteString("</table>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// buildFailureEmailText builds the plain text body for a failure notification
func (s *EmailService) buildFailureEmailText(report *models.FailureReport, failures []models.Failure, summary string) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, "Outsourcing QC Alert - %s\n\n", report.Today)
	if summary != "" {
		fmt.Fprintf(&b, "%s\n\n", summary)
	}

	for _, ruleName := range report.RuleOrder {
		wroteHeader := false
		for _, f := range failures {
			if f.RuleName != ruleName {
				continue
			}
			if !wroteHeader {
				fmt.Fprintf(&b, "%s:\n", ruleName)
				wroteHeader = true
			}
			fmt.Fprintf(&b, "  - %s (%s): %s\n", f.ToolNumber, f.Project, f.FailReason)
		}
		if wroteHeader {
			b.WriteString("\n")
		}
	}

	return b.String()
}
