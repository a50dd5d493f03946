package services

import (
	"bytes"
	"context"
	"fmt"

	"qc-monitor/internal/config"
	"qc-monitor/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

// SummaryService produces a short triage paragraph for notification
// emails. It is optional: main only constructs it when an OpenAI key is
// configured, and callers fall back to PlainSummary on any error.
type SummaryService struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewSummaryService creates a new summary service
func NewSummaryService(cfg config.OpenAIConfig) *SummaryService {
	return &SummaryService{
		client:    openai.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Summarize asks the model for a short prioritized summary of the
// failure report.
func (s *SummaryService) Summarize(ctx context.Context, report *models.FailureReport) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You summarize manufacturing QC failure reports for the responsible engineers. Reply with one short paragraph, plain text, naming the most urgent items first.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildSummaryPrompt(report),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildSummaryPrompt(report *models.FailureReport) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "QC sweep on %s checked %d tools and found %d failures.\n",
		report.Today, report.TotalRecords, report.TotalFailures())
	for _, ruleName := range report.RuleOrder {
		for _, f := range report.Failures[ruleName] {
			fmt.Fprintf(&b, "- %s: tool %s, project %s, owner %s\n",
				ruleName, f.ToolNumber, f.Project, f.ResponsibleUser)
		}
	}
	return b.String()
}

// PlainSummary is the deterministic fallback used when no model is
// configured or the completion fails.
func PlainSummary(report *models.FailureReport) string {
	if report.TotalFailures() == 0 {
		return fmt.Sprintf("QC sweep on %s: all %d monitored tools passed.", report.Today, report.TotalRecords)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "QC sweep on %s: %d failed checks across %d monitored tools.",
		report.Today, report.TotalFailures(), report.TotalRecords)
	for _, ruleName := range report.RuleOrder {
		if n := len(report.Failures[ruleName]); n > 0 {
			fmt.Fprintf(&b, " %s: %d.", ruleName, n)
		}
	}
	return b.String()
}
