package services

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"qc-monitor/internal/models"
	"qc-monitor/internal/utils"
)

// CheckpointService evaluates an ordered list of rules against each
// record. Rules are data: the engine knows nothing about any specific
// rule, so inserting a third rule is a config change, not a code change.
type CheckpointService struct {
	rules      []models.Rule
	targetRoot string
	vendors    *VendorService // nil when no vendors file is configured
}

// DefaultRules returns the two built-in checkpoints: Package Readiness
// (input package present 3 calendar days into the project) and Final
// Report (report PDF present once the schedule is a week away or less).
func DefaultRules() []models.Rule {
	return []models.Rule{
		{
			Name:         "Package Readiness",
			Trigger:      models.Trigger{Type: models.TriggerDaysAfterProjectStart, Days: 3},
			PathTemplate: "{target_root}/{tool_column}/*{tool_number}*",
		},
		{
			Name:         "Final Report",
			Trigger:      models.Trigger{Type: models.TriggerDaysBeforeSchedule, Days: 7},
			PathTemplate: "{target_root}/{tool_column}/Final_Report_*{tool_number}*.pdf",
		},
	}
}

// NewCheckpointService validates every rule up front and fails fast on
// malformed configuration, before any record is processed. The vendor
// service may be nil; rules using the vendor-archive check then reject
// at startup.
func NewCheckpointService(rules []models.Rule, targetRoot string, vendors *VendorService) (*CheckpointService, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("no checkpoint rules configured")
	}
	if targetRoot == "" {
		return nil, fmt.Errorf("target root is required")
	}

	s := &CheckpointService{rules: rules, targetRoot: targetRoot, vendors: vendors}
	for _, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("checkpoint rule with empty name")
		}
		if err := s.validateRule(rule); err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	}
	return s, nil
}

// validateRule checks the trigger and the rule's check configuration:
// file-existence templates are expanded with probe values and checked
// for unknown placeholders and bad glob syntax.
func (s *CheckpointService) validateRule(rule models.Rule) error {
	switch rule.Trigger.Type {
	case models.TriggerDaysAfterProjectStart, models.TriggerDaysBeforeSchedule:
	default:
		return fmt.Errorf("unknown trigger type %q", rule.Trigger.Type)
	}

	switch rule.EffectiveCheck() {
	case models.CheckVendorArchive:
		if s.vendors == nil {
			return fmt.Errorf("vendor-archive check requires a vendors config")
		}
		return nil
	case models.CheckFileExists:
	default:
		return fmt.Errorf("unknown check type %q", rule.Check)
	}

	if rule.PathTemplate == "" {
		return fmt.Errorf("file-existence check requires a path template")
	}
	probe := models.TaskRecord{ToolNumber: "T0000", ToolColumn: "Probe"}
	pattern := s.expandTemplate(rule.PathTemplate, probe)
	if strings.Contains(pattern, "{") || strings.Contains(pattern, "}") {
		return fmt.Errorf("unknown placeholder in path template %q", rule.PathTemplate)
	}
	if _, err := filepath.Match(filepath.Base(pattern), "probe"); err != nil {
		return fmt.Errorf("malformed glob in path template %q: %w", rule.PathTemplate, err)
	}
	return nil
}

func (s *CheckpointService) expandTemplate(template string, record models.TaskRecord) string {
	replacer := strings.NewReplacer(
		"{target_root}", s.targetRoot,
		"{tool_column}", record.ToolColumn,
		"{tool_number}", record.ToolNumber,
	)
	return filepath.FromSlash(replacer.Replace(template))
}

// Rules returns the configured rules in declared order.
func (s *CheckpointService) Rules() []models.Rule {
	out := make([]models.Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Evaluate runs every rule against every record and returns the grouped
// failure report. A rule whose trigger has not fired for a record is
// skipped for that record; a fired rule whose glob finds no match (or
// whose filesystem access fails) emits a Failure. The sweep always
// completes: no per-record error aborts the run.
func (s *CheckpointService) Evaluate(records []models.TaskRecord, today time.Time) *models.FailureReport {
	today = utils.DateOnly(today)

	report := &models.FailureReport{
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Today:        utils.FormatDate(today),
		TotalRecords: len(records),
		RuleOrder:    make([]string, 0, len(s.rules)),
		Failures:     make(map[string][]models.Failure, len(s.rules)),
	}

	for _, rule := range s.rules {
		report.RuleOrder = append(report.RuleOrder, rule.Name)
		report.Failures[rule.Name] = []models.Failure{}
	}

	for _, rule := range s.rules {
		for _, record := range records {
			if !triggerFires(rule.Trigger, record, today) {
				continue
			}

			for _, reason := range s.runCheck(rule, record) {
				report.Failures[rule.Name] = append(report.Failures[rule.Name], models.Failure{
					RuleName:        rule.Name,
					ToolNumber:      record.ToolNumber,
					Project:         record.ToolColumn,
					FailReason:      reason,
					ResponsibleUser: record.ResponsibleUser,
				})
			}
		}
	}

	return report
}

// runCheck executes a fired rule's check and returns the failure
// reasons, empty on pass. Vendor-archive checks can report several
// reasons per record; file-existence checks at most one.
func (s *CheckpointService) runCheck(rule models.Rule, record models.TaskRecord) []string {
	if rule.EffectiveCheck() == models.CheckVendorArchive {
		return s.vendors.Validate(record)
	}

	pattern := s.expandTemplate(rule.PathTemplate, record)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		// treated as "no match", never aborts the sweep
		log.Printf("WARNING: Glob failed for rule %q, tool %s: %v", rule.Name, record.ToolNumber, err)
		matches = nil
	}
	if len(matches) > 0 {
		return nil
	}
	return []string{fmt.Sprintf("no file matching %q", pattern)}
}

// triggerFires evaluates a rule's date predicate against today and the
// record's dates. Both trigger types compare calendar days, distinct
// from the business-day window used by the transform stage.
func triggerFires(trigger models.Trigger, record models.TaskRecord, today time.Time) bool {
	switch trigger.Type {
	case models.TriggerDaysAfterProjectStart:
		return utils.CalendarDaysBetween(record.ProjectStartDate, today) >= trigger.Days
	case models.TriggerDaysBeforeSchedule:
		return utils.CalendarDaysBetween(today, record.CustomerSchedule) <= trigger.Days
	}
	return false
}
