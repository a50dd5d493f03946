package models

// Failure is one triggered-but-unsatisfied rule check for a record.
// Failures are never mutated once created.
type Failure struct {
	RuleName        string `json:"ruleName"`
	ToolNumber      string `json:"toolNumber"`
	Project         string `json:"project"` // the record's tool column
	FailReason      string `json:"failReason"`
	ResponsibleUser string `json:"responsibleUser"`
}

// FailureReport is the complete output of one QC sweep: every failure,
// grouped by rule name, with record order preserved inside each group.
// This is the sole artifact handed to the notifier.
type FailureReport struct {
	GeneratedAt  string `json:"generatedAt"` // ISO 8601
	Today        string `json:"today"`       // YYYY-MM-DD, the date the sweep evaluated against
	TotalRecords int    `json:"totalRecords"`

	// RuleOrder preserves the declared rule order; Failures maps each
	// rule name to its failures in original record order.
	RuleOrder []string             `json:"ruleOrder"`
	Failures  map[string][]Failure `json:"failures"`
}

// TotalFailures counts failures across all rule groups.
func (r *FailureReport) TotalFailures() int {
	total := 0
	for _, group := range r.Failures {
		total += len(group)
	}
	return total
}

// FailuresForUser returns the failures assigned to one responsible user,
// walking groups in declared rule order.
func (r *FailureReport) FailuresForUser(user string) []Failure {
	var out []Failure
	for _, ruleName := range r.RuleOrder {
		for _, f := range r.Failures[ruleName] {
			if f.ResponsibleUser == user {
				out = append(out, f)
			}
		}
	}
	return out
}

// ResponsibleUsers returns every user with at least one failure, in
// order of first appearance (rule order, then record order).
func (r *FailureReport) ResponsibleUsers() []string {
	seen := make(map[string]bool)
	var users []string
	for _, ruleName := range r.RuleOrder {
		for _, f := range r.Failures[ruleName] {
			if !seen[f.ResponsibleUser] {
				seen[f.ResponsibleUser] = true
				users = append(users, f.ResponsibleUser)
			}
		}
	}
	return users
}
