package models

// TriggerType identifies which date comparison decides whether a rule's
// existence check applies to a record.
type TriggerType string

const (
	// TriggerDaysAfterProjectStart fires once today is at least Days
	// calendar days past the record's project start date.
	TriggerDaysAfterProjectStart TriggerType = "days_after_project_start"

	// TriggerDaysBeforeSchedule fires once the customer schedule is Days
	// calendar days away or closer.
	TriggerDaysBeforeSchedule TriggerType = "days_before_schedule"
)

// Trigger is the date predicate half of a rule.
type Trigger struct {
	Type TriggerType `json:"type"`
	Days int         `json:"days"`
}

// CheckType selects what a fired rule verifies.
type CheckType string

const (
	// CheckFileExists globs the rule's path template and fails when no
	// file matches. The zero value resolves to this type.
	CheckFileExists CheckType = "file_exists"

	// CheckVendorArchive runs the record's vendor delivery validation:
	// archive discovery, consistency comparison and required-pattern
	// checks inside the target archive.
	CheckVendorArchive CheckType = "vendor_archive"
)

// Rule pairs a trigger with a check. Rules are configuration, not code:
// the checkpoint engine evaluates whatever ordered list it is given.
// File-existence rules carry a glob template that may reference
// {target_root}, {tool_column} and {tool_number}; vendor-archive rules
// take their configuration from the vendors file instead.
type Rule struct {
	Name         string    `json:"name"`
	Trigger      Trigger   `json:"trigger"`
	Check        CheckType `json:"checkType,omitempty"`
	PathTemplate string    `json:"pathTemplate,omitempty"`
}

// EffectiveCheck resolves the zero value to the default check type.
func (r Rule) EffectiveCheck() CheckType {
	if r.Check == "" {
		return CheckFileExists
	}
	return r.Check
}

// RulesConfig is the shape of the rules JSON file.
type RulesConfig struct {
	Rules []Rule `json:"rules"`
}
