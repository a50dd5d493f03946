package models

import "time"

// TaskRecord is one validated row from the outsourced tooling spreadsheet.
// Records arrive from the extractor with the first four fields populated;
// ProjectStartDate is filled in by the transform stage.
type TaskRecord struct {
	ToolNumber       string    `json:"toolNumber"`
	ToolColumn       string    `json:"toolColumn"`
	CustomerSchedule time.Time `json:"customerSchedule"`
	ResponsibleUser  string    `json:"responsibleUser"`

	// Vendor and Technology come from optional spreadsheet columns and
	// drive vendor archive validation; empty/zero when the columns are
	// absent.
	Vendor     string `json:"vendor,omitempty"`
	Technology int    `json:"technology,omitempty"`

	// ProjectStartDate is the customer schedule minus the configured lead
	// time in business days. Zero until the transform stage has run.
	ProjectStartDate time.Time `json:"projectStartDate,omitempty"`
}
