package models

// RunRequest is the body of a QC run trigger over the API.
type RunRequest struct {
	// InputPath is the spreadsheet to sweep, resolved on the server's
	// filesystem.
	InputPath string `json:"inputPath" binding:"required"`

	// Today overrides the evaluation date (YYYY-MM-DD). Empty means the
	// current date.
	Today string `json:"today,omitempty"`

	// Notify controls whether failure emails are sent after the sweep.
	Notify bool `json:"notify,omitempty"`
}

// TaskResponse is returned when a run is accepted for async processing.
type TaskResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}
