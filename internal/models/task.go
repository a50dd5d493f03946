package models

import "time"

// TaskStatus represents the status of a QC run task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// RunTask represents an async QC run triggered over the API
type RunTask struct {
	ID        string         `json:"id"`
	Status    TaskStatus     `json:"status"`
	Request   RunRequest     `json:"request"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Error     string         `json:"error,omitempty"`
	Report    *FailureReport `json:"report,omitempty"`
}
