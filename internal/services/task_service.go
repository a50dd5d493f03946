package services

import (
	"fmt"
	"sync"
	"time"

	"qc-monitor/internal/models"
	"qc-monitor/internal/utils"
)

// TaskService manages async QC run tasks triggered over the API
type TaskService struct {
	tasks map[string]*models.RunTask
	mutex sync.RWMutex
}

// NewTaskService creates a new task service
func NewTaskService() *TaskService {
	return &TaskService{
		tasks: make(map[string]*models.RunTask),
	}
}

// CreateTask creates a new run task and returns it
func (s *TaskService) CreateTask(request models.RunRequest) (*models.RunTask, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	taskID := utils.GenerateUUID()
	now := time.Now()

	task := &models.RunTask{
		ID:        taskID,
		Status:    models.TaskStatusPending,
		Request:   request,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.tasks[taskID] = task
	snapshot := *task
	return &snapshot, nil
}

// GetTask retrieves a snapshot of a task by ID. A copy is returned so
// callers never read fields the background sweep is still writing.
func (s *TaskService) GetTask(taskID string) (*models.RunTask, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}
	snapshot := *task
	return &snapshot, nil
}

// UpdateTaskStatus updates the status of a task
func (s *TaskService) UpdateTaskStatus(taskID string, status models.TaskStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return fmt.Errorf("task not found: %s", taskID)
	}

	task.Status = status
	task.UpdatedAt = time.Now()
	return nil
}

// SetTaskError marks a task as failed with an error message
func (s *TaskService) SetTaskError(taskID string, err error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return fmt.Errorf("task not found: %s", taskID)
	}

	task.Status = models.TaskStatusFailed
	task.Error = err.Error()
	task.UpdatedAt = time.Now()
	return nil
}

// SetTaskReport stores the completed report in a task
func (s *TaskService) SetTaskReport(taskID string, report *models.FailureReport) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return fmt.Errorf("task not found: %s", taskID)
	}

	task.Status = models.TaskStatusCompleted
	task.Report = report
	task.UpdatedAt = time.Now()
	return nil
}

// DeleteTask removes a task from memory
func (s *TaskService) DeleteTask(taskID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.tasks, taskID)
}
