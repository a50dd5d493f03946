package api

import (
	"context"
	"net/http"
	"time"

	"qc-monitor/internal/models"
	"qc-monitor/internal/services"
	"qc-monitor/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	reportService *services.ReportService
	taskService   *services.TaskService
}

// NewHandlers creates a new handlers instance
func NewHandlers(reportService *services.ReportService, taskService *services.TaskService) *Handlers {
	return &Handlers{
		reportService: reportService,
		taskService:   taskService,
	}
}

// RunHandler handles POST /api/runs
// Starts an async QC sweep and returns a task ID to poll.
func (h *Handlers) RunHandler(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	today, err := resolveToday(req.Today)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	// Capture the response fields before the sweep goroutine starts
	// mutating the task.
	taskID := task.ID
	status := string(task.Status)

	go func() {
		_ = h.taskService.UpdateTaskStatus(taskID, models.TaskStatusProcessing)

		report, err := h.runSweep(req, today)
		if err != nil {
			_ = h.taskService.SetTaskError(taskID, err)
			return
		}
		_ = h.taskService.SetTaskReport(taskID, report)
	}()

	c.JSON(http.StatusAccepted, models.TaskResponse{
		TaskID: taskID,
		Status: status,
	})
}

// RunSyncHandler handles POST /api/runs/sync
// Runs the QC sweep synchronously and returns the full report.
func (h *Handlers) RunSyncHandler(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	today, err := resolveToday(req.Today)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.runSweep(req, today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTaskStatusHandler handles GET /api/runs/status/:taskId
func (h *Handlers) GetTaskStatusHandler(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handlers) runSweep(req models.RunRequest, today time.Time) (*models.FailureReport, error) {
	if req.Notify {
		return h.reportService.GenerateAndNotify(context.Background(), req.InputPath, today)
	}
	return h.reportService.GenerateReport(req.InputPath, today)
}

func resolveToday(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	return utils.ParseDate(raw)
}
