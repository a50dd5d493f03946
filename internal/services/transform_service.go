package services

import (
	"qc-monitor/internal/models"
	"qc-monitor/internal/utils"
	"time"
)

// TransformService filters incoming records to the monitoring window and
// derives each kept record's project start date.
type TransformService struct {
	businessDays       *BusinessDayService
	windowBusinessDays int
	leadBusinessDays   int
}

// NewTransformService creates a new transform service
func NewTransformService(businessDays *BusinessDayService, windowBusinessDays, leadBusinessDays int) *TransformService {
	return &TransformService{
		businessDays:       businessDays,
		windowBusinessDays: windowBusinessDays,
		leadBusinessDays:   leadBusinessDays,
	}
}

// FilterAndEnrich keeps a record iff today <= customer schedule <=
// today + windowBusinessDays business days (inclusive at both ends),
// and sets its project start date to the schedule minus
// leadBusinessDays business days. Input row order is preserved among
// kept records. Input dates are assumed valid; the extractor rejects
// bad rows before this stage.
func (s *TransformService) FilterAndEnrich(records []models.TaskRecord, today time.Time) []models.TaskRecord {
	today = utils.DateOnly(today)
	windowEnd := s.businessDays.AddBusinessDays(today, s.windowBusinessDays)

	kept := make([]models.TaskRecord, 0, len(records))
	for _, record := range records {
		schedule := utils.DateOnly(record.CustomerSchedule)
		if schedule.Before(today) || schedule.After(windowEnd) {
			continue
		}
		record.CustomerSchedule = schedule
		record.ProjectStartDate = s.businessDays.AddBusinessDays(schedule, -s.leadBusinessDays)
		kept = append(kept, record)
	}
	return kept
}
