package services

import (
	"time"

	"qc-monitor/internal/utils"

	"github.com/rickar/cal/v2"
)

// BusinessDayService answers business-day arithmetic for one region. A
// day is a business day iff it is not Saturday/Sunday and not in the
// region's holiday set for its year. Holiday sets are fetched lazily,
// one per distinct year touched, so walks across a year boundary pick
// up each year's calendar transparently.
type BusinessDayService struct {
	holidays  HolidayProvider
	region    string
	calendars map[int]*cal.BusinessCalendar
}

// NewBusinessDayService creates a new business day service
func NewBusinessDayService(holidays HolidayProvider, region string) *BusinessDayService {
	return &BusinessDayService{
		holidays:  holidays,
		region:    region,
		calendars: make(map[int]*cal.BusinessCalendar),
	}
}

// calendarFor builds the year's business calendar once, registering each
// fetched holiday as an exact-date observance.
func (s *BusinessDayService) calendarFor(year int) *cal.BusinessCalendar {
	if c, ok := s.calendars[year]; ok {
		return c
	}

	c := cal.NewBusinessCalendar()
	for dateStr := range s.holidays.GetHolidays(s.region, year) {
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		c.AddHoliday(&cal.Holiday{
			Name:      s.region + " holiday " + dateStr,
			Type:      cal.ObservancePublic,
			Month:     d.Month(),
			Day:       d.Day(),
			StartYear: year,
			EndYear:   year,
			Func:      cal.CalcDayOfMonth,
		})
	}

	s.calendars[year] = c
	return c
}

// IsBusinessDay reports whether a date is a working day in this
// service's region.
func (s *BusinessDayService) IsBusinessDay(d time.Time) bool {
	return s.calendarFor(d.Year()).IsWorkday(utils.DateOnly(d))
}

// AddBusinessDays walks forward (n>0) or backward (n<0) one calendar day
// at a time, counting only business days, until n steps are consumed.
// n=0 returns the start date unchanged whether or not it is itself a
// business day.
func (s *BusinessDayService) AddBusinessDays(start time.Time, n int) time.Time {
	d := utils.DateOnly(start)
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if s.IsBusinessDay(d) {
			n--
		}
	}
	return d
}

// BusinessDaysBetween counts business days from a to b, exclusive of a
// and inclusive of b. When a is after b the reverse count is negated.
func (s *BusinessDayService) BusinessDaysBetween(a, b time.Time) int {
	a, b = utils.DateOnly(a), utils.DateOnly(b)
	if a.After(b) {
		return -s.BusinessDaysBetween(b, a)
	}

	count := 0
	for d := a.AddDate(0, 0, 1); !d.After(b); d = d.AddDate(0, 0, 1) {
		if s.IsBusinessDay(d) {
			count++
		}
	}
	return count
}
