// Package services provides business logic and orchestration services.
//
// Recurrence uses one Schedule strategy per frequency. Each strategy maps an
// occurrence index to a date, always counting from the start date so monthly
// and yearly steps clamp to short months without drifting.
package services

import (
	"errors"
	"fmt"
	"time"

	"inari/internal/core"
)

// Schedule is the strategy interface for placing recurring occurrences.
type Schedule interface {
	// Step returns the n-th occurrence after start; Step(start, 0) is start.
	Step(start time.Time, n int) time.Time
	// Skip returns a count of occurrences that certainly fall before t, so an
	// expansion can start there instead of at start.
	Skip(start, t time.Time) int
}

// DailySchedule repeats every day.
type DailySchedule struct{}

func (DailySchedule) Step(start time.Time, n int) time.Time { return start.AddDate(0, 0, n) }
func (DailySchedule) Skip(start, t time.Time) int           { return skipDays(start, t, 1) }

// WeeklySchedule repeats every Weeks weeks.
type WeeklySchedule struct{ Weeks int }

func (s WeeklySchedule) Step(start time.Time, n int) time.Time {
	return start.AddDate(0, 0, 7*s.Weeks*n)
}

func (s WeeklySchedule) Skip(start, t time.Time) int { return skipDays(start, t, 7*s.Weeks) }

// MonthlySchedule repeats on the start's day of month, or the month's last day
// when the month is shorter.
type MonthlySchedule struct{ Months int }

func (s MonthlySchedule) Step(start time.Time, n int) time.Time {
	return addMonthsClamped(start, s.Months*n)
}

func (s MonthlySchedule) Skip(start, t time.Time) int {
	sy, sm, _ := start.Date()
	ty, tm, _ := t.In(start.Location()).Date()
	months := (ty-sy)*12 + int(tm-sm)
	return max(months/s.Months-1, 0)
}

// IntervalSchedule repeats every Days days.
type IntervalSchedule struct{ Days int }

func (s IntervalSchedule) Step(start time.Time, n int) time.Time {
	return start.AddDate(0, 0, s.Days*n)
}

func (s IntervalSchedule) Skip(start, t time.Time) int { return skipDays(start, t, s.Days) }

// skipDays counts whole every-days steps between start and t, less one so a
// DST hour cannot push the guess past t.
func skipDays(start, t time.Time, every int) int {
	days := int(t.Sub(start) / (24 * time.Hour))
	return max(days/every-1, 0)
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

var schedules = map[core.RecurringFrequency]Schedule{
	core.FrequencyDaily:    DailySchedule{},
	core.FrequencyWeekly:   WeeklySchedule{Weeks: 1},
	core.FrequencyBiWeekly: WeeklySchedule{Weeks: 2},
	core.FrequencyMonthly:  MonthlySchedule{Months: 1},
	core.FrequencyYearly:   MonthlySchedule{Months: 12},
}

// ScheduleFor returns the schedule of a recurring payload. Custom frequencies
// repeat every customInterval days.
func ScheduleFor(p core.RecurringProperties) (Schedule, error) {
	if p.Frequency() == core.FrequencyCustom {
		days, ok := p.CustomInterval()
		if !ok || days <= 0 {
			return nil, fmt.Errorf("custom frequency without a positive interval")
		}
		return IntervalSchedule{Days: days}, nil
	}
	s, ok := schedules[p.Frequency()]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", p.Frequency())
	}
	return s, nil
}

// maxOccurrences bounds the dates returned by a single expansion.
const maxOccurrences = 10000

// ErrTooManyOccurrences is returned when a window holds more than
// maxOccurrences dates.
var ErrTooManyOccurrences = errors.New("too many occurrences in window")

// Occurrences lists the dates in [from, to) on which a transaction starting at
// start recurs. Occurrences after the end date, if any, are omitted. The
// expansion starts near from, so old recurrences cost the same as new ones.
func Occurrences(p core.RecurringProperties, start, from, to time.Time) ([]time.Time, error) {
	s, err := ScheduleFor(p)
	if err != nil {
		return nil, err
	}
	end, bounded := p.EndDate()

	var out []time.Time
	first := s.Skip(start, from)
	for n := first; ; n++ {
		t := s.Step(start, n)
		if !t.Before(to) || (bounded && t.After(end)) {
			return out, nil
		}
		if t.Before(from) {
			continue
		}
		if len(out) == maxOccurrences {
			return nil, fmt.Errorf("%w: %s to %s", ErrTooManyOccurrences, from.Format(time.DateOnly), to.Format(time.DateOnly))
		}
		out = append(out, t)
	}
}

// CountIn is the number of occurrences inside a budget period.
func CountIn(p core.RecurringProperties, start time.Time, period core.BudgetPeriod) (int, error) {
	loc := start.Location()
	from := period.FirstDay(loc)
	dates, err := Occurrences(p, start, from, period.Next().FirstDay(loc))
	return len(dates), err
}
