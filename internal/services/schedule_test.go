package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inari/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func recurring(t *testing.T, f core.RecurringFrequency, end *time.Time, interval *int) core.RecurringProperties {
	t.Helper()
	p, err := core.NewRecurringProperties(f, end, interval)
	require.NoError(t, err)
	return p
}

func TestScheduleStep(t *testing.T) {
	jan31 := date(2026, time.January, 31)
	feb29 := date(2024, time.February, 29)

	tests := []struct {
		name     string
		schedule Schedule
		start    time.Time
		n        int
		want     time.Time
	}{
		{"daily first", DailySchedule{}, jan31, 0, jan31},
		{"daily crosses month", DailySchedule{}, jan31, 1, date(2026, time.February, 1)},
		{"weekly", WeeklySchedule{Weeks: 1}, jan31, 2, date(2026, time.February, 14)},
		{"bi-weekly", WeeklySchedule{Weeks: 2}, jan31, 1, date(2026, time.February, 14)},
		{"monthly clamps to february", MonthlySchedule{Months: 1}, jan31, 1, date(2026, time.February, 28)},
		{"monthly does not drift", MonthlySchedule{Months: 1}, jan31, 2, date(2026, time.March, 31)},
		{"monthly into a 30 day month", MonthlySchedule{Months: 1}, jan31, 3, date(2026, time.April, 30)},
		{"yearly leap day", MonthlySchedule{Months: 12}, feb29, 1, date(2025, time.February, 28)},
		{"yearly back on leap day", MonthlySchedule{Months: 12}, feb29, 4, date(2028, time.February, 29)},
		{"custom interval in days", IntervalSchedule{Days: 10}, jan31, 3, date(2026, time.March, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.schedule.Step(tt.start, tt.n)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestScheduleFor(t *testing.T) {
	s, err := ScheduleFor(recurring(t, core.FrequencyMonthly, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, MonthlySchedule{Months: 1}, s)

	s, err = ScheduleFor(recurring(t, core.FrequencyBiWeekly, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, WeeklySchedule{Weeks: 2}, s)

	interval := 3
	s, err = ScheduleFor(recurring(t, core.FrequencyCustom, nil, &interval))
	require.NoError(t, err)
	assert.Equal(t, IntervalSchedule{Days: 3}, s)

	_, err = ScheduleFor(core.RecurringProperties{})
	assert.Error(t, err)
}

func TestOccurrences(t *testing.T) {
	start := date(2026, time.January, 15)
	weekly := recurring(t, core.FrequencyWeekly, nil, nil)

	got, err := Occurrences(weekly, start, date(2026, time.February, 1), date(2026, time.March, 1))
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.True(t, got[0].Equal(date(2026, time.February, 5)))
	assert.True(t, got[3].Equal(date(2026, time.February, 26)))

	t.Run("end date is inclusive", func(t *testing.T) {
		end := date(2026, time.February, 12)
		bounded := recurring(t, core.FrequencyWeekly, &end, nil)
		got, err := Occurrences(bounded, start, date(2026, time.February, 1), date(2026, time.March, 1))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("nothing before start", func(t *testing.T) {
		got, err := Occurrences(weekly, start, date(2025, time.December, 1), date(2026, time.January, 1))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestCountIn(t *testing.T) {
	feb, _ := core.NewBudgetPeriod(2026, 2)
	start := date(2026, time.January, 31)

	tests := []struct {
		name  string
		props core.RecurringProperties
		want  int
	}{
		{"daily", recurring(t, core.FrequencyDaily, nil, nil), 28},
		{"weekly", recurring(t, core.FrequencyWeekly, nil, nil), 4},
		{"monthly", recurring(t, core.FrequencyMonthly, nil, nil), 1},
		{"yearly", recurring(t, core.FrequencyYearly, nil, nil), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CountIn(tt.props, start, feb)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestCountInLongRunning(t *testing.T) {
	jan, _ := core.NewBudgetPeriod(2026, 1)
	feb28, _ := core.NewBudgetPeriod(2026, 2)
	feb29, _ := core.NewBudgetPeriod(2028, 2)
	every10 := 10

	tests := []struct {
		name   string
		props  core.RecurringProperties
		start  time.Time
		period core.BudgetPeriod
		want   int
	}{
		{"daily since 1995", recurring(t, core.FrequencyDaily, nil, nil), date(1995, time.January, 1), jan, 31},
		{"weekly since 1970", recurring(t, core.FrequencyWeekly, nil, nil), date(1970, time.January, 1), jan, 5},
		{"custom interval since 1990", recurring(t, core.FrequencyCustom, nil, &every10), date(1990, time.January, 1), jan, 3},
		{"monthly since 1900 clamps", recurring(t, core.FrequencyMonthly, nil, nil), date(1900, time.January, 31), feb28, 1},
		{"yearly leap day", recurring(t, core.FrequencyYearly, nil, nil), date(1960, time.February, 29), feb29, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CountIn(tt.props, tt.start, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestScheduleSkipNeverPassesTarget(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	start := time.Date(1990, time.March, 25, 0, 30, 0, 0, rome)

	for _, s := range []Schedule{DailySchedule{}, WeeklySchedule{Weeks: 2}, IntervalSchedule{Days: 3}, MonthlySchedule{Months: 1}, MonthlySchedule{Months: 12}} {
		for _, target := range []time.Time{
			start.AddDate(0, 0, -5),
			time.Date(2026, time.March, 29, 3, 0, 0, 0, rome),
			time.Date(2026, time.October, 25, 0, 0, 0, 0, rome),
			time.Date(2040, time.January, 1, 0, 0, 0, 0, time.UTC),
		} {
			n := s.Skip(start, target)
			require.GreaterOrEqual(t, n, 0)
			if n > 0 {
				assert.True(t, s.Step(start, n-1).Before(target), "%T skipped past %s", s, target)
			}
		}
	}
}

func TestOccurrencesWindowLimit(t *testing.T) {
	daily := recurring(t, core.FrequencyDaily, nil, nil)
	_, err := Occurrences(daily, date(2000, time.January, 1), date(2000, time.January, 1), date(2030, time.January, 1))
	require.ErrorIs(t, err, ErrTooManyOccurrences)

	got, err := Occurrences(daily, date(2000, time.January, 1), date(2000, time.January, 1), date(2020, time.January, 1))
	require.NoError(t, err)
	assert.Len(t, got, 7305)
}
