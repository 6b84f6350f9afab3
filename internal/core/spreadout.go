package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpreadDuration is the unit a spread-out transaction is amortized over.
type SpreadDuration string

const (
	SpreadDays   SpreadDuration = "days"
	SpreadWeeks  SpreadDuration = "weeks"
	SpreadMonths SpreadDuration = "months"
)

func (d SpreadDuration) IsValid() bool {
	switch d {
	case SpreadDays, SpreadWeeks, SpreadMonths:
		return true
	}
	return false
}

// Amortization constants. These are approximations, not calendar math.
var (
	daysPerMonth  = decimal.NewFromInt(30)
	weeksPerMonth = decimal.RequireFromString("4.33")
)

// SpreadOutProperties amortizes one purchase over a fixed span.
type SpreadOutProperties struct {
	totalAmount  decimal.Decimal
	duration     int
	durationType SpreadDuration
	startDate    time.Time
	endDate      time.Time
}

// NewSpreadOutProperties derives the end date from startDate plus duration
// units, using the calendar of startDate's location. Adding months clamps to
// the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func NewSpreadOutProperties(totalAmount decimal.Decimal, duration int, durationType SpreadDuration, startDate time.Time) (SpreadOutProperties, error) {
	if err := checkSpread(duration, durationType, startDate); err != nil {
		return SpreadOutProperties{}, err
	}
	return SpreadOutProperties{
		totalAmount:  totalAmount,
		duration:     duration,
		durationType: durationType,
		startDate:    startDate,
		endDate:      spreadEnd(startDate, duration, durationType),
	}, nil
}

// RestoreSpreadOutProperties rebuilds stored properties with the end date
// they were saved with. The end date is not recomputed: the writer's calendar
// may differ from ours.
func RestoreSpreadOutProperties(totalAmount decimal.Decimal, duration int, durationType SpreadDuration, startDate, endDate time.Time) (SpreadOutProperties, error) {
	if err := checkSpread(duration, durationType, startDate); err != nil {
		return SpreadOutProperties{}, err
	}
	if !endDate.After(startDate) {
		return SpreadOutProperties{}, violation("SpreadOutProperties", "endDate", "must be after startDate")
	}
	return SpreadOutProperties{
		totalAmount:  totalAmount,
		duration:     duration,
		durationType: durationType,
		startDate:    startDate,
		endDate:      endDate,
	}, nil
}

func checkSpread(duration int, durationType SpreadDuration, startDate time.Time) error {
	if duration <= 0 {
		return violation("SpreadOutProperties", "duration", "must be positive")
	}
	if !durationType.IsValid() {
		return violation("SpreadOutProperties", "durationType", "unknown duration type "+string(durationType))
	}
	if startDate.IsZero() {
		return violation("SpreadOutProperties", "startDate", "is required")
	}
	return nil
}

func spreadEnd(start time.Time, n int, unit SpreadDuration) time.Time {
	switch unit {
	case SpreadDays:
		return start.AddDate(0, 0, n)
	case SpreadWeeks:
		return start.AddDate(0, 0, 7*n)
	default:
		return addMonthsClamped(start, n)
	}
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func (p SpreadOutProperties) TotalAmount() decimal.Decimal { return p.totalAmount }
func (p SpreadOutProperties) Duration() int                { return p.duration }
func (p SpreadOutProperties) DurationType() SpreadDuration { return p.durationType }
func (p SpreadOutProperties) StartDate() time.Time         { return p.startDate }
func (p SpreadOutProperties) EndDate() time.Time           { return p.endDate }

// Days is the number of days between start and end, at least 1. The span is
// rounded to the nearest day so a DST switch inside it does not lose one.
func (p SpreadOutProperties) Days() int {
	days := int((p.endDate.Sub(p.startDate) + 12*time.Hour) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

// DailyAmount is totalAmount spread evenly over Days().
func (p SpreadOutProperties) DailyAmount() decimal.Decimal {
	return p.totalAmount.Div(decimal.NewFromInt(int64(p.Days())))
}

// MonthlyAmount approximates one month's share: 30 daily amounts for day
// spans, 4.33 weekly shares for week spans, an exact split for month spans.
func (p SpreadOutProperties) MonthlyAmount() decimal.Decimal {
	perUnit := p.totalAmount.Div(decimal.NewFromInt(int64(p.duration)))
	switch p.durationType {
	case SpreadDays:
		return p.DailyAmount().Mul(daysPerMonth)
	case SpreadWeeks:
		return perUnit.Mul(weeksPerMonth)
	default:
		return perUnit
	}
}

// Active reports whether t falls within [start, end).
func (p SpreadOutProperties) Active(t time.Time) bool {
	return !t.Before(p.startDate) && t.Before(p.endDate)
}

func (p SpreadOutProperties) Equal(o SpreadOutProperties) bool {
	return p.totalAmount.Equal(o.totalAmount) &&
		p.duration == o.duration &&
		p.durationType == o.durationType &&
		p.startDate.Equal(o.startDate) &&
		p.endDate.Equal(o.endDate)
}
