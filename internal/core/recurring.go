package core

import "time"

// RecurringFrequency is how often a recurring transaction repeats.
type RecurringFrequency string

const (
	FrequencyDaily    RecurringFrequency = "daily"
	FrequencyWeekly   RecurringFrequency = "weekly"
	FrequencyBiWeekly RecurringFrequency = "biWeekly"
	FrequencyMonthly  RecurringFrequency = "monthly"
	FrequencyYearly   RecurringFrequency = "yearly"
	FrequencyCustom   RecurringFrequency = "custom"
)

func (f RecurringFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// RecurringProperties is the payload of a recurring transaction.
type RecurringProperties struct {
	frequency      RecurringFrequency
	endDate        time.Time
	hasEndDate     bool
	customInterval int
	hasInterval    bool
}

// NewRecurringProperties validates that custom frequencies carry an interval
// and that any interval is positive. endDate and customInterval are optional.
func NewRecurringProperties(frequency RecurringFrequency, endDate *time.Time, customInterval *int) (RecurringProperties, error) {
	if !frequency.IsValid() {
		return RecurringProperties{}, violation("RecurringProperties", "frequency", "unknown frequency "+string(frequency))
	}
	if frequency == FrequencyCustom && customInterval == nil {
		return RecurringProperties{}, violation("RecurringProperties", "customInterval", "required for custom frequency")
	}
	if customInterval != nil && *customInterval <= 0 {
		return RecurringProperties{}, violation("RecurringProperties", "customInterval", "must be positive")
	}

	p := RecurringProperties{frequency: frequency}
	if endDate != nil {
		p.endDate, p.hasEndDate = *endDate, true
	}
	if customInterval != nil {
		p.customInterval, p.hasInterval = *customInterval, true
	}
	return p, nil
}

func (p RecurringProperties) Frequency() RecurringFrequency { return p.frequency }

// EndDate is the last day the transaction may recur, if bounded.
func (p RecurringProperties) EndDate() (time.Time, bool) { return p.endDate, p.hasEndDate }

// CustomInterval is the repeat interval, in days, for custom frequencies.
func (p RecurringProperties) CustomInterval() (int, bool) { return p.customInterval, p.hasInterval }

func (p RecurringProperties) Equal(o RecurringProperties) bool {
	return p.frequency == o.frequency &&
		p.hasEndDate == o.hasEndDate && p.endDate.Equal(o.endDate) &&
		p.hasInterval == o.hasInterval && p.customInterval == o.customInterval
}
