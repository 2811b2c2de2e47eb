package bookings

import (
	"fmt"
	"time"

	"calbook/internal/domain"

	"github.com/teambition/rrule-go"
)

// expandOccurrences generates the start time of every occurrence of rule,
// beginning at start. The occurrence count must be configured on the rule.
// Daily and the sub-daily units are declared on the domain type but expansion
// for them is not implemented; they are rejected rather than silently
// accepted.
func expandOccurrences(rule *domain.RecurrenceRule, start time.Time) ([]time.Time, error) {
	if rule.Count == nil || *rule.Count <= 0 {
		return nil, fmt.Errorf("%w: repeats times is required", ErrValidation)
	}

	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}

	switch rule.Freq {
	case domain.FreqWeekly:
		return weeklyOccurrences(start, interval, *rule.Count)
	case domain.FreqMonthly:
		return clampedOccurrences(start, interval, *rule.Count), nil
	case domain.FreqYearly:
		return clampedOccurrences(start, 12*interval, *rule.Count), nil
	case domain.FreqDaily, domain.FreqHourly, domain.FreqMinutely, domain.FreqSecondly:
		return nil, fmt.Errorf("%w: recurrence frequency %q is not supported", ErrValidation, rule.Freq)
	default:
		return nil, fmt.Errorf("%w: unknown recurrence frequency %q", ErrValidation, rule.Freq)
	}
}

// weeklyOccurrences steps through rrule-go. Weekly intervals never overflow a
// month, so no day clamping is involved.
func weeklyOccurrences(start time.Time, interval, count int) ([]time.Time, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: interval,
		Count:    count,
		Dtstart:  start,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return r.All(), nil
}

// clampedOccurrences advances the start by monthStep months per occurrence,
// clamping the day to the target month's last day instead of skipping months
// that lack it. A Jan 31 monthly series visits Feb 29 and returns to the 31st
// in March; a Feb 29 yearly series lands on Feb 28 in non-leap years.
func clampedOccurrences(start time.Time, monthStep, count int) []time.Time {
	starts := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		starts = append(starts, addMonthsClamped(start, i*monthStep))
	}
	return starts
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)
	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
