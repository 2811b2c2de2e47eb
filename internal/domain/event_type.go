package domain

// Frequency is a recurrence repeat unit. All RFC 5545 units are declared,
// but occurrence expansion only supports yearly, monthly and weekly.
type Frequency string

const (
	FreqYearly   Frequency = "yearly"
	FreqMonthly  Frequency = "monthly"
	FreqWeekly   Frequency = "weekly"
	FreqDaily    Frequency = "daily"
	FreqHourly   Frequency = "hourly"
	FreqMinutely Frequency = "minutely"
	FreqSecondly Frequency = "secondly"
)

// RecurrenceRule describes how a recurring event type repeats. Interval is
// the repeat-every count, Count the total number of occurrences.
type RecurrenceRule struct {
	Freq     Frequency `json:"freq"`
	Interval int       `json:"interval,omitempty"`
	Count    *int      `json:"count,omitempty"`
	Until    string    `json:"until,omitempty"`
	DtStart  string    `json:"dtstart,omitempty"`
}

type SchedulingType string

const (
	SchedulingRoundRobin SchedulingType = "round_robin"
	SchedulingCollective SchedulingType = "collective"
	SchedulingManaged    SchedulingType = "managed"
)

// EventType is a bookable meeting template. Either Owner (individual event
// type) or Team (team event type) is set.
type EventType struct {
	ID             int64           `json:"id"`
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Length         int             `json:"length"` // minutes
	OwnerID        *int64          `json:"owner_id,omitempty"`
	TeamID         *int64          `json:"team_id,omitempty"`
	SchedulingType SchedulingType  `json:"scheduling_type,omitempty"`
	Recurrence     *RecurrenceRule `json:"recurrence,omitempty"`

	Owner *User `json:"owner,omitempty"`
	Team  *Team `json:"team,omitempty"`
}
