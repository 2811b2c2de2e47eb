package eventtypes

import "calbook/internal/domain"

type RecurrenceOutput struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	Count     *int   `json:"occurrences,omitempty"`
}

type EventTypeOutput struct {
	ID              int64             `json:"id"`
	Slug            string            `json:"slug"`
	Title           string            `json:"title"`
	LengthInMinutes int               `json:"lengthInMinutes"`
	OwnerUsername   string            `json:"ownerUsername,omitempty"`
	TeamSlug        string            `json:"teamSlug,omitempty"`
	SchedulingType  string            `json:"schedulingType,omitempty"`
	Recurrence      *RecurrenceOutput `json:"recurrence,omitempty"`
}

func toOutput(et *domain.EventType) EventTypeOutput {
	out := EventTypeOutput{
		ID:              et.ID,
		Slug:            et.Slug,
		Title:           et.Title,
		LengthInMinutes: et.Length,
		SchedulingType:  string(et.SchedulingType),
	}
	if et.Owner != nil {
		out.OwnerUsername = et.Owner.Username
	}
	if et.Team != nil {
		out.TeamSlug = et.Team.Slug
	}
	if et.Recurrence != nil {
		out.Recurrence = &RecurrenceOutput{
			Frequency: string(et.Recurrence.Freq),
			Interval:  et.Recurrence.Interval,
			Count:     et.Recurrence.Count,
		}
	}
	return out
}
