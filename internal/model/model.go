package model

import "time"

// Participant is a member of the household whose schedule is shown as one
// vertical lane on the timeline.
type Participant struct {
	ID           string `yaml:"id" json:"id"`
	DisplayLabel string `yaml:"label" json:"label"`
	// Email matches this participant against calendar ATTENDEE entries.
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
	// ColorKey selects the rendering palette for this participant's lane.
	// It has no effect on layout.
	ColorKey string `yaml:"color" json:"color"`
}

// Task is a user-created to-do that may or may not be scheduled to a
// concrete time. Unscheduled and all-day tasks never appear on the timed
// portion of the timeline.
type Task struct {
	ID            string     `yaml:"id" json:"id"`
	Title         string     `yaml:"title" json:"title"`
	ParticipantID string     `yaml:"participant" json:"participant"`
	ScheduledFor  *time.Time `yaml:"scheduled_for,omitempty" json:"scheduled_for,omitempty"`
	// DurationMin is the scheduled length in minutes. Zero means "use the
	// default display slot".
	DurationMin int  `yaml:"duration_min,omitempty" json:"duration_min,omitempty"`
	AllDay      bool `yaml:"all_day,omitempty" json:"all_day,omitempty"`
	Completed   bool `yaml:"completed,omitempty" json:"completed,omitempty"`
}

// Event is a single concrete calendar occurrence, typically produced by the
// ICS layer. Events originate in an external calendar, so they are never
// draggable on the timeline.
type Event struct {
	SourceID string `json:"source_id"`
	UID      string `json:"uid"`

	Title string `json:"title"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	AllDay bool `json:"all_day"`

	// ParticipantIDs is the set of participants this event is assigned to.
	// Empty means the event is unassigned and is laid out in the neutral
	// center column.
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

// Routine is a recurring habit with a fixed time of day (e.g. "Run, 07:00
// every weekday"). Recurrence is expressed as an RRULE string; an empty
// rule means every day.
type Routine struct {
	ID            string `yaml:"id" json:"id"`
	Title         string `yaml:"title" json:"title"`
	ParticipantID string `yaml:"participant" json:"participant"`

	// TimeOfDayMin is the start time in minutes since midnight, or -1 when
	// the routine has no fixed time (and therefore never appears on the
	// timed layout).
	TimeOfDayMin int `yaml:"time_of_day_min" json:"time_of_day_min"`

	RRule string `yaml:"rrule,omitempty" json:"rrule,omitempty"`

	ShowOnTimeline bool `yaml:"show_on_timeline" json:"show_on_timeline"`
	Completed      bool `yaml:"completed,omitempty" json:"completed,omitempty"`
}
