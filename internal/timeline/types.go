// Package timeline computes the day-timeline layout: it normalizes tasks,
// calendar events and routines into timed items, detects convergence and
// free-time zones across participants, and produces render-ready lane,
// card and stream-path geometry. All functions are pure over an in-memory
// snapshot of one day's items; derived values are recomputed from scratch
// on every call rather than patched incrementally.
package timeline

// ItemKind discriminates the source record a TimedItem was normalized from.
type ItemKind string

const (
	KindTask    ItemKind = "task"
	KindEvent   ItemKind = "event"
	KindRoutine ItemKind = "routine"
)

// Display granularities, in minutes.
const (
	// DefaultSlotMinutes is the assumed duration of items without an end time.
	DefaultSlotMinutes = 30
	// BucketMinutes is the granularity of convergence/free-zone detection.
	BucketMinutes = 30
	// SlotMinutes is the drag-target quantization grid.
	SlotMinutes = 15
)

// TimedItem is the normalized, engine-internal representation of one
// schedulable item on one participant's lane for one day.
//
// A shared calendar event is fanned out into one TimedItem per assigned
// participant; each copy carries the full assigned set in ParticipantIDs
// and the shared source in SourceID so the convergence detector can
// recognize the copies as one item.
type TimedItem struct {
	ID    string   `json:"id"`
	Kind  ItemKind `json:"kind"`
	Title string   `json:"title"`

	StartMinute int `json:"start_minute"`
	// EndMinute is always resolved by the normalizer; items without an end
	// time get StartMinute + DefaultSlotMinutes.
	EndMinute int `json:"end_minute"`

	// OwnerID is the participant whose lane this item renders in. Empty for
	// unassigned events, which render in the neutral center column.
	OwnerID string `json:"owner_id,omitempty"`

	// ParticipantIDs is the full assigned set (size 1 for normal ownership,
	// >= 2 for a shared item, empty for unassigned).
	ParticipantIDs []string `json:"participant_ids,omitempty"`

	// SourceID identifies the source record; fanned-out copies of one event
	// share it.
	SourceID string `json:"source_id"`

	Completed bool `json:"completed"`
	Draggable bool `json:"draggable"`
}

// Shared reports whether this item was assigned to two or more participants.
func (it TimedItem) Shared() bool {
	return len(it.ParticipantIDs) >= 2
}

// ConvergenceZone marks one detection bucket in which a shared item brings
// two or more participants together. Zones are deliberately not merged
// across adjacent buckets; blending is a rendering decision.
type ConvergenceZone struct {
	StartMinute    int      `json:"start_minute"`
	EndMinute      int      `json:"end_minute"`
	ParticipantIDs []string `json:"participant_ids"`
	ItemIDs        []string `json:"item_ids"`
}

// FreeZone is a maximal contiguous run of buckets in which no selected
// participant has any item.
type FreeZone struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Lane is the horizontal column assigned to one participant.
type Lane struct {
	ParticipantID string  `json:"participant_id"`
	LaneIndex     int     `json:"lane_index"`
	CenterX       float64 `json:"center_x"`
	LeftBound     float64 `json:"left_bound"`
	RightBound    float64 `json:"right_bound"`
}

// Margins reserves horizontal space (e.g. for the hour ruler) on either
// side of the lane area.
type Margins struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// CardBox is the rendered rectangle of one item card.
type CardBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Connector communicates duration beyond the fixed card height: a line from
// the card's bottom edge down to the item's end minute, with an end-time
// label.
type Connector struct {
	X     float64 `json:"x"`
	FromY float64 `json:"from_y"`
	ToY   float64 `json:"to_y"`
	Label string  `json:"label"`
}

// PlacedItem couples a normalized item with its computed geometry.
type PlacedItem struct {
	Item      TimedItem  `json:"item"`
	Box       CardBox    `json:"box"`
	Connector *Connector `json:"connector,omitempty"`
}

// Stream is the rendered path tracing one participant's lane down the
// timeline, bending toward the shared center during convergence.
type Stream struct {
	ParticipantID string `json:"participant_id"`
	Path          string `json:"path"`
}

// DropTarget is one ephemeral (participant, time-slot) cell used to
// interpret a drop during an active drag gesture.
type DropTarget struct {
	ParticipantID string `json:"participant_id"`
	SlotMinute    int    `json:"slot_minute"`
}

// Intents are the outbound callbacks the engine invokes on behalf of user
// gestures. The engine performs no persistence itself.
type Intents struct {
	OnReschedule     func(itemID string, newStartMinute int)
	OnReassign       func(itemID, participantID string)
	OnToggleComplete func(itemID string)
	OnSelect         func(itemID string)
}

// Layout is the complete render-ready geometry for one day.
type Layout struct {
	DayStartMinute int     `json:"day_start_minute"`
	DayEndMinute   int     `json:"day_end_minute"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`

	Lanes       []Lane            `json:"lanes"`
	Items       []PlacedItem      `json:"items"`
	Convergence []ConvergenceZone `json:"convergence"`
	Free        []FreeZone        `json:"free"`
	Streams     []Stream          `json:"streams"`
}
