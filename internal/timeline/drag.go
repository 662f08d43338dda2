package timeline

import "errors"

// Drag errors.
var (
	ErrNotDraggable = errors.New("item is not draggable")
	ErrDragActive   = errors.New("a drag gesture is already active")
	ErrNoActiveDrag = errors.New("no drag gesture is active")
)

// BuildDropTargets generates the discrete (participant × slot) grid used to
// interpret a drop, one target per lane per slot within [dayStart, dayEnd).
// The grid exists only while a drag gesture is active; it is never part of
// the static layout.
func BuildDropTargets(lanes []Lane, dayStartMinute, dayEndMinute, slotMinutes int) []DropTarget {
	if slotMinutes <= 0 {
		slotMinutes = SlotMinutes
	}
	targets := make([]DropTarget, 0, len(lanes)*((dayEndMinute-dayStartMinute)/slotMinutes+1))
	for _, lane := range lanes {
		for slot := dayStartMinute; slot < dayEndMinute; slot += slotMinutes {
			targets = append(targets, DropTarget{
				ParticipantID: lane.ParticipantID,
				SlotMinute:    slot,
			})
		}
	}
	return targets
}

// LocateTarget resolves a pointer position into the drop target under it,
// or nil when the pointer is outside every lane or outside the day window
// (a grid miss). The y coordinate is quantized down to the slot grid.
func LocateTarget(x, y float64, lanes []Lane, dayStartMinute, dayEndMinute, slotMinutes int, pixelsPerHour float64) *DropTarget {
	if slotMinutes <= 0 {
		slotMinutes = SlotMinutes
	}

	var lane *Lane
	for i := range lanes {
		if x >= lanes[i].LeftBound && x < lanes[i].RightBound {
			lane = &lanes[i]
			break
		}
	}
	if lane == nil {
		return nil
	}

	minute := YToMinutes(y, dayStartMinute, pixelsPerHour)
	if minute < dayStartMinute || minute >= dayEndMinute {
		return nil
	}
	slot := minute - (minute-dayStartMinute)%slotMinutes

	return &DropTarget{ParticipantID: lane.ParticipantID, SlotMinute: slot}
}

// DropResult describes the domain update a drop resolves to. Both flags are
// false for a no-op drop.
type DropResult struct {
	Reschedule     bool
	NewStartMinute int

	Reassign         bool
	NewParticipantID string
}

// InterpretDrop resolves a drop of item onto target into the reschedule
// and/or reassign updates it implies. Dropping an item onto its own current
// (participant, slot) is a no-op so no redundant downstream write fires.
// The function is pure; it does not consult any gesture history.
func InterpretDrop(item TimedItem, target DropTarget) DropResult {
	var res DropResult
	if target.SlotMinute != item.StartMinute {
		res.Reschedule = true
		res.NewStartMinute = target.SlotMinute
	}
	if target.ParticipantID != item.OwnerID {
		res.Reassign = true
		res.NewParticipantID = target.ParticipantID
	}
	return res
}

type dragState int

const (
	stateIdle dragState = iota
	stateDragging
)

// DragSession is the short-lived state machine for one drag gesture:
// idle → dragging → idle. It is owned by a single user session; cancelling
// always returns to idle with zero side effects.
type DragSession struct {
	state dragState
	item  TimedItem
}

// NewDragSession returns an idle session.
func NewDragSession() *DragSession {
	return &DragSession{state: stateIdle}
}

// Active reports whether a drag gesture is in progress.
func (s *DragSession) Active() bool {
	return s.state == stateDragging
}

// Item returns the item being dragged. Only meaningful while Active.
func (s *DragSession) Item() TimedItem {
	return s.item
}

// Begin enters the dragging state for a draggable item. Non-draggable items
// (calendar events) are rejected before any grid is built.
func (s *DragSession) Begin(item TimedItem) error {
	if s.state != stateIdle {
		return ErrDragActive
	}
	if !item.Draggable {
		return ErrNotDraggable
	}
	s.state = stateDragging
	s.item = item
	return nil
}

// Cancel returns the session to idle without any state change elsewhere.
func (s *DragSession) Cancel() {
	s.state = stateIdle
	s.item = TimedItem{}
}

// Drop completes the gesture. A nil target is a grid miss and cancels
// silently. Otherwise the drop is interpreted and the implied intents are
// fired; a no-op drop fires nothing. The session always ends idle.
func (s *DragSession) Drop(target *DropTarget, intents Intents) error {
	if s.state != stateDragging {
		return ErrNoActiveDrag
	}
	item := s.item
	s.Cancel()

	if target == nil {
		return nil
	}

	res := InterpretDrop(item, *target)
	if res.Reassign && intents.OnReassign != nil {
		intents.OnReassign(item.SourceID, res.NewParticipantID)
	}
	if res.Reschedule && intents.OnReschedule != nil {
		intents.OnReschedule(item.SourceID, res.NewStartMinute)
	}
	return nil
}
