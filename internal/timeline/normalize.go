package timeline

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "dayflow/internal/log"
	"dayflow/internal/model"
)

// Normalize converts the heterogeneous source records into the uniform
// TimedItem representation for one day and one participant selection.
//
// Filtering rules:
//
//   - A task is kept iff it has a concrete scheduled time (not all-day, not
//     unscheduled) on `day` and its participant is selected.
//   - An event is kept iff it is timed (not all-day) and starts on `day`.
//     A multiply-assigned event fans out into one item per selected
//     assigned participant; an event with no assignment at all becomes one
//     unassigned item in the neutral center column. Events are never
//     draggable.
//   - A routine is kept iff it has a fixed time of day, is marked visible
//     on the timeline, occurs on `day` per its recurrence rule, and its
//     participant is selected. Routines have no end time; they get the
//     default slot duration.
//
// Records failing these filters are dropped silently. Output is sorted by
// start minute ascending with ties kept in input order.
func Normalize(tasks []model.Task, events []model.Event, routines []model.Routine, day time.Time, selected []model.Participant) []TimedItem {
	sel := make(map[string]bool, len(selected))
	for _, p := range selected {
		sel[p.ID] = true
	}

	items := make([]TimedItem, 0, len(tasks)+len(events)+len(routines))

	for _, t := range tasks {
		if t.ScheduledFor == nil || t.AllDay {
			continue
		}
		if !sameDay(*t.ScheduledFor, day) {
			continue
		}
		if !sel[t.ParticipantID] {
			continue
		}
		start := minuteOfDay(*t.ScheduledFor, day.Location())
		dur := t.DurationMin
		if dur <= 0 {
			dur = DefaultSlotMinutes
		}
		items = append(items, TimedItem{
			ID:             t.ID,
			Kind:           KindTask,
			Title:          t.Title,
			StartMinute:    start,
			EndMinute:      clampEnd(start, start+dur),
			OwnerID:        t.ParticipantID,
			ParticipantIDs: []string{t.ParticipantID},
			SourceID:       t.ID,
			Completed:      t.Completed,
			Draggable:      true,
		})
	}

	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		if !sameDay(ev.Start, day) {
			continue
		}
		start := minuteOfDay(ev.Start, day.Location())
		end := start + DefaultSlotMinutes
		if ev.End.After(ev.Start) {
			end = start + int(ev.End.Sub(ev.Start)/time.Minute)
		}
		end = clampEnd(start, end)

		if len(ev.ParticipantIDs) == 0 {
			// Unassigned: one item in the neutral center column.
			items = append(items, TimedItem{
				ID:          ev.UID,
				Kind:        KindEvent,
				Title:       ev.Title,
				StartMinute: start,
				EndMinute:   end,
				SourceID:    ev.UID,
				Draggable:   false,
			})
			continue
		}

		// Fan-out: one item per selected assigned participant, each carrying
		// the full assigned set.
		for _, pid := range ev.ParticipantIDs {
			if !sel[pid] {
				continue
			}
			items = append(items, TimedItem{
				ID:             ev.UID + "/" + pid,
				Kind:           KindEvent,
				Title:          ev.Title,
				StartMinute:    start,
				EndMinute:      end,
				OwnerID:        pid,
				ParticipantIDs: append([]string(nil), ev.ParticipantIDs...),
				SourceID:       ev.UID,
				Draggable:      false,
			})
		}
	}

	for _, r := range routines {
		if r.TimeOfDayMin < 0 || !r.ShowOnTimeline {
			continue
		}
		if !sel[r.ParticipantID] {
			continue
		}
		if !routineOccursOn(r, day) {
			continue
		}
		items = append(items, TimedItem{
			ID:             r.ID,
			Kind:           KindRoutine,
			Title:          r.Title,
			StartMinute:    r.TimeOfDayMin,
			EndMinute:      clampEnd(r.TimeOfDayMin, r.TimeOfDayMin+DefaultSlotMinutes),
			OwnerID:        r.ParticipantID,
			ParticipantIDs: []string{r.ParticipantID},
			SourceID:       r.ID,
			Completed:      r.Completed,
			Draggable:      true,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartMinute < items[j].StartMinute
	})

	return items
}

// routineOccursOn reports whether the routine's recurrence rule produces an
// occurrence on the given day. An empty rule means every day; a rule that
// fails to parse drops the routine (logged, not raised).
func routineOccursOn(r model.Routine, day time.Time) bool {
	if r.RRule == "" {
		return true
	}

	rule, err := rrule.StrToRRule(r.RRule)
	if err != nil {
		appLog.Error("normalize: failed to parse routine rrule", err, "routine", r.ID, "rrule", r.RRule)
		return false
	}

	loc := day.Location()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	// Anchor the rule well before the requested day so Between sees any
	// occurrence regardless of when the routine was created.
	anchor := dayStart.AddDate(-1, 0, 0).Add(time.Duration(r.TimeOfDayMin) * time.Minute)
	rule.DTStart(anchor)

	return len(rule.Between(dayStart, dayEnd.Add(-time.Nanosecond), true)) > 0
}

func sameDay(t, day time.Time) bool {
	t = t.In(day.Location())
	ty, tm, td := t.Date()
	dy, dm, dd := day.Date()
	return ty == dy && tm == dm && td == dd
}

func minuteOfDay(t time.Time, loc *time.Location) int {
	t = t.In(loc)
	return t.Hour()*60 + t.Minute()
}

// clampEnd enforces start <= end and keeps the end within the day.
func clampEnd(start, end int) int {
	if end < start {
		end = start
	}
	if end > 24*60 {
		end = 24 * 60
	}
	return end
}
