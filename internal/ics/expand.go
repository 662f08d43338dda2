package ics

import (
	"errors"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "dayflow/internal/log"
	"dayflow/internal/model"
)

const defaultMaxOccurrencesPerEvent = 1000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the timezone all occurrences are converted into.
	// Nil means time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the expansion window.
	RangeStart time.Time
	RangeEnd   time.Time

	// Participants resolves ATTENDEE addresses to participant ids.
	Participants []model.Participant

	// MaxOccurrencesPerEvent caps pathological rules. Zero means the
	// package default.
	MaxOccurrencesPerEvent int
}

// ExpandOccurrences turns parsed VEVENTs into concrete model.Event values
// within the window: non-recurring events pass through, RRULE events are
// expanded (EXDATEs removed), and attendee addresses are mapped onto
// participant ids. Events whose attendees match nobody come out unassigned.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) ([]model.Event, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("ics: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	byEmail := make(map[string]string, len(cfg.Participants))
	for _, p := range cfg.Participants {
		if p.Email != "" {
			byEmail[strings.ToLower(p.Email)] = p.ID
		}
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.RawRRule == "" {
			if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
				continue
			}
			out = append(out, makeEvent(ev, ev.Start, ev.End, cfg.DisplayLocation, byEmail))
			continue
		}

		occs := expandRecurring(ev, cfg)
		for _, o := range occs {
			out = append(out, makeEvent(ev, o.start, o.end, cfg.DisplayLocation, byEmail))
		}
	}
	return out, nil
}

type occurrence struct {
	start, end time.Time
}

func expandRecurring(ev ParsedEvent, cfg ExpandConfig) []occurrence {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	times := set.Between(rangeStart, rangeEnd, true)
	if len(times) > cfg.MaxOccurrencesPerEvent {
		appLog.Error("ics: truncated occurrences", errors.New("max occurrences reached"),
			"uid", ev.UID, "cap", cfg.MaxOccurrencesPerEvent)
		times = times[:cfg.MaxOccurrencesPerEvent]
	}

	dur := ev.End.Sub(ev.Start)
	occs := make([]occurrence, 0, len(times))
	for _, start := range times {
		if ev.AllDay {
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			occs = append(occs, occurrence{start: day, end: day.Add(24 * time.Hour)})
			continue
		}
		occs = append(occs, occurrence{start: start, end: start.Add(dur)})
	}
	return occs
}

func makeEvent(ev ParsedEvent, start, end time.Time, loc *time.Location, byEmail map[string]string) model.Event {
	var pids []string
	for _, addr := range ev.Attendees {
		if id, ok := byEmail[addr]; ok {
			pids = append(pids, id)
		}
	}

	startLocal := start.In(loc)
	uid := ev.UID
	if ev.RawRRule != "" {
		// A recurring event needs a distinct id per instance.
		uid += "/" + startLocal.Format("20060102T1504")
	}

	return model.Event{
		SourceID:       ev.Source.ID,
		UID:            uid,
		Title:          ev.Summary,
		Start:          startLocal,
		End:            end.In(loc),
		AllDay:         ev.AllDay,
		ParticipantIDs: pids,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
