package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayflow/internal/model"
)

var testParticipants = []model.Participant{
	{ID: "alice", Email: "alice@example.com"},
	{ID: "bob", Email: "bob@example.com"},
}

func window(y int, m time.Month, d int) (time.Time, time.Time) {
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func TestExpandSingleEvent(t *testing.T) {
	start, end := window(2026, time.March, 9)
	events := []ParsedEvent{
		{
			Source:    Source{ID: "family"},
			UID:       "dinner-1",
			Summary:   "Family Dinner",
			Start:     time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC),
			End:       time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC),
			Attendees: []string{"alice@example.com", "bob@example.com"},
		},
	}

	out, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
		Participants:    testParticipants,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	ev := out[0]
	assert.Equal(t, "dinner-1", ev.UID)
	assert.Equal(t, []string{"alice", "bob"}, ev.ParticipantIDs)
	assert.Equal(t, 18, ev.Start.Hour())
}

func TestExpandOutOfRangeDropped(t *testing.T) {
	start, end := window(2026, time.March, 10)
	events := []ParsedEvent{
		{
			UID:   "dinner-1",
			Start: time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC),
		},
	}
	out, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExpandUnmatchedAttendeesUnassigned(t *testing.T) {
	start, end := window(2026, time.March, 9)
	events := []ParsedEvent{
		{
			UID:       "x-1",
			Start:     time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
			End:       time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
			Attendees: []string{"stranger@elsewhere.com"},
		},
	}
	out, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
		Participants:    testParticipants,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].ParticipantIDs)
}

func TestExpandRecurring(t *testing.T) {
	// Daily standup expanded over a 3-day window, one EXDATE removed.
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	events := []ParsedEvent{
		{
			UID:       "standup-1",
			Summary:   "Standup",
			Start:     time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
			End:       time.Date(2026, 3, 9, 9, 15, 0, 0, time.UTC),
			RawRRule:  "FREQ=DAILY;COUNT=10",
			ExDates:   []time.Time{time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
			Attendees: []string{"alice@example.com"},
		},
	}

	out, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
		Participants:    testParticipants,
	})
	require.NoError(t, err)
	require.Len(t, out, 2, "March 10 is excluded by EXDATE")

	// Each instance gets a distinct UID and keeps the base duration.
	assert.NotEqual(t, out[0].UID, out[1].UID)
	for _, ev := range out {
		assert.Equal(t, 15*time.Minute, ev.End.Sub(ev.Start))
		assert.Equal(t, []string{"alice"}, ev.ParticipantIDs)
	}
}

func TestExpandInvertedRangeRejected(t *testing.T) {
	start, end := window(2026, time.March, 9)
	_, err := ExpandOccurrences(nil, ExpandConfig{RangeStart: end, RangeEnd: start})
	assert.Error(t, err)
}
