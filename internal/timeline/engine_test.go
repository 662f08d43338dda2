package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayflow/internal/model"
)

func defaultOptions() Options {
	return Options{
		DayStartMinute: 6 * 60,
		DayEndMinute:   22 * 60,
		PixelsPerHour:  60,
		Width:          960,
		Margins:        Margins{Left: 48, Right: 16},
	}
}

func TestComputeParallelItemsNoConvergence(t *testing.T) {
	day := testDay()
	tasks := []model.Task{
		{ID: "t1", Title: "Dentist", ParticipantID: "alice", ScheduledFor: at(day, 9, 0)},
	}
	routines := []model.Routine{
		{ID: "r1", Title: "Run", ParticipantID: "bob", TimeOfDayMin: 9 * 60, ShowOnTimeline: true},
	}

	layout := Compute(tasks, nil, routines, day, []model.Participant{alice, bob}, defaultOptions())

	require.Len(t, layout.Items, 2)
	assert.Empty(t, layout.Convergence, "coinciding but unshared items must not converge")

	// Same start means same vertical position, in different lanes.
	assert.InDelta(t, layout.Items[0].Box.Y, layout.Items[1].Box.Y, 1e-9)
	assert.NotEqual(t, layout.Items[0].Item.OwnerID, layout.Items[1].Item.OwnerID)
	require.Len(t, layout.Lanes, 2)
	assert.Less(t, layout.Items[0].Box.X, layout.Items[1].Box.X)
}

func TestComputeSharedEventConverges(t *testing.T) {
	day := testDay()
	events := []model.Event{
		{UID: "dinner", Title: "Family Dinner", Start: *at(day, 18, 0), End: *at(day, 19, 0),
			ParticipantIDs: []string{"alice", "bob"}},
	}

	layout := Compute(nil, events, nil, day, []model.Participant{alice, bob}, defaultOptions())

	require.Len(t, layout.Items, 2)
	for _, pi := range layout.Items {
		assert.False(t, pi.Item.Draggable)
	}

	require.Len(t, layout.Convergence, 2)
	assert.Equal(t, 18*60, layout.Convergence[0].StartMinute)
	assert.Equal(t, 18*60+30, layout.Convergence[1].StartMinute)
	for _, z := range layout.Convergence {
		assert.Equal(t, []string{"alice", "bob"}, z.ParticipantIDs)
	}

	// Both streams make an excursion toward the shared center.
	require.Len(t, layout.Streams, 2)
	for _, s := range layout.Streams {
		assert.Contains(t, s.Path, "C ", "stream should curve during the shared event")
	}
}

func TestComputeFreeZones(t *testing.T) {
	day := testDay()
	tasks := []model.Task{
		{ID: "t1", Title: "Morning block", ParticipantID: "alice", ScheduledFor: at(day, 6, 0), DurationMin: 360},
		{ID: "t2", Title: "Morning block", ParticipantID: "bob", ScheduledFor: at(day, 6, 0), DurationMin: 360},
		{ID: "t3", Title: "Afternoon", ParticipantID: "alice", ScheduledFor: at(day, 13, 30), DurationMin: 510},
		{ID: "t4", Title: "Afternoon", ParticipantID: "bob", ScheduledFor: at(day, 13, 30), DurationMin: 510},
	}

	layout := Compute(tasks, nil, nil, day, []model.Participant{alice, bob}, defaultOptions())

	require.Len(t, layout.Free, 1)
	assert.Equal(t, FreeZone{StartMinute: 720, EndMinute: 810}, layout.Free[0])
}

func TestComputeDegenerateWidth(t *testing.T) {
	day := testDay()
	tasks := []model.Task{
		{ID: "t1", Title: "Dentist", ParticipantID: "alice", ScheduledFor: at(day, 9, 0)},
	}
	opts := defaultOptions()
	opts.Width = 50 // nothing left after margins

	layout := Compute(tasks, nil, nil, day, []model.Participant{alice, bob}, opts)
	assert.Empty(t, layout.Lanes)
	assert.Empty(t, layout.Items)
	assert.Empty(t, layout.Streams)
}

func TestComputeRecomputesFromScratch(t *testing.T) {
	day := testDay()
	events := []model.Event{
		{UID: "dinner", Title: "Dinner", Start: *at(day, 18, 0), End: *at(day, 19, 0),
			ParticipantIDs: []string{"alice", "bob"}},
	}
	sel := []model.Participant{alice, bob}
	opts := defaultOptions()

	a := Compute(nil, events, nil, day, sel, opts)
	b := Compute(nil, events, nil, day, sel, opts)
	assert.Equal(t, a, b, "the layout is a pure function of its inputs")
}
