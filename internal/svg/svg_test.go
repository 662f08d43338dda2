package svg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayflow/internal/model"
	"dayflow/internal/timeline"
)

func renderFixture(t *testing.T) (string, []model.Participant) {
	t.Helper()

	alice := model.Participant{ID: "alice", DisplayLabel: "Alice", ColorKey: "blue"}
	bob := model.Participant{ID: "bob", DisplayLabel: "Bob", ColorKey: "green"}
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	sched := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	tasks := []model.Task{
		{ID: "t1", Title: "Dentist <checkup>", ParticipantID: "alice", ScheduledFor: &sched, DurationMin: 120},
	}
	events := []model.Event{
		{UID: "dinner", Title: "Family Dinner", Start: time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC),
			End: time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC), ParticipantIDs: []string{"alice", "bob"}},
	}

	layout := timeline.Compute(tasks, events, nil, day, []model.Participant{alice, bob}, timeline.Options{
		DayStartMinute: 6 * 60,
		DayEndMinute:   22 * 60,
		PixelsPerHour:  60,
		Width:          960,
		Margins:        timeline.Margins{Left: 48, Right: 16},
	})
	return Render(layout, []model.Participant{alice, bob}), []model.Participant{alice, bob}
}

func TestRenderDocumentShape(t *testing.T) {
	doc, _ := renderFixture(t)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, "<svg ")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(doc), "</svg>"))
}

func TestRenderLaneHeaders(t *testing.T) {
	doc, _ := renderFixture(t)
	assert.Contains(t, doc, ">Alice</text>")
	assert.Contains(t, doc, ">Bob</text>")
}

func TestRenderEscapesTitles(t *testing.T) {
	doc, _ := renderFixture(t)
	assert.Contains(t, doc, "Dentist &lt;checkup&gt;")
	assert.NotContains(t, doc, "Dentist <checkup>")
}

func TestRenderStreamsAndGlow(t *testing.T) {
	doc, _ := renderFixture(t)

	// One stream path per lane, colored by participant.
	require.Equal(t, 2, strings.Count(doc, `stroke-width="2.5"`))
	assert.Contains(t, doc, "#3b82f6")
	assert.Contains(t, doc, "#22c55e")

	// The shared dinner produces a single merged glow ellipse.
	assert.Equal(t, 1, strings.Count(doc, "<ellipse "))
}

func TestRenderConnector(t *testing.T) {
	// The 2-hour dentist task needs a duration connector with the end time.
	doc, _ := renderFixture(t)
	assert.Contains(t, doc, `marker-end="url(#arrow)"`)
	assert.Contains(t, doc, ">11:00</text>")
}

func TestRenderHourRuler(t *testing.T) {
	doc, _ := renderFixture(t)
	assert.Contains(t, doc, ">06:00</text>")
	assert.Contains(t, doc, ">21:00</text>")
}
