package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsBody(s string) []byte {
	return []byte(strings.ReplaceAll(strings.TrimLeft(s, "\n"), "\n", "\r\n"))
}

const sampleFeed = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:dinner-1
SUMMARY:Family Dinner
DTSTART:20260309T180000Z
DTEND:20260309T190000Z
ATTENDEE:mailto:Alice@Example.com
ATTENDEE:mailto:bob@example.com
END:VEVENT
BEGIN:VEVENT
UID:holiday-1
SUMMARY:Spring Holiday
DTSTART;VALUE=DATE:20260310
DTEND;VALUE=DATE:20260311
END:VEVENT
BEGIN:VEVENT
UID:standup-1
SUMMARY:Standup
DTSTART:20260309T090000Z
DTEND:20260309T091500Z
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20260311T090000Z
END:VEVENT
END:VCALENDAR
`

func TestParseICS(t *testing.T) {
	src := Source{ID: "family", URL: "https://example.com/family.ics"}
	events, err := ParseICS(src, icsBody(sampleFeed))
	require.NoError(t, err)
	require.Len(t, events, 3)

	dinner := events[0]
	assert.Equal(t, "dinner-1", dinner.UID)
	assert.Equal(t, "Family Dinner", dinner.Summary)
	assert.False(t, dinner.AllDay)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, dinner.Attendees,
		"attendee addresses are lowercased and stripped of mailto:")
	assert.Equal(t, 18, dinner.Start.UTC().Hour())

	holiday := events[1]
	assert.True(t, holiday.AllDay)

	standup := events[2]
	assert.Equal(t, "FREQ=DAILY;COUNT=5", standup.RawRRule)
	require.Len(t, standup.ExDates, 1)
}

func TestParseICSEmptyBody(t *testing.T) {
	_, err := ParseICS(Source{ID: "x"}, nil)
	assert.Error(t, err)
}

func TestParseICSSkipsEventWithoutUID(t *testing.T) {
	feed := `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
SUMMARY:No UID here
DTSTART:20260309T090000Z
DTEND:20260309T100000Z
END:VEVENT
BEGIN:VEVENT
UID:ok-1
SUMMARY:Fine
DTSTART:20260309T110000Z
DTEND:20260309T120000Z
END:VEVENT
END:VCALENDAR
`
	events, err := ParseICS(Source{ID: "x"}, icsBody(feed))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ok-1", events[0].UID)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)",
		redactURL("https://example.com/private/cal.ics?token=s3cret"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
