package timeline

import (
	"time"

	"dayflow/internal/model"
)

// Options bound the day window and the rendered geometry.
type Options struct {
	// DayStartMinute / DayEndMinute bound the visible window, in minutes
	// since midnight (e.g. 360 and 1320 for [06:00, 22:00)).
	DayStartMinute int
	DayEndMinute   int

	// PixelsPerHour is the vertical scale.
	PixelsPerHour float64

	// Width is the container width in pixels.
	Width float64

	Margins     Margins
	CardPadding float64
}

// Normalize fills zero values with the defaults used across the app.
func (o *Options) Normalize() {
	if o.DayEndMinute <= o.DayStartMinute {
		o.DayStartMinute = 6 * 60
		o.DayEndMinute = 22 * 60
	}
	if o.PixelsPerHour <= 0 {
		o.PixelsPerHour = 60
	}
	if o.Width <= 0 {
		o.Width = 960
	}
	if o.CardPadding <= 0 {
		o.CardPadding = 6
	}
}

// Compute runs the full pipeline for one day: normalization, convergence
// and free-zone detection, lane allocation, card placement, and stream
// path generation. It is a pure function of its inputs; every call
// recomputes the derived layout from scratch.
func Compute(tasks []model.Task, events []model.Event, routines []model.Routine, day time.Time, selected []model.Participant, opts Options) Layout {
	opts.Normalize()

	items := Normalize(tasks, events, routines, day, selected)
	lanes := AllocateLanes(selected, opts.Width, opts.Margins)

	laneByPID := make(map[string]*Lane, len(lanes))
	for i := range lanes {
		laneByPID[lanes[i].ParticipantID] = &lanes[i]
	}

	placed := make([]PlacedItem, 0, len(items))
	for _, it := range items {
		var lane *Lane
		if it.OwnerID != "" {
			lane = laneByPID[it.OwnerID]
			if lane == nil {
				// Degenerate container: no lanes were allocated.
				continue
			}
		}
		placed = append(placed, PlaceItem(it, lane, opts.Width, opts.CardPadding, opts.DayStartMinute, opts.PixelsPerHour))
	}

	conv := DetectConvergence(items, BucketMinutes)
	free := DetectFreeZones(items, selected, opts.DayStartMinute, opts.DayEndMinute, BucketMinutes)

	centerX := opts.Width / 2
	streams := make([]Stream, 0, len(lanes))
	for _, lane := range lanes {
		zones := MergeAdjacentZones(ZonesForParticipant(conv, lane.ParticipantID))
		streams = append(streams, Stream{
			ParticipantID: lane.ParticipantID,
			Path:          StreamPath(lane, zones, centerX, opts.DayStartMinute, opts.DayEndMinute, opts.PixelsPerHour),
		})
	}

	return Layout{
		DayStartMinute: opts.DayStartMinute,
		DayEndMinute:   opts.DayEndMinute,
		Width:          opts.Width,
		Height:         MinutesToY(opts.DayEndMinute, opts.DayStartMinute, opts.PixelsPerHour),
		Lanes:          lanes,
		Items:          placed,
		Convergence:    conv,
		Free:           free,
		Streams:        streams,
	}
}
