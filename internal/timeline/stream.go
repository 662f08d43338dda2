package timeline

import (
	"fmt"
	"strings"
)

// bendMinutes is the approach/exit distance of a stream excursion,
// expressed in timeline minutes so the bend scales with the vertical zoom.
const bendMinutes = 15

// ZonesForParticipant filters zones down to those that include the given
// participant, preserving order.
func ZonesForParticipant(zones []ConvergenceZone, participantID string) []ConvergenceZone {
	out := make([]ConvergenceZone, 0)
	for _, z := range zones {
		for _, pid := range z.ParticipantIDs {
			if pid == participantID {
				out = append(out, z)
				break
			}
		}
	}
	return out
}

// MergeAdjacentZones coalesces back-to-back zones into single vertical
// extents. The detector keeps zones per-bucket; merging here is purely a
// rendering choice so one continuous shared event produces one excursion
// instead of a wiggle per bucket. Input must be sorted by start minute.
func MergeAdjacentZones(zones []ConvergenceZone) []ConvergenceZone {
	if len(zones) == 0 {
		return nil
	}
	out := []ConvergenceZone{zones[0]}
	for _, z := range zones[1:] {
		last := &out[len(out)-1]
		if z.StartMinute <= last.EndMinute {
			if z.EndMinute > last.EndMinute {
				last.EndMinute = z.EndMinute
			}
			last.ItemIDs = append(last.ItemIDs, z.ItemIDs...)
			continue
		}
		out = append(out, z)
	}
	return out
}

// StreamPath generates the SVG path for one participant's stream: a
// straight vertical line down the lane center that, for each convergence
// zone, curves via cubic Béziers toward centerX, runs along the center for
// the zone's vertical extent, and curves back out. The path is continuous
// from y=0 to the bottom of the day window with no breaks.
//
// zones must contain only this participant's zones in ascending start
// order; callers typically pre-merge adjacent buckets (MergeAdjacentZones).
func StreamPath(lane Lane, zones []ConvergenceZone, centerX float64, dayStartMinute, dayEndMinute int, pixelsPerHour float64) string {
	height := MinutesToY(dayEndMinute, dayStartMinute, pixelsPerHour)
	bend := float64(bendMinutes) / 60.0 * pixelsPerHour

	var b strings.Builder
	fmt.Fprintf(&b, "M %.1f 0", lane.CenterX)

	cursorY := 0.0
	for _, z := range zones {
		topY := MinutesToY(z.StartMinute, dayStartMinute, pixelsPerHour)
		botY := MinutesToY(z.EndMinute, dayStartMinute, pixelsPerHour)
		if botY <= cursorY || topY >= height {
			continue
		}
		if topY < cursorY {
			topY = cursorY
		}
		if botY > height {
			botY = height
		}

		approachY := topY - bend
		if approachY < cursorY {
			approachY = cursorY
		}

		// Straight run down to the approach point.
		fmt.Fprintf(&b, " L %.1f %.1f", lane.CenterX, approachY)

		// Curve in: control points at the midpoint of the approach distance.
		midIn := (approachY + topY) / 2
		fmt.Fprintf(&b, " C %.1f %.1f %.1f %.1f %.1f %.1f",
			lane.CenterX, midIn, centerX, midIn, centerX, topY)

		// Run along the shared center for the zone's extent.
		fmt.Fprintf(&b, " L %.1f %.1f", centerX, botY)

		// Curve back out.
		exitY := botY + bend
		if exitY > height {
			exitY = height
		}
		midOut := (botY + exitY) / 2
		fmt.Fprintf(&b, " C %.1f %.1f %.1f %.1f %.1f %.1f",
			centerX, midOut, lane.CenterX, midOut, lane.CenterX, exitY)

		cursorY = exitY
	}

	if cursorY < height {
		fmt.Fprintf(&b, " L %.1f %.1f", lane.CenterX, height)
	}

	return b.String()
}
