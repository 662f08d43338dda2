package timeline

import (
	"fmt"

	"dayflow/internal/model"
)

// Card geometry constants. Cards have a fixed height regardless of item
// duration; duration beyond the card is shown by a connector line.
const (
	CardHeight = 48.0
	// UnassignedColumnWidth is the fixed width of the neutral center column
	// used by events with no participant assignment.
	UnassignedColumnWidth = 180.0
)

// AllocateLanes divides the horizontal space between the margins into one
// equal-width column per selected participant, left to right in selection
// order. A degenerate width (nothing left after margins) yields an empty
// lane set rather than a division by zero.
func AllocateLanes(selected []model.Participant, containerWidth float64, m Margins) []Lane {
	n := len(selected)
	if n == 0 {
		return nil
	}
	usable := containerWidth - m.Left - m.Right
	if usable <= 0 {
		return nil
	}

	laneWidth := usable / float64(n)
	lanes := make([]Lane, n)
	for i, p := range selected {
		left := m.Left + float64(i)*laneWidth
		lanes[i] = Lane{
			ParticipantID: p.ID,
			LaneIndex:     i,
			LeftBound:     left,
			RightBound:    left + laneWidth,
			CenterX:       left + laneWidth/2,
		}
	}
	return lanes
}

// PlaceItem computes the card rectangle for one item, plus a duration
// connector when the item extends past the fixed card height. A nil lane
// places the item in the fixed-width unassigned column centered in the
// container.
func PlaceItem(item TimedItem, lane *Lane, containerWidth, cardPadding float64, dayStartMinute int, pixelsPerHour float64) PlacedItem {
	y := MinutesToY(item.StartMinute, dayStartMinute, pixelsPerHour)

	var box CardBox
	if lane != nil {
		box = CardBox{
			X:      lane.LeftBound + cardPadding,
			Y:      y,
			Width:  lane.RightBound - lane.LeftBound - 2*cardPadding,
			Height: CardHeight,
		}
	} else {
		w := UnassignedColumnWidth - 2*cardPadding
		box = CardBox{
			X:      containerWidth/2 - w/2,
			Y:      y,
			Width:  w,
			Height: CardHeight,
		}
	}
	if box.Width < 0 {
		box.Width = 0
	}

	placed := PlacedItem{Item: item, Box: box}

	endY := MinutesToY(item.EndMinute, dayStartMinute, pixelsPerHour)
	if endY > y+CardHeight {
		placed.Connector = &Connector{
			X:     box.X + box.Width/2,
			FromY: y + CardHeight,
			ToY:   endY,
			Label: formatClock(item.EndMinute),
		}
	}

	return placed
}

// formatClock renders minutes since midnight as "HH:MM".
func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
