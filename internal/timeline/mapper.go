package timeline

import "math"

// MinutesToY maps a wall-clock minute onto the vertical axis of a day
// window starting at dayStartMinute. The transform is affine and computed
// directly from the integer minute every time, so repeated calls cannot
// accumulate rounding drift. Minutes outside the window map to negative
// coordinates or coordinates beyond the visible height; callers clip.
func MinutesToY(minute, dayStartMinute int, pixelsPerHour float64) float64 {
	return float64(minute-dayStartMinute) / 60.0 * pixelsPerHour
}

// YToMinutes is the algebraic inverse of MinutesToY, rounded to the nearest
// whole minute. It is used when interpreting a drag position.
func YToMinutes(y float64, dayStartMinute int, pixelsPerHour float64) int {
	return dayStartMinute + int(math.Round(y/pixelsPerHour*60.0))
}
