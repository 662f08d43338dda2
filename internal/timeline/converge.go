package timeline

import (
	"sort"

	"dayflow/internal/model"
)

// DetectConvergence scans the normalized items for shared ones (assigned to
// two or more participants) and emits one ConvergenceZone per bucket
// touched by each shared item's [start, end) span. Fanned-out copies of one
// source event are recognized via SourceID and contribute a single zone per
// bucket, carrying every copy's id.
//
// Adjacent buckets are intentionally not merged; whether neighbouring zones
// blend visually is a rendering decision. Two unrelated single-participant
// items at the same time never converge.
func DetectConvergence(items []TimedItem, bucketMinutes int) []ConvergenceZone {
	if bucketMinutes <= 0 {
		bucketMinutes = BucketMinutes
	}

	type group struct {
		participantIDs []string
		itemIDs        []string
		startMinute    int
		endMinute      int
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, it := range items {
		if !it.Shared() {
			continue
		}
		g, ok := groups[it.SourceID]
		if !ok {
			g = &group{
				participantIDs: append([]string(nil), it.ParticipantIDs...),
				startMinute:    it.StartMinute,
				endMinute:      it.EndMinute,
			}
			groups[it.SourceID] = g
			order = append(order, it.SourceID)
		}
		g.itemIDs = append(g.itemIDs, it.ID)
	}

	zones := make([]ConvergenceZone, 0)
	for _, src := range order {
		g := groups[src]
		end := g.endMinute
		if end <= g.startMinute {
			end = g.startMinute + 1
		}
		for b := g.startMinute - g.startMinute%bucketMinutes; b < end; b += bucketMinutes {
			zones = append(zones, ConvergenceZone{
				StartMinute:    b,
				EndMinute:      b + bucketMinutes,
				ParticipantIDs: append([]string(nil), g.participantIDs...),
				ItemIDs:        append([]string(nil), g.itemIDs...),
			})
		}
	}

	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].StartMinute < zones[j].StartMinute
	})

	return zones
}

// DetectFreeZones finds maximal contiguous runs of buckets within
// [dayStart, dayEnd) during which no selected participant has any item.
// With fewer than two selected participants there is nobody to be "together"
// with, so no zones are emitted. Unlike convergence zones, free runs are
// merged: free time is a continuous-range concept.
func DetectFreeZones(items []TimedItem, selected []model.Participant, dayStartMinute, dayEndMinute, bucketMinutes int) []FreeZone {
	if len(selected) < 2 {
		return nil
	}
	if bucketMinutes <= 0 {
		bucketMinutes = BucketMinutes
	}

	sel := make(map[string]bool, len(selected))
	for _, p := range selected {
		sel[p.ID] = true
	}

	busy := func(bucketStart int) bool {
		bucketEnd := bucketStart + bucketMinutes
		for _, it := range items {
			if it.OwnerID == "" || !sel[it.OwnerID] {
				continue
			}
			if it.StartMinute < bucketEnd && it.EndMinute > bucketStart {
				return true
			}
		}
		return false
	}

	zones := make([]FreeZone, 0)
	runStart := -1
	for b := dayStartMinute; b < dayEndMinute; b += bucketMinutes {
		if !busy(b) {
			if runStart < 0 {
				runStart = b
			}
			continue
		}
		if runStart >= 0 {
			zones = append(zones, FreeZone{StartMinute: runStart, EndMinute: b})
			runStart = -1
		}
	}
	if runStart >= 0 {
		zones = append(zones, FreeZone{StartMinute: runStart, EndMinute: dayEndMinute})
	}

	return zones
}
