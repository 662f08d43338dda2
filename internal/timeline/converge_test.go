package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayflow/internal/model"
)

func soloItem(id, owner string, start, end int) TimedItem {
	return TimedItem{
		ID:             id,
		Kind:           KindTask,
		StartMinute:    start,
		EndMinute:      end,
		OwnerID:        owner,
		ParticipantIDs: []string{owner},
		SourceID:       id,
		Draggable:      true,
	}
}

func sharedEventItems(uid string, start, end int, pids ...string) []TimedItem {
	items := make([]TimedItem, 0, len(pids))
	for _, pid := range pids {
		items = append(items, TimedItem{
			ID:             uid + "/" + pid,
			Kind:           KindEvent,
			StartMinute:    start,
			EndMinute:      end,
			OwnerID:        pid,
			ParticipantIDs: pids,
			SourceID:       uid,
		})
	}
	return items
}

func TestConvergenceRequiresSharingNotCoincidence(t *testing.T) {
	// Two unrelated items at the same time for different participants.
	items := []TimedItem{
		soloItem("t1", "alice", 9*60, 9*60+30),
		soloItem("t2", "bob", 9*60, 9*60+30),
	}
	assert.Empty(t, DetectConvergence(items, BucketMinutes))
}

func TestConvergenceSharedEvent(t *testing.T) {
	// One event 18:00-19:00 assigned to both: one zone per touched bucket.
	items := sharedEventItems("dinner", 18*60, 19*60, "alice", "bob")
	zones := DetectConvergence(items, BucketMinutes)
	require.Len(t, zones, 2)

	assert.Equal(t, 18*60, zones[0].StartMinute)
	assert.Equal(t, 18*60+30, zones[0].EndMinute)
	assert.Equal(t, 18*60+30, zones[1].StartMinute)
	assert.Equal(t, 19*60, zones[1].EndMinute)
	for _, z := range zones {
		assert.Equal(t, []string{"alice", "bob"}, z.ParticipantIDs)
		assert.ElementsMatch(t, []string{"dinner/alice", "dinner/bob"}, z.ItemIDs)
	}
}

func TestConvergenceUnalignedStart(t *testing.T) {
	// 18:15-18:45 touches the 18:00 and 18:30 buckets.
	items := sharedEventItems("coffee", 18*60+15, 18*60+45, "alice", "bob")
	zones := DetectConvergence(items, BucketMinutes)
	require.Len(t, zones, 2)
	assert.Equal(t, 18*60, zones[0].StartMinute)
	assert.Equal(t, 18*60+30, zones[1].StartMinute)
}

func TestConvergenceZonesNotMerged(t *testing.T) {
	// Adjacent buckets stay separate records; blending is the renderer's
	// call.
	items := sharedEventItems("trip", 10*60, 11*60+30, "alice", "bob")
	zones := DetectConvergence(items, BucketMinutes)
	assert.Len(t, zones, 3)
}

func TestFreeZonesRequireTwoParticipants(t *testing.T) {
	items := []TimedItem{soloItem("t1", "alice", 9*60, 10*60)}
	zones := DetectFreeZones(items, []model.Participant{alice}, 6*60, 22*60, BucketMinutes)
	assert.Nil(t, zones)
}

func TestFreeZoneMergingMaximal(t *testing.T) {
	// Both participants busy until 12:00 and from 13:30; the gap comes out
	// as exactly one merged zone.
	items := []TimedItem{
		soloItem("t1", "alice", 6*60, 12*60),
		soloItem("t2", "bob", 6*60, 12*60),
		soloItem("t3", "alice", 13*60+30, 22*60),
		soloItem("t4", "bob", 13*60+30, 22*60),
	}
	zones := DetectFreeZones(items, []model.Participant{alice, bob}, 6*60, 22*60, BucketMinutes)
	require.Len(t, zones, 1)
	assert.Equal(t, FreeZone{StartMinute: 720, EndMinute: 810}, zones[0])
}

func TestFreeZoneOneBusyParticipantBlocks(t *testing.T) {
	// Alice is busy 12:00-12:30, so only [12:30, 13:30) is all-free.
	items := []TimedItem{
		soloItem("t1", "alice", 6*60, 12*60),
		soloItem("t2", "bob", 6*60, 12*60),
		soloItem("t3", "alice", 12*60, 12*60+30),
		soloItem("t4", "alice", 13*60+30, 22*60),
		soloItem("t5", "bob", 13*60+30, 22*60),
	}
	zones := DetectFreeZones(items, []model.Participant{alice, bob}, 6*60, 22*60, BucketMinutes)
	require.Len(t, zones, 1)
	assert.Equal(t, FreeZone{StartMinute: 750, EndMinute: 810}, zones[0])
}

func TestFreeZoneEmptyDay(t *testing.T) {
	zones := DetectFreeZones(nil, []model.Participant{alice, bob}, 6*60, 22*60, BucketMinutes)
	require.Len(t, zones, 1)
	assert.Equal(t, FreeZone{StartMinute: 6 * 60, EndMinute: 22 * 60}, zones[0])
}

func TestFreeZoneRunEndsAtDayEnd(t *testing.T) {
	items := []TimedItem{
		soloItem("t1", "alice", 6*60, 20*60),
		soloItem("t2", "bob", 6*60, 20*60),
	}
	zones := DetectFreeZones(items, []model.Participant{alice, bob}, 6*60, 22*60, BucketMinutes)
	require.Len(t, zones, 1)
	assert.Equal(t, FreeZone{StartMinute: 20 * 60, EndMinute: 22 * 60}, zones[0])
}
