package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayflow/internal/model"
)

func TestLoadMissingFileYieldsEmptyPlan(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, p.Tasks)
	assert.Empty(t, p.Routines)
}

func TestLoadEmptyPathRejected(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	sched := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	p := &Plan{
		Tasks: []model.Task{
			{ID: "t1", Title: "Dentist", ParticipantID: "alice", ScheduledFor: &sched},
		},
		Routines: []model.Routine{
			{ID: "r1", Title: "Run", ParticipantID: "bob", TimeOfDayMin: 7 * 60, ShowOnTimeline: true,
				RRule: "FREQ=WEEKLY;BYDAY=MO,WE,FR"},
		},
	}
	require.NoError(t, Save(path, p))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	require.Len(t, got.Routines, 1)
	assert.Equal(t, "Dentist", got.Tasks[0].Title)
	require.NotNil(t, got.Tasks[0].ScheduledFor)
	assert.True(t, sched.Equal(*got.Tasks[0].ScheduledFor))
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE,FR", got.Routines[0].RRule)

	// Saved with restrictive permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadAssignsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	data := []byte(`tasks:
  - title: Dentist
    participant: alice
routines:
  - title: Run
    participant: bob
    time_of_day_min: 420
    show_on_timeline: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	require.Len(t, p.Tasks, 1)
	require.Len(t, p.Routines, 1)
	assert.NotEmpty(t, p.Tasks[0].ID)
	assert.NotEmpty(t, p.Routines[0].ID)
}

func TestFindTaskAndRoutine(t *testing.T) {
	p := &Plan{
		Tasks:    []model.Task{{ID: "t1"}, {ID: "t2"}},
		Routines: []model.Routine{{ID: "r1"}},
	}
	require.NotNil(t, p.FindTask("t2"))
	assert.Nil(t, p.FindTask("r1"))
	require.NotNil(t, p.FindRoutine("r1"))
	assert.Nil(t, p.FindRoutine("t1"))

	// Returned pointers alias the plan, so mutations stick.
	p.FindTask("t1").Completed = true
	assert.True(t, p.Tasks[0].Completed)
}
