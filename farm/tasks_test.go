package farm

import (
	"testing"

	"github.com/smartfarm/farmstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks_Lifecycle(t *testing.T) {
	s, _ := newTestService(t, Options{})

	task, err := s.CreateTask(TaskPayload{Name: "Plow", Description: "east field", CropID: 77})
	require.NoError(t, err)
	assert.False(t, task.Completed)
	assert.EqualValues(t, 77, task.CropID, "crop references are not validated")

	got, err := s.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)

	upd, err := s.UpdateTask(task.ID, TaskUpdate{Description: ptr("west field")})
	require.NoError(t, err)
	assert.Equal(t, "Plow", upd.Name)
	assert.Equal(t, "west field", upd.Description)
	assert.Equal(t, task.CreatedAt, upd.CreatedAt)
	assert.Equal(t, task.ID, upd.ID)

	done, err := s.CompleteTask(task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	deleted, err := s.DeleteTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, done, deleted)

	_, err = s.GetTask(task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ListTasks()
	assert.EqualError(t, err, "No tasks found.")
}

func TestTasks_DeleteMissing(t *testing.T) {
	s, _ := newTestService(t, Options{})

	_, err := s.DeleteTask(999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Task with id=999 not found.")

	_, err = s.CompleteTask(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTasks_AutoAssignWatering(t *testing.T) {
	s, _ := newTestService(t, Options{})

	wheat, err := s.CreateCrop(CropPayload{Name: "wheat", Quantity: 10})
	require.NoError(t, err)
	_, err = s.CreateCrop(CropPayload{Name: "Wheat", Quantity: 10})
	require.NoError(t, err)

	tasks, err := s.AutoAssignWateringTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Watering", tasks[0].Name)
	assert.Equal(t, "Water the wheat crop", tasks[0].Description)
	assert.Equal(t, wheat.ID, tasks[0].CropID)
	assert.False(t, tasks[0].Completed)

	all, err := s.ListTasks()
	require.NoError(t, err)
	assert.Equal(t, tasks, all)
}

func TestTasks_AutoAssignWithoutWheat(t *testing.T) {
	s, _ := newTestService(t, Options{})

	tasks, err := s.AutoAssignWateringTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = s.CreateCrop(CropPayload{Name: "Wheat"})
	require.NoError(t, err)
	tasks, err = s.AutoAssignWateringTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTasks_AutoAssignSkipsFailedAllocations(t *testing.T) {
	s, _ := newTestService(t, Options{})

	first, err := s.CreateCrop(CropPayload{Name: "wheat"})
	require.NoError(t, err)
	second, err := s.CreateCrop(CropPayload{Name: "wheat"})
	require.NoError(t, err)

	s.ids = &failingIDs{next: s.ids, fail: map[int]error{1: farmstore.ErrCounterExhausted}}

	tasks, err := s.AutoAssignWateringTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, second.ID, tasks[0].CropID)
	assert.NotEqual(t, first.ID, tasks[0].CropID)
	assert.EqualValues(t, 3, tasks[0].ID)
}
