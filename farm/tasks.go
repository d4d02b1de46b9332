package farm

import (
	"github.com/smartfarm/farmstore"
)

const (
	wateringCrop            = "wheat"
	wateringTaskName        = "Watering"
	wateringTaskDescription = "Water the wheat crop"
)

func (s *Service) ListTasks() ([]*Task, error) {
	return list(s, s.scm.Tasks, "tasks")
}

func (s *Service) GetTask(id uint64) (*Task, error) {
	return get(s, s.scm.Tasks, "Task", id)
}

// CreateTask stores a new, not yet completed task. CropID is kept as given;
// it is not checked against the crops collection.
func (s *Service) CreateTask(p TaskPayload) (*Task, error) {
	task, err := create(s, s.scm.Tasks, func(id, now uint64) *Task {
		return &Task{
			ID:          id,
			Name:        p.Name,
			Description: p.Description,
			CropID:      p.CropID,
			CreatedAt:   now,
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("task created", "id", task.ID, "crop_id", task.CropID)
	return task, nil
}

func (s *Service) UpdateTask(id uint64, u TaskUpdate) (*Task, error) {
	return modify(s, s.scm.Tasks, "Task", id, func(task *Task) {
		if u.Name != nil {
			task.Name = *u.Name
		}
		if u.Description != nil {
			task.Description = *u.Description
		}
		if u.CropID != nil {
			task.CropID = *u.CropID
		}
	})
}

func (s *Service) CompleteTask(id uint64) (*Task, error) {
	return modify(s, s.scm.Tasks, "Task", id, func(task *Task) {
		task.Completed = true
	})
}

func (s *Service) DeleteTask(id uint64) (*Task, error) {
	return remove(s, s.scm.Tasks, "Task", id)
}

// AutoAssignWateringTasks creates a watering task for every crop named
// exactly "wheat" (case-sensitive) and returns the new tasks, possibly none.
//
// A crop for which no id can be allocated is skipped and the remaining crops
// are still processed.
func (s *Service) AutoAssignWateringTasks() ([]*Task, error) {
	var created []*Task
	err := s.update(func(tx *farmstore.Tx) error {
		var crops []*Crop
		for _, crop := range s.scm.Crops.All(tx) {
			if crop.Name == wateringCrop {
				crops = append(crops, crop)
			}
		}

		for _, crop := range crops {
			id, err := s.ids.Next(tx)
			if err != nil {
				s.logger.Warn("skipping watering task", "crop_id", crop.ID, "err", err)
				continue
			}
			task := &Task{
				ID:          id,
				Name:        wateringTaskName,
				Description: wateringTaskDescription,
				CropID:      crop.ID,
				CreatedAt:   s.now(),
			}
			s.scm.Tasks.Put(tx, id, task)
			created = append(created, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		s.logger.Info("watering tasks assigned", "count", len(created))
	}
	return created, nil
}
