package client

import (
	"encoding/json"

	"taskboard/internal/hub"
	"taskboard/internal/model"
)

// Apply folds one hub event into the state. It is pure and idempotent:
// applying the same event twice yields the same state as applying it once,
// so replayed or duplicated messages are harmless.
func Apply(s State, ev hub.Event) State {
	switch ev.Target {
	case hub.EventTaskCreated, hub.EventTaskUpdated:
		task, ok := decodeTask(ev)
		if !ok {
			return s
		}
		s.Tasks = upsertTask(s.Tasks, task)
		s.LastInteractedTaskID = task.ID

	case hub.EventTaskDeleted:
		id, ok := decodeID(ev)
		if !ok {
			return s
		}
		s.Tasks = removeTask(s.Tasks, id)

	case hub.EventTasksUpdated, hub.EventTasksReordered:
		s.NeedsRefresh = true
	}
	return s
}

func decodeTask(ev hub.Event) (model.Task, bool) {
	var task model.Task
	if len(ev.Arguments) == 0 {
		return task, false
	}
	if err := json.Unmarshal(ev.Arguments[0], &task); err != nil || task.ID == "" {
		return task, false
	}
	return task, true
}

func decodeID(ev hub.Event) (string, bool) {
	if len(ev.Arguments) == 0 {
		return "", false
	}
	var id string
	if err := json.Unmarshal(ev.Arguments[0], &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// upsertTask replaces the task with the same id or appends, never mutating
// the input slice.
func upsertTask(tasks []model.Task, task model.Task) []model.Task {
	next := make([]model.Task, 0, len(tasks)+1)
	replaced := false
	for _, t := range tasks {
		if t.ID == task.ID {
			next = append(next, task)
			replaced = true
		} else {
			next = append(next, t)
		}
	}
	if !replaced {
		next = append(next, task)
	}
	return next
}

func removeTask(tasks []model.Task, id string) []model.Task {
	next := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	return next
}
