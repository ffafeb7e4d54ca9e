package client

import (
	"sort"
	"strings"
	"time"

	"taskboard/internal/model"
)

// KanbanStatuses is the column order on the board. Done lives in the
// archive view, not on the board.
var KanbanStatuses = []string{
	model.StatusTodo,
	model.StatusStopped,
	model.StatusInProgress,
	model.StatusHomologation,
}

type KanbanColumn struct {
	Status string
	Tasks  []model.Task
}

// ActiveTasks returns the non-archived tasks that pass the responsible and
// project filters.
func ActiveTasks(s State) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.Status == model.StatusDone {
			continue
		}
		if matchesFilters(s, t) {
			out = append(out, t)
		}
	}
	return out
}

// KanbanColumns groups the active tasks by status, each column ordered by
// the persisted order field. New tasks carry a negative epoch order, so they
// surface at the top of their column.
func KanbanColumns(s State) []KanbanColumn {
	columns := make([]KanbanColumn, 0, len(KanbanStatuses))
	active := ActiveTasks(s)
	for _, status := range KanbanStatuses {
		col := KanbanColumn{Status: status}
		for _, t := range active {
			if t.Status == status {
				col.Tasks = append(col.Tasks, t)
			}
		}
		sort.SliceStable(col.Tasks, func(i, j int) bool {
			return col.Tasks[i].Order < col.Tasks[j].Order
		})
		columns = append(columns, col)
	}
	return columns
}

// ListRows returns the active tasks sorted by the selected column.
func ListRows(s State) []model.Task {
	rows := ActiveTasks(s)
	sort.SliceStable(rows, func(i, j int) bool {
		less := lessByColumn(s.SortColumn, rows[i], rows[j])
		if s.SortAscending {
			return less
		}
		return lessByColumn(s.SortColumn, rows[j], rows[i])
	})
	return rows
}

// ArchivedTasks returns the done tasks, most recently created first.
func ArchivedTasks(s State) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.Status == model.StatusDone && matchesFilters(s, t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return parseTime(out[i].CreatedAt).After(parseTime(out[j].CreatedAt))
	})
	return out
}

func matchesFilters(s State, t model.Task) bool {
	if s.SelectedProject != FilterAll && s.SelectedProject != "" && t.Project != s.SelectedProject {
		return false
	}
	if s.SelectedResponsible != FilterAll && s.SelectedResponsible != "" {
		for _, name := range t.ResponsibleNames() {
			if name == s.SelectedResponsible {
				return true
			}
		}
		return false
	}
	return true
}

func lessByColumn(column string, a, b model.Task) bool {
	switch column {
	case SortByTitle:
		return lessFold(a.Title, b.Title)
	case SortByResponsible:
		return lessFold(firstResponsible(a), firstResponsible(b))
	case SortByProject:
		return lessFold(a.Project, b.Project)
	case SortByPriority:
		return lessFold(a.Priority, b.Priority)
	case SortByStatus:
		return lessFold(a.Status, b.Status)
	case SortByCreatedAt:
		return parseTime(a.CreatedAt).Before(parseTime(b.CreatedAt))
	case SortByDueDate:
		return parseOptionalTime(a.DueDate).Before(parseOptionalTime(b.DueDate))
	default:
		return a.NumericID < b.NumericID
	}
}

func lessFold(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

func firstResponsible(t model.Task) string {
	names := t.ResponsibleNames()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// parseOptionalTime accepts RFC3339 and bare dates; tasks without a due date
// sort last.
func parseOptionalTime(value *string) time.Time {
	if value == nil || *value == "" {
		return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	if ts, err := time.Parse(time.RFC3339, *value); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02", *value); err == nil {
		return ts
	}
	return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
}
