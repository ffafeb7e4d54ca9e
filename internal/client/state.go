package client

import "taskboard/internal/model"

// ViewMode selects which projection of the board is rendered.
type ViewMode string

const (
	ViewKanban   ViewMode = "kanban"
	ViewList     ViewMode = "list"
	ViewArchived ViewMode = "archived"
)

// FilterAll disables a filter dimension.
const FilterAll = "all"

// Sortable list columns.
const (
	SortByID          = "id"
	SortByTitle       = "title"
	SortByResponsible = "responsible"
	SortByProject     = "project"
	SortByPriority    = "priority"
	SortByStatus      = "status"
	SortByCreatedAt   = "createdAt"
	SortByDueDate     = "dueDate"
)

// State is the whole client-side board state. It is treated as an immutable
// value: the reducer and the setters return a new State instead of mutating
// in place.
type State struct {
	Tasks                []model.Task
	CurrentView          ViewMode
	SelectedResponsible  string
	SelectedProject      string
	SortColumn           string
	SortAscending        bool
	LastInteractedTaskID string

	// NeedsRefresh is set by coarse-grained events that carry no payload;
	// the sync layer reloads the full task list and clears it.
	NeedsRefresh bool
}

func NewState() State {
	return State{
		CurrentView:         ViewKanban,
		SelectedResponsible: FilterAll,
		SelectedProject:     FilterAll,
		SortColumn:          SortByID,
		SortAscending:       true,
	}
}

// WithTasks replaces the task list after a full reload and clears the
// refresh flag.
func (s State) WithTasks(tasks []model.Task) State {
	s.Tasks = append([]model.Task(nil), tasks...)
	s.NeedsRefresh = false
	return s
}

// WithView switches the rendered view.
func (s State) WithView(view ViewMode) State {
	s.CurrentView = view
	return s
}

// WithFilters sets the responsible and project filters; FilterAll disables a
// dimension.
func (s State) WithFilters(responsible, project string) State {
	s.SelectedResponsible = responsible
	s.SelectedProject = project
	return s
}

// WithSort sets the list sort column and direction.
func (s State) WithSort(column string, ascending bool) State {
	s.SortColumn = column
	s.SortAscending = ascending
	return s
}
