package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Task statuses. A task in StatusDone is archived: excluded from the active
// views and returned only by the archive query.
const (
	StatusTodo         = "todo"
	StatusStopped      = "stopped"
	StatusInProgress   = "inprogress"
	StatusHomologation = "homologation"
	StatusDone         = "done"

	// StatusEdited is a history sentinel, never a real task status.
	StatusEdited = "edited"
)

// Defaults applied when a create request leaves the field empty.
const (
	DefaultPriority     = "Média"
	DefaultProjectColor = "#526D82"
)

// Statuses lists the real task statuses in board order.
var Statuses = []string{StatusTodo, StatusStopped, StatusInProgress, StatusHomologation, StatusDone}

type Task struct {
	ID            string          `json:"id" firestore:"id"`
	NumericID     int64           `json:"numericId" firestore:"numericId"`
	Title         string          `json:"title" firestore:"title"`
	Description   string          `json:"description" firestore:"description"`
	Responsible   ResponsibleList `json:"responsible" firestore:"responsible"`
	AzureLink     string          `json:"azureLink" firestore:"azureLink"`
	Project       string          `json:"project" firestore:"project"`
	ProjectColor  string          `json:"projectColor" firestore:"projectColor"`
	Priority      string          `json:"priority" firestore:"priority"`
	Status        string          `json:"status" firestore:"status"`
	CreatedAt     string          `json:"createdAt" firestore:"createdAt"`
	CreatedBy     string          `json:"createdBy" firestore:"createdBy"`
	History       []HistoryEntry  `json:"history" firestore:"history"`
	Order         int64           `json:"order" firestore:"order"`
	DueDate       *string         `json:"dueDate" firestore:"dueDate"`
	Attachments   []Attachment    `json:"attachments" firestore:"attachments"`
	Comments      []Comment       `json:"comments" firestore:"comments"`
	PendingAlerts []string        `json:"pendingAlerts,omitempty" firestore:"pendingAlerts"`
}

// HistoryEntry records one status the task held. Timestamps are stored as
// RFC 3339 strings, exactly as they travel on the wire.
type HistoryEntry struct {
	Status    string `json:"status" firestore:"status"`
	Timestamp string `json:"timestamp" firestore:"timestamp"`
}

type Attachment struct {
	Name       string `json:"name" firestore:"name"`
	URL        string `json:"url" firestore:"url"`
	UploadedAt string `json:"uploadedAt" firestore:"uploadedAt"`
}

type Comment struct {
	Text      string `json:"text" firestore:"text"`
	Author    string `json:"author" firestore:"author"`
	UserID    string `json:"userId,omitempty" firestore:"userId"`
	Timestamp string `json:"timestamp" firestore:"timestamp"`
}

// Counter is the singleton document (id "taskCounter") backing sequential
// task numbering. It is only ever mutated inside a transaction.
type Counter struct {
	CurrentID int64 `json:"currentId" firestore:"currentId"`
}

// CounterDocID is the fixed document id of the task counter.
const CounterDocID = "taskCounter"

// FormatTaskID derives the human-readable task id from a counter value.
func FormatTaskID(numericID int64) string {
	return fmt.Sprintf("TC-%03d", numericID)
}

// RecordStatus appends a history entry for the given status.
func (t *Task) RecordStatus(status string, at time.Time) {
	t.History = append(t.History, HistoryEntry{
		Status:    status,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

// ResponsibleNames returns the plain names of all responsible parties.
func (t *Task) ResponsibleNames() []string {
	names := make([]string, 0, len(t.Responsible))
	for _, r := range t.Responsible {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}

// Responsible identifies one responsible party. Legacy documents stored
// plain names; those decode into a Responsible with only Name set.
type Responsible struct {
	Name    string `json:"name" firestore:"name"`
	Email   string `json:"email,omitempty" firestore:"email"`
	Picture string `json:"picture,omitempty" firestore:"picture"`
}

// UnmarshalJSON accepts either the current object shape or a legacy plain
// string name.
func (r *Responsible) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = Responsible{Name: strings.TrimSpace(name)}
		return nil
	}

	type responsible Responsible
	var v responsible
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Responsible(v)
	return nil
}

// ResponsibleList is the normalized representation of the responsible field.
// Older clients sent a comma-separated string, then a list of names, and the
// current client sends a list of user objects; all three decode into the same
// slice so the ambiguity never survives past the model boundary.
type ResponsibleList []Responsible

func (l *ResponsibleList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		*l = SplitResponsible(joined)
		return nil
	}

	var items []Responsible
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// SplitResponsible turns a comma-separated name string into a list,
// trimming whitespace and dropping empty entries.
func SplitResponsible(joined string) ResponsibleList {
	parts := strings.Split(joined, ",")
	list := make(ResponsibleList, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		list = append(list, Responsible{Name: name})
	}
	return list
}
