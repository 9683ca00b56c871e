package models

import (
	"strings"
	"time"
)

// Priority is the importance of a todo.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// DefaultPriority is applied to records that carry no priority.
const DefaultPriority = PriorityMedium

// Rank orders priorities for sorting: High first, unknown last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ParsePriority accepts any casing; an empty value yields the default.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPriority, true
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	}
	return Priority(s), false
}

// DateLayout is the format of Todo.DueDate.
const DateLayout = "2006-01-02"

// Todo represents a todo item.
type Todo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"due_date"` // YYYY-MM-DD or empty
	Completed   bool     `json:"completed"`
	CreatedAt   int64    `json:"created_at"` // epoch milliseconds
}

// Input carries user-supplied fields for create and edit.
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"due_date"`
	Completed   bool     `json:"completed"` // honoured on create only
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// Apply returns t with the non-nil patch fields applied. CreatedAt and ID never change.
func (p Patch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// PatchFromInput builds an edit patch. Completed is not part of an edit.
func PatchFromInput(in Input) Patch {
	title := strings.TrimSpace(in.Title)
	desc := in.Description
	prio := in.Priority
	due := in.DueDate
	return Patch{Title: &title, Description: &desc, Priority: &prio, DueDate: &due}
}

// SortKey selects the ordering applied by the query pipeline.
type SortKey string

const (
	SortNone         SortKey = "none"
	SortCreationTime SortKey = "creationTime"
	SortPriority     SortKey = "priority"
	SortDueDate      SortKey = "dueDate"
)

// ParseSortKey maps a query value to a SortKey; unknown values fall back to none.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, true
	case "creationtime", "creation_time", "created":
		return SortCreationTime, true
	case "priority":
		return SortPriority, true
	case "duedate", "due_date", "due":
		return SortDueDate, true
	}
	return SortNone, false
}

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TodoEvent is the message payload for Kafka, published after a confirmed mutation.
type TodoEvent struct {
	Action     string    `json:"action"`
	TodoID     string    `json:"todo_id"`
	Title      string    `json:"title,omitempty"`
	Completed  bool      `json:"completed"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}
