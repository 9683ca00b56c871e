// Package query derives the visible subset of todos: filter, then sort, then paginate.
package query

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"todo-engine/internal/models"
	"todo-engine/internal/pagination"
)

// Params is the query state supplied by the caller.
type Params struct {
	SearchTerm   string
	SortBy       models.SortKey
	CurrentPage  int
	ItemsPerPage int
}

// Result is a derived view over a collection.
type Result struct {
	// Items is the full filtered and sorted sequence.
	Items []models.Todo
	// Page is the slice of Items for Params.CurrentPage; empty when the page is out of range.
	Page        []models.Todo
	TotalItems  int
	TotalPages  int
	CurrentPage int
	Completed   int
	Remaining   int
}

// Run applies the pipeline to todos. The input slice is not modified.
// CurrentPage is not clamped to TotalPages.
func Run(todos []models.Todo, p Params) Result {
	items := Sort(Filter(todos, p.SearchTerm), p.SortBy)
	res := Result{
		Items:       items,
		Page:        Paginate(items, p.CurrentPage, p.ItemsPerPage),
		TotalItems:  len(items),
		TotalPages:  pagination.TotalPages(len(items), p.ItemsPerPage),
		CurrentPage: p.CurrentPage,
	}
	for _, t := range items {
		if t.Completed {
			res.Completed++
		}
	}
	res.Remaining = res.TotalItems - res.Completed
	return res
}

// Filter keeps todos whose title contains term under Unicode case folding.
func Filter(todos []models.Todo, term string) []models.Todo {
	out := make([]models.Todo, 0, len(todos))
	if term == "" {
		return append(out, todos...)
	}
	fold := cases.Fold()
	needle := fold.String(term)
	for _, t := range todos {
		if strings.Contains(fold.String(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a stably sorted copy of todos.
func Sort(todos []models.Todo, key models.SortKey) []models.Todo {
	out := slices.Clone(todos)
	if out == nil {
		out = []models.Todo{}
	}
	switch key {
	case models.SortCreationTime:
		slices.SortStableFunc(out, func(a, b models.Todo) int {
			switch {
			case a.CreatedAt > b.CreatedAt:
				return -1
			case a.CreatedAt < b.CreatedAt:
				return 1
			}
			return 0
		})
	case models.SortPriority:
		slices.SortStableFunc(out, func(a, b models.Todo) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	case models.SortDueDate:
		// ISO dates order lexically; empty dates go last.
		slices.SortStableFunc(out, func(a, b models.Todo) int {
			switch {
			case a.DueDate == b.DueDate:
				return 0
			case a.DueDate == "":
				return 1
			case b.DueDate == "":
				return -1
			}
			return strings.Compare(a.DueDate, b.DueDate)
		})
	}
	return out
}

// Paginate returns the window for a 1-based page. Out-of-range pages yield an empty slice.
func Paginate(todos []models.Todo, page, perPage int) []models.Todo {
	if perPage <= 0 || page < 1 {
		return []models.Todo{}
	}
	start := pagination.Offset(page, perPage)
	if start >= len(todos) {
		return []models.Todo{}
	}
	end := min(start+perPage, len(todos))
	return slices.Clone(todos[start:end])
}
