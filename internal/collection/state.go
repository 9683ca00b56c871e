// Package collection holds the authoritative in-memory list of todos.
//
// Callers mutate the list only after the remote call that justifies the
// mutation has succeeded; the state itself never talks to the network.
package collection

import (
	"slices"
	"sync"

	"todo-engine/internal/models"
)

// State is an ordered todo list, most recent first.
type State struct {
	mu      sync.RWMutex
	todos   []models.Todo
	deleted map[string]struct{}
	version uint64
}

// New returns a state seeded with todos in the given order.
func New(todos ...models.Todo) *State {
	return &State{
		todos:   slices.Clone(todos),
		deleted: map[string]struct{}{},
	}
}

// Reset replaces the whole list, e.g. after a successful fetch.
// Ids removed earlier stay marked as deleted.
func (s *State) Reset(todos []models.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = slices.Clone(todos)
	s.version++
}

// Add prepends todo.
func (s *State) Add(todo models.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = slices.Insert(s.todos, 0, todo)
	s.version++
}

// Replace applies updater to the todo with id. It reports whether the id was found.
func (s *State) Replace(id string, updater func(models.Todo) models.Todo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	next := updater(s.todos[i])
	next.ID = s.todos[i].ID
	next.CreatedAt = s.todos[i].CreatedAt
	s.todos[i] = next
	s.version++
	return true
}

// Remove deletes the todo with id. It reports whether the id was found.
func (s *State) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.todos = slices.Delete(s.todos, i, i+1)
	s.deleted[id] = struct{}{}
	s.version++
	return true
}

// Get returns the todo with id.
func (s *State) Get(id string) (models.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.todos[i], true
	}
	return models.Todo{}, false
}

// Contains reports whether id is currently in the list.
func (s *State) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// WasDeleted reports whether id was removed at some point.
func (s *State) WasDeleted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.deleted[id]
	return ok
}

// Snapshot returns a copy of the list.
func (s *State) Snapshot() []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.todos)
}

// Len returns the number of todos.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.todos)
}

// Version increases on every mutation.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *State) index(id string) int {
	return slices.IndexFunc(s.todos, func(t models.Todo) bool { return t.ID == id })
}
