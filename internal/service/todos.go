// Package service applies todo mutations: validate locally, confirm with the
// remote store, then update the in-memory collection.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"todo-engine/internal/collection"
	"todo-engine/internal/metrics"
	"todo-engine/internal/models"
	"todo-engine/internal/validation"
	"todo-engine/pkg/logger"
)

// ErrTodoNotFound is returned when an id is not in the collection.
var ErrTodoNotFound = errors.New("todo not found")

// LocalIDPrefix marks ids generated here instead of by the remote.
const LocalIDPrefix = "local-"

// Store is the remote todo resource.
type Store interface {
	FetchAll(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, in models.Input) (models.Todo, error)
	Update(ctx context.Context, id string, p models.Patch) (models.Todo, error)
	Delete(ctx context.Context, id string) error
}

// Cache holds a snapshot of the fetched collection.
type Cache interface {
	Get(ctx context.Context) ([]models.Todo, bool)
	Set(ctx context.Context, todos []models.Todo)
	Invalidate(ctx context.Context)
}

// Publisher receives an event after every confirmed mutation.
type Publisher interface {
	Publish(ctx context.Context, ev models.TodoEvent) error
}

// Service owns the collection and serializes writes to it. A write holds
// the lock from validation through the remote call to the state change.
type Service struct {
	mu sync.Mutex

	Store     Store
	State     *collection.State
	Cache     Cache
	Publisher Publisher
	Now       func() time.Time
	NewID     func() string
}

// New returns a service over store with an empty collection. cache and pub may be nil.
func New(store Store, cache Cache, pub Publisher) *Service {
	return &Service{
		Store:     store,
		State:     collection.New(),
		Cache:     cache,
		Publisher: pub,
		Now:       time.Now,
		NewID:     func() string { return LocalIDPrefix + uuid.NewString() },
	}
}

type actorKey struct{}

// WithActor records who performs the mutations made with ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// Todos returns a copy of the collection.
func (s *Service) Todos() []models.Todo {
	return s.State.Snapshot()
}

// Get returns the todo with id.
func (s *Service) Get(id string) (models.Todo, error) {
	t, ok := s.State.Get(id)
	if !ok {
		return models.Todo{}, ErrTodoNotFound
	}
	return t, nil
}

// Load replaces the collection with the cached snapshot or, on a miss, the remote list.
// On failure the collection is left unchanged.
func (s *Service) Load(ctx context.Context) error {
	if s.Cache != nil {
		if todos, ok := s.Cache.Get(ctx); ok {
			s.mu.Lock()
			s.reset(todos)
			s.mu.Unlock()
			logger.Debug(ctx, "Loaded todos from snapshot", "count", len(todos))
			return nil
		}
	}
	return s.Reload(ctx)
}

// Reload bypasses the snapshot and fetches from the remote.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos, err := s.Store.FetchAll(ctx)
	if err != nil {
		return err
	}
	s.reset(todos)
	if s.Cache != nil {
		s.Cache.Set(ctx, todos)
	}
	logger.Info(ctx, "Loaded todos from remote", "count", len(todos))
	return nil
}

func (s *Service) reset(todos []models.Todo) {
	s.State.Reset(todos)
	metrics.CollectionSize.Set(float64(s.State.Len()))
}

// Add validates in, creates it on the remote and prepends the result.
func (s *Service) Add(ctx context.Context, in models.Input) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in = validation.Normalize(in)
	if err := s.validate(ctx, "", in); err != nil {
		return models.Todo{}, err
	}
	todo, err := s.Store.Create(ctx, in)
	if err != nil {
		return models.Todo{}, err
	}
	if s.State.Contains(todo.ID) || s.State.WasDeleted(todo.ID) {
		// The remote may hand out an id we already hold.
		logger.Warn(ctx, "Remote returned a reused id", "id", todo.ID)
		todo.ID = s.NewID()
	}
	s.State.Add(todo)
	metrics.CollectionSize.Set(float64(s.State.Len()))
	s.afterMutation(ctx, models.ActionCreated, todo)
	return todo, nil
}

// Edit replaces title, description, priority and due date of the todo with id.
// Completion is left as is; it changes only through Toggle.
func (s *Service) Edit(ctx context.Context, id string, in models.Input) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.State.Contains(id) {
		return models.Todo{}, ErrTodoNotFound
	}
	in = validation.Normalize(in)
	if err := s.validate(ctx, id, in); err != nil {
		return models.Todo{}, err
	}
	return s.update(ctx, id, models.PatchFromInput(in))
}

// Toggle flips the completion flag of the todo with id.
func (s *Service) Toggle(ctx context.Context, id string) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.State.Get(id)
	if !ok {
		return models.Todo{}, ErrTodoNotFound
	}
	completed := !cur.Completed
	return s.update(ctx, id, models.Patch{Completed: &completed})
}

func (s *Service) update(ctx context.Context, id string, p models.Patch) (models.Todo, error) {
	if _, err := s.Store.Update(ctx, id, p); err != nil {
		return models.Todo{}, err
	}
	if !s.State.Replace(id, p.Apply) {
		return models.Todo{}, ErrTodoNotFound
	}
	updated, _ := s.State.Get(id)
	s.afterMutation(ctx, models.ActionUpdated, updated)
	return updated, nil
}

// Delete removes the todo with id after the remote confirms.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.State.Get(id)
	if !ok {
		return ErrTodoNotFound
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.State.Remove(id)
	metrics.CollectionSize.Set(float64(s.State.Len()))
	s.afterMutation(ctx, models.ActionDeleted, cur)
	return nil
}

func (s *Service) validate(ctx context.Context, selfID string, in models.Input) error {
	var err error
	if selfID == "" {
		err = validation.ValidateNew(in, s.State.Snapshot(), s.Now())
	} else {
		err = validation.ValidateEdit(selfID, in, s.State.Snapshot(), s.Now())
	}
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		metrics.ValidationFailuresTotal.WithLabelValues(verr.Field).Inc()
		logger.Debug(ctx, "Todo rejected", "field", verr.Field, "reason", verr.Message)
	}
	return err
}

func (s *Service) afterMutation(ctx context.Context, action string, t models.Todo) {
	if s.Publisher != nil {
		ev := models.TodoEvent{
			Action:     action,
			TodoID:     t.ID,
			Title:      t.Title,
			Completed:  t.Completed,
			Actor:      actorFrom(ctx),
			OccurredAt: s.Now().UTC(),
		}
		if err := s.Publisher.Publish(ctx, ev); err != nil {
			logger.Warn(ctx, "Publish todo event failed", "error", err, "action", action, "id", t.ID)
		}
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx)
	}
}
