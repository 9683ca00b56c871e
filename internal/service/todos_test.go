package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"todo-engine/internal/models"
	"todo-engine/internal/remote"
	"todo-engine/internal/remote/remotetest"
	"todo-engine/internal/validation"
	"todo-engine/pkg/logger"
)

type memCache struct {
	todos       []models.Todo
	hit         bool
	sets        int
	invalidated int
}

func (c *memCache) Get(context.Context) ([]models.Todo, bool) { return c.todos, c.hit }
func (c *memCache) Set(_ context.Context, todos []models.Todo) {
	c.todos, c.sets = todos, c.sets+1
}
func (c *memCache) Invalidate(context.Context) { c.hit, c.invalidated = false, c.invalidated+1 }

type recordingPublisher struct{ events []models.TodoEvent }

func (p *recordingPublisher) Publish(_ context.Context, ev models.TodoEvent) error {
	p.events = append(p.events, ev)
	return nil
}

var today = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, titles ...string) (*Service, *remotetest.Server, *memCache, *recordingPublisher) {
	t.Helper()
	srv := remotetest.NewServer(titles...)
	t.Cleanup(srv.Close)
	cache, pub := &memCache{}, &recordingPublisher{}
	svc := New(remote.NewClient(srv.URL, 1, 30), cache, pub)
	svc.Now = func() time.Time { return today }
	svc.NewID = func() string { return LocalIDPrefix + "fixed" }
	return svc, srv, cache, pub
}

func loaded(t *testing.T, titles ...string) (*Service, *remotetest.Server, *memCache, *recordingPublisher) {
	t.Helper()
	svc, srv, cache, pub := newTestService(t, titles...)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc, srv, cache, pub
}

func ids(todos []models.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func TestLoadFetchesThenUsesSnapshot(t *testing.T) {
	svc, srv, cache, _ := loaded(t, "Buy milk", "Walk dog", "Read book")
	if diff := cmp.Diff([]string{"1", "2", "3"}, ids(svc.Todos())); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if cache.sets != 1 {
		t.Fatalf("snapshot sets = %d, want 1", cache.sets)
	}

	cache.hit = true
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if n := srv.Calls("fetch"); n != 1 {
		t.Fatalf("fetch calls = %d, want 1", n)
	}

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if n := srv.Calls("fetch"); n != 2 {
		t.Fatalf("fetch calls after reload = %d, want 2", n)
	}
}

func TestLoadFailureKeepsCollection(t *testing.T) {
	svc, srv, _, _ := loaded(t, "Buy milk")
	srv.Fail("fetch", http.StatusInternalServerError)
	err := svc.Reload(context.Background())
	if !remote.IsRemoteError(err) {
		t.Fatalf("Reload error = %v, want remote error", err)
	}
	if got := ids(svc.Todos()); len(got) != 1 || got[0] != "1" {
		t.Fatalf("collection changed after failed fetch: %v", got)
	}
}

func TestAddValidationSkipsRemote(t *testing.T) {
	svc, srv, _, pub := loaded(t, "Buy milk")
	tests := []struct {
		name  string
		in    models.Input
		field string
	}{
		{"short title", models.Input{Title: " ab "}, "title"},
		{"duplicate title", models.Input{Title: "BUY MILK"}, "title"},
		{"long description", models.Input{Title: "Pay rent", Description: strings.Repeat("x", 101)}, "description"},
		{"past due date", models.Input{Title: "Pay rent", DueDate: "2026-01-09"}, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tt.in)
			var verr *validation.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("Add error = %v, want validation error on %s", err, tt.field)
			}
		})
	}
	if n := srv.Calls("create"); n != 0 {
		t.Fatalf("create calls = %d, want 0", n)
	}
	if len(pub.events) != 0 || svc.State.Len() != 1 {
		t.Fatal("rejected input changed state")
	}
}

func TestAddPrependsConfirmedTodo(t *testing.T) {
	svc, _, cache, pub := loaded(t, "Buy milk", "Walk dog")
	ctx := WithActor(context.Background(), "alice")
	todo, err := svc.Add(ctx, models.Input{Title: "  Pay rent ", Description: "May", Priority: "high", DueDate: "2026-01-10"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := models.Todo{ID: "3", Title: "Pay rent", Description: "May", Priority: models.PriorityHigh, DueDate: "2026-01-10"}
	if diff := cmp.Diff(want, todo, cmpIgnoreCreatedAt); diff != "" {
		t.Fatalf("todo mismatch (-want +got):\n%s", diff)
	}
	if got := ids(svc.Todos()); got[0] != "3" || len(got) != 3 {
		t.Fatalf("ids = %v, want new todo first", got)
	}
	if len(pub.events) != 1 || pub.events[0].Action != models.ActionCreated || pub.events[0].Actor != "alice" {
		t.Fatalf("events = %+v", pub.events)
	}
	if cache.invalidated != 1 {
		t.Fatalf("invalidations = %d, want 1", cache.invalidated)
	}
}

var cmpIgnoreCreatedAt = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".CreatedAt"
}, cmp.Ignore())

func TestAddRemoteFailureLeavesCollection(t *testing.T) {
	svc, srv, cache, pub := loaded(t, "Buy milk")
	srv.Fail("create", http.StatusServiceUnavailable)
	_, err := svc.Add(context.Background(), models.Input{Title: "Pay rent"})
	var cerr *remote.CreateError
	if !errors.As(err, &cerr) {
		t.Fatalf("Add error = %v, want CreateError", err)
	}
	if svc.State.Len() != 1 || len(pub.events) != 0 || cache.invalidated != 0 {
		t.Fatal("failed create changed state")
	}
}

func TestRemoteFailuresLoggedOnce(t *testing.T) {
	svc, srv, _, _ := loaded(t, "Buy milk")
	for _, op := range []string{"fetch", "create", "update", "delete"} {
		srv.Fail(op, http.StatusInternalServerError)
	}

	calls := map[string]func(ctx context.Context) error{
		"reload": svc.Reload,
		"add": func(ctx context.Context) error {
			_, err := svc.Add(ctx, models.Input{Title: "Pay rent"})
			return err
		},
		"toggle": func(ctx context.Context) error {
			_, err := svc.Toggle(ctx, "1")
			return err
		},
		"delete": func(ctx context.Context) error { return svc.Delete(ctx, "1") },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := logger.WithContext(context.Background(), logger.New(&buf))
			if err := call(ctx); !remote.IsRemoteError(err) {
				t.Fatalf("error = %v, want remote error", err)
			}
			if n := strings.Count(buf.String(), `"level":"ERROR"`); n != 1 {
				t.Fatalf("error lines = %d, want 1:\n%s", n, buf.String())
			}
		})
	}
}

func TestAddNeverReusesIDs(t *testing.T) {
	svc, srv, _, _ := loaded(t, "Buy milk", "Walk dog")
	srv.FixCreateID(1)
	todo, err := svc.Add(context.Background(), models.Input{Title: "Pay rent"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if todo.ID != "local-fixed" {
		t.Fatalf("id = %q, want local id for a live collision", todo.ID)
	}

	if err := svc.Delete(context.Background(), "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	srv.FixCreateID(2)
	svc.NewID = func() string { return LocalIDPrefix + "second" }
	todo, err = svc.Add(context.Background(), models.Input{Title: "Call mom"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if todo.ID != "local-second" {
		t.Fatalf("id = %q, deleted id was reused", todo.ID)
	}
}

func TestEditKeepsIdentity(t *testing.T) {
	svc, _, _, pub := loaded(t, "Buy milk", "Walk dog")
	before, _ := svc.Get("1")

	if _, err := svc.Edit(context.Background(), "1", models.Input{Title: "walk DOG"}); !validation.IsValidationError(err) {
		t.Fatalf("Edit to another title = %v, want validation error", err)
	}
	got, err := svc.Edit(context.Background(), "1", models.Input{Title: "BUY MILK", Priority: models.PriorityLow, DueDate: "2026-02-01"})
	if err != nil {
		t.Fatalf("Edit own title: %v", err)
	}
	want := models.Todo{ID: "1", Title: "BUY MILK", Priority: models.PriorityLow, DueDate: "2026-02-01", CreatedAt: before.CreatedAt}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("edited todo mismatch (-want +got):\n%s", diff)
	}
	if len(pub.events) != 1 || pub.events[0].Action != models.ActionUpdated {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestConcurrentAddsKeepTitlesUnique(t *testing.T) {
	svc, srv, _, _ := loaded(t, "Walk dog")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(context.Background(), models.Input{Title: "Buy milk"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case validation.IsValidationError(err):
			rejected++
		default:
			t.Fatalf("Add: %v", err)
		}
	}
	if ok != 1 || rejected != workers-1 {
		t.Fatalf("created %d, rejected %d; want 1 and %d", ok, rejected, workers-1)
	}
	matches := 0
	for _, todo := range svc.Todos() {
		if strings.EqualFold(todo.Title, "buy milk") {
			matches++
		}
	}
	if matches != 1 {
		t.Fatalf("todos titled buy milk = %d, want 1", matches)
	}
	if n := srv.Calls("create"); n != 1 {
		t.Fatalf("create calls = %d, want 1", n)
	}
}

func TestEditKeepsCompletion(t *testing.T) {
	svc, _, _, _ := loaded(t, "Buy milk")
	if _, err := svc.Toggle(context.Background(), "1"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	got, err := svc.Edit(context.Background(), "1", models.Input{Title: "Buy oat milk"})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !got.Completed {
		t.Fatal("edit cleared completion")
	}
	if cur, _ := svc.Get("1"); !cur.Completed || cur.Title != "Buy oat milk" {
		t.Fatalf("stored todo = %+v", cur)
	}
}

func TestToggle(t *testing.T) {
	svc, srv, _, _ := loaded(t, "Buy milk")
	got, err := svc.Toggle(context.Background(), "1")
	if err != nil || !got.Completed {
		t.Fatalf("Toggle = %+v, %v", got, err)
	}
	if got.Priority != models.PriorityMedium {
		t.Fatalf("toggle touched priority: %q", got.Priority)
	}

	srv.Fail("update", http.StatusInternalServerError)
	if _, err := svc.Toggle(context.Background(), "1"); !remote.IsRemoteError(err) {
		t.Fatalf("Toggle error = %v, want remote error", err)
	}
	if cur, _ := svc.Get("1"); !cur.Completed {
		t.Fatal("failed toggle changed completion")
	}
}

func TestDelete(t *testing.T) {
	svc, srv, _, pub := loaded(t, "Buy milk", "Walk dog")

	srv.Fail("delete", http.StatusInternalServerError)
	var derr *remote.DeleteError
	if err := svc.Delete(context.Background(), "1"); !errors.As(err, &derr) {
		t.Fatalf("Delete error = %v, want DeleteError", err)
	}
	if !svc.State.Contains("1") {
		t.Fatal("todo removed despite remote failure")
	}

	srv.Fail("delete", 0)
	if err := svc.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if svc.State.Contains("1") || !svc.State.WasDeleted("1") {
		t.Fatal("todo still present after delete")
	}
	if len(pub.events) != 1 || pub.events[0].Action != models.ActionDeleted || pub.events[0].Title != "Buy milk" {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestUnknownID(t *testing.T) {
	svc, srv, _, _ := loaded(t, "Buy milk")
	if _, err := svc.Toggle(context.Background(), "99"); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("Toggle = %v", err)
	}
	if _, err := svc.Edit(context.Background(), "99", models.Input{Title: "Anything"}); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("Edit = %v", err)
	}
	if err := svc.Delete(context.Background(), "99"); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("Delete = %v", err)
	}
	if srv.Calls("update")+srv.Calls("delete") != 0 {
		t.Fatal("remote called for an unknown id")
	}
}
