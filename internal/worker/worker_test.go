package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"todo-engine/internal/models"
)

type fakeJournal struct {
	events []models.TodoEvent
	err    error
}

func (j *fakeJournal) Append(_ context.Context, ev models.TodoEvent) error {
	if j.err != nil {
		return j.err
	}
	j.events = append(j.events, ev)
	return nil
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

func payload(t *testing.T, ev models.TodoEvent) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleMessageJournalsAndInvalidates(t *testing.T) {
	j, c := &fakeJournal{}, &countingCache{}
	w := &Worker{Journal: j, Cache: c}
	ev := models.TodoEvent{Action: models.ActionUpdated, TodoID: "3", Title: "t", Completed: true, OccurredAt: time.Unix(10, 0).UTC()}

	if err := w.handleMessage(context.Background(), payload(t, ev)); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if diff := cmp.Diff([]models.TodoEvent{ev}, j.events); diff != "" {
		t.Fatalf("journal mismatch (-want +got):\n%s", diff)
	}
	if c.n != 1 {
		t.Fatalf("invalidations = %d, want 1", c.n)
	}
}

func TestHandleMessageErrors(t *testing.T) {
	c := &countingCache{}
	w := &Worker{Journal: &fakeJournal{err: errors.New("db down")}, Cache: c}
	if err := w.handleMessage(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
	ev := models.TodoEvent{Action: models.ActionCreated, TodoID: "1"}
	if err := w.handleMessage(context.Background(), payload(t, ev)); err == nil {
		t.Fatal("expected journal error")
	}
	if c.n != 0 {
		t.Fatal("cache invalidated despite journal failure")
	}
}

func TestHandleMessageSkipsUnknownAction(t *testing.T) {
	j, c := &fakeJournal{}, &countingCache{}
	w := &Worker{Journal: j, Cache: c}
	if err := w.handleMessage(context.Background(), payload(t, models.TodoEvent{Action: "archived", TodoID: "1"})); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(j.events) != 0 || c.n != 0 {
		t.Fatal("unknown action should be ignored")
	}
}
