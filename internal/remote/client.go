// Package remote talks to the remote todo resource (DummyJSON contract) and
// normalizes its records into models.Todo.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"todo-engine/internal/metrics"
	"todo-engine/internal/models"
	"todo-engine/pkg/logger"
)

// DefaultBatchSize is the number of records requested by FetchAll.
const DefaultBatchSize = 30

// createdAtStep separates the synthetic creation times of fetched records.
const createdAtStep = int64(time.Second / time.Millisecond)

// Record is the wire shape of a remote todo.
type Record struct {
	ID        ID     `json:"id"`
	Todo      string `json:"todo"`
	Completed bool   `json:"completed"`
	UserID    int    `json:"userId,omitempty"`
	IsDeleted bool   `json:"isDeleted,omitempty"`
}

// ListResponse is the wire shape of GET /todos.
type ListResponse struct {
	Todos []Record `json:"todos"`
	Total int      `json:"total"`
	Skip  int      `json:"skip"`
	Limit int      `json:"limit"`
}

// ID accepts both numeric and string ids.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Client performs CRUD requests against the remote todo resource.
// It never retries; a failed call surfaces immediately.
type Client struct {
	BaseURL   string
	UserID    int
	BatchSize int
	HTTP      *http.Client
	Now       func() time.Time

	fetchGroup singleflight.Group
}

// NewClient returns a client for baseURL (e.g. https://dummyjson.com).
func NewClient(baseURL string, userID, batchSize int) *Client {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Client{
		BaseURL:   baseURL,
		UserID:    userID,
		BatchSize: batchSize,
		HTTP:      &http.Client{},
		Now:       time.Now,
	}
}

// FetchAll retrieves up to BatchSize todos. Concurrent calls share one request.
func (c *Client) FetchAll(ctx context.Context) ([]models.Todo, error) {
	v, err, _ := c.fetchGroup.Do("fetch", func() (interface{}, error) {
		return c.fetchAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]models.Todo)), nil
}

func (c *Client) fetchAll(ctx context.Context) ([]models.Todo, error) {
	q := url.Values{"limit": {strconv.Itoa(c.BatchSize)}}
	var list ListResponse
	status, err := c.do(ctx, "fetch", http.MethodGet, "/todos?"+q.Encode(), nil, &list)
	if err != nil {
		e := &FetchError{remoteError{Op: "fetch", StatusCode: status, Err: err}}
		logger.Error(ctx, "Remote fetch failed", "error", e)
		return nil, e
	}
	fetchedAt := c.Now().UnixMilli()
	todos := make([]models.Todo, 0, len(list.Todos))
	for i, rec := range list.Todos {
		todos = append(todos, Normalize(rec, fetchedAt-int64(i)*createdAtStep))
	}
	logger.Debug(ctx, "Remote fetch succeeded", "count", len(todos))
	return todos, nil
}

// Create sends the remote-known fields of in and returns the todo with the remote-assigned id.
func (c *Client) Create(ctx context.Context, in models.Input) (models.Todo, error) {
	body := map[string]any{
		"todo":      in.Title,
		"completed": in.Completed,
		"userId":    c.UserID,
	}
	var rec Record
	status, err := c.do(ctx, "create", http.MethodPost, "/todos/add", body, &rec)
	if err == nil && rec.ID == "" {
		err = fmt.Errorf("response carries no id")
	}
	if err != nil {
		e := &CreateError{remoteError{Op: "create", StatusCode: status, Err: err}}
		logger.Error(ctx, "Remote create failed", "error", e)
		return models.Todo{}, e
	}
	todo := Normalize(rec, c.Now().UnixMilli())
	if todo.Title == "" {
		todo.Title = in.Title
	}
	todo.Description = in.Description
	if in.Priority != "" {
		todo.Priority = in.Priority
	}
	todo.DueDate = in.DueDate
	return todo, nil
}

// Update sends the remote-known fields of p. The returned todo holds the
// remote's view of title and completion with the local fields of p applied;
// CreatedAt is zero and must be taken from the local copy.
func (c *Client) Update(ctx context.Context, id string, p models.Patch) (models.Todo, error) {
	body := map[string]any{}
	if p.Title != nil {
		body["todo"] = *p.Title
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	var rec Record
	status, err := c.do(ctx, "update", http.MethodPut, "/todos/"+url.PathEscape(id), body, &rec)
	if err != nil {
		e := &UpdateError{remoteError{Op: "update", ID: id, StatusCode: status, Err: err}}
		logger.Error(ctx, "Remote update failed", "error", e, "id", id)
		return models.Todo{}, e
	}
	todo := p.Apply(Normalize(rec, 0))
	todo.ID = id
	if rec.Todo != "" {
		todo.Title = rec.Todo
	}
	todo.Completed = rec.Completed
	return todo, nil
}

// Delete removes the todo with id on the remote.
func (c *Client) Delete(ctx context.Context, id string) error {
	status, err := c.do(ctx, "delete", http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
	if err != nil {
		e := &DeleteError{remoteError{Op: "delete", ID: id, StatusCode: status, Err: err}}
		logger.Error(ctx, "Remote delete failed", "error", e, "id", id)
		return e
	}
	return nil
}

// Normalize maps a remote record into the internal shape with defaults for
// the fields the remote does not store.
func Normalize(rec Record, createdAt int64) models.Todo {
	return models.Todo{
		ID:        string(rec.ID),
		Title:     rec.Todo,
		Priority:  models.DefaultPriority,
		DueDate:   "",
		Completed: rec.Completed,
		CreatedAt: createdAt,
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (int, error) {
	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, in, out)
	metrics.RemoteCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.RemoteCallsTotal.WithLabelValues(op, metrics.OutcomeOf(err)).Inc()
	return status, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
