// Package remotetest provides an in-process fake of the remote todo resource.
// Unlike the public DummyJSON service it persists creates, updates and deletes.
package remotetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

type record struct {
	ID        int    `json:"id"`
	Todo      string `json:"todo"`
	Completed bool   `json:"completed"`
	UserID    int    `json:"userId"`
	IsDeleted bool   `json:"isDeleted,omitempty"`
}

// Server is a fake remote. Records are listed in insertion order.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	records []record
	nextID  int
	fail    map[string]int
	fixedID int
	calls   map[string]int
}

// NewServer starts a fake remote seeded with the given titles (ids 1..n).
// Close it when done.
func NewServer(titles ...string) *Server {
	s := &Server{nextID: 1, fail: map[string]int{}, calls: map[string]int{}}
	for _, t := range titles {
		s.records = append(s.records, record{ID: s.nextID, Todo: t, UserID: 1})
		s.nextID++
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", s.list)
	mux.HandleFunc("POST /todos/add", s.add)
	mux.HandleFunc("PUT /todos/{id}", s.update)
	mux.HandleFunc("PATCH /todos/{id}", s.update)
	mux.HandleFunc("DELETE /todos/{id}", s.delete)
	s.Server = httptest.NewServer(mux)
	return s
}

// Fail makes every call of op ("fetch", "create", "update", "delete") answer status.
// A zero status clears the failure.
func (s *Server) Fail(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, op)
		return
	}
	s.fail[op] = status
}

// FixCreateID makes every create answer with id, like the public DummyJSON service.
func (s *Server) FixCreateID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedID = id
}

// Calls returns how many requests op has received.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Titles returns the stored titles in order.
func (s *Server) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Todo
	}
	return out
}

func (s *Server) failed(w http.ResponseWriter, op string) bool {
	s.mu.Lock()
	s.calls[op]++
	status := s.fail[op]
	s.mu.Unlock()
	if status == 0 {
		return false
	}
	writeJSON(w, status, map[string]string{"message": "injected failure"})
	return true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "fetch") {
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	s.mu.Lock()
	recs := append([]record(nil), s.records...)
	s.mu.Unlock()
	total := len(recs)
	if err == nil && limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"todos": recs, "total": total, "skip": 0, "limit": len(recs)})
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "create") {
		return
	}
	var in record
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Todo) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Todo is required"})
		return
	}
	s.mu.Lock()
	in.ID = s.nextID
	s.nextID++
	if s.fixedID != 0 {
		in.ID = s.fixedID
	}
	s.records = append(s.records, in)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "update") {
		return
	}
	id, _ := strconv.Atoi(r.PathValue("id"))
	var patch struct {
		Todo      *string `json:"todo"`
		Completed *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if patch.Todo != nil {
			s.records[i].Todo = *patch.Todo
		}
		if patch.Completed != nil {
			s.records[i].Completed = *patch.Completed
		}
		writeJSON(w, http.StatusOK, s.records[i])
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Todo with id '" + r.PathValue("id") + "' not found"})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "delete") {
		return
	}
	id, _ := strconv.Atoi(r.PathValue("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		rec := s.records[i]
		s.records = append(s.records[:i], s.records[i+1:]...)
		rec.IsDeleted = true
		writeJSON(w, http.StatusOK, rec)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Todo with id '" + r.PathValue("id") + "' not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
