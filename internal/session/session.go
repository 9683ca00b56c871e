// Package session keeps the query state of one viewer and the view derived from it.
package session

import (
	"sync"
	"time"

	"todo-engine/internal/debounce"
	"todo-engine/internal/models"
	"todo-engine/internal/pagination"
	"todo-engine/internal/query"
)

// View is one rendered page of the collection.
type View struct {
	SearchTerm  string         `json:"search"`
	SortBy      models.SortKey `json:"sort"`
	Items       []models.Todo  `json:"items"`
	TotalItems  int            `json:"total_items"`
	TotalPages  int            `json:"total_pages"`
	Completed   int            `json:"completed"`
	Remaining   int            `json:"remaining"`
	CurrentPage int            `json:"current_page"`
	Pages       []string       `json:"pages"`
}

// Compute runs the query pipeline over todos and builds the page list.
func Compute(todos []models.Todo, p query.Params) View {
	res := query.Run(todos, p)
	return View{
		SearchTerm:  p.SearchTerm,
		SortBy:      p.SortBy,
		Items:       res.Page,
		TotalItems:  res.TotalItems,
		TotalPages:  res.TotalPages,
		Completed:   res.Completed,
		Remaining:   res.Remaining,
		CurrentPage: res.CurrentPage,
		Pages:       pagination.Strings(pagination.Pages(res.CurrentPage, res.TotalPages)),
	}
}

// Source supplies the collection to query.
type Source interface {
	Todos() []models.Todo
}

// Session holds search, sort and page. Search changes are applied after a
// quiet period; everything else recomputes immediately.
type Session struct {
	src Source

	mu        sync.Mutex
	params    query.Params
	pending   *string // search term waiting for the quiet period
	view      View
	listeners []func(View)

	search *debounce.Debouncer
}

// New returns a session on page 1 with no search and no sort, and computes its first view.
func New(src Source, perPage int, searchDelay time.Duration) *Session {
	s := &Session{
		src: src,
		params: query.Params{
			SortBy:       models.SortNone,
			CurrentPage:  1,
			ItemsPerPage: perPage,
		},
	}
	s.search = debounce.New(searchDelay, s.commitSearch)
	s.Refresh()
	return s
}

// OnChange registers fn to receive every recomputed view.
func (s *Session) OnChange(fn func(View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Params returns the query state of the current view. A search term still
// waiting for the quiet period is not included.
func (s *Session) Params() query.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// View returns the last computed view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetSearchTerm records term and schedules it. Once input pauses the term
// is applied, the page returns to 1 and the view is recomputed.
func (s *Session) SetSearchTerm(term string) {
	s.mu.Lock()
	s.pending = &term
	s.mu.Unlock()
	s.search.Trigger()
}

// PendingSearch returns the search term not yet applied.
func (s *Session) PendingSearch() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return "", false
	}
	return *s.pending, true
}

func (s *Session) commitSearch() {
	s.mu.Lock()
	if s.pending != nil {
		s.params.SearchTerm = *s.pending
		s.params.CurrentPage = 1
		s.pending = nil
	}
	s.mu.Unlock()
	s.Refresh()
}

// SetSort changes the ordering and recomputes.
func (s *Session) SetSort(key models.SortKey) {
	s.mu.Lock()
	s.params.SortBy = key
	s.mu.Unlock()
	s.Refresh()
}

// SetPage moves to page and recomputes. Pages past the end yield an empty view.
func (s *Session) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.params.CurrentPage = page
	s.mu.Unlock()
	s.Refresh()
}

// Flush applies a pending search change now.
func (s *Session) Flush() {
	s.search.Flush()
}

// Close drops a pending search change.
func (s *Session) Close() {
	s.search.Stop()
}

// Refresh recomputes the view from the current collection.
func (s *Session) Refresh() {
	todos := s.src.Todos()
	s.mu.Lock()
	view := Compute(todos, s.params)
	s.view = view
	listeners := append(([]func(View))(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(view)
	}
}
