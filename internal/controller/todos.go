package controller

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"todo-engine/internal/database"
	"todo-engine/internal/middleware"
	"todo-engine/internal/models"
	"todo-engine/internal/query"
	"todo-engine/internal/remote"
	"todo-engine/internal/repository"
	"todo-engine/internal/service"
	"todo-engine/internal/session"
	"todo-engine/internal/validation"
	"todo-engine/pkg/logger"
)

// ActivityLister reads the event journal.
type ActivityLister interface {
	ListEvents(ctx context.Context, limit int) ([]repository.EventRecord, error)
}

// Todos serves the todo API. Journal, DB and Redis are optional.
type Todos struct {
	Service *service.Service
	Journal ActivityLister
	PerPage int
	DB      *sql.DB
	Redis   *redis.Client
}

// GetTodos is the public handler: runs ?search=&sort=&page= over the collection.
func (h *Todos) GetTodos(c *gin.Context) {
	sortBy, ok := models.ParseSortKey(c.Query("sort"))
	if !ok {
		logger.Debug(c.Request.Context(), "Unknown sort key, using none", "sort", c.Query("sort"))
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	view := session.Compute(h.Service.Todos(), query.Params{
		SearchTerm:   c.Query("search"),
		SortBy:       sortBy,
		CurrentPage:  page,
		ItemsPerPage: h.PerPage,
	})
	c.JSON(http.StatusOK, view)
}

// GetTodo returns one todo by id.
func (h *Todos) GetTodo(c *gin.Context) {
	todo, err := h.Service.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// CreateTodo (auth): validates the body, creates it on the remote, returns 201.
func (h *Todos) CreateTodo(c *gin.Context) {
	ctx, ok := actorContext(c)
	if !ok {
		return
	}
	var body models.Input
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	todo, err := h.Service.Add(ctx, body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo (auth): replaces the editable fields of a todo.
func (h *Todos) UpdateTodo(c *gin.Context) {
	ctx, ok := actorContext(c)
	if !ok {
		return
	}
	var body models.Input
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	todo, err := h.Service.Edit(ctx, c.Param("id"), body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// ToggleTodo (auth): flips completion.
func (h *Todos) ToggleTodo(c *gin.Context) {
	ctx, ok := actorContext(c)
	if !ok {
		return
	}
	todo, err := h.Service.Toggle(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo (auth): removes a todo once the remote confirms.
func (h *Todos) DeleteTodo(c *gin.Context) {
	ctx, ok := actorContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Service.Delete(ctx, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Todo deleted"})
}

// Reload (auth): refetches the collection from the remote.
func (h *Todos) Reload(c *gin.Context) {
	ctx, ok := actorContext(c)
	if !ok {
		return
	}
	if err := h.Service.Reload(ctx); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(h.Service.Todos())})
}

// Activity (auth): most recent journalled events.
func (h *Todos) Activity(c *gin.Context) {
	ctx := c.Request.Context()
	if h.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Activity journal disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultListLimit)))
	events, err := h.Journal.ListEvents(ctx, limit)
	if err != nil {
		if errors.Is(err, database.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Activity journal disabled"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Health returns 200 if the process is alive. Used by load balancers.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 once the collection is loaded and configured backends answer.
func (h *Todos) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.Service.State.Version() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "collection not loaded"})
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis ping failed"})
			return
		}
	}
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database ping failed"})
			return
		}
	}
	c.String(http.StatusOK, "OK")
}

func actorContext(c *gin.Context) (context.Context, bool) {
	userID, _ := c.Get(middleware.UserKey)
	uid, _ := userID.(string)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return service.WithActor(c.Request.Context(), uid), true
}

func writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	var verr *validation.ValidationError
	switch {
	case ctx.Err() != nil || isContextErr(err):
		return
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	case remote.IsRemoteError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Error(ctx, "Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
