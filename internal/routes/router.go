package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todo-engine/internal/controller"
	"todo-engine/internal/middleware"
)

func Router(h *controller.Todos) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	// Health for load balancers and K8s probes
	router.GET("/health", controller.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public: no auth
	router.GET("/todos", h.GetTodos)
	router.GET("/todos/:id", h.GetTodo)

	// Protected: JWT required
	api := router.Group("")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/todos", h.CreateTodo)
		api.POST("/todos/reload", h.Reload)
		api.PUT("/todos/:id", h.UpdateTodo)
		api.PATCH("/todos/:id/toggle", h.ToggleTodo)
		api.DELETE("/todos/:id", h.DeleteTodo)
		api.GET("/activity", h.Activity)
	}

	return router
}
