package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/jwt"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	taskHandler    *Task
	userHandler    *User
	storageHandler *Storage
	tokens         *jwt.Manager
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, taskHandler *Task, userHandler *User, storageHandler *Storage, tokens *jwt.Manager) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
		taskHandler:    taskHandler,
		userHandler:    userHandler,
		storageHandler: storageHandler,
		tokens:         tokens,
	}
}

// Setup configures all application routes. Reads stay open; every route
// that mutates state sits behind the bearer-token middleware, which is a
// pass-through when auth is disabled.
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")
	auth := middleware.RequireBearerToken(rt.tokens)

	meetings := v1.Group("/meetings")
	meetings.POST("/import", rt.meetingHandler.SubmitImport, auth)
	meetings.GET("", rt.meetingHandler.List)
	meetings.POST("", rt.meetingHandler.SubmitImport, auth)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.GET("/:id/status", rt.meetingHandler.GetStatus)
	meetings.GET("/:id/tasks", rt.meetingHandler.ListTasks)
	meetings.PATCH("/:id", rt.meetingHandler.Update, auth)
	meetings.DELETE("/:id", rt.meetingHandler.Delete, auth)

	tasks := v1.Group("/tasks")
	tasks.GET("", rt.taskHandler.List)
	tasks.GET("/:id", rt.taskHandler.Get)
	tasks.PATCH("/:id", rt.taskHandler.Update, auth)
	tasks.POST("/bulk-approve", rt.taskHandler.BulkApprove, auth)
	tasks.POST("/bulk-reject", rt.taskHandler.BulkReject, auth)

	v1.GET("/users", rt.userHandler.List)

	uploads := v1.Group("/uploads")
	uploads.POST("/blob", rt.storageHandler.CreateUploadURL, auth)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "sprint-planning-copilot",
	})
}
