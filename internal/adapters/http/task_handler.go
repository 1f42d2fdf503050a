package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// TaskHandler handles task requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

// ListTasks returns the filtered task view
func (h *TaskHandler) ListTasks(c echo.Context) error {
	list, err := h.taskService.List(c.Request().Context(), c.QueryParam("filter"))
	if err != nil {
		h.logger.Error("List tasks failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve tasks")
	}
	return c.JSON(http.StatusOK, list)
}

// GetTask returns one task
func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.taskService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Get task failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve task")
	}
	if task == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, task)
}

// CreateTask stores a new task
func (h *TaskHandler) CreateTask(c echo.Context) error {
	data, err := bindPatch(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), data)
	if err != nil {
		h.logger.Error("Create task failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create task")
	}
	if task == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Task was rejected")
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial patch
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		h.logger.Error("Update task failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}
	if task == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, task)
}

// ToggleTask flips a task between pending and completed
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	task, err := h.taskService.Toggle(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Toggle task failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle task")
	}
	if task == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	deleted, err := h.taskService.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Delete task failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete task")
	}
	return c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}
