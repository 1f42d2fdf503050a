package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// ProjectHandler handles project requests
type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *logger.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *services.ProjectService, logger *logger.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: logger}
}

// ListProjects returns project summaries with capped linked items
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	summaries, err := h.projectService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("List projects failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve projects")
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetProject returns one project with its full linked item list
func (h *ProjectHandler) GetProject(c echo.Context) error {
	project, err := h.projectService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Get project failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve project")
	}
	if project == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	return c.JSON(http.StatusOK, project)
}

// CreateProject stores a new project
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	data, err := bindPatch(c)
	if err != nil {
		return err
	}

	project, err := h.projectService.Create(c.Request().Context(), data)
	if err != nil {
		h.logger.Error("Create project failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create project")
	}
	if project == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Project was rejected")
	}
	return c.JSON(http.StatusCreated, project)
}

// UpdateProject applies a partial patch
func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return err
	}

	project, err := h.projectService.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		h.logger.Error("Update project failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update project")
	}
	if project == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	return c.JSON(http.StatusOK, project)
}

// DeleteProject removes a project
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	deleted, err := h.projectService.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Delete project failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete project")
	}
	return c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}
