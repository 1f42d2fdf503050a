package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// EventHandler handles calendar event requests and the month grid view
type EventHandler struct {
	eventService *services.EventService
	logger       *logger.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService, logger *logger.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, logger: logger}
}

// ListEvents returns all events ordered by start time
func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.eventService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("List events failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve events")
	}
	return c.JSON(http.StatusOK, events)
}

// GetEvent returns one event
func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.eventService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Get event failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve event")
	}
	if event == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	return c.JSON(http.StatusOK, event)
}

// CreateEvent stores a new event
func (h *EventHandler) CreateEvent(c echo.Context) error {
	data, err := bindPatch(c)
	if err != nil {
		return err
	}

	event, err := h.eventService.Create(c.Request().Context(), data)
	if err != nil {
		h.logger.Error("Create event failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create event")
	}
	if event == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Event was rejected")
	}
	return c.JSON(http.StatusCreated, event)
}

// UpdateEvent applies a partial patch
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return err
	}

	event, err := h.eventService.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		h.logger.Error("Update event failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update event")
	}
	if event == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	return c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	deleted, err := h.eventService.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Delete event failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete event")
	}
	return c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}

// MonthGrid returns the padded month grid for ?month=YYYY-MM (defaults to
// the current month)
func (h *EventHandler) MonthGrid(c echo.Context) error {
	month := time.Now().UTC()
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid month, expected YYYY-MM")
		}
		month = parsed
	}

	grid, err := h.eventService.MonthGrid(c.Request().Context(), month.Year(), month.Month())
	if err != nil {
		h.logger.Error("Month grid failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build calendar")
	}
	return c.JSON(http.StatusOK, grid)
}

// Day returns the full event list for ?date=YYYY-MM-DD
func (h *EventHandler) Day(c echo.Context) error {
	raw := c.QueryParam("date")
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	events, err := h.eventService.Day(c.Request().Context(), day)
	if err != nil {
		h.logger.Error("Day events failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve day events")
	}
	return c.JSON(http.StatusOK, events)
}
