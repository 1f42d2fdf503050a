package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// ConnectionHandler handles service connection requests
type ConnectionHandler struct {
	connectionService *services.ConnectionService
	logger            *logger.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connectionService *services.ConnectionService, logger *logger.Logger) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService, logger: logger}
}

// ListConnections returns connected services ordered by status then last sync
func (h *ConnectionHandler) ListConnections(c echo.Context) error {
	connections, err := h.connectionService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("List connections failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve connections")
	}
	return c.JSON(http.StatusOK, connections)
}

// AvailableServices returns catalog entries that are not yet connected
func (h *ConnectionHandler) AvailableServices(c echo.Context) error {
	available, err := h.connectionService.Available(c.Request().Context())
	if err != nil {
		h.logger.Error("List available services failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve available services")
	}
	return c.JSON(http.StatusOK, available)
}

// GetConnection returns one connection
func (h *ConnectionHandler) GetConnection(c echo.Context) error {
	connection, err := h.connectionService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Get connection failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve connection")
	}
	if connection == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Connection not found")
	}
	return c.JSON(http.StatusOK, connection)
}

// Connect establishes a new service connection
func (h *ConnectionHandler) Connect(c echo.Context) error {
	var req ports.ConnectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	connection, err := h.connectionService.Connect(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrUnknownService):
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown service")
		case errors.Is(err, entities.ErrServiceConnected):
			return echo.NewHTTPError(http.StatusConflict, "Service is already connected")
		}
		h.logger.Error("Connect service failed", "error", err, "service", req.ServiceID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to connect service")
	}
	if connection == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Connection was rejected")
	}
	return c.JSON(http.StatusCreated, connection)
}

// Disconnect removes a service connection
func (h *ConnectionHandler) Disconnect(c echo.Context) error {
	deleted, err := h.connectionService.Disconnect(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Disconnect service failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to disconnect service")
	}
	return c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}

// Sync marks a connection as syncing and schedules its completion
func (h *ConnectionHandler) Sync(c echo.Context) error {
	connection, err := h.connectionService.Sync(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Sync connection failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sync connection")
	}
	if connection == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Connection not found")
	}
	return c.JSON(http.StatusOK, connection)
}
