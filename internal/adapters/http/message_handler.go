package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// MessageHandler handles inbox requests
type MessageHandler struct {
	messageService *services.MessageService
	logger         *logger.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

// ListMessages returns the filtered inbox view
func (h *MessageHandler) ListMessages(c echo.Context) error {
	list, err := h.messageService.List(c.Request().Context(), c.QueryParam("filter"))
	if err != nil {
		h.logger.Error("List messages failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve messages")
	}
	return c.JSON(http.StatusOK, list)
}

// SearchMessages fuzzy-searches the inbox
func (h *MessageHandler) SearchMessages(c echo.Context) error {
	results, err := h.messageService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		h.logger.Error("Search messages failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search messages")
	}
	return c.JSON(http.StatusOK, results)
}

// GetMessage returns one message
func (h *MessageHandler) GetMessage(c echo.Context) error {
	message, err := h.messageService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Get message failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve message")
	}
	if message == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Message not found")
	}
	return c.JSON(http.StatusOK, message)
}

// CreateMessage stores a new message
func (h *MessageHandler) CreateMessage(c echo.Context) error {
	data, err := bindPatch(c)
	if err != nil {
		return err
	}

	message, err := h.messageService.Create(c.Request().Context(), data)
	if err != nil {
		h.logger.Error("Create message failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create message")
	}
	if message == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Message was rejected")
	}
	return c.JSON(http.StatusCreated, message)
}

// UpdateMessage applies a partial patch
func (h *MessageHandler) UpdateMessage(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return err
	}

	message, err := h.messageService.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		h.logger.Error("Update message failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update message")
	}
	if message == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Message not found")
	}
	return c.JSON(http.StatusOK, message)
}

// MarkRead flags a message as read
func (h *MessageHandler) MarkRead(c echo.Context) error {
	message, err := h.messageService.MarkRead(c.Request().Context(), c.Param("id"), true)
	if err != nil {
		h.logger.Error("Mark message read failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark message as read")
	}
	if message == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Message not found")
	}
	return c.JSON(http.StatusOK, message)
}

// DeleteMessage removes a message
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	deleted, err := h.messageService.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Delete message failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete message")
	}
	return c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}
