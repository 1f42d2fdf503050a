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

// Request/Response types shared across handlers

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DeletedResponse reports the outcome of a delete. Deleted is false when the
// id was malformed or the record was already gone.
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// bindPatch decodes a partial-update body. Field names may use either the
// stored snake_case names or their camelCase aliases; normalization happens
// at the repository boundary.
func bindPatch(c echo.Context) (map[string]interface{}, error) {
	patch := map[string]interface{}{}
	if err := c.Bind(&patch); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return patch, nil
}

// AuthHandler handles token issuance
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Token exchanges the configured API key for a JWT
func (h *AuthHandler) Token(c echo.Context) error {
	var req ports.TokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Token(req)
	if err != nil {
		if errors.Is(err, entities.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid API key")
		}
		h.logger.Error("Token issuance failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Token issuance failed")
	}

	return c.JSON(http.StatusOK, response)
}
