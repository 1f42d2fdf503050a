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

// RuleHandler handles automation rule requests
type RuleHandler struct {
	ruleService *services.RuleService
	logger      *logger.Logger
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(ruleService *services.RuleService, logger *logger.Logger) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, logger: logger}
}

func isRuleDefinitionError(err error) bool {
	return errors.Is(err, entities.ErrInvalidRuleCondition) || errors.Is(err, entities.ErrInvalidRuleAction)
}

// ListRules returns all rules, enabled first
func (h *RuleHandler) ListRules(c echo.Context) error {
	rules, err := h.ruleService.List(c.Request().Context())
	if err != nil {
		h.logger.Error("List rules failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve rules")
	}
	return c.JSON(http.StatusOK, rules)
}

// GetRule returns one rule
func (h *RuleHandler) GetRule(c echo.Context) error {
	rule, err := h.ruleService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Get rule failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve rule")
	}
	if rule == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Rule not found")
	}
	return c.JSON(http.StatusOK, rule)
}

// CreateRule validates and stores a rule definition
func (h *RuleHandler) CreateRule(c echo.Context) error {
	var req ports.CreateRuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rule, err := h.ruleService.Create(c.Request().Context(), req)
	if err != nil {
		if isRuleDefinitionError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Create rule failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create rule")
	}
	if rule == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Rule was rejected")
	}
	return c.JSON(http.StatusCreated, rule)
}

// UpdateRule applies a partial patch
func (h *RuleHandler) UpdateRule(c echo.Context) error {
	patch, err := bindPatch(c)
	if err != nil {
		return err
	}

	rule, err := h.ruleService.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		if isRuleDefinitionError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Update rule failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update rule")
	}
	if rule == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Rule not found")
	}
	return c.JSON(http.StatusOK, rule)
}

// ToggleRule flips only the enabled flag
func (h *RuleHandler) ToggleRule(c echo.Context) error {
	rule, err := h.ruleService.Toggle(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Toggle rule failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to toggle rule")
	}
	if rule == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Rule not found")
	}
	return c.JSON(http.StatusOK, rule)
}

// DeleteRule removes a rule
func (h *RuleHandler) DeleteRule(c echo.Context) error {
	deleted, err := h.ruleService.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Delete rule failed", "error", err, "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete rule")
	}
	return c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}
