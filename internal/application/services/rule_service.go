package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// RuleService handles automation rule definitions. Rules are authored and
// stored only; no execution engine applies them, and last_run is never
// advanced.
type RuleService struct {
	repo   ports.RuleRepository
	logger *logger.Logger
}

// NewRuleService creates a new rule service
func NewRuleService(repo ports.RuleRepository, logger *logger.Logger) *RuleService {
	return &RuleService{repo: repo, logger: logger}
}

// List returns all rules, enabled rules first
func (s *RuleService) List(ctx context.Context) ([]entities.Rule, error) {
	rules, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Enabled && !rules[j].Enabled
	})
	return rules, nil
}

// Get retrieves a rule by id
func (s *RuleService) Get(ctx context.Context, id string) (*entities.Rule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// Create validates a rule definition against the authoring catalogs and
// stores it
func (s *RuleService) Create(ctx context.Context, req ports.CreateRuleRequest) (*entities.Rule, error) {
	if err := validateRuleDefinition(req.Conditions, req.Actions); err != nil {
		return nil, err
	}

	rule, err := s.repo.Create(ctx, map[string]interface{}{
		"name":       req.Name,
		"conditions": req.Conditions,
		"actions":    req.Actions,
		"enabled":    req.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}
	if rule != nil {
		s.logger.Infow("Rule created", "rule_id", rule.ID, "name", rule.Name)
	}
	return rule, nil
}

// Update applies a partial patch to a rule, validating any conditions or
// actions it carries
func (s *RuleService) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.Rule, error) {
	if raw, ok := patch["conditions"]; ok {
		conditions, err := coerceConditions(raw)
		if err != nil {
			return nil, err
		}
		for _, c := range conditions {
			if err := c.Validate(); err != nil {
				return nil, err
			}
		}
		patch["conditions"] = conditions
	}
	if raw, ok := patch["actions"]; ok {
		actions, err := coerceActions(raw)
		if err != nil {
			return nil, err
		}
		for _, a := range actions {
			if err := a.Validate(); err != nil {
				return nil, err
			}
		}
		patch["actions"] = actions
	}

	rule, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return rule, nil
}

// Toggle flips only the enabled flag
func (s *RuleService) Toggle(ctx context.Context, id string) (*entities.Rule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	if rule == nil {
		return nil, nil
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"enabled": !rule.Enabled})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle rule: %w", err)
	}
	if updated != nil {
		s.logger.Infow("Rule toggled", "rule_id", updated.ID, "enabled", updated.Enabled)
	}
	return updated, nil
}

// Delete removes a rule
func (s *RuleService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete rule: %w", err)
	}
	if deleted {
		s.logger.Infow("Rule deleted", "rule_id", id)
	}
	return deleted, nil
}

func validateRuleDefinition(conditions []entities.RuleCondition, actions []entities.RuleAction) error {
	for _, c := range conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %s %s: %w", c.Field, c.Operator, err)
		}
	}
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("action %s: %w", a.Type, err)
		}
	}
	return nil
}

// coerceConditions accepts either typed conditions or the generic maps a
// JSON patch body decodes into
func coerceConditions(raw interface{}) ([]entities.RuleCondition, error) {
	switch v := raw.(type) {
	case []entities.RuleCondition:
		return v, nil
	case []interface{}:
		conditions := make([]entities.RuleCondition, 0, len(v))
		for _, item := range v {
			fields, ok := item.(map[string]interface{})
			if !ok {
				return nil, entities.ErrInvalidRuleCondition
			}
			condition := entities.RuleCondition{}
			condition.Field, _ = fields["field"].(string)
			condition.Operator, _ = fields["operator"].(string)
			condition.Value, _ = fields["value"].(string)
			conditions = append(conditions, condition)
		}
		return conditions, nil
	default:
		return nil, entities.ErrInvalidRuleCondition
	}
}

func coerceActions(raw interface{}) ([]entities.RuleAction, error) {
	switch v := raw.(type) {
	case []entities.RuleAction:
		return v, nil
	case []interface{}:
		actions := make([]entities.RuleAction, 0, len(v))
		for _, item := range v {
			fields, ok := item.(map[string]interface{})
			if !ok {
				return nil, entities.ErrInvalidRuleAction
			}
			action := entities.RuleAction{}
			action.Type, _ = fields["type"].(string)
			action.Value, _ = fields["value"].(string)
			actions = append(actions, action)
		}
		return actions, nil
	default:
		return nil, entities.ErrInvalidRuleAction
	}
}
