package ports

import (
	"time"

	"github.com/unifyhub/core/internal/domain/entities"
)

// View filter names shared by the inbox and task list. "all" plus any
// distinct service present in the loaded set are always valid.
const (
	FilterAll       = "all"
	FilterUnread    = "unread"
	FilterPending   = "pending"
	FilterCompleted = "completed"
	FilterOverdue   = "overdue"
)

// MessageList is the inbox view: filtered messages plus the filter names
// valid for the loaded set
type MessageList struct {
	Messages []entities.Message `json:"messages"`
	Filters  []string           `json:"filters"`
}

// TaskList is the task view: filtered tasks plus the valid filter names
type TaskList struct {
	Tasks   []entities.Task `json:"tasks"`
	Filters []string        `json:"filters"`
}

// CalendarCell is one day of the month grid. Events is capped at the grid's
// per-day display limit; More counts the overflow.
type CalendarCell struct {
	Date    time.Time        `json:"date"`
	InMonth bool             `json:"in_month"`
	Events  []entities.Event `json:"events"`
	More    int              `json:"more"`
}

// CalendarGrid spans the visible month padded to full weeks, so the cell
// count is always a multiple of seven
type CalendarGrid struct {
	Month time.Month     `json:"month"`
	Year  int            `json:"year"`
	Cells []CalendarCell `json:"cells"`
}

// ProjectSummary caps the linked items shown per project card
type ProjectSummary struct {
	Project entities.Project      `json:"project"`
	Items   []entities.LinkedItem `json:"items"`
	More    int                   `json:"more"`
}

// AvailableService is a catalog entry not yet connected
type AvailableService = entities.ServiceInfo

// CreateRuleRequest carries a rule definition for create and full update
type CreateRuleRequest struct {
	Name       string                   `json:"name" validate:"required"`
	Conditions []entities.RuleCondition `json:"conditions" validate:"required,min=1"`
	Actions    []entities.RuleAction    `json:"actions" validate:"required,min=1"`
	Enabled    bool                     `json:"enabled"`
}

// ConnectRequest asks for a new service connection
type ConnectRequest struct {
	ServiceID string            `json:"service_id" validate:"required"`
	Settings  map[string]string `json:"settings"`
}

// TokenRequest exchanges the configured API key for a JWT
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// TokenResponse carries the issued JWT
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
