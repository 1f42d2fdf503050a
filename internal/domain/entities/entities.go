package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrMessageNotFound      = errors.New("message not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrRuleNotFound         = errors.New("rule not found")
	ErrConnectionNotFound   = errors.New("service connection not found")
	ErrUnknownService       = errors.New("unknown service")
	ErrServiceConnected     = errors.New("service is already connected")
	ErrInvalidRuleCondition = errors.New("invalid rule condition")
	ErrInvalidRuleAction    = errors.New("invalid rule action")
	ErrUnauthorized         = errors.New("unauthorized")
)

// Enums and types
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusSyncing      ConnectionStatus = "syncing"
	ConnectionStatusError        ConnectionStatus = "error"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// Message represents an aggregated inbox message from a connected service
type Message struct {
	ID        int       `json:"id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Preview   string    `json:"preview"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Labels    []string  `json:"labels"`
}

// Event represents a calendar event
type Event struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Service   string    `json:"service"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Location  string    `json:"location"`
	Attendees []string  `json:"attendees"`
	ProjectID *int      `json:"project_id"`
}

// Task represents a task aggregated from a connected service
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	Service     string     `json:"service"`
	ProjectID   *int       `json:"project_id"`
}

// LinkedItem is an advisory reference connecting a project to another record.
// There is no referential integrity behind it.
type LinkedItem struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Project groups tasks, events and messages
type Project struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Color       string       `json:"color"`
	LinkedItems []LinkedItem `json:"linked_items"`
	Created     time.Time    `json:"created"`
	Progress    int          `json:"progress"`
}

// RuleCondition is a single predicate of an automation rule
type RuleCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// RuleAction is a single action of an automation rule
type RuleAction struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Rule is an automation rule definition. Rules are purely definitional:
// nothing in the system evaluates them, and LastRun is never advanced.
type Rule struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Conditions []RuleCondition `json:"conditions"`
	Actions    []RuleAction    `json:"actions"`
	Enabled    bool            `json:"enabled"`
	LastRun    *time.Time      `json:"last_run"`
}

// ServiceConnection represents a link to an external service
type ServiceConnection struct {
	ID        int               `json:"id"`
	ServiceID string            `json:"service_id"`
	Status    ConnectionStatus  `json:"status"`
	LastSync  *time.Time        `json:"last_sync"`
	Settings  map[string]string `json:"settings"`
}

// Business logic methods for Task
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(time.Now()) && t.Status != TaskStatusCompleted
}

func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// ToggledStatus returns the status the task flips to on a completion toggle
func (t *Task) ToggledStatus() TaskStatus {
	if t.Status == TaskStatusCompleted {
		return TaskStatusPending
	}
	return TaskStatusCompleted
}

// Business logic methods for Event
func (e *Event) OnDay(day time.Time) bool {
	y1, m1, d1 := e.Start.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Business logic methods for Project
func (p *Project) LinkedItemOverflow(cap int) int {
	if len(p.LinkedItems) <= cap {
		return 0
	}
	return len(p.LinkedItems) - cap
}

// Priority used when ordering service connections: connected first,
// disconnected last.
func (cs ConnectionStatus) SortPriority() int {
	switch cs {
	case ConnectionStatusConnected:
		return 0
	case ConnectionStatusSyncing:
		return 1
	case ConnectionStatusError:
		return 2
	case ConnectionStatusDisconnected:
		return 3
	default:
		return 4
	}
}

// Utility methods
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (cs ConnectionStatus) IsValid() bool {
	switch cs {
	case ConnectionStatusConnected, ConnectionStatusSyncing, ConnectionStatusError, ConnectionStatusDisconnected:
		return true
	default:
		return false
	}
}
