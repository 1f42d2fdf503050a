package repository

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/unifyhub/core/internal/adapters/recordstore"
	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// dateOnly accepts bare dates alongside RFC3339 timestamps; due dates often
// arrive without a time component.
const dateOnly = "2006-01-02"

func parseStoredTime(stored string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, stored); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, stored)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", stored, err)
	}
	return t, nil
}

func parseOptionalTime(stored string) (*time.Time, error) {
	if stored == "" {
		return nil, nil
	}
	t, err := parseStoredTime(stored)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseStoredBool(stored string) bool {
	value, err := strconv.ParseBool(stored)
	if err != nil {
		return false
	}
	return value
}

func parseOptionalInt(stored string) (*int, error) {
	if stored == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(stored)
	if err != nil {
		return nil, fmt.Errorf("parse int %q: %w", stored, err)
	}
	return &value, nil
}

func decodeJSONField(stored string, target interface{}) error {
	if stored == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(stored), target); err != nil {
		return fmt.Errorf("decode json field: %w", err)
	}
	return nil
}

// Message

var messageMapping = Mapping{
	Table:  recordstore.TableMessage,
	Fields: []string{"from", "subject", "preview", "service", "timestamp", "read", "labels"},
	Updatable: map[string]struct{}{
		"read":   {},
		"labels": {},
	},
	Codecs: map[string]Codec{
		"labels": CommaListCodec(),
	},
	OrderBy: []recordstore.Sort{{Field: "timestamp", Desc: true}},
}

func decodeMessage(record recordstore.Record) (entities.Message, error) {
	timestamp, err := parseStoredTime(record.Fields["timestamp"])
	if err != nil {
		return entities.Message{}, err
	}
	return entities.Message{
		ID:        record.ID,
		From:      record.Fields["from"],
		Subject:   record.Fields["subject"],
		Preview:   record.Fields["preview"],
		Service:   record.Fields["service"],
		Timestamp: timestamp,
		Read:      parseStoredBool(record.Fields["read"]),
		Labels:    SplitCommaList(record.Fields["labels"]),
	}, nil
}

// NewMessageRepository creates the message table repository
func NewMessageRepository(store recordstore.Store, log *logger.Logger) *Repository[entities.Message] {
	return New(store, messageMapping, decodeMessage, log)
}

// Event

var eventMapping = Mapping{
	Table:  recordstore.TableEvent,
	Fields: []string{"title", "service", "start", "end", "location", "attendees", "project_id"},
	Aliases: map[string]string{
		"projectId": "project_id",
	},
	Updatable: map[string]struct{}{
		"title":      {},
		"service":    {},
		"start":      {},
		"end":        {},
		"location":   {},
		"attendees":  {},
		"project_id": {},
	},
	Codecs: map[string]Codec{
		"attendees": CommaListCodec(),
	},
	OrderBy: []recordstore.Sort{{Field: "start"}},
}

func decodeEvent(record recordstore.Record) (entities.Event, error) {
	start, err := parseStoredTime(record.Fields["start"])
	if err != nil {
		return entities.Event{}, err
	}
	end, err := parseStoredTime(record.Fields["end"])
	if err != nil {
		return entities.Event{}, err
	}
	projectID, err := parseOptionalInt(record.Fields["project_id"])
	if err != nil {
		return entities.Event{}, err
	}
	return entities.Event{
		ID:        record.ID,
		Title:     record.Fields["title"],
		Service:   record.Fields["service"],
		Start:     start,
		End:       end,
		Location:  record.Fields["location"],
		Attendees: SplitCommaList(record.Fields["attendees"]),
		ProjectID: projectID,
	}, nil
}

// NewEventRepository creates the event table repository
func NewEventRepository(store recordstore.Store, log *logger.Logger) *Repository[entities.Event] {
	return New(store, eventMapping, decodeEvent, log)
}

// Task

var taskMapping = Mapping{
	Table:  recordstore.TableTask,
	Fields: []string{"title", "description", "priority", "status", "due_date", "service", "project_id"},
	Aliases: map[string]string{
		"dueDate":   "due_date",
		"projectId": "project_id",
	},
	Updatable: map[string]struct{}{
		"title":       {},
		"description": {},
		"priority":    {},
		"status":      {},
		"due_date":    {},
		"service":     {},
		"project_id":  {},
	},
}

func decodeTask(record recordstore.Record) (entities.Task, error) {
	dueDate, err := parseOptionalTime(record.Fields["due_date"])
	if err != nil {
		return entities.Task{}, err
	}
	projectID, err := parseOptionalInt(record.Fields["project_id"])
	if err != nil {
		return entities.Task{}, err
	}
	return entities.Task{
		ID:          record.ID,
		Title:       record.Fields["title"],
		Description: record.Fields["description"],
		Priority:    entities.Priority(record.Fields["priority"]),
		Status:      entities.TaskStatus(record.Fields["status"]),
		DueDate:     dueDate,
		Service:     record.Fields["service"],
		ProjectID:   projectID,
	}, nil
}

// NewTaskRepository creates the task table repository. Final ordering
// (pending before completed, missing due dates last) is applied by the task
// service since it is not expressible as a plain column sort.
func NewTaskRepository(store recordstore.Store, log *logger.Logger) *Repository[entities.Task] {
	return New(store, taskMapping, decodeTask, log)
}

// Project

var projectMapping = Mapping{
	Table:  recordstore.TableProject,
	Fields: []string{"name", "color", "linked_items", "created", "progress"},
	Aliases: map[string]string{
		"linkedItems": "linked_items",
	},
	Updatable: map[string]struct{}{
		"name":         {},
		"color":        {},
		"linked_items": {},
		"progress":     {},
	},
	Codecs: map[string]Codec{
		"linked_items": JSONCodec(),
	},
	OrderBy: []recordstore.Sort{{Field: "created"}},
}

func decodeProject(record recordstore.Record) (entities.Project, error) {
	created, err := parseStoredTime(record.Fields["created"])
	if err != nil {
		return entities.Project{}, err
	}
	items := []entities.LinkedItem{}
	if err := decodeJSONField(record.Fields["linked_items"], &items); err != nil {
		return entities.Project{}, err
	}
	progress := 0
	if stored := record.Fields["progress"]; stored != "" {
		progress, err = strconv.Atoi(stored)
		if err != nil {
			return entities.Project{}, fmt.Errorf("parse progress %q: %w", stored, err)
		}
	}
	return entities.Project{
		ID:          record.ID,
		Name:        record.Fields["name"],
		Color:       record.Fields["color"],
		LinkedItems: items,
		Created:     created,
		Progress:    progress,
	}, nil
}

// NewProjectRepository creates the project table repository
func NewProjectRepository(store recordstore.Store, log *logger.Logger) *Repository[entities.Project] {
	return New(store, projectMapping, decodeProject, log)
}

// Rule

var ruleMapping = Mapping{
	Table:  recordstore.TableRule,
	Fields: []string{"name", "conditions", "actions", "enabled", "last_run"},
	Aliases: map[string]string{
		"lastRun": "last_run",
	},
	// last_run is deliberately absent: rules are definitional and no
	// execution path advances it.
	Updatable: map[string]struct{}{
		"name":       {},
		"conditions": {},
		"actions":    {},
		"enabled":    {},
	},
	Codecs: map[string]Codec{
		"conditions": JSONCodec(),
		"actions":    JSONCodec(),
	},
	OrderBy: []recordstore.Sort{{Field: "enabled", Desc: true}},
}

func decodeRule(record recordstore.Record) (entities.Rule, error) {
	conditions := []entities.RuleCondition{}
	if err := decodeJSONField(record.Fields["conditions"], &conditions); err != nil {
		return entities.Rule{}, err
	}
	actions := []entities.RuleAction{}
	if err := decodeJSONField(record.Fields["actions"], &actions); err != nil {
		return entities.Rule{}, err
	}
	lastRun, err := parseOptionalTime(record.Fields["last_run"])
	if err != nil {
		return entities.Rule{}, err
	}
	return entities.Rule{
		ID:         record.ID,
		Name:       record.Fields["name"],
		Conditions: conditions,
		Actions:    actions,
		Enabled:    parseStoredBool(record.Fields["enabled"]),
		LastRun:    lastRun,
	}, nil
}

// NewRuleRepository creates the rule table repository
func NewRuleRepository(store recordstore.Store, log *logger.Logger) *Repository[entities.Rule] {
	return New(store, ruleMapping, decodeRule, log)
}

// ServiceConnection

var connectionMapping = Mapping{
	Table:  recordstore.TableServiceConnection,
	Fields: []string{"service_id", "status", "last_sync", "settings"},
	Aliases: map[string]string{
		"serviceId": "service_id",
		"lastSync":  "last_sync",
	},
	Updatable: map[string]struct{}{
		"status":    {},
		"last_sync": {},
		"settings":  {},
	},
	Codecs: map[string]Codec{
		"settings": JSONCodec(),
	},
	OrderBy: []recordstore.Sort{{Field: "last_sync", Desc: true}},
}

func decodeConnection(record recordstore.Record) (entities.ServiceConnection, error) {
	lastSync, err := parseOptionalTime(record.Fields["last_sync"])
	if err != nil {
		return entities.ServiceConnection{}, err
	}
	settings := map[string]string{}
	if err := decodeJSONField(record.Fields["settings"], &settings); err != nil {
		return entities.ServiceConnection{}, err
	}
	return entities.ServiceConnection{
		ID:        record.ID,
		ServiceID: record.Fields["service_id"],
		Status:    entities.ConnectionStatus(record.Fields["status"]),
		LastSync:  lastSync,
		Settings:  settings,
	}, nil
}

// NewConnectionRepository creates the service_connection table repository.
// Status-priority ordering is applied by the connection service.
func NewConnectionRepository(store recordstore.Store, log *logger.Logger) *Repository[entities.ServiceConnection] {
	return New(store, connectionMapping, decodeConnection, log)
}
