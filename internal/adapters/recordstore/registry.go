package recordstore

import "fmt"

// Table names known to the store
const (
	TableMessage           = "message"
	TableEvent             = "event"
	TableTask              = "task"
	TableProject           = "project"
	TableRule              = "rule"
	TableServiceConnection = "service_connection"
)

// registry whitelists tables and their columns. The postgres store builds
// SQL from identifiers, so everything must pass through this table before it
// reaches a query string.
var registry = map[string][]string{
	TableMessage:           {"from", "subject", "preview", "service", "timestamp", "read", "labels"},
	TableEvent:             {"title", "service", "start", "end", "location", "attendees", "project_id"},
	TableTask:              {"title", "description", "priority", "status", "due_date", "service", "project_id"},
	TableProject:           {"name", "color", "linked_items", "created", "progress"},
	TableRule:              {"name", "conditions", "actions", "enabled", "last_run"},
	TableServiceConnection: {"service_id", "status", "last_sync", "settings"},
}

// Tables returns the known table names
func Tables() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Columns returns the whitelisted columns of a table
func Columns(table string) ([]string, error) {
	return validateTable(table)
}

func validateTable(table string) ([]string, error) {
	columns, ok := registry[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return columns, nil
}

func validateFields(table string, fields []string) error {
	columns, err := validateTable(table)
	if err != nil {
		return err
	}
	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	for _, f := range fields {
		if _, ok := allowed[f]; !ok {
			return fmt.Errorf("unknown field %q in table %q", f, table)
		}
	}
	return nil
}
