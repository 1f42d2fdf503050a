package entities

// ServiceInfo describes an external service users can connect
type ServiceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// ServiceCatalog is the static list of connectable services. "Available"
// services are this catalog minus already-connected service ids.
var ServiceCatalog = []ServiceInfo{
	{ID: "gmail", Name: "Gmail", Icon: "Mail", Description: "Connect your Gmail account for email management"},
	{ID: "outlook", Name: "Outlook", Icon: "Mail", Description: "Connect your Outlook account for email management"},
	{ID: "slack", Name: "Slack", Icon: "MessageSquare", Description: "Integrate with Slack for team communication"},
	{ID: "discord", Name: "Discord", Icon: "MessageCircle", Description: "Connect Discord for community management"},
	{ID: "google", Name: "Google Calendar", Icon: "Calendar", Description: "Sync your Google Calendar events"},
	{ID: "apple", Name: "Apple Calendar", Icon: "Calendar", Description: "Connect your Apple Calendar"},
	{ID: "todoist", Name: "Todoist", Icon: "CheckSquare", Description: "Sync tasks from Todoist"},
	{ID: "asana", Name: "Asana", Icon: "CheckSquare", Description: "Connect your Asana workspace"},
}

// ServiceByID looks a service up in the catalog
func ServiceByID(id string) (ServiceInfo, bool) {
	for _, s := range ServiceCatalog {
		if s.ID == id {
			return s, true
		}
	}
	return ServiceInfo{}, false
}

// Rule authoring catalogs. Conditions and actions are validated against
// these when rules are created or updated.
var (
	RuleConditionFields = []string{"sender", "subject", "service", "priority", "date"}

	RuleOperators = []string{"contains", "equals", "starts_with", "ends_with"}

	RuleActionTypes = []string{
		"move_to_project",
		"mark_as_read",
		"archive",
		"add_label",
		"set_priority",
		"send_notification",
	}
)

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Validate checks a condition against the authoring catalogs
func (c RuleCondition) Validate() error {
	if !contains(RuleConditionFields, c.Field) || !contains(RuleOperators, c.Operator) {
		return ErrInvalidRuleCondition
	}
	return nil
}

// Validate checks an action against the authoring catalog
func (a RuleAction) Validate() error {
	if !contains(RuleActionTypes, a.Type) {
		return ErrInvalidRuleAction
	}
	return nil
}
