package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sahilm/fuzzy"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// MessageService handles inbox operations
type MessageService struct {
	repo      ports.MessageRepository
	sanitizer *bluemonday.Policy
	logger    *logger.Logger
}

// NewMessageService creates a new message service
func NewMessageService(repo ports.MessageRepository, logger *logger.Logger) *MessageService {
	return &MessageService{
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// List returns messages matching the filter plus the filter names valid for
// the loaded set: "all", "unread", and one per distinct service present.
func (s *MessageService) List(ctx context.Context, filter string) (*ports.MessageList, error) {
	messages, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	filters := messageFilters(messages)

	if filter == "" {
		filter = ports.FilterAll
	}
	filtered := make([]entities.Message, 0, len(messages))
	for _, m := range messages {
		if matchMessageFilter(m, filter) {
			filtered = append(filtered, m)
		}
	}

	return &ports.MessageList{Messages: filtered, Filters: filters}, nil
}

func matchMessageFilter(m entities.Message, filter string) bool {
	switch filter {
	case ports.FilterAll:
		return true
	case ports.FilterUnread:
		return !m.Read
	default:
		return m.Service == filter
	}
}

func messageFilters(messages []entities.Message) []string {
	filters := []string{ports.FilterAll, ports.FilterUnread}
	seen := make(map[string]struct{})
	var services []string
	for _, m := range messages {
		if m.Service == "" {
			continue
		}
		if _, ok := seen[m.Service]; !ok {
			seen[m.Service] = struct{}{}
			services = append(services, m.Service)
		}
	}
	sort.Strings(services)
	return append(filters, services...)
}

// Search fuzzy-matches the query against sender, subject and preview,
// ranked by match score
func (s *MessageService) Search(ctx context.Context, query string) ([]entities.Message, error) {
	messages, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	if strings.TrimSpace(query) == "" {
		return messages, nil
	}

	haystack := make([]string, len(messages))
	for i, m := range messages {
		haystack[i] = m.From + " " + m.Subject + " " + m.Preview
	}

	matches := fuzzy.Find(query, haystack)
	results := make([]entities.Message, 0, len(matches))
	for _, match := range matches {
		results = append(results, messages[match.Index])
	}
	return results, nil
}

// Get retrieves a message by id
func (s *MessageService) Get(ctx context.Context, id string) (*entities.Message, error) {
	message, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return message, nil
}

// Create stores a new message. Previews may carry markup from the source
// service, so they are sanitized down to plain text at this boundary.
func (s *MessageService) Create(ctx context.Context, data map[string]interface{}) (*entities.Message, error) {
	if preview, ok := data["preview"].(string); ok {
		data["preview"] = s.sanitizer.Sanitize(preview)
	}

	message, err := s.repo.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if message != nil {
		s.logger.Infow("Message created", "message_id", message.ID, "service", message.Service)
	}
	return message, nil
}

// Update applies a partial patch to a message
func (s *MessageService) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.Message, error) {
	message, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	return message, nil
}

// MarkRead flips only the read flag
func (s *MessageService) MarkRead(ctx context.Context, id string, read bool) (*entities.Message, error) {
	message, err := s.repo.Update(ctx, id, map[string]interface{}{"read": read})
	if err != nil {
		return nil, fmt.Errorf("failed to mark message: %w", err)
	}
	return message, nil
}

// Delete removes a message
func (s *MessageService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete message: %w", err)
	}
	if deleted {
		s.logger.Infow("Message deleted", "message_id", id)
	}
	return deleted, nil
}
