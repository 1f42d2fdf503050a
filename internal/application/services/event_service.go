package services

import (
	"context"
	"fmt"
	"time"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// maxEventsPerCell caps how many events a month-grid day cell lists before
// collapsing the rest into an overflow count
const maxEventsPerCell = 3

// EventService handles calendar events and the month grid view
type EventService struct {
	repo   ports.EventRepository
	logger *logger.Logger
}

// NewEventService creates a new event service
func NewEventService(repo ports.EventRepository, logger *logger.Logger) *EventService {
	return &EventService{repo: repo, logger: logger}
}

// List returns all events ordered by start time
func (s *EventService) List(ctx context.Context) ([]entities.Event, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Get retrieves an event by id
func (s *EventService) Get(ctx context.Context, id string) (*entities.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// Create stores a new event
func (s *EventService) Create(ctx context.Context, data map[string]interface{}) (*entities.Event, error) {
	event, err := s.repo.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	if event != nil {
		s.logger.Infow("Event created", "event_id", event.ID, "title", event.Title)
	}
	return event, nil
}

// Update applies a partial patch to an event
func (s *EventService) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.Event, error) {
	event, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// Delete removes an event
func (s *EventService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	if deleted {
		s.logger.Infow("Event deleted", "event_id", id)
	}
	return deleted, nil
}

// MonthGrid buckets events into a 7-column grid spanning the visible month
// padded to full weeks, Sunday through Saturday. Every day of the month is
// covered and the cell count is always a multiple of seven.
func (s *EventService) MonthGrid(ctx context.Context, year int, month time.Month) (*ports.CalendarGrid, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar events: %w", err)
	}

	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	gridStart := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))
	gridEnd := lastOfMonth.AddDate(0, 0, int(time.Saturday-lastOfMonth.Weekday()))

	grid := &ports.CalendarGrid{Month: month, Year: year}
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		cell := ports.CalendarCell{
			Date:    day,
			InMonth: day.Month() == month,
			Events:  []entities.Event{},
		}
		for _, event := range events {
			if !event.OnDay(day) {
				continue
			}
			if len(cell.Events) < maxEventsPerCell {
				cell.Events = append(cell.Events, event)
			} else {
				cell.More++
			}
		}
		grid.Cells = append(grid.Cells, cell)
	}

	return grid, nil
}

// Day returns the full event list of one day, uncapped
func (s *EventService) Day(ctx context.Context, day time.Time) ([]entities.Event, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load day events: %w", err)
	}

	selected := []entities.Event{}
	for _, event := range events {
		if event.OnDay(day) {
			selected = append(selected, event)
		}
	}
	return selected, nil
}
