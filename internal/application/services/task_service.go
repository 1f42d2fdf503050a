package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// farFuture sorts tasks without a due date after every dated task
var farFuture = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

// TaskService handles task-related operations
type TaskService struct {
	repo   ports.TaskRepository
	logger *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(repo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// List returns tasks matching the filter, pending before completed and
// earlier due dates first, plus the filter names valid for the loaded set.
func (s *TaskService) List(ctx context.Context, filter string) (*ports.TaskList, error) {
	tasks, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	sortTasks(tasks)
	filters := taskFilters(tasks)

	if filter == "" {
		filter = ports.FilterAll
	}
	filtered := make([]entities.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchTaskFilter(t, filter) {
			filtered = append(filtered, t)
		}
	}

	return &ports.TaskList{Tasks: filtered, Filters: filters}, nil
}

func sortTasks(tasks []entities.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].IsCompleted() != tasks[j].IsCompleted() {
			return !tasks[i].IsCompleted()
		}
		return dueOrFarFuture(tasks[i]).Before(dueOrFarFuture(tasks[j]))
	})
}

func dueOrFarFuture(t entities.Task) time.Time {
	if t.DueDate == nil {
		return farFuture
	}
	return *t.DueDate
}

// matchTaskFilter implements the task view filters. A task is overdue only
// when it has a due date strictly in the past and is not completed.
func matchTaskFilter(t entities.Task, filter string) bool {
	switch filter {
	case ports.FilterAll:
		return true
	case ports.FilterPending:
		return t.Status == entities.TaskStatusPending
	case ports.FilterCompleted:
		return t.Status == entities.TaskStatusCompleted
	case ports.FilterOverdue:
		return t.IsOverdue()
	default:
		return t.Service == filter
	}
}

func taskFilters(tasks []entities.Task) []string {
	filters := []string{ports.FilterAll, ports.FilterPending, ports.FilterCompleted, ports.FilterOverdue}
	seen := make(map[string]struct{})
	var services []string
	for _, t := range tasks {
		if t.Service == "" {
			continue
		}
		if _, ok := seen[t.Service]; !ok {
			seen[t.Service] = struct{}{}
			services = append(services, t.Service)
		}
	}
	sort.Strings(services)
	return append(filters, services...)
}

// Get retrieves a task by id
func (s *TaskService) Get(ctx context.Context, id string) (*entities.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Create stores a new task
func (s *TaskService) Create(ctx context.Context, data map[string]interface{}) (*entities.Task, error) {
	task, err := s.repo.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if task != nil {
		s.logger.Infow("Task created", "task_id", task.ID, "title", task.Title)
	}
	return task, nil
}

// Update applies a partial patch to a task
func (s *TaskService) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.Task, error) {
	task, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Toggle flips a task between pending and completed via a partial status
// update
func (s *TaskService) Toggle(ctx context.Context, id string) (*entities.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, nil
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{
		"status": string(task.ToggledStatus()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	if updated != nil {
		s.logger.Infow("Task toggled", "task_id", updated.ID, "status", updated.Status)
	}
	return updated, nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	if deleted {
		s.logger.Infow("Task deleted", "task_id", id)
	}
	return deleted, nil
}
