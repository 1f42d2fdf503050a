package services

import (
	"context"
	"fmt"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// maxLinkedItems caps how many linked items a project card shows before
// collapsing the rest into an overflow count
const maxLinkedItems = 3

// ProjectService handles project-related operations
type ProjectService struct {
	repo   ports.ProjectRepository
	logger *logger.Logger
}

// NewProjectService creates a new project service
func NewProjectService(repo ports.ProjectRepository, logger *logger.Logger) *ProjectService {
	return &ProjectService{repo: repo, logger: logger}
}

// List returns project summaries with linked items capped for display.
// Progress is the stored number, never derived from linked items.
func (s *ProjectService) List(ctx context.Context) ([]ports.ProjectSummary, error) {
	projects, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	summaries := make([]ports.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		items := project.LinkedItems
		if len(items) > maxLinkedItems {
			items = items[:maxLinkedItems]
		}
		summaries = append(summaries, ports.ProjectSummary{
			Project: project,
			Items:   items,
			More:    project.LinkedItemOverflow(maxLinkedItems),
		})
	}
	return summaries, nil
}

// Get retrieves a project by id with its full linked item list
func (s *ProjectService) Get(ctx context.Context, id string) (*entities.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// Create stores a new project
func (s *ProjectService) Create(ctx context.Context, data map[string]interface{}) (*entities.Project, error) {
	project, err := s.repo.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	if project != nil {
		s.logger.Infow("Project created", "project_id", project.ID, "name", project.Name)
	}
	return project, nil
}

// Update applies a partial patch to a project
func (s *ProjectService) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.Project, error) {
	project, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// Delete removes a project. Tasks and events keep their advisory project_id;
// there is no referential integrity to repair.
func (s *ProjectService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	if deleted {
		s.logger.Infow("Project deleted", "project_id", id)
	}
	return deleted, nil
}
