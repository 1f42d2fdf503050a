package ports

import (
	"context"

	"github.com/unifyhub/core/internal/domain/entities"
)

// RecordRepository is the uniform per-entity CRUD contract. Identifiers
// arrive as raw strings; implementations validate them locally and resolve
// malformed ids, backend rejections and not-found to zero values without an
// error. Errors are reserved for transport failures.
type RecordRepository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, data map[string]interface{}) (*T, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) (*T, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type MessageRepository = RecordRepository[entities.Message]
type EventRepository = RecordRepository[entities.Event]
type TaskRepository = RecordRepository[entities.Task]
type ProjectRepository = RecordRepository[entities.Project]
type RuleRepository = RecordRepository[entities.Rule]
type ConnectionRepository = RecordRepository[entities.ServiceConnection]
