package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/config"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/ports"
)

// ConnectionService manages links to external services. Connecting and
// syncing simulate the provider round trips with configured delays; the
// deferred syncing->connected transition runs through the scheduler so it
// can be cancelled on shutdown.
type ConnectionService struct {
	repo      ports.ConnectionRepository
	scheduler *Scheduler
	cfg       config.SyncConfig
	logger    *logger.Logger
}

// NewConnectionService creates a new connection service
func NewConnectionService(repo ports.ConnectionRepository, scheduler *Scheduler, cfg config.SyncConfig, logger *logger.Logger) *ConnectionService {
	return &ConnectionService{
		repo:      repo,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
	}
}

// List returns connections ordered by status priority, most recently synced
// first within the same status
func (s *ConnectionService) List(ctx context.Context) ([]entities.ServiceConnection, error) {
	connections, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	sort.SliceStable(connections, func(i, j int) bool {
		pi, pj := connections[i].Status.SortPriority(), connections[j].Status.SortPriority()
		if pi != pj {
			return pi < pj
		}
		return lastSyncOrZero(connections[i]).After(lastSyncOrZero(connections[j]))
	})
	return connections, nil
}

func lastSyncOrZero(c entities.ServiceConnection) time.Time {
	if c.LastSync == nil {
		return time.Time{}
	}
	return *c.LastSync
}

// Available returns the static catalog minus already-connected service ids.
// A connected service never appears here, so it cannot be connected twice.
func (s *ConnectionService) Available(ctx context.Context) ([]ports.AvailableService, error) {
	connections, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	connected := make(map[string]struct{}, len(connections))
	for _, c := range connections {
		connected[c.ServiceID] = struct{}{}
	}

	available := []ports.AvailableService{}
	for _, service := range entities.ServiceCatalog {
		if _, ok := connected[service.ID]; !ok {
			available = append(available, service)
		}
	}
	return available, nil
}

// Get returns one connection
func (s *ConnectionService) Get(ctx context.Context, id string) (*entities.ServiceConnection, error) {
	connection, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return connection, nil
}

// Connect simulates the provider OAuth round trip, then creates the
// connection record. Already-connected and unknown services are rejected.
func (s *ConnectionService) Connect(ctx context.Context, req ports.ConnectRequest) (*entities.ServiceConnection, error) {
	service, ok := entities.ServiceByID(req.ServiceID)
	if !ok {
		return nil, entities.ErrUnknownService
	}

	connections, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	for _, c := range connections {
		if c.ServiceID == req.ServiceID {
			return nil, entities.ErrServiceConnected
		}
	}

	s.logger.Infow("Starting service authentication", "service", service.ID)
	if err := Sleep(ctx, s.cfg.ConnectDelay); err != nil {
		return nil, fmt.Errorf("service authentication aborted: %w", err)
	}

	settings := req.Settings
	if settings == nil {
		settings = map[string]string{}
	}

	connection, err := s.repo.Create(ctx, map[string]interface{}{
		"service_id": req.ServiceID,
		"status":     string(entities.ConnectionStatusConnected),
		"last_sync":  time.Now().UTC(),
		"settings":   settings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	if connection != nil {
		s.logger.Infow("Service connected", "connection_id", connection.ID, "service", connection.ServiceID)
	}
	return connection, nil
}

// Disconnect removes a connection
func (s *ConnectionService) Disconnect(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to disconnect service: %w", err)
	}
	if deleted {
		s.logger.Infow("Service disconnected", "connection_id", id)
	}
	return deleted, nil
}

// Sync marks the connection as syncing immediately and schedules the
// transition back to connected after the configured delay. Each transition
// is persisted as its own update.
func (s *ConnectionService) Sync(ctx context.Context, id string) (*entities.ServiceConnection, error) {
	connection, err := s.repo.Update(ctx, id, map[string]interface{}{
		"status":    string(entities.ConnectionStatusSyncing),
		"last_sync": time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start sync: %w", err)
	}
	if connection == nil {
		return nil, nil
	}

	s.scheduler.After(s.cfg.SyncDelay, "connection-sync", func(taskCtx context.Context) {
		finished, err := s.repo.Update(taskCtx, id, map[string]interface{}{
			"status":    string(entities.ConnectionStatusConnected),
			"last_sync": time.Now().UTC(),
		})
		if err != nil {
			s.logger.Errorw("Sync completion failed", "connection_id", id, "error", err)
			return
		}
		if finished != nil {
			s.logger.Infow("Sync completed", "connection_id", finished.ID, "service", finished.ServiceID)
		}
	})

	return connection, nil
}
