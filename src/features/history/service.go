package history

import (
	"context"
	"log/slog"

	"github.com/polaMikhail/directory-sync/src/features/config"
	"github.com/polaMikhail/directory-sync/src/mirror"
)

// Store persists finished run records. Implemented by infra/database.
type Store interface {
	SaveRun(ctx context.Context, run *mirror.Run) error
	ListRuns(ctx context.Context, limit int) ([]mirror.Run, error)
	PruneRuns(ctx context.Context, keep int) (int, error)
	Close() error
}

// Service records and serves the run history. History is an audit log:
// reconciliation never reads it back.
type Service struct {
	store         Store
	configManager *config.Manager
}

// NewService creates a new history service.
func NewService(store Store, cfgManager *config.Manager) *Service {
	return &Service{store: store, configManager: cfgManager}
}

// Record saves a finished run and prunes records beyond the retention
// limit. Failures here are logged and swallowed: a broken audit trail
// must not fail a sync tick.
func (s *Service) Record(ctx context.Context, run *mirror.Run) {
	if s.store == nil || !s.configManager.Get().History.Enabled {
		return
	}

	if err := s.store.SaveRun(ctx, run); err != nil {
		slog.Error("Failed to record sync run", "runID", run.ID, "error", err)
		return
	}

	keep := s.configManager.Get().History.Keep
	pruned, err := s.store.PruneRuns(ctx, keep)
	if err != nil {
		slog.Error("Failed to prune run history", "error", err)
		return
	}
	if pruned > 0 {
		slog.Debug("Pruned old run records", "count", pruned, "keep", keep)
	}
}

// Recent returns the most recent runs, newest first. With history
// disabled there is nothing to return.
func (s *Service) Recent(ctx context.Context, limit int) ([]mirror.Run, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListRuns(ctx, limit)
}
