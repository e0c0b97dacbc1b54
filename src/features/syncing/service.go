package syncing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/polaMikhail/directory-sync/src/features/config"
	"github.com/polaMikhail/directory-sync/src/features/history"
	"github.com/polaMikhail/directory-sync/src/features/jobs"
	"github.com/polaMikhail/directory-sync/src/features/metrics"
	"github.com/polaMikhail/directory-sync/src/features/scanning"
	"github.com/polaMikhail/directory-sync/src/mirror"
)

// Triggers for a reconciliation run.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerWatcher  = "watcher"
)

// ErrSyncInProgress is returned when a run is requested while another is
// in flight. Requests are rejected, never queued.
var ErrSyncInProgress = errors.New("sync already in progress")

// Service runs reconciliation ticks: scan both trees, diff, apply,
// record. At most one tick runs at a time regardless of what triggered
// it.
type Service struct {
	configManager  *config.Manager
	scanner        *scanning.Scanner
	applier        *Applier
	jobService     jobs.JobService
	historyService *history.Service
	recorder       *metrics.Recorder
	running        atomic.Bool
}

// NewService creates a new syncing service. historyService and recorder
// may be nil; the tick then skips recording.
func NewService(cfgManager *config.Manager, scanner *scanning.Scanner, applier *Applier, jobService jobs.JobService, historyService *history.Service, recorder *metrics.Recorder) *Service {
	return &Service{
		configManager:  cfgManager,
		scanner:        scanner,
		applier:        applier,
		jobService:     jobService,
		historyService: historyService,
		recorder:       recorder,
	}
}

// InProgress reports whether a tick is currently running.
func (s *Service) InProgress() bool {
	return s.running.Load()
}

// Sync executes one complete reconciliation tick and returns its report.
// A scan failure aborts the tick before any filesystem write (tick-fatal);
// individual action failures end up in the report, not in the returned
// error. The next scheduled tick is the retry for both.
func (s *Service) Sync(ctx context.Context, trigger string) (*mirror.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	cfg := s.configManager.Get()
	srcRoot, dstRoot := cfg.SourcePath, cfg.DestinationPath
	started := time.Now()
	slog.Info("Sync tick started", "trigger", trigger, "source", srcRoot, "destination", dstRoot)

	srcSnap, dstSnap, err := s.scanBoth(srcRoot, dstRoot)
	if err != nil {
		slog.Error("Sync tick aborted", "trigger", trigger, "error", err)
		s.recordFailure(ctx, trigger, started, err)
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.SetSourceFiles(len(srcSnap))
	}

	actions := mirror.Diff(srcSnap, dstSnap)
	report := s.applier.Apply(actions, srcRoot, dstRoot)
	report.Trigger = trigger
	report.StartedAt = started

	status := mirror.RunCompleted
	if report.Failed() > 0 {
		status = mirror.RunPartial
	}
	slog.Info("Sync tick finished",
		"trigger", trigger,
		"status", string(status),
		"copied", report.Copied,
		"deleted", report.Deleted,
		"skipped", report.Skipped,
		"failed", report.Failed(),
		"duration", report.Duration().Round(time.Millisecond).String(),
	)

	if s.recorder != nil {
		s.recorder.ObserveRun(report, status)
	}
	if s.historyService != nil {
		s.historyService.Record(ctx, &mirror.Run{
			ID:         uuid.New().String(),
			Trigger:    trigger,
			Status:     status,
			StartedAt:  report.StartedAt,
			FinishedAt: report.FinishedAt,
			Copied:     report.Copied,
			Deleted:    report.Deleted,
			Skipped:    report.Skipped,
			Failed:     report.Failed(),
		})
	}

	return report, nil
}

// scanBoth snapshots the source and destination trees concurrently; the
// two scans have no ordering dependency on each other.
func (s *Service) scanBoth(srcRoot, dstRoot string) (mirror.Snapshot, mirror.Snapshot, error) {
	var (
		wg               sync.WaitGroup
		srcSnap, dstSnap mirror.Snapshot
		srcErr, dstErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		srcSnap, srcErr = s.scanner.Scan(srcRoot)
	}()
	go func() {
		defer wg.Done()
		dstSnap, dstErr = s.scanner.Scan(dstRoot)
	}()
	wg.Wait()

	if srcErr != nil {
		return nil, nil, fmt.Errorf("scan source: %w", srcErr)
	}
	if dstErr != nil {
		return nil, nil, fmt.Errorf("scan destination: %w", dstErr)
	}
	return srcSnap, dstSnap, nil
}

func (s *Service) recordFailure(ctx context.Context, trigger string, started time.Time, err error) {
	if s.recorder != nil {
		s.recorder.ObserveScanFailure(trigger)
	}
	if s.historyService != nil {
		s.historyService.Record(ctx, &mirror.Run{
			ID:         uuid.New().String(),
			Trigger:    trigger,
			Status:     mirror.RunFailed,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Error:      err.Error(),
		})
	}
}

// StartSyncJob runs a tick through the job service so manual and
// watcher triggers get progress tracking and per-job logs.
func (s *Service) StartSyncJob(trigger string) (string, error) {
	if s.InProgress() {
		return "", ErrSyncInProgress
	}
	jobID, err := s.jobService.StartJob("mirror_sync", "Mirror Sync", map[string]any{
		"trigger": trigger,
	})
	if err != nil {
		slog.Error("Failed to start sync job", "trigger", trigger, "error", err)
		return "", fmt.Errorf("failed to start sync job: %w", err)
	}
	return jobID, nil
}

// Status describes the syncing feature for the status endpoints.
type Status struct {
	SourcePath      string `json:"sourcePath"`
	DestinationPath string `json:"destinationPath"`
	Schedule        string `json:"schedule"`
	InProgress      bool   `json:"inProgress"`
}

// Status returns the current sync configuration and state.
func (s *Service) Status() Status {
	cfg := s.configManager.Get()
	return Status{
		SourcePath:      cfg.SourcePath,
		DestinationPath: cfg.DestinationPath,
		Schedule:        cfg.Schedule,
		InProgress:      s.InProgress(),
	}
}
