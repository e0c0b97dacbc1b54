package syncing

import (
	"context"

	"github.com/polaMikhail/directory-sync/src/features/jobs"
)

// SyncTask implements jobs.Task for the mirror_sync job type.
type SyncTask struct {
	service *Service
}

// NewSyncTask creates a new SyncTask.
func NewSyncTask(service *Service) *SyncTask {
	return &SyncTask{service: service}
}

// MetadataKeys returns the required metadata keys for a mirror_sync job.
func (t *SyncTask) MetadataKeys() []string {
	return []string{"trigger"}
}

// Execute runs one reconciliation tick and reports its counts as job stats.
func (t *SyncTask) Execute(ctx context.Context, job *jobs.Job, progress func(int, string)) (map[string]any, error) {
	trigger, _ := job.Metadata["trigger"].(string)
	if trigger == "" {
		trigger = TriggerManual
	}

	progress(10, "Scanning directories...")
	report, err := t.service.Sync(ctx, trigger)
	if err != nil {
		return nil, err
	}

	progress(100, "Reconciliation finished")
	return map[string]any{
		"copied":  report.Copied,
		"deleted": report.Deleted,
		"skipped": report.Skipped,
		"failed":  report.Failed(),
	}, nil
}
