package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polaMikhail/directory-sync/src/features/config"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job is one tracked background execution.
type Job struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Status     JobStatus      `json:"status"`
	Progress   int            `json:"progress"`
	Message    string         `json:"message"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	LogPath    string         `json:"-"`
	Logger     *slog.Logger   `json:"-"`
	cancelFunc context.CancelFunc
	cancelled  bool
}

// Task defines the logic for one job type. MetadataKeys lists the keys a
// job of this type must carry; Execute may return stats that are merged
// into the job metadata when it finishes.
type Task interface {
	MetadataKeys() []string
	Execute(ctx context.Context, job *Job, progress func(int, string)) (map[string]any, error)
}

// JobService is the interface other features use to run background work.
type JobService interface {
	StartJob(jobType string, name string, metadata map[string]any) (string, error)
	GetJob(jobID string) (*Job, bool)
	GetJobs() []*Job
	CancelJob(jobID string) error
}

// Service runs registered tasks as tracked jobs: one running job per
// type, the rest pending in FIFO order.
type Service struct {
	jobs   map[string]*Job
	tasks  map[string]Task
	mu     sync.RWMutex
	config *config.Jobs
}

// NewService creates a new job service.
func NewService(cfg *config.Jobs) *Service {
	return &Service{
		jobs:   make(map[string]*Job),
		tasks:  make(map[string]Task),
		config: cfg,
	}
}

// RegisterTask registers the task executed for a job type.
func (s *Service) RegisterTask(jobType string, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[jobType] = task
}

// StartJob creates a job and runs it as soon as no other job of the same
// type is running.
func (s *Service) StartJob(jobType string, name string, metadata map[string]any) (string, error) {
	s.mu.RLock()
	task, registered := s.tasks[jobType]
	s.mu.RUnlock()
	if !registered {
		return "", fmt.Errorf("no task registered for job type %q", jobType)
	}
	for _, key := range task.MetadataKeys() {
		if _, ok := metadata[key]; !ok {
			return "", fmt.Errorf("missing %s in job metadata", key)
		}
	}

	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Name:      name,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Metadata:  metadata,
	}

	if err := s.attachLogger(job); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	start := !s.isTypeRunningLocked(jobType)
	if start {
		job.Status = JobStatusRunning
	}
	s.mu.Unlock()

	if start {
		go s.executeJob(job)
	}
	return job.ID, nil
}

// attachLogger gives the job its own log file, or a discard logger when
// job logging is disabled.
func (s *Service) attachLogger(job *Job) error {
	if !s.config.Log {
		job.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	if err := os.MkdirAll(s.config.LogPath, 0755); err != nil {
		return fmt.Errorf("failed to create job log directory: %w", err)
	}
	logName := fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), job.ID)
	logPath := filepath.Join(s.config.LogPath, logName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open job log file: %w", err)
	}
	job.Logger = slog.New(slog.NewTextHandler(logFile, nil))
	job.LogPath = logPath
	return nil
}

func (s *Service) executeJob(job *Job) {
	s.mu.RLock()
	task := s.tasks[job.Type]
	s.mu.RUnlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	job.cancelFunc = cancel
	s.mu.Unlock()
	defer cancel()

	s.setStatus(job.ID, JobStatusRunning, "Starting...")
	job.Logger.Info("Starting job", "name", job.Name, "type", job.Type)

	progress := func(percentage int, message string) {
		s.UpdateJobProgress(job.ID, percentage, message)
		job.Logger.Info("Progress", "percentage", percentage, "status", message)
	}

	stats, err := task.Execute(ctx, job, progress)

	s.mu.Lock()
	if stats != nil {
		if job.Metadata == nil {
			job.Metadata = make(map[string]any)
		}
		for k, v := range stats {
			job.Metadata[k] = v
		}
	}
	cancelled := job.cancelled
	s.mu.Unlock()

	switch {
	case cancelled || errors.Is(err, context.Canceled):
		job.Logger.Info("Job cancelled", "name", job.Name)
		s.setStatus(job.ID, JobStatusCancelled, "Job cancelled")
	case err != nil:
		job.Logger.Error("Job failed", "name", job.Name, "error", err)
		s.setError(job.ID, err)
	default:
		job.Logger.Info("Job finished successfully", "name", job.Name)
		s.setStatus(job.ID, JobStatusCompleted, "Job completed successfully")
	}
	s.executeWebhook(job)

	s.startNextPending(job.Type)
}

func (s *Service) setStatus(jobID string, status JobStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		job.Status = status
		job.Message = message
		job.UpdatedAt = time.Now()
		if status == JobStatusCompleted {
			job.Progress = 100
		}
	}
}

func (s *Service) setError(jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		job.Status = JobStatusFailed
		job.Message = err.Error()
		job.Error = err.Error()
		job.UpdatedAt = time.Now()
	}
}

// UpdateJobProgress updates a running job's progress and message.
func (s *Service) UpdateJobProgress(jobID string, progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return
	}
	switch job.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return
	}
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = time.Now()
}

// CancelJob requests cancellation of a job. The running task observes it
// through its context.
func (s *Service) CancelJob(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return errors.New("job not found")
	}

	job.cancelled = true
	job.Status = JobStatusCancelled
	job.Message = "Job cancelled"
	job.UpdatedAt = time.Now()

	if job.cancelFunc != nil {
		job.cancelFunc()
	}
	return nil
}

// GetJob returns a job by ID.
func (s *Service) GetJob(jobID string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

// GetJobs returns all known jobs.
func (s *Service) GetJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

func (s *Service) isTypeRunningLocked(jobType string) bool {
	for _, job := range s.jobs {
		if job.Type == jobType && job.Status == JobStatusRunning {
			return true
		}
	}
	return false
}

func (s *Service) startNextPending(jobType string) {
	s.mu.Lock()
	var next *Job
	for _, job := range s.jobs {
		if job.Type == jobType && job.Status == JobStatusPending {
			if next == nil || job.CreatedAt.Before(next.CreatedAt) {
				next = job
			}
		}
	}
	if next != nil {
		next.Status = JobStatusRunning
	}
	s.mu.Unlock()

	if next != nil {
		go s.executeJob(next)
	}
}

// CleanupOldJobs drops finished jobs (and their log files) older than maxAge.
func (s *Service) CleanupOldJobs(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, job := range s.jobs {
		switch job.Status {
		case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
			if now.Sub(job.UpdatedAt) > maxAge {
				if job.LogPath != "" {
					os.Remove(job.LogPath)
				}
				delete(s.jobs, id)
			}
		}
	}
}
