package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"text/template"
	"time"
)

// webhookData is what the configured command template can reference.
type webhookData struct {
	JobID    string
	JobType  string
	JobName  string
	Status   string
	Message  string
	Error    string
	Duration string
}

// executeWebhook runs the configured notification command when a job
// reaches a terminal state. The command is a text/template over
// webhookData, split on whitespace into argv.
func (s *Service) executeWebhook(job *Job) {
	cfg := s.config.Webhooks
	if !cfg.Enabled || cfg.Command == "" {
		return
	}

	notify := false
	for _, jobType := range cfg.JobTypes {
		if jobType == job.Type || jobType == "*" {
			notify = true
			break
		}
	}
	if !notify {
		return
	}

	tmpl, err := template.New("webhook").Parse(cfg.Command)
	if err != nil {
		slog.Error("Invalid webhook command template", "error", err)
		return
	}

	s.mu.RLock()
	data := webhookData{
		JobID:    job.ID,
		JobType:  job.Type,
		JobName:  job.Name,
		Status:   string(job.Status),
		Message:  job.Message,
		Error:    job.Error,
		Duration: job.UpdatedAt.Sub(job.CreatedAt).Round(time.Millisecond).String(),
	}
	s.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Failed to render webhook command", "error", err)
		return
	}

	argv := strings.Fields(buf.String())
	if len(argv) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		if out, err := cmd.CombinedOutput(); err != nil {
			slog.Error("Webhook command failed", "job", job.ID, "error", err, "output", strings.TrimSpace(string(out)))
		} else {
			slog.Debug("Webhook command executed", "job", job.ID)
		}
	}()
}
