// Package mirror holds the domain model for directory reconciliation: the
// snapshot of a tree, the actions that make a destination match a source, and
// the report describing what one run did.
package mirror

import (
	"sort"
	"time"
)

// Snapshot maps a slash-separated relative path to the file's last
// modification time. One snapshot describes one directory tree at one
// instant and is discarded after the tick that produced it.
type Snapshot map[string]time.Time

// ActionKind classifies what a reconciliation run does with a single path.
type ActionKind string

const (
	ActionCopy   ActionKind = "copy"
	ActionDelete ActionKind = "delete"
	ActionSkip   ActionKind = "skip"
)

// Action is a single reconciliation decision for one relative path.
type Action struct {
	Kind ActionKind
	Path string
}

// Diff computes the actions that make dest match source.
//
// Per path: only in source -> copy; only in dest -> delete; in both ->
// copy when the source is strictly newer, skip otherwise. A destination
// file is never overwritten by an older source file, and a path present
// in both snapshots is never deleted. The result is sorted by path so
// two diffs of the same snapshots are identical.
func Diff(source, dest Snapshot) []Action {
	actions := make([]Action, 0, len(source)+len(dest))

	for path, srcMod := range source {
		dstMod, ok := dest[path]
		switch {
		case !ok:
			actions = append(actions, Action{Kind: ActionCopy, Path: path})
		case srcMod.After(dstMod):
			actions = append(actions, Action{Kind: ActionCopy, Path: path})
		default:
			actions = append(actions, Action{Kind: ActionSkip, Path: path})
		}
	}

	for path := range dest {
		if _, ok := source[path]; !ok {
			actions = append(actions, Action{Kind: ActionDelete, Path: path})
		}
	}

	sort.Slice(actions, func(i, j int) bool { return actions[i].Path < actions[j].Path })
	return actions
}

// Failure records a single action that could not be applied.
type Failure struct {
	Path   string     `json:"path"`
	Kind   ActionKind `json:"kind"`
	Reason string     `json:"reason"`
}

// Report is the outcome of one reconciliation run.
type Report struct {
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Copied     int       `json:"copied"`
	Deleted    int       `json:"deleted"`
	Skipped    int       `json:"skipped"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Changed reports whether the run performed any filesystem write.
func (r *Report) Changed() bool {
	return r.Copied > 0 || r.Deleted > 0 || len(r.Failures) > 0
}

// Failed returns the number of actions that could not be applied.
func (r *Report) Failed() int {
	return len(r.Failures)
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunStatus summarises a finished run for the history log.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// Run is the persisted record of one reconciliation run. It is an audit
// trail only; no tick ever reads it back to make decisions.
type Run struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Copied     int       `json:"copied"`
	Deleted    int       `json:"deleted"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}
