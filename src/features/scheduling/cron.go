// Package scheduling drives reconciliation runs from a cron expression.
package scheduling

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Spec is a parsed five-field cron expression (minute, hour, day-of-month,
// month, day-of-week). Immutable once parsed. Day-of-month and day-of-week
// are OR-combined when both are restricted, per conventional cron.
type Spec struct {
	expr     string
	schedule cron.Schedule
}

// ParseSpec parses a five-field cron expression. An invalid expression is
// a startup failure for the caller.
func ParseSpec(expr string) (*Spec, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule expression %q: %w", expr, err)
	}
	return &Spec{expr: expr, schedule: schedule}, nil
}

// Next returns the first matching instant strictly after t, at minute
// granularity.
func (s *Spec) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// String returns the original expression.
func (s *Spec) String() string {
	return s.expr
}
