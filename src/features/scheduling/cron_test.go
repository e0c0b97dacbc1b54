package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec_RejectsInvalidExpressions(t *testing.T) {
	for _, expr := range []string{"", "not a cron", "* * * *", "61 * * * *", "* 25 * * *"} {
		_, err := ParseSpec(expr)
		assert.Error(t, err, "expression %q should be rejected", expr)
	}
}

func TestSpec_NextMinuteGranularity(t *testing.T) {
	spec, err := ParseSpec("*/5 * * * *")
	require.NoError(t, err)

	from := time.Date(2026, 8, 31, 10, 2, 30, 0, time.UTC)
	next := spec.Next(from)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC), next)

	// Strictly after: asking from an exact match yields the following one.
	after := spec.Next(next)
	assert.Equal(t, time.Date(2026, 8, 31, 10, 10, 0, 0, time.UTC), after)
}

func TestSpec_DailySchedule(t *testing.T) {
	spec, err := ParseSpec("30 2 * * *")
	require.NoError(t, err)

	from := time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC)
	next := spec.Next(from)
	assert.Equal(t, time.Date(2026, 9, 1, 2, 30, 0, 0, time.UTC), next)
}

func TestSpec_DomAndDowAreOrCombined(t *testing.T) {
	// 15th of the month OR Monday, per conventional cron.
	spec, err := ParseSpec("0 0 15 * 1")
	require.NoError(t, err)

	// Sep 1 2026 is a Tuesday; the next match should be Monday Sep 7,
	// not Sep 15.
	from := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	next := spec.Next(from)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), next)

	// After Sep 14 (Monday), the 15th matches before the next Monday.
	from = time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)
	next = spec.Next(from)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), next)
}
