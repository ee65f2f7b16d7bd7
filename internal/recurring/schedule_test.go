package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		due    time.Time
		freq   Frequency
		anchor int
		want   time.Time
	}{
		{
			name: "daily",
			due:  date(2026, 3, 14),
			freq: Daily,
			want: date(2026, 3, 15),
		},
		{
			name: "weekly",
			due:  date(2026, 3, 14),
			freq: Weekly,
			want: date(2026, 3, 21),
		},
		{
			name: "monthly plain",
			due:  date(2026, 4, 15),
			freq: Monthly,
			want: date(2026, 5, 15),
		},
		{
			name: "monthly clamps jan 31 to feb 28",
			due:  date(2026, 1, 31),
			freq: Monthly,
			want: date(2026, 2, 28),
		},
		{
			name: "monthly clamps to feb 29 in a leap year",
			due:  date(2028, 1, 31),
			freq: Monthly,
			want: date(2028, 2, 29),
		},
		{
			name:   "anchor snaps back after a short month",
			due:    date(2026, 2, 28),
			freq:   Monthly,
			anchor: 31,
			want:   date(2026, 3, 31),
		},
		{
			name: "monthly rolls over the year",
			due:  date(2026, 12, 10),
			freq: Monthly,
			want: date(2027, 1, 10),
		},
		{
			name: "yearly",
			due:  date(2026, 7, 4),
			freq: Yearly,
			want: date(2027, 7, 4),
		},
		{
			name: "yearly from feb 29 clamps",
			due:  date(2028, 2, 29),
			freq: Yearly,
			want: date(2029, 2, 28),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NextDue(tt.due, tt.freq, tt.anchor))
		})
	}
}

func TestDuePeriods(t *testing.T) {
	t.Parallel()

	t.Run("not yet due yields nothing", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Frequency: Monthly, NextDueDate: date(2026, 9, 15)}
		dates, next := DuePeriods(rule, date(2026, 9, 1))
		assert.Empty(t, dates)
		assert.Equal(t, date(2026, 9, 15), next)
	})

	t.Run("due today yields one period", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Frequency: Monthly, NextDueDate: date(2026, 9, 15)}
		dates, next := DuePeriods(rule, date(2026, 9, 15))
		require.Len(t, dates, 1)
		assert.Equal(t, date(2026, 9, 15), dates[0])
		assert.Equal(t, date(2026, 10, 15), next)
	})

	t.Run("dormant monthly rule catches up two periods", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Frequency: Monthly, NextDueDate: date(2026, 6, 15)}
		dates, next := DuePeriods(rule, date(2026, 8, 1))
		require.Len(t, dates, 2)
		assert.Equal(t, date(2026, 6, 15), dates[0])
		assert.Equal(t, date(2026, 7, 15), dates[1])
		assert.Equal(t, date(2026, 8, 15), next)
	})

	t.Run("daily catch-up is unbounded", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Frequency: Daily, NextDueDate: date(2026, 8, 1)}
		dates, next := DuePeriods(rule, date(2026, 8, 10))
		assert.Len(t, dates, 10)
		assert.Equal(t, date(2026, 8, 11), next)
	})

	t.Run("end date is inclusive and cuts the series", func(t *testing.T) {
		t.Parallel()

		end := date(2026, 7, 15)
		rule := Rule{Frequency: Monthly, NextDueDate: date(2026, 6, 15), EndDate: &end}
		dates, next := DuePeriods(rule, date(2026, 12, 1))
		require.Len(t, dates, 2)
		assert.Equal(t, date(2026, 7, 15), dates[1])
		assert.True(t, Exhausted(rule, next))
	})

	t.Run("rule without end date never exhausts", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Frequency: Weekly, NextDueDate: date(2026, 1, 1)}
		_, next := DuePeriods(rule, date(2026, 2, 1))
		assert.False(t, Exhausted(rule, next))
	})
}

// next_due_date must stay monotonically ahead of every generated date.
func TestDuePeriodsMonotonic(t *testing.T) {
	t.Parallel()

	rule := Rule{Frequency: Monthly, NextDueDate: date(2025, 1, 31), DayOfMonth: 31}
	dates, next := DuePeriods(rule, date(2026, 1, 1))

	require.NotEmpty(t, dates)
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
	}
	assert.True(t, next.After(dates[len(dates)-1]))
	// Anchor 31 lands on every month-end.
	for _, d := range dates {
		assert.Equal(t, d.Day(), daysIn(d.Year(), d.Month()))
	}
}
