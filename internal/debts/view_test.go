package debts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryOn(id string, typ EntryType, amount int64, day int) Entry {
	date := time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC)
	return Entry{
		ID:        id,
		Type:      typ,
		Amount:    amount,
		Date:      date,
		CreatedAt: date,
		State:     StateActive,
	}
}

func TestBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries []Entry
		want    int64
	}{
		{
			name: "gave minus received",
			entries: []Entry{
				entryOn("1", TypeYouGave, 1000, 1),
				entryOn("2", TypeYouReceived, 400, 2),
			},
			want: 600,
		},
		{
			name: "borrowed minus repaid",
			entries: []Entry{
				entryOn("1", TypeYouBorrowed, 500, 1),
				entryOn("2", TypeYouRepaid, 200, 2),
			},
			want: -300,
		},
		{
			name: "adjustment carries its own sign",
			entries: []Entry{
				entryOn("1", TypeYouGave, 300, 1),
				entryOn("2", TypeAdjustment, -50, 2),
			},
			want: 250,
		},
		{
			name: "write off resets, later entries accumulate from zero",
			entries: []Entry{
				entryOn("1", TypeYouGave, 900, 1),
				entryOn("2", TypeWriteOff, 0, 2),
				entryOn("3", TypeYouGave, 120, 3),
			},
			want: 120,
		},
		{
			name: "soft deleted entries are ignored",
			entries: []Entry{
				entryOn("1", TypeYouGave, 1000, 1),
				func() Entry {
					e := entryOn("2", TypeYouGave, 500, 2)
					e.State = StateSoftDeleted
					return e
				}(),
			},
			want: 1000,
		},
		{
			name: "empty stream is zero",
			want: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Balance(tt.entries))
		})
	}
}

func TestPending(t *testing.T) {
	t.Parallel()

	gave := entryOn("e100", TypeYouGave, 100, 1)
	gave2 := entryOn("e150", TypeYouGave, 150, 3)
	payment := entryOn("p1", TypeYouReceived, 120, 5)
	payment.Settlements = []Settlement{
		{EntryID: "e100", Amount: 100},
		{EntryID: "e150", Amount: 20},
	}

	pending := Pending([]Entry{gave, gave2, payment})

	require.Len(t, pending, 1)
	assert.Equal(t, "e150", pending[0].ID)
	assert.Equal(t, int64(130), pending[0].Remaining)
}

func TestPendingIgnoresDeletedPayments(t *testing.T) {
	t.Parallel()

	gave := entryOn("e100", TypeYouGave, 100, 1)
	payment := entryOn("p1", TypeYouReceived, 100, 2)
	payment.Settlements = []Settlement{{EntryID: "e100", Amount: 100}}
	payment.State = StateSoftDeleted

	pending := Pending([]Entry{gave, payment})

	// The deleted payment's allocations no longer count.
	require.Len(t, pending, 1)
	assert.Equal(t, int64(100), pending[0].Remaining)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("cleared at exact zero", func(t *testing.T) {
		t.Parallel()

		entries := []Entry{
			entryOn("1", TypeYouGave, 500, 1),
			entryOn("2", TypeYouReceived, 500, 2),
		}
		assert.Equal(t, StatusCleared, Status(entries, now))
	})

	t.Run("overdue when a pending due date passed", func(t *testing.T) {
		t.Parallel()

		due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		e := entryOn("1", TypeYouGave, 500, 1)
		e.DueDate = &due
		assert.Equal(t, StatusOverdue, Status([]Entry{e}, now))
	})

	t.Run("active otherwise", func(t *testing.T) {
		t.Parallel()

		due := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		e := entryOn("1", TypeYouGave, 500, 1)
		e.DueDate = &due
		assert.Equal(t, StatusActive, Status([]Entry{e}, now))
	})
}

func TestEntryTypeClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, TypeYouGave.Principal())
	assert.True(t, TypeYouBorrowed.Principal())
	assert.False(t, TypeYouReceived.Principal())

	assert.True(t, TypeYouReceived.Payment())
	assert.True(t, TypeYouRepaid.Payment())
	assert.False(t, TypeWriteOff.Payment())

	assert.False(t, EntryType("refund").Valid())
}
