package debts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

func pendingAt(id string, remaining int64, daysAgo int) PendingEntry {
	date := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	return PendingEntry{
		Entry: Entry{
			ID:        id,
			Type:      TypeYouGave,
			Amount:    remaining,
			Date:      date,
			CreatedAt: date,
			State:     StateActive,
		},
		Remaining: remaining,
	}
}

func TestAllocateOldestFirst(t *testing.T) {
	t.Parallel()

	t.Run("walks oldest first and splits the last entry", func(t *testing.T) {
		t.Parallel()

		pending := []PendingEntry{
			pendingAt("e150", 150, 5), // newer
			pendingAt("e100", 100, 10), // older
		}

		allocs, allocated, err := Allocate(pending, 120, AllocateOptions{})
		require.NoError(t, err)

		assert.Equal(t, int64(120), allocated)
		require.Len(t, allocs, 2)
		assert.Equal(t, Settlement{EntryID: "e100", Amount: 100}, allocs[0])
		assert.Equal(t, Settlement{EntryID: "e150", Amount: 20}, allocs[1])
	})

	t.Run("overpayment allocates only what is pending", func(t *testing.T) {
		t.Parallel()

		pending := []PendingEntry{pendingAt("e100", 100, 3)}

		allocs, allocated, err := Allocate(pending, 500, AllocateOptions{})
		require.NoError(t, err)

		assert.Equal(t, int64(100), allocated)
		require.Len(t, allocs, 1)
		assert.Equal(t, int64(100), allocs[0].Amount)
	})

	t.Run("same date falls back to creation order", func(t *testing.T) {
		t.Parallel()

		date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		first := pendingAt("first", 50, 0)
		first.Date = date
		first.CreatedAt = date.Add(1 * time.Hour)
		second := pendingAt("second", 50, 0)
		second.Date = date
		second.CreatedAt = date.Add(2 * time.Hour)

		allocs, allocated, err := Allocate([]PendingEntry{second, first}, 60, AllocateOptions{})
		require.NoError(t, err)

		assert.Equal(t, int64(60), allocated)
		require.Len(t, allocs, 2)
		assert.Equal(t, "first", allocs[0].EntryID)
		assert.Equal(t, int64(10), allocs[1].Amount)
	})

	t.Run("no pending entries allocates nothing", func(t *testing.T) {
		t.Parallel()

		allocs, allocated, err := Allocate(nil, 100, AllocateOptions{})
		require.NoError(t, err)
		assert.Zero(t, allocated)
		assert.Empty(t, allocs)
	})

	t.Run("non-positive total is rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := Allocate([]PendingEntry{pendingAt("e1", 10, 1)}, 0, AllocateOptions{})
		assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	})
}

func TestAllocateSelected(t *testing.T) {
	t.Parallel()

	pending := []PendingEntry{
		pendingAt("a", 100, 10),
		pendingAt("b", 200, 5),
	}

	t.Run("honors caller targets", func(t *testing.T) {
		t.Parallel()

		allocs, allocated, err := Allocate(pending, 250, AllocateOptions{
			Selected: []SelectedAllocation{
				{EntryID: "b", Amount: 150},
				{EntryID: "a", Amount: 100},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(250), allocated)
		require.Len(t, allocs, 2)
		assert.Equal(t, Settlement{EntryID: "b", Amount: 150}, allocs[0])
		assert.Equal(t, Settlement{EntryID: "a", Amount: 100}, allocs[1])
	})

	t.Run("clamps to the entry remainder", func(t *testing.T) {
		t.Parallel()

		allocs, allocated, err := Allocate(pending, 500, AllocateOptions{
			Selected: []SelectedAllocation{{EntryID: "a", Amount: 400}},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(100), allocated)
		require.Len(t, allocs, 1)
		assert.Equal(t, int64(100), allocs[0].Amount)
	})

	t.Run("clamps to the payment total", func(t *testing.T) {
		t.Parallel()

		allocs, allocated, err := Allocate(pending, 50, AllocateOptions{
			Selected: []SelectedAllocation{{EntryID: "b", Amount: 200}},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(50), allocated)
		require.Len(t, allocs, 1)
		assert.Equal(t, int64(50), allocs[0].Amount)
	})

	t.Run("unknown entry id fails", func(t *testing.T) {
		t.Parallel()

		_, _, err := Allocate(pending, 100, AllocateOptions{
			Selected: []SelectedAllocation{{EntryID: "ghost", Amount: 10}},
		})
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

// Every allocation mode must conserve money: the sum of allocations equals
// the reported allocated total, and no entry is given more than its remainder.
func TestAllocateConservation(t *testing.T) {
	t.Parallel()

	pending := []PendingEntry{
		pendingAt("a", 70, 9),
		pendingAt("b", 30, 6),
		pendingAt("c", 120, 2),
	}

	for _, total := range []int64{1, 30, 99, 100, 220, 1000} {
		allocs, allocated, err := Allocate(pending, total, AllocateOptions{})
		require.NoError(t, err)

		var sum int64
		seen := map[string]int64{}
		for _, a := range allocs {
			sum += a.Amount
			seen[a.EntryID] += a.Amount
		}
		assert.Equal(t, allocated, sum)
		assert.LessOrEqual(t, allocated, total)
		for _, p := range pending {
			assert.LessOrEqual(t, seen[p.ID], p.Remaining)
		}
	}
}
