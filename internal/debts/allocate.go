package debts

import (
	"sort"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

// SelectedAllocation is a caller-chosen target for a manual settlement.
type SelectedAllocation struct {
	EntryID string `json:"entry_id"`
	Amount  int64  `json:"amount"`
}

// AllocateOptions selects the distribution mode. When Selected is empty the
// allocator walks pending entries oldest-first.
type AllocateOptions struct {
	Selected []SelectedAllocation
}

// Allocate distributes total across the pending entries, never exceeding any
// entry's remaining amount. It returns the per-entry allocations and the sum
// actually allocated, which is what the payment entry must record as its own
// amount; any unallocated remainder simply stays unrecorded. Pure.
func Allocate(pending []PendingEntry, total int64, opts AllocateOptions) ([]Settlement, int64, error) {
	if total <= 0 {
		return nil, 0, domain.Invalid("amount", "must be positive")
	}
	if len(opts.Selected) > 0 {
		return allocateSelected(pending, total, opts.Selected)
	}
	return allocateOldestFirst(pending, total)
}

func allocateOldestFirst(pending []PendingEntry, total int64) ([]Settlement, int64, error) {
	ordered := make([]PendingEntry, len(pending))
	copy(ordered, pending)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var allocs []Settlement
	left := total
	for _, p := range ordered {
		if left == 0 {
			break
		}
		if p.Remaining <= 0 {
			continue
		}
		take := p.Remaining
		if left < take {
			take = left
		}
		allocs = append(allocs, Settlement{EntryID: p.ID, Amount: take})
		left -= take
	}
	return allocs, total - left, nil
}

func allocateSelected(pending []PendingEntry, total int64, selected []SelectedAllocation) ([]Settlement, int64, error) {
	remaining := make(map[string]int64, len(pending))
	for _, p := range pending {
		remaining[p.ID] = p.Remaining
	}

	var allocs []Settlement
	left := total
	for _, sel := range selected {
		rem, ok := remaining[sel.EntryID]
		if !ok {
			return nil, 0, domain.NotFound("pending debt entry " + sel.EntryID)
		}
		take := sel.Amount
		if rem < take {
			take = rem
		}
		if left < take {
			take = left
		}
		if take <= 0 {
			continue
		}
		allocs = append(allocs, Settlement{EntryID: sel.EntryID, Amount: take})
		remaining[sel.EntryID] = rem - take
		left -= take
	}
	return allocs, total - left, nil
}
