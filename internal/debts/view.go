package debts

import (
	"sort"
	"time"
)

// View is the read side of the party ledger. Everything here is a stateless
// fold over the active entry set, oldest-first.

func sortOldestFirst(entries []Entry) []Entry {
	ordered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.State == StateActive {
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}

// Balance folds the party's running balance. Positive means the party owes
// the owner. A write_off entry resets the running total to zero at its
// position; entries after it accumulate from zero again.
func Balance(entries []Entry) int64 {
	var total int64
	for _, e := range sortOldestFirst(entries) {
		switch e.Type {
		case TypeYouGave:
			total += e.Amount
		case TypeYouReceived:
			total -= e.Amount
		case TypeYouBorrowed:
			total -= e.Amount
		case TypeYouRepaid:
			total += e.Amount
		case TypeAdjustment:
			total += e.Amount
		case TypeWriteOff:
			total = 0
		}
	}
	return total
}

// settledSoFar sums, per principal entry id, the settlement allocations
// carried by every active payment entry.
func settledSoFar(entries []Entry) map[string]int64 {
	settled := make(map[string]int64)
	for _, e := range entries {
		if e.State != StateActive || !e.Type.Payment() {
			continue
		}
		for _, s := range e.Settlements {
			settled[s.EntryID] += s.Amount
		}
	}
	return settled
}

// Pending returns the active principal entries that still carry an unsettled
// remainder, oldest-first.
func Pending(entries []Entry) []PendingEntry {
	settled := settledSoFar(entries)

	var pending []PendingEntry
	for _, e := range sortOldestFirst(entries) {
		if !e.Type.Principal() {
			continue
		}
		remaining := e.Amount - settled[e.ID]
		if remaining <= 0 {
			continue
		}
		pending = append(pending, PendingEntry{Entry: e, Remaining: remaining})
	}
	return pending
}

// Status derives the party's standing: cleared when the balance is exactly
// zero, overdue when any pending entry's due date has passed, else active.
func Status(entries []Entry, now time.Time) PartyStatus {
	if Balance(entries) == 0 {
		return StatusCleared
	}
	for _, p := range Pending(entries) {
		if p.DueDate != nil && p.DueDate.Before(now) {
			return StatusOverdue
		}
	}
	return StatusActive
}
