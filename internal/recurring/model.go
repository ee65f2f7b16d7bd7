package recurring

import (
	"time"

	"github.com/awakeapp/AWAKE-sub000/internal/ledger"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// RuleKind distinguishes plain recurring rules from subscriptions. Both run
// through the same schedule engine; subscriptions are always debits and
// carry a service label.
type RuleKind string

const (
	KindRule         RuleKind = "rule"
	KindSubscription RuleKind = "subscription"
)

// Rule is a transaction template plus a schedule. NextDueDate is
// monotonically non-decreasing and always at or beyond the date of the last
// generated entry.
type Rule struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Kind        RuleKind         `json:"kind"`
	AccountID   string           `json:"account_id"`
	EntryKind   ledger.EntryKind `json:"entry_kind"`
	Category    string           `json:"category,omitempty"`
	Amount      int64            `json:"amount"`
	Label       string           `json:"label"`
	Frequency   Frequency        `json:"frequency"`
	DayOfMonth  int              `json:"day_of_month,omitempty"` // monthly anchor; 0 keeps the current day
	NextDueDate time.Time        `json:"next_due_date"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
}
