package ledger

import "time"

// EntryKind is the direction of a ledger entry. The amount itself is always
// positive; the kind carries the sign.
type EntryKind string

const (
	KindDebit  EntryKind = "debit"
	KindCredit EntryKind = "credit"
)

func (k EntryKind) Valid() bool { return k == KindDebit || k == KindCredit }

// Signed returns the balance delta an amount of this kind applies.
func (k EntryKind) Signed(amount int64) int64 {
	if k == KindDebit {
		return -amount
	}
	return amount
}

// EntryState is the lifecycle of an entry. Entries are never physically
// deleted; soft_deleted marks the compensated originals.
type EntryState string

const (
	StateActive      EntryState = "active"
	StateSoftDeleted EntryState = "soft_deleted"
)

type AccountType string

const (
	AccountCash   AccountType = "cash"
	AccountBank   AccountType = "bank"
	AccountWallet AccountType = "wallet"
)

func (t AccountType) Valid() bool {
	return t == AccountCash || t == AccountBank || t == AccountWallet
}

type Account struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"owner_id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	OpeningBalance int64       `json:"opening_balance"`
	Balance        int64       `json:"balance"`
	IsArchived     bool        `json:"is_archived"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Entry is one immutable signed balance movement on an account.
type Entry struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	AccountID     string     `json:"account_id"`
	Amount        int64      `json:"amount"`
	Kind          EntryKind  `json:"kind"`
	Category      string     `json:"category,omitempty"`
	Description   string     `json:"description"`
	BalanceAfter  int64      `json:"balance_after"`
	ReferenceID   *string    `json:"reference_id,omitempty"`
	ReferenceType *string    `json:"reference_type,omitempty"`
	State         EntryState `json:"state"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	OccurredOn    time.Time  `json:"occurred_on"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Reference types linking an entry to the domain event that caused it.
const (
	RefRecurring  = "recurring"
	RefReversal   = "reversal"
	RefSettlement = "settlement"
	RefTransfer   = "transfer"
)

// CommitRequest is the single mutation payload accepted by the committer.
type CommitRequest struct {
	OwnerID       string
	AccountID     string
	Amount        int64
	Kind          EntryKind
	Category      string
	Description   string
	ReferenceID   string
	ReferenceType string
	OccurredOn    time.Time
}

// CommitResult reports what a commit did. Replayed is set when the request's
// reference key already produced an entry and the commit was a no-op.
type CommitResult struct {
	LedgerEntryID string `json:"ledger_entry_id"`
	NewBalance    int64  `json:"new_balance"`
	BalanceDelta  int64  `json:"balance_delta"`
	Replayed      bool   `json:"replayed,omitempty"`
}
