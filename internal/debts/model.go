package debts

import "time"

// EntryType classifies a movement of obligation between the owner and a
// counter-party. Kept separate from the account ledger's debit/credit.
type EntryType string

const (
	TypeYouGave     EntryType = "you_gave"
	TypeYouReceived EntryType = "you_received"
	TypeYouBorrowed EntryType = "you_borrowed"
	TypeYouRepaid   EntryType = "you_repaid"
	TypeAdjustment  EntryType = "adjustment"
	TypeWriteOff    EntryType = "write_off"
)

func (t EntryType) Valid() bool {
	switch t {
	case TypeYouGave, TypeYouReceived, TypeYouBorrowed, TypeYouRepaid, TypeAdjustment, TypeWriteOff:
		return true
	}
	return false
}

// Principal entries are the ones a payment can settle against.
func (t EntryType) Principal() bool { return t == TypeYouGave || t == TypeYouBorrowed }

// Payment entries carry settlement allocations against principal entries.
func (t EntryType) Payment() bool { return t == TypeYouReceived || t == TypeYouRepaid }

type EntryState string

const (
	StateActive      EntryState = "active"
	StateSoftDeleted EntryState = "soft_deleted"
)

type Party struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	Phone     *string    `json:"phone,omitempty"`
	State     EntryState `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
}

// Settlement links a payment entry to one principal entry it pays down.
type Settlement struct {
	EntryID string `json:"entry_id"`
	Amount  int64  `json:"amount"`
}

// Entry is the append-only unit of the peer-debt stream. Amounts are
// positive except for adjustment, which carries its own sign.
type Entry struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"`
	PartyID      string       `json:"party_id"`
	Type         EntryType    `json:"type"`
	Amount       int64        `json:"amount"`
	Date         time.Time    `json:"date"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	Note         string       `json:"note,omitempty"`
	Settlements  []Settlement `json:"settlements,omitempty"`
	State        EntryState   `json:"state"`
	IsReversal   bool         `json:"is_reversal,omitempty"`
	ReversedTxID *string      `json:"reversed_tx_id,omitempty"`
	EditCount    int          `json:"edit_count,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PendingEntry is a principal entry with its not-yet-settled remainder.
type PendingEntry struct {
	Entry
	Remaining int64 `json:"remaining"`
}

// PartyStatus is the derived standing of a counter-party.
type PartyStatus string

const (
	StatusCleared PartyStatus = "cleared"
	StatusActive  PartyStatus = "active"
	StatusOverdue PartyStatus = "overdue"
)
