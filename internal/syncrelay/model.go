package syncrelay

import "encoding/json"

// Mutation is one client-side change shipped to the relay backend. Date is
// the business day the mutation belongs to, YYYY-MM-DD.
type Mutation struct {
	MutationID string          `json:"mutationId"`
	Type       string          `json:"type"`
	Date       string          `json:"date"`
	Data       json.RawMessage `json:"data"`
}

type BatchRequest struct {
	UserID    string            `json:"userId"`
	Mutations []Mutation        `json:"mutations"`
	Logs      []json.RawMessage `json:"logs"`
}

type Rejection struct {
	MutationID string `json:"mutationId"`
	Reason     string `json:"reason"`
}

type BatchResponse struct {
	Success           bool        `json:"success"`
	SyncedMutationIDs []string    `json:"syncedMutationIds"`
	RejectedMutations []Rejection `json:"rejectedMutations"`
	LockedDates       []string    `json:"lockedDates"`
}

// Rejection reasons. A DATE_LOCKED mutation must be reverted client-side.
const (
	ReasonDateLocked  = "DATE_LOCKED"
	ReasonInvalidDate = "INVALID_DATE"
	ReasonMissingID   = "MISSING_MUTATION_ID"
)
