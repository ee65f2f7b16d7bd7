package debts

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awakeapp/AWAKE-sub000/internal/audit"
	"github.com/awakeapp/AWAKE-sub000/internal/domain"
	"github.com/awakeapp/AWAKE-sub000/internal/ledger"
)

// Settler records a payment against a party and allocates it across that
// party's pending entries. Pending amounts are re-read inside the same
// transaction that writes the payment, with the party row locked, so two
// racing settlements cannot allocate against the same remainder twice.
type Settler struct {
	Pool      *pgxpool.Pool
	Committer *ledger.Committer
}

func NewSettler(pool *pgxpool.Pool, committer *ledger.Committer) *Settler {
	return &Settler{Pool: pool, Committer: committer}
}

type SettleRequest struct {
	OwnerID  string
	PartyID  string
	Amount   int64
	Type     EntryType // you_received or you_repaid
	Selected []SelectedAllocation
	Note     string
	Date     time.Time
	// MirrorAccountID opts into mirroring the payment into the main account
	// ledger. The mirror is a separate, best-effort write.
	MirrorAccountID string
}

type SettleResult struct {
	Entry         Entry  `json:"entry"`
	Requested     int64  `json:"requested"`
	Allocated     int64  `json:"allocated"`
	MirrorEntryID string `json:"mirror_entry_id,omitempty"`
	MirrorWarning string `json:"mirror_warning,omitempty"`
}

func (s *Settler) Settle(ctx context.Context, req SettleRequest) (SettleResult, error) {
	if !req.Type.Payment() {
		return SettleResult{}, domain.Invalid("type", "must be you_received or you_repaid")
	}
	if req.Amount <= 0 {
		return SettleResult{}, domain.Invalid("amount", "must be positive")
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SettleResult{}, domain.Unavailable("begin settle", err)
	}
	defer tx.Rollback(ctx)

	// Lock the party row: it serializes settlements for this party so the
	// pending snapshot read below stays valid until we commit.
	var partyState string
	err = tx.QueryRow(ctx, `
SELECT state FROM debt_parties
WHERE id = $1::uuid AND owner_id = $2::uuid
FOR UPDATE
`, req.PartyID, req.OwnerID).Scan(&partyState)
	if errors.Is(err, pgx.ErrNoRows) {
		return SettleResult{}, domain.NotFound("debt party")
	}
	if err != nil {
		return SettleResult{}, domain.FromStorage("read debt party", err)
	}
	if EntryState(partyState) != StateActive {
		return SettleResult{}, domain.Invalid("party_id", "party is deleted")
	}

	entries, err := loadEntries(ctx, tx, req.OwnerID, req.PartyID)
	if err != nil {
		return SettleResult{}, err
	}
	pending := Pending(entries)

	allocs, allocated, err := Allocate(pending, req.Amount, AllocateOptions{Selected: req.Selected})
	if err != nil {
		return SettleResult{}, err
	}
	if allocated == 0 {
		return SettleResult{}, domain.Invalid("amount", "nothing pending to settle")
	}

	// The payment entry records what was actually allocated, never the
	// requested total.
	var paymentID string
	var createdAt time.Time
	err = tx.QueryRow(ctx, `
INSERT INTO debt_entries (owner_id, party_id, type, amount, occurred_on, note)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, NULLIF($6,''))
RETURNING id::text, created_at
`, req.OwnerID, req.PartyID, string(req.Type), allocated, req.Date, req.Note).Scan(&paymentID, &createdAt)
	if err != nil {
		return SettleResult{}, domain.FromStorage("insert payment entry", err)
	}

	for _, a := range allocs {
		if _, err := tx.Exec(ctx, `
INSERT INTO debt_settlements (payment_entry_id, settled_entry_id, amount)
VALUES ($1::uuid, $2::uuid, $3)
`, paymentID, a.EntryID, a.Amount); err != nil {
			return SettleResult{}, domain.FromStorage("insert settlement link", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return SettleResult{}, domain.FromStorage("commit settlement", err)
	}

	res := SettleResult{
		Entry: Entry{
			ID:          paymentID,
			OwnerID:     req.OwnerID,
			PartyID:     req.PartyID,
			Type:        req.Type,
			Amount:      allocated,
			Date:        req.Date,
			Note:        req.Note,
			Settlements: allocs,
			State:       StateActive,
			CreatedAt:   createdAt,
		},
		Requested: req.Amount,
		Allocated: allocated,
	}

	if req.MirrorAccountID != "" {
		res.MirrorEntryID, res.MirrorWarning = s.mirror(ctx, req, paymentID, allocated)
	}
	return res, nil
}

// mirror writes the payment into the main account ledger. It runs outside
// the debt-side transaction: its failure is surfaced as a warning, never
// rolled back, because a blind retry could double-credit. The settlement
// reference key makes an explicit caller retry safe.
func (s *Settler) mirror(ctx context.Context, req SettleRequest, paymentID string, allocated int64) (entryID, warning string) {
	kind := ledger.KindCredit // money collected
	if req.Type == TypeYouRepaid {
		kind = ledger.KindDebit // money paid out
	}

	res, err := s.Committer.Commit(ctx, ledger.CommitRequest{
		OwnerID:       req.OwnerID,
		AccountID:     req.MirrorAccountID,
		Amount:        allocated,
		Kind:          kind,
		Category:      "debt_settlement",
		Description:   "debt settlement " + paymentID,
		ReferenceID:   paymentID,
		ReferenceType: ledger.RefSettlement,
		OccurredOn:    req.Date,
	})
	if err != nil {
		log.Printf("settlement %s: ledger mirror failed: %v", paymentID, err)
		_ = audit.Write(ctx, s.Pool, audit.Entry{
			UserID:     &req.OwnerID,
			Action:     "settlement_mirror_failed",
			EntityType: "debt_entry",
			EntityID:   &paymentID,
		})
		return "", "ledger mirror failed: " + err.Error()
	}
	return res.LedgerEntryID, ""
}
