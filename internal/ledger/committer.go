package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

// Committer is the single mutation primitive for account balances. Every
// balance change goes through Commit: one transaction reads the account row
// locked, applies the delta, and writes the immutable entry carrying the
// balance_after snapshot. Nothing else writes accounts.balance.
type Committer struct {
	Pool *pgxpool.Pool
}

func NewCommitter(pool *pgxpool.Pool) *Committer {
	return &Committer{Pool: pool}
}

// Commit validates the request and applies it in one atomic scope. On any
// error the stored balance is unchanged.
func (cm *Committer) Commit(ctx context.Context, req CommitRequest) (CommitResult, error) {
	if err := ValidateCommit(req); err != nil {
		return CommitResult{}, err
	}

	tx, err := cm.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return CommitResult{}, domain.Unavailable("begin commit", err)
	}
	defer tx.Rollback(ctx)

	res, err := cm.CommitTx(ctx, tx, req)
	if err != nil {
		return CommitResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return CommitResult{}, domain.FromStorage("commit ledger entry", err)
	}
	return res, nil
}

// CommitTx runs the commit inside a caller-owned transaction so batch
// producers (recurring sweep, settlements mirror) can compose it. The caller
// must have validated the request and owns Commit/Rollback.
func (cm *Committer) CommitTx(ctx context.Context, tx pgx.Tx, req CommitRequest) (CommitResult, error) {
	// Replay guard: a reference-keyed request that already produced an
	// entry is a no-op, so retried batches cannot double-generate.
	if req.ReferenceID != "" {
		var existingID string
		err := tx.QueryRow(ctx, `
SELECT id::text FROM ledger_entries
WHERE owner_id = $1::uuid AND reference_type = $2 AND reference_id = $3
`, req.OwnerID, req.ReferenceType, req.ReferenceID).Scan(&existingID)
		if err == nil {
			var balance int64
			if err := tx.QueryRow(ctx,
				`SELECT balance FROM accounts WHERE id = $1::uuid AND owner_id = $2::uuid`,
				req.AccountID, req.OwnerID,
			).Scan(&balance); err != nil {
				return CommitResult{}, domain.FromStorage("read account", err)
			}
			return CommitResult{LedgerEntryID: existingID, NewBalance: balance, Replayed: true}, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return CommitResult{}, domain.FromStorage("check reference", err)
		}
	}

	var balance int64
	var archived bool
	err := tx.QueryRow(ctx, `
SELECT balance, is_archived FROM accounts
WHERE id = $1::uuid AND owner_id = $2::uuid
FOR UPDATE
`, req.AccountID, req.OwnerID).Scan(&balance, &archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return CommitResult{}, domain.NotFound("account")
	}
	if err != nil {
		return CommitResult{}, domain.FromStorage("read account", err)
	}
	if archived {
		return CommitResult{}, domain.Invalid("account_id", "account is archived")
	}

	delta, newBalance, err := planCommit(balance, req.Kind, req.Amount)
	if err != nil {
		return CommitResult{}, err
	}

	occurredOn := req.OccurredOn
	if occurredOn.IsZero() {
		occurredOn = time.Now().UTC()
	}

	var entryID string
	err = tx.QueryRow(ctx, `
INSERT INTO ledger_entries
	(owner_id, account_id, amount, kind, category, description, balance_after, reference_id, reference_type, occurred_on)
VALUES ($1::uuid, $2::uuid, $3, $4, NULLIF($5,''), $6, $7, NULLIF($8,''), NULLIF($9,''), $10)
RETURNING id::text
`, req.OwnerID, req.AccountID, req.Amount, string(req.Kind), req.Category, req.Description,
		newBalance, req.ReferenceID, req.ReferenceType, occurredOn).Scan(&entryID)
	if err != nil {
		return CommitResult{}, domain.FromStorage("insert ledger entry", err)
	}

	if _, err := tx.Exec(ctx, `
UPDATE accounts SET balance = $1, updated_at = NOW()
WHERE id = $2::uuid AND owner_id = $3::uuid
`, newBalance, req.AccountID, req.OwnerID); err != nil {
		return CommitResult{}, domain.FromStorage("update account balance", err)
	}

	return CommitResult{LedgerEntryID: entryID, NewBalance: newBalance, BalanceDelta: delta}, nil
}

// planCommit computes the signed delta and resulting balance, enforcing the
// no-overdraft guard for debits. Pure.
func planCommit(current int64, kind EntryKind, amount int64) (delta, newBalance int64, err error) {
	if kind == KindDebit && current < amount {
		return 0, 0, domain.InsufficientFunds(current, amount)
	}
	delta = kind.Signed(amount)
	return delta, current + delta, nil
}

// Reverse compensates an active entry: it commits an opposite-kind entry
// referencing the original and marks the original soft-deleted, in one
// atomic scope. History is never edited in place.
func (cm *Committer) Reverse(ctx context.Context, ownerID, entryID string) (CommitResult, error) {
	tx, err := cm.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return CommitResult{}, domain.Unavailable("begin reverse", err)
	}
	defer tx.Rollback(ctx)

	var (
		accountID   string
		amount      int64
		kind        string
		category    *string
		description string
		state       string
	)
	err = tx.QueryRow(ctx, `
SELECT account_id::text, amount, kind, category, description, state
FROM ledger_entries
WHERE id = $1::uuid AND owner_id = $2::uuid
FOR UPDATE
`, entryID, ownerID).Scan(&accountID, &amount, &kind, &category, &description, &state)
	if errors.Is(err, pgx.ErrNoRows) {
		return CommitResult{}, domain.NotFound("ledger entry")
	}
	if err != nil {
		return CommitResult{}, domain.FromStorage("read ledger entry", err)
	}
	if EntryState(state) != StateActive {
		return CommitResult{}, domain.Invalid("entry_id", "entry is already soft-deleted")
	}

	reversalKind := KindCredit
	if EntryKind(kind) == KindCredit {
		reversalKind = KindDebit
	}
	cat := ""
	if category != nil {
		cat = *category
	}

	res, err := cm.CommitTx(ctx, tx, CommitRequest{
		OwnerID:       ownerID,
		AccountID:     accountID,
		Amount:        amount,
		Kind:          reversalKind,
		Category:      cat,
		Description:   "reversal: " + description,
		ReferenceID:   entryID,
		ReferenceType: RefReversal,
	})
	if err != nil {
		return CommitResult{}, err
	}

	// The original and its reversal leave the active set together, so the
	// reconstruction invariant (balance == opening + sum of active entries)
	// keeps holding. Both rows stay forever as the audit trail of the pair.
	if _, err := tx.Exec(ctx, `
UPDATE ledger_entries SET state = 'soft_deleted', deleted_at = NOW()
WHERE id = ANY(ARRAY[$1::uuid, $2::uuid]) AND owner_id = $3::uuid
`, entryID, res.LedgerEntryID, ownerID); err != nil {
		return CommitResult{}, domain.FromStorage("soft delete ledger entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return CommitResult{}, domain.FromStorage("commit reversal", err)
	}
	return res, nil
}
