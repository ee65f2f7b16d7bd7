package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

// Repo is the owner-scoped storage surface for accounts and entries. Every
// method takes the owner id explicitly; balance writes stay in Committer.
type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) CreateAccount(ctx context.Context, ownerID, name string, typ AccountType, openingBalance int64) (Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Account{}, domain.Invalid("name", "required")
	}
	if !typ.Valid() {
		return Account{}, domain.Invalid("type", "must be cash, bank or wallet")
	}

	var a Account
	err := r.Pool.QueryRow(ctx, `
INSERT INTO accounts (owner_id, name, type, opening_balance, balance)
VALUES ($1::uuid, $2, $3, $4, $4)
RETURNING id::text, owner_id::text, name, type, opening_balance, balance, is_archived, created_at
`, ownerID, name, string(typ), openingBalance).Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.OpeningBalance, &a.Balance, &a.IsArchived, &a.CreatedAt)
	if err != nil {
		return Account{}, domain.FromStorage("create account", err)
	}
	return a, nil
}

func (r *Repo) GetAccount(ctx context.Context, ownerID, accountID string) (Account, error) {
	var a Account
	err := r.Pool.QueryRow(ctx, `
SELECT id::text, owner_id::text, name, type, opening_balance, balance, is_archived, created_at
FROM accounts
WHERE id = $1::uuid AND owner_id = $2::uuid
`, accountID, ownerID).Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.OpeningBalance, &a.Balance, &a.IsArchived, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, domain.NotFound("account")
	}
	if err != nil {
		return Account{}, domain.FromStorage("read account", err)
	}
	return a, nil
}

func (r *Repo) ListAccounts(ctx context.Context, ownerID string, includeArchived bool) ([]Account, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT id::text, owner_id::text, name, type, opening_balance, balance, is_archived, created_at
FROM accounts
WHERE owner_id = $1::uuid AND ($2 OR NOT is_archived)
ORDER BY created_at ASC
`, ownerID, includeArchived)
	if err != nil {
		return nil, domain.FromStorage("list accounts", err)
	}
	defer rows.Close()

	out := make([]Account, 0)
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.OpeningBalance, &a.Balance, &a.IsArchived, &a.CreatedAt); err != nil {
			return nil, domain.FromStorage("scan account", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetArchived flips the archive flag. Accounts referenced by history are
// never hard-deleted.
func (r *Repo) SetArchived(ctx context.Context, ownerID, accountID string, archived bool) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE accounts SET is_archived = $1, updated_at = NOW()
WHERE id = $2::uuid AND owner_id = $3::uuid
`, archived, accountID, ownerID)
	if err != nil {
		return domain.FromStorage("archive account", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("account")
	}
	return nil
}

type EntryFilter struct {
	AccountID string
	From      *time.Time
	To        *time.Time
	Limit     int
}

func (r *Repo) ListEntries(ctx context.Context, ownerID string, f EntryFilter) ([]Entry, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	rows, err := r.Pool.Query(ctx, `
SELECT id::text, owner_id::text, account_id::text, amount, kind, COALESCE(category,''),
       description, balance_after, reference_id, reference_type, state, deleted_at,
       occurred_on, created_at
FROM ledger_entries
WHERE owner_id = $1::uuid
  AND ($2 = '' OR account_id = $2::uuid)
  AND ($3::timestamptz IS NULL OR occurred_on >= $3)
  AND ($4::timestamptz IS NULL OR occurred_on <= $4)
ORDER BY created_at DESC
LIMIT $5
`, ownerID, f.AccountID, f.From, f.To, f.Limit)
	if err != nil {
		return nil, domain.FromStorage("list ledger entries", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, f.Limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.AccountID, &e.Amount, &e.Kind, &e.Category,
			&e.Description, &e.BalanceAfter, &e.ReferenceID, &e.ReferenceType, &e.State,
			&e.DeletedAt, &e.OccurredOn, &e.CreatedAt); err != nil {
			return nil, domain.FromStorage("scan ledger entry", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BalanceCheck is the reconstruction report for one account: the stored
// balance must equal opening balance plus the signed sum of active entries.
type BalanceCheck struct {
	AccountID      string `json:"account_id"`
	StoredBalance  int64  `json:"stored_balance"`
	DerivedBalance int64  `json:"derived_balance"`
	Consistent     bool   `json:"consistent"`
}

func (r *Repo) VerifyBalance(ctx context.Context, ownerID, accountID string) (BalanceCheck, error) {
	var chk BalanceCheck
	err := r.Pool.QueryRow(ctx, `
SELECT a.id::text,
       a.balance,
       a.opening_balance + COALESCE(SUM(
           CASE WHEN e.kind = 'credit' THEN e.amount ELSE -e.amount END
       ) FILTER (WHERE e.state = 'active'), 0)
FROM accounts a
LEFT JOIN ledger_entries e ON e.account_id = a.id
WHERE a.id = $1::uuid AND a.owner_id = $2::uuid
GROUP BY a.id
`, accountID, ownerID).Scan(&chk.AccountID, &chk.StoredBalance, &chk.DerivedBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return BalanceCheck{}, domain.NotFound("account")
	}
	if err != nil {
		return BalanceCheck{}, domain.FromStorage("verify balance", err)
	}
	chk.Consistent = chk.StoredBalance == chk.DerivedBalance
	return chk, nil
}

// Bootstrap creates the default cash and bank accounts for a fresh owner.
// Safe to call repeatedly; existing owners keep what they have.
func (r *Repo) Bootstrap(ctx context.Context, ownerID string) ([]Account, error) {
	existing, err := r.ListAccounts(ctx, ownerID, true)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	defaults := []struct {
		name string
		typ  AccountType
	}{
		{"Cash", AccountCash},
		{"Bank", AccountBank},
	}
	out := make([]Account, 0, len(defaults))
	for _, d := range defaults {
		a, err := r.CreateAccount(ctx, ownerID, d.name, d.typ, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
