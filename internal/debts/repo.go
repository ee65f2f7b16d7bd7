package debts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

// querier lets loading run against the pool or inside a transaction; the
// settle path must read pending entries in the same scope it writes.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) CreateParty(ctx context.Context, ownerID, name, phone string) (Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Party{}, domain.Invalid("name", "required")
	}

	var p Party
	err := r.Pool.QueryRow(ctx, `
INSERT INTO debt_parties (owner_id, name, phone)
VALUES ($1::uuid, $2, NULLIF($3,''))
RETURNING id::text, owner_id::text, name, phone, state, created_at
`, ownerID, name, strings.TrimSpace(phone)).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.State, &p.CreatedAt)
	if err != nil {
		return Party{}, domain.FromStorage("create debt party", err)
	}
	return p, nil
}

func (r *Repo) GetParty(ctx context.Context, ownerID, partyID string) (Party, error) {
	var p Party
	err := r.Pool.QueryRow(ctx, `
SELECT id::text, owner_id::text, name, phone, state, created_at
FROM debt_parties
WHERE id = $1::uuid AND owner_id = $2::uuid
`, partyID, ownerID).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.State, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, domain.NotFound("debt party")
	}
	if err != nil {
		return Party{}, domain.FromStorage("read debt party", err)
	}
	return p, nil
}

func (r *Repo) ListParties(ctx context.Context, ownerID string) ([]Party, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT id::text, owner_id::text, name, phone, state, created_at
FROM debt_parties
WHERE owner_id = $1::uuid AND state = 'active'
ORDER BY name ASC
`, ownerID)
	if err != nil {
		return nil, domain.FromStorage("list debt parties", err)
	}
	defer rows.Close()

	out := make([]Party, 0)
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.State, &p.CreatedAt); err != nil {
			return nil, domain.FromStorage("scan debt party", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) SoftDeleteParty(ctx context.Context, ownerID, partyID string) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE debt_parties SET state = 'soft_deleted', updated_at = NOW()
WHERE id = $1::uuid AND owner_id = $2::uuid AND state = 'active'
`, partyID, ownerID)
	if err != nil {
		return domain.FromStorage("delete debt party", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("debt party")
	}
	return nil
}

// CreateEntry appends a non-payment entry (you_gave, you_borrowed,
// adjustment, write_off). Payment entries go through Settler.
func (r *Repo) CreateEntry(ctx context.Context, e Entry) (Entry, error) {
	if !e.Type.Valid() {
		return Entry{}, domain.Invalid("type", "unknown debt entry type")
	}
	if e.Type.Payment() {
		return Entry{}, domain.Invalid("type", "payment entries are created by settlement")
	}
	if e.Type == TypeAdjustment {
		if e.Amount == 0 {
			return Entry{}, domain.Invalid("amount", "must not be zero")
		}
	} else if e.Type != TypeWriteOff && e.Amount <= 0 {
		return Entry{}, domain.Invalid("amount", "must be positive")
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}

	var out Entry
	err := r.Pool.QueryRow(ctx, `
INSERT INTO debt_entries (owner_id, party_id, type, amount, occurred_on, due_date, note)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, NULLIF($7,''))
RETURNING id::text, owner_id::text, party_id::text, type, amount, occurred_on, due_date,
          COALESCE(note,''), state, is_reversal, reversed_tx_id, edit_count, created_at
`, e.OwnerID, e.PartyID, string(e.Type), e.Amount, e.Date, e.DueDate, e.Note).Scan(
		&out.ID, &out.OwnerID, &out.PartyID, &out.Type, &out.Amount, &out.Date, &out.DueDate,
		&out.Note, &out.State, &out.IsReversal, &out.ReversedTxID, &out.EditCount, &out.CreatedAt)
	if err != nil {
		return Entry{}, domain.FromStorage("create debt entry", err)
	}
	return out, nil
}

// loadEntries reads the party's full entry history plus settlement links
// through q, so the settle path sees a snapshot consistent with its writes.
func loadEntries(ctx context.Context, q querier, ownerID, partyID string) ([]Entry, error) {
	rows, err := q.Query(ctx, `
SELECT id::text, owner_id::text, party_id::text, type, amount, occurred_on, due_date,
       COALESCE(note,''), state, is_reversal, reversed_tx_id, edit_count, created_at
FROM debt_entries
WHERE owner_id = $1::uuid AND party_id = $2::uuid
ORDER BY occurred_on ASC, created_at ASC
`, ownerID, partyID)
	if err != nil {
		return nil, domain.FromStorage("list debt entries", err)
	}
	defer rows.Close()

	var entries []Entry
	index := make(map[string]int)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.PartyID, &e.Type, &e.Amount, &e.Date, &e.DueDate,
			&e.Note, &e.State, &e.IsReversal, &e.ReversedTxID, &e.EditCount, &e.CreatedAt); err != nil {
			return nil, domain.FromStorage("scan debt entry", err)
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.FromStorage("list debt entries", err)
	}

	links, err := q.Query(ctx, `
SELECT s.payment_entry_id::text, s.settled_entry_id::text, s.amount
FROM debt_settlements s
JOIN debt_entries p ON p.id = s.payment_entry_id
WHERE p.owner_id = $1::uuid AND p.party_id = $2::uuid
ORDER BY s.created_at ASC
`, ownerID, partyID)
	if err != nil {
		return nil, domain.FromStorage("list debt settlements", err)
	}
	defer links.Close()

	for links.Next() {
		var paymentID, settledID string
		var amount int64
		if err := links.Scan(&paymentID, &settledID, &amount); err != nil {
			return nil, domain.FromStorage("scan debt settlement", err)
		}
		if i, ok := index[paymentID]; ok {
			entries[i].Settlements = append(entries[i].Settlements, Settlement{EntryID: settledID, Amount: amount})
		}
	}
	return entries, links.Err()
}

func (r *Repo) ListEntries(ctx context.Context, ownerID, partyID string) ([]Entry, error) {
	return loadEntries(ctx, r.Pool, ownerID, partyID)
}

// SoftDeleteEntry retires an entry and appends its reversal marker in one
// transaction. The marker is born soft-deleted: it documents the compensation
// without re-entering the fold. Deleting a payment entry releases its
// settlement allocations (the fold only counts active payments).
func (r *Repo) SoftDeleteEntry(ctx context.Context, ownerID, entryID string) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Unavailable("begin delete", err)
	}
	defer tx.Rollback(ctx)

	var partyID, typ string
	var amount int64
	var occurredOn time.Time
	err = tx.QueryRow(ctx, `
SELECT party_id::text, type, amount, occurred_on
FROM debt_entries
WHERE id = $1::uuid AND owner_id = $2::uuid AND state = 'active'
FOR UPDATE
`, entryID, ownerID).Scan(&partyID, &typ, &amount, &occurredOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound("debt entry")
	}
	if err != nil {
		return domain.FromStorage("read debt entry", err)
	}

	if _, err := tx.Exec(ctx, `
UPDATE debt_entries SET state = 'soft_deleted', deleted_at = NOW(), updated_at = NOW()
WHERE id = $1::uuid AND owner_id = $2::uuid
`, entryID, ownerID); err != nil {
		return domain.FromStorage("delete debt entry", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO debt_entries (owner_id, party_id, type, amount, occurred_on, state, deleted_at, is_reversal, reversed_tx_id)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, 'soft_deleted', NOW(), TRUE, $6::uuid)
`, ownerID, partyID, typ, amount, occurredOn, entryID); err != nil {
		return domain.FromStorage("insert reversal marker", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.FromStorage("commit delete", err)
	}
	return nil
}

// editGuard validates a partial edit. Nil fields mean "keep current"; an
// amount, when given, may never drop below what is already settled against
// the entry.
func editGuard(amount *int64, note *string, dueDate *time.Time, settled int64) error {
	if amount == nil && note == nil && dueDate == nil {
		return domain.Invalid("body", "nothing to edit")
	}
	if amount != nil {
		if *amount <= 0 {
			return domain.Invalid("amount", "must be positive")
		}
		if *amount < settled {
			return domain.Invalid("amount", "below amount already settled against this entry")
		}
	}
	return nil
}

// EditEntry amends amount, note or due date of an active principal entry,
// bumping its edit counter and archiving the prior values. Nil fields keep
// their current value; an empty note clears it.
func (r *Repo) EditEntry(ctx context.Context, ownerID, entryID string, amount *int64, note *string, dueDate *time.Time) (Entry, error) {
	if err := editGuard(amount, note, dueDate, 0); err != nil {
		return Entry{}, err
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Entry{}, domain.Unavailable("begin edit", err)
	}
	defer tx.Rollback(ctx)

	var typ string
	err = tx.QueryRow(ctx, `
SELECT type FROM debt_entries
WHERE id = $1::uuid AND owner_id = $2::uuid AND state = 'active'
FOR UPDATE
`, entryID, ownerID).Scan(&typ)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, domain.NotFound("debt entry")
	}
	if err != nil {
		return Entry{}, domain.FromStorage("read debt entry", err)
	}
	if !EntryType(typ).Principal() {
		return Entry{}, domain.Invalid("entry_id", "only you_gave/you_borrowed entries can be edited")
	}

	var settled int64
	if err := tx.QueryRow(ctx, `
SELECT COALESCE(SUM(s.amount), 0)
FROM debt_settlements s
JOIN debt_entries p ON p.id = s.payment_entry_id AND p.state = 'active'
WHERE s.settled_entry_id = $1::uuid
`, entryID).Scan(&settled); err != nil {
		return Entry{}, domain.FromStorage("sum settlements", err)
	}
	if err := editGuard(amount, note, dueDate, settled); err != nil {
		return Entry{}, err
	}

	if note != nil {
		trimmed := strings.TrimSpace(*note)
		note = &trimmed
	}

	// Archive the prior values into the entry's edit history, then apply.
	if _, err := tx.Exec(ctx, `
INSERT INTO debt_entry_edits (entry_id, amount, note, due_date)
SELECT id, amount, note, due_date FROM debt_entries WHERE id = $1::uuid
`, entryID); err != nil {
		return Entry{}, domain.FromStorage("append edit history", err)
	}

	var out Entry
	err = tx.QueryRow(ctx, `
UPDATE debt_entries
SET amount   = COALESCE($1::bigint, amount),
    note     = CASE WHEN $2::text IS NULL THEN note ELSE NULLIF($2, '') END,
    due_date = COALESCE($3::date, due_date),
    edit_count = edit_count + 1, updated_at = NOW()
WHERE id = $4::uuid AND owner_id = $5::uuid
RETURNING id::text, owner_id::text, party_id::text, type, amount, occurred_on, due_date,
          COALESCE(note,''), state, is_reversal, reversed_tx_id, edit_count, created_at
`, amount, note, dueDate, entryID, ownerID).Scan(
		&out.ID, &out.OwnerID, &out.PartyID, &out.Type, &out.Amount, &out.Date, &out.DueDate,
		&out.Note, &out.State, &out.IsReversal, &out.ReversedTxID, &out.EditCount, &out.CreatedAt)
	if err != nil {
		return Entry{}, domain.FromStorage("update debt entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, domain.FromStorage("commit edit", err)
	}
	return out, nil
}
