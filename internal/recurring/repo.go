package recurring

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

const ruleColumns = `id::text, owner_id::text, kind, account_id::text, entry_kind,
COALESCE(category,''), amount, COALESCE(label,''), frequency, COALESCE(day_of_month, 0),
next_due_date, end_date, active, created_at`

func scanRule(row pgx.Row) (Rule, error) {
	var r Rule
	err := row.Scan(&r.ID, &r.OwnerID, &r.Kind, &r.AccountID, &r.EntryKind, &r.Category,
		&r.Amount, &r.Label, &r.Frequency, &r.DayOfMonth, &r.NextDueDate, &r.EndDate,
		&r.Active, &r.CreatedAt)
	return r, err
}

func (r *Repo) Create(ctx context.Context, rule Rule) (Rule, error) {
	if rule.Kind != KindRule && rule.Kind != KindSubscription {
		return Rule{}, domain.Invalid("kind", "must be rule or subscription")
	}
	if !rule.Frequency.Valid() {
		return Rule{}, domain.Invalid("frequency", "must be daily, weekly, monthly or yearly")
	}
	if !rule.EntryKind.Valid() {
		return Rule{}, domain.Invalid("entry_kind", "must be debit or credit")
	}
	if rule.Amount <= 0 {
		return Rule{}, domain.Invalid("amount", "must be positive")
	}
	if strings.TrimSpace(rule.Label) == "" {
		return Rule{}, domain.Invalid("label", "required")
	}
	if rule.NextDueDate.IsZero() {
		return Rule{}, domain.Invalid("next_due_date", "required")
	}
	if rule.DayOfMonth < 0 || rule.DayOfMonth > 31 {
		return Rule{}, domain.Invalid("day_of_month", "must be 1-31")
	}

	row := r.Pool.QueryRow(ctx, `
INSERT INTO recurring_rules
	(owner_id, kind, account_id, entry_kind, category, amount, label, frequency, day_of_month, next_due_date, end_date)
VALUES ($1::uuid, $2, $3::uuid, $4, NULLIF($5,''), $6, $7, $8, NULLIF($9, 0), $10, $11)
RETURNING `+ruleColumns, rule.OwnerID, string(rule.Kind), rule.AccountID, string(rule.EntryKind),
		rule.Category, rule.Amount, rule.Label, string(rule.Frequency), rule.DayOfMonth,
		dateOnly(rule.NextDueDate), rule.EndDate)
	out, err := scanRule(row)
	if err != nil {
		return Rule{}, domain.FromStorage("create recurring rule", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, ownerID, ruleID string) (Rule, error) {
	row := r.Pool.QueryRow(ctx, `
SELECT `+ruleColumns+` FROM recurring_rules
WHERE id = $1::uuid AND owner_id = $2::uuid
`, ruleID, ownerID)
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, domain.NotFound("recurring rule")
	}
	if err != nil {
		return Rule{}, domain.FromStorage("read recurring rule", err)
	}
	return rule, nil
}

func (r *Repo) List(ctx context.Context, ownerID string, kind RuleKind) ([]Rule, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT `+ruleColumns+` FROM recurring_rules
WHERE owner_id = $1::uuid AND ($2 = '' OR kind = $2)
ORDER BY created_at ASC
`, ownerID, string(kind))
	if err != nil {
		return nil, domain.FromStorage("list recurring rules", err)
	}
	defer rows.Close()

	out := make([]Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, domain.FromStorage("scan recurring rule", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// ListDue returns the active rules whose next due date has arrived.
func (r *Repo) ListDue(ctx context.Context, ownerID string, today time.Time) ([]Rule, error) {
	rows, err := r.Pool.Query(ctx, `
SELECT `+ruleColumns+` FROM recurring_rules
WHERE owner_id = $1::uuid AND active AND next_due_date <= $2
ORDER BY created_at ASC
`, ownerID, dateOnly(today))
	if err != nil {
		return nil, domain.FromStorage("list due rules", err)
	}
	defer rows.Close()

	out := make([]Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, domain.FromStorage("scan due rule", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// AdvanceNextDue persists the rule's new due date once per fully successful
// catch-up batch. next_due_date never moves backwards.
func (r *Repo) AdvanceNextDue(ctx context.Context, ownerID, ruleID string, nextDue time.Time, stillActive bool) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE recurring_rules
SET next_due_date = $1, active = $2, updated_at = NOW()
WHERE id = $3::uuid AND owner_id = $4::uuid AND next_due_date <= $1
`, dateOnly(nextDue), stillActive, ruleID, ownerID)
	if err != nil {
		return domain.FromStorage("advance rule", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.Conflict("rule advanced concurrently", nil)
	}
	return nil
}

func (r *Repo) SetActive(ctx context.Context, ownerID, ruleID string, active bool) error {
	ct, err := r.Pool.Exec(ctx, `
UPDATE recurring_rules SET active = $1, updated_at = NOW()
WHERE id = $2::uuid AND owner_id = $3::uuid
`, active, ruleID, ownerID)
	if err != nil {
		return domain.FromStorage("set rule active", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("recurring rule")
	}
	return nil
}
