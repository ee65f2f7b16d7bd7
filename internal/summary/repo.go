package summary

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	DB *pgxpool.Pool
}

type AccountSummary struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Balance   int64  `json:"balance"`
	Credits   int64  `json:"credits"`
	Debits    int64  `json:"debits"`
}

type Summary struct {
	TotalCredits int64            `json:"total_credits"`
	TotalDebits  int64            `json:"total_debits"`
	Net          int64            `json:"net"`
	TotalBalance int64            `json:"total_balance"`
	Accounts     []AccountSummary `json:"accounts"`
}

// GetByOwner totals active ledger entries per account, optionally filtered
// to one YYYY-MM month. Account balances are the stored ones, not the
// filtered sums.
func (r Repo) GetByOwner(ctx context.Context, ownerID string, month string) (Summary, error) {
	rows, err := r.DB.Query(ctx, `
SELECT a.id::text,
       a.name,
       a.balance,
       COALESCE(SUM(e.amount) FILTER (WHERE e.kind = 'credit'), 0)::bigint,
       COALESCE(SUM(e.amount) FILTER (WHERE e.kind = 'debit'), 0)::bigint
FROM accounts a
LEFT JOIN ledger_entries e
       ON e.account_id = a.id
      AND e.state = 'active'
      AND ($2 = '' OR to_char(e.occurred_on, 'YYYY-MM') = $2)
WHERE a.owner_id = $1::uuid AND NOT a.is_archived
GROUP BY a.id
ORDER BY MIN(a.created_at) ASC
`, ownerID, month)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	s := Summary{Accounts: make([]AccountSummary, 0)}
	for rows.Next() {
		var a AccountSummary
		if err := rows.Scan(&a.AccountID, &a.Name, &a.Balance, &a.Credits, &a.Debits); err != nil {
			return Summary{}, err
		}
		s.TotalCredits += a.Credits
		s.TotalDebits += a.Debits
		s.TotalBalance += a.Balance
		s.Accounts = append(s.Accounts, a)
	}
	s.Net = s.TotalCredits - s.TotalDebits
	return s, rows.Err()
}
