package reports

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type StatementItem struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Kind         string `json:"kind"` // debit/credit
	Description  string `json:"description"`
	Category     string `json:"category,omitempty"`
	Amount       int64  `json:"amount"`
	BalanceAfter int64  `json:"balance_after"`
	Date         string `json:"date"`
	CreatedAt    string `json:"created_at"`
}

type StatementResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	AccountID string          `json:"account_id,omitempty"`
	Items     []StatementItem `json:"items"`
}

// Statement returns the owner's active entries, newest first, with the
// running balance each entry left on its account. Optional account_id
// narrows to a single account.
func (h *Handler) Statement(c *fiber.Ctx) error {
	userID := requestUserID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	from, to, err := rangeParams(c)
	if err != nil {
		return err
	}
	accountID := strings.TrimSpace(c.Query("account_id"))

	ctx := c.UserContext()

	q := `
SELECT id::text, account_id::text, kind, description, COALESCE(category,''),
       amount::bigint, balance_after::bigint,
       occurred_on::date::text, created_at::text
FROM ledger_entries
WHERE owner_id = $1::uuid AND state = 'active'
  AND occurred_on::date BETWEEN $2::date AND $3::date`
	args := []any{userID, from, to}
	if accountID != "" {
		q += ` AND account_id = $4::uuid`
		args = append(args, accountID)
	}
	q += `
ORDER BY occurred_on DESC, created_at DESC
LIMIT 1000`

	rows, err := h.Pool.Query(ctx, q, args...)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed statement: "+err.Error())
	}
	defer rows.Close()

	items := make([]StatementItem, 0)
	for rows.Next() {
		var it StatementItem
		if err := rows.Scan(&it.ID, &it.AccountID, &it.Kind, &it.Description, &it.Category,
			&it.Amount, &it.BalanceAfter, &it.Date, &it.CreatedAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan statement: "+err.Error())
		}
		items = append(items, it)
	}

	return c.JSON(StatementResponse{
		From:      from,
		To:        to,
		AccountID: accountID,
		Items:     items,
	})
}
