package reports

import (
	"github.com/gofiber/fiber/v2"
)

type CategoryRow struct {
	Category string `json:"category"`
	Kind     string `json:"kind"` // debit/credit
	Total    int64  `json:"total"`
	Count    int64  `json:"count"`
}

type CategoriesResponse struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Top  []CategoryRow `json:"top"`
}

// Categories returns the heaviest categories in the range, split by kind.
func (h *Handler) Categories(c *fiber.Ctx) error {
	userID := requestUserID(c)
	if userID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	from, to, err := rangeParams(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	rows, err := h.Pool.Query(ctx, `
SELECT COALESCE(NULLIF(category,''),'uncategorized') AS category,
       kind,
       SUM(amount)::bigint AS total,
       COUNT(*)::bigint AS count
FROM ledger_entries
WHERE owner_id = $1::uuid AND state = 'active'
  AND occurred_on::date BETWEEN $2::date AND $3::date
GROUP BY 1, 2
ORDER BY total DESC
LIMIT 12
`, userID, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed categories: "+err.Error())
	}
	defer rows.Close()

	out := make([]CategoryRow, 0)
	for rows.Next() {
		var r CategoryRow
		if err := rows.Scan(&r.Category, &r.Kind, &r.Total, &r.Count); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan categories: "+err.Error())
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "categories rows error: "+err.Error())
	}

	return c.JSON(CategoriesResponse{
		From: from,
		To:   to,
		Top:  out,
	})
}
