package reports

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type DayPoint struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Credits int64  `json:"credits"`
	Debits  int64  `json:"debits"`
	Net     int64  `json:"net"`
}

type ReportResponse struct {
	From         string     `json:"from"`
	To           string     `json:"to"`
	TotalCredits int64      `json:"total_credits"`
	TotalDebits  int64      `json:"total_debits"`
	Net          int64      `json:"net"`
	Daily        []DayPoint `json:"daily"`
}

// Get returns the owner's daily credit/debit series over active entries.
func (h *Handler) Get(c *fiber.Ctx) error {
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
SELECT occurred_on::date::text AS day,
       COALESCE(SUM(amount) FILTER (WHERE kind = 'credit'), 0)::bigint,
       COALESCE(SUM(amount) FILTER (WHERE kind = 'debit'), 0)::bigint
FROM ledger_entries
WHERE owner_id = $1::uuid AND state = 'active'
  AND occurred_on::date BETWEEN $2::date AND $3::date
GROUP BY day
ORDER BY day ASC
`, userID, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed report: "+err.Error())
	}
	defer rows.Close()

	resp := ReportResponse{From: from, To: to, Daily: make([]DayPoint, 0)}
	for rows.Next() {
		var p DayPoint
		if err := rows.Scan(&p.Date, &p.Credits, &p.Debits); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan report: "+err.Error())
		}
		p.Net = p.Credits - p.Debits
		resp.TotalCredits += p.Credits
		resp.TotalDebits += p.Debits
		resp.Daily = append(resp.Daily, p)
	}
	resp.Net = resp.TotalCredits - resp.TotalDebits
	return c.JSON(resp)
}

func requestUserID(c *fiber.Ctx) string {
	uidVal := c.Locals("user_id")
	if uidVal == nil {
		uidVal = c.Locals("userID")
	}
	userID, _ := uidVal.(string)
	return strings.TrimSpace(userID)
}

// rangeParams reads from/to query params, defaulting to the last 30 days.
func rangeParams(c *fiber.Ctx) (from, to string, err error) {
	from = strings.TrimSpace(c.Query("from"))
	to = strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		end := time.Now()
		start := end.AddDate(0, 0, -29)
		from = start.Format("2006-01-02")
		to = end.Format("2006-01-02")
	}
	if _, perr := time.Parse("2006-01-02", from); perr != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	if _, perr := time.Parse("2006-01-02", to); perr != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	return from, to, nil
}
