package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type latestUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type latestEntry struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Kind      string `json:"kind"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type OverviewResponse struct {
	UsersTotal    int64         `json:"users_total"`
	AccountsTotal int64         `json:"accounts_total"`
	EntriesTotal  int64         `json:"entries_total"`
	PartiesTotal  int64         `json:"parties_total"`
	LatestUsers   []latestUser  `json:"latest_users"`
	LatestEntries []latestEntry `json:"latest_entries"`
}

func (h *Handler) Overview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var resp OverviewResponse

	// totals
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&resp.UsersTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed users_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&resp.AccountsTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed accounts_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE state = 'active'`).Scan(&resp.EntriesTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed entries_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM debt_parties WHERE state = 'active'`).Scan(&resp.PartiesTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed parties_total: "+err.Error())
	}

	// latest users
	{
		rows, err := h.Pool.Query(ctx, `
			SELECT id::text, email, created_at::text
			FROM users
			ORDER BY created_at DESC
			LIMIT 20`)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users: "+err.Error())
		}
		defer rows.Close()

		for rows.Next() {
			var u latestUser
			if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed scan latest_users: "+err.Error())
			}
			resp.LatestUsers = append(resp.LatestUsers, u)
		}
		if err := rows.Err(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users rows: "+err.Error())
		}
	}

	// latest ledger entries
	{
		rows, err := h.Pool.Query(ctx, `
			SELECT id::text, owner_id::text, kind, amount, created_at::text
			FROM ledger_entries
			ORDER BY created_at DESC
			LIMIT 20`)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed latest_entries: "+err.Error())
		}
		defer rows.Close()

		for rows.Next() {
			var e latestEntry
			if err := rows.Scan(&e.ID, &e.OwnerID, &e.Kind, &e.Amount, &e.CreatedAt); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed scan latest_entries: "+err.Error())
			}
			resp.LatestEntries = append(resp.LatestEntries, e)
		}
		if err := rows.Err(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed latest_entries rows: "+err.Error())
		}
	}

	return c.JSON(resp)
}
