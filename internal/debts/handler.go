package debts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

type Handler struct {
	Repo    *Repo
	Settler *Settler
}

func NewHandler(repo *Repo, settler *Settler) *Handler {
	return &Handler{Repo: repo, Settler: settler}
}

type createPartyRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *Handler) CreateParty(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createPartyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	party, err := h.Repo.CreateParty(userContext(c), ownerID, req.Name, req.Phone)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(party)
}

func (h *Handler) ListParties(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	parties, err := h.Repo.ListParties(userContext(c), ownerID)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(parties)
}

func (h *Handler) DeleteParty(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Repo.SoftDeleteParty(userContext(c), ownerID, c.Params("id")); err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// partyView is the read-side payload: running balance, standing and pending
// entries with remainders.
type partyView struct {
	Party   Party          `json:"party"`
	Balance int64          `json:"balance"`
	Status  PartyStatus    `json:"status"`
	Pending []PendingEntry `json:"pending"`
}

func (h *Handler) GetPartyView(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	ctx := userContext(c)
	party, err := h.Repo.GetParty(ctx, ownerID, c.Params("id"))
	if err != nil {
		return domain.FiberError(c, err)
	}
	entries, err := h.Repo.ListEntries(ctx, ownerID, party.ID)
	if err != nil {
		return domain.FiberError(c, err)
	}

	return c.JSON(partyView{
		Party:   party,
		Balance: Balance(entries),
		Status:  Status(entries, time.Now().UTC()),
		Pending: Pending(entries),
	})
}

func (h *Handler) ListPartyEntries(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	entries, err := h.Repo.ListEntries(userContext(c), ownerID, c.Params("id"))
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"items": entries})
}

type createEntryRequest struct {
	Type    string `json:"type"`
	Amount  int64  `json:"amount"`
	Date    string `json:"date"`     // YYYY-MM-DD
	DueDate string `json:"due_date"` // YYYY-MM-DD
	Note    string `json:"note"`
}

func (h *Handler) CreateEntry(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	entry := Entry{
		OwnerID: ownerID,
		PartyID: c.Params("id"),
		Type:    EntryType(strings.ToLower(strings.TrimSpace(req.Type))),
		Amount:  req.Amount,
		Note:    strings.TrimSpace(req.Note),
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("date", "must be YYYY-MM-DD"))
		}
		entry.Date = d
	}
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("due_date", "must be YYYY-MM-DD"))
		}
		entry.DueDate = &d
	}

	out, err := h.Repo.CreateEntry(userContext(c), entry)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

type settleHTTPRequest struct {
	Amount          int64                `json:"amount"`
	Type            string               `json:"type"` // you_received | you_repaid
	Selected        []SelectedAllocation `json:"selected"`
	Note            string               `json:"note"`
	Date            string               `json:"date"`
	MirrorAccountID string               `json:"mirror_account_id"`
}

func (h *Handler) Settle(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req settleHTTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	settle := SettleRequest{
		OwnerID:         ownerID,
		PartyID:         c.Params("id"),
		Amount:          req.Amount,
		Type:            EntryType(strings.ToLower(strings.TrimSpace(req.Type))),
		Selected:        req.Selected,
		Note:            strings.TrimSpace(req.Note),
		MirrorAccountID: strings.TrimSpace(req.MirrorAccountID),
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("date", "must be YYYY-MM-DD"))
		}
		settle.Date = d
	}

	res, err := h.Settler.Settle(userContext(c), settle)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *Handler) DeleteEntry(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Repo.SoftDeleteEntry(userContext(c), ownerID, c.Params("id")); err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Omitted fields keep their current value.
type editEntryRequest struct {
	Amount  *int64  `json:"amount"`
	Note    *string `json:"note"`
	DueDate *string `json:"due_date"`
}

func (h *Handler) EditEntry(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req editEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("due_date", "must be YYYY-MM-DD"))
		}
		dueDate = &d
	}

	entry, err := h.Repo.EditEntry(userContext(c), ownerID, c.Params("id"), req.Amount, req.Note, dueDate)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(entry)
}

func extractUserID(c *fiber.Ctx) (string, error) {
	val := c.Locals("user_id")
	if val == nil {
		val = c.Locals("userID")
	}
	if uid, ok := val.(string); ok && strings.TrimSpace(uid) != "" {
		return uid, nil
	}
	return "", errors.New("user id missing")
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
