package recurring

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/awakeapp/AWAKE-sub000/internal/domain"
	"github.com/awakeapp/AWAKE-sub000/internal/ledger"
)

type Handler struct {
	Repo   *Repo
	Runner *Runner
}

func NewHandler(repo *Repo, runner *Runner) *Handler {
	return &Handler{Repo: repo, Runner: runner}
}

type createRuleRequest struct {
	Kind        string `json:"kind"` // rule | subscription, defaults to rule
	AccountID   string `json:"account_id"`
	EntryKind   string `json:"entry_kind"`
	Category    string `json:"category"`
	Amount      int64  `json:"amount"`
	Label       string `json:"label"`
	Frequency   string `json:"frequency"`
	DayOfMonth  int    `json:"day_of_month"`
	NextDueDate string `json:"next_due_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`      // YYYY-MM-DD
}

func (h *Handler) Create(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	rule := Rule{
		OwnerID:    ownerID,
		Kind:       RuleKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		AccountID:  req.AccountID,
		EntryKind:  ledger.EntryKind(strings.ToLower(strings.TrimSpace(req.EntryKind))),
		Category:   req.Category,
		Amount:     req.Amount,
		Label:      strings.TrimSpace(req.Label),
		Frequency:  Frequency(strings.ToLower(strings.TrimSpace(req.Frequency))),
		DayOfMonth: req.DayOfMonth,
	}
	if rule.Kind == "" {
		rule.Kind = KindRule
	}
	if rule.Kind == KindSubscription {
		// Subscriptions are outgoing by definition.
		rule.EntryKind = ledger.KindDebit
	}
	if req.NextDueDate != "" {
		d, err := time.Parse("2006-01-02", req.NextDueDate)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("next_due_date", "must be YYYY-MM-DD"))
		}
		rule.NextDueDate = d
	}
	if req.EndDate != "" {
		d, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("end_date", "must be YYYY-MM-DD"))
		}
		rule.EndDate = &d
	}

	out, err := h.Repo.Create(userContext(c), rule)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	kind := RuleKind(strings.ToLower(strings.TrimSpace(c.Query("kind"))))
	rules, err := h.Repo.List(userContext(c), ownerID, kind)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(rules)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) SetActive(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if err := h.Repo.SetActive(userContext(c), ownerID, c.Params("id"), req.Active); err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "active": req.Active})
}

// Sweep catches up every due rule for the authenticated owner.
func (h *Handler) Sweep(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	res, err := h.Runner.Sweep(userContext(c), ownerID, time.Now().UTC())
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(res)
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
