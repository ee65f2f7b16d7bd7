package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/awakeapp/AWAKE-sub000/internal/audit"
	"github.com/awakeapp/AWAKE-sub000/internal/domain"
	"github.com/awakeapp/AWAKE-sub000/internal/money"
)

type Handler struct {
	Repo      *Repo
	Committer *Committer
}

func NewHandler(repo *Repo, committer *Committer) *Handler {
	return &Handler{Repo: repo, Committer: committer}
}

type createAccountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	OpeningBalance int64  `json:"opening_balance"`
}

func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	account, err := h.Repo.CreateAccount(userContext(c), ownerID, req.Name, AccountType(strings.ToLower(req.Type)), req.OpeningBalance)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (h *Handler) ListAccounts(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	includeArchived := c.QueryBool("include_archived", false)
	accounts, err := h.Repo.ListAccounts(userContext(c), ownerID, includeArchived)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(accounts)
}

type archiveRequest struct {
	Archived *bool `json:"archived"`
}

func (h *Handler) ArchiveAccount(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	archived := true
	var req archiveRequest
	if err := c.BodyParser(&req); err == nil && req.Archived != nil {
		archived = *req.Archived
	}

	if err := h.Repo.SetArchived(userContext(c), ownerID, c.Params("id"), archived); err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "archived": archived})
}

func (h *Handler) VerifyBalance(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	chk, err := h.Repo.VerifyBalance(userContext(c), ownerID, c.Params("id"))
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(chk)
}

type commitRequest struct {
	AccountID     string  `json:"account_id"`
	Amount        int64   `json:"amount"`
	AmountDecimal string  `json:"amount_decimal"` // alternative to amount, e.g. "12.34"
	AmountMajor   float64 `json:"amount_major"`   // alternative as a JSON number, e.g. 12.34
	Kind          string  `json:"kind"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	ReferenceID   string  `json:"reference_id"`
	ReferenceType string  `json:"reference_type"`
	OccurredOn    string  `json:"occurred_on"` // YYYY-MM-DD
}

// amountCents resolves whichever amount encoding the client sent: a decimal
// string, a JSON number in major units, or integer cents.
func (r commitRequest) amountCents() (int64, error) {
	if r.AmountDecimal != "" {
		v, err := money.ParseCents(r.AmountDecimal)
		if err != nil {
			return 0, domain.Invalid("amount_decimal", err.Error())
		}
		return v, nil
	}
	if r.AmountMajor != 0 {
		v, err := money.FloatToCents(r.AmountMajor)
		if err != nil {
			return 0, domain.Invalid("amount_major", err.Error())
		}
		return v, nil
	}
	return r.Amount, nil
}

func (h *Handler) Commit(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req commitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	amount, err := req.amountCents()
	if err != nil {
		return domain.FiberError(c, err)
	}

	var occurredOn time.Time
	if strings.TrimSpace(req.OccurredOn) != "" {
		occurredOn, err = time.Parse("2006-01-02", req.OccurredOn)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("occurred_on", "must be YYYY-MM-DD"))
		}
	}

	res, err := h.Committer.Commit(userContext(c), CommitRequest{
		OwnerID:       ownerID,
		AccountID:     req.AccountID,
		Amount:        amount,
		Kind:          EntryKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Category:      req.Category,
		Description:   req.Description,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		OccurredOn:    occurredOn,
	})
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	TransferID    string `json:"transfer_id"` // set to retry a previous attempt
}

func (h *Handler) Transfer(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Description) == "" {
		req.Description = "transfer"
	}

	res, err := h.Committer.Transfer(userContext(c), ownerID, req.FromAccountID, req.ToAccountID, req.Amount, req.Description, req.TransferID)
	if err != nil {
		var incomplete *TransferIncompleteError
		if errors.As(err, &incomplete) {
			// The debit landed; tell the caller exactly what to reconcile.
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":          "transfer_incomplete",
				"transfer_id":    incomplete.TransferID,
				"debit_entry_id": incomplete.DebitEntryID,
				"message":        incomplete.Error(),
			})
		}
		return domain.FiberError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *Handler) ListEntries(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	filter := EntryFilter{
		AccountID: strings.TrimSpace(c.Query("account_id")),
		Limit:     c.QueryInt("limit", 100),
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("from", "must be YYYY-MM-DD"))
		}
		filter.From = &t
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return domain.FiberError(c, domain.Invalid("to", "must be YYYY-MM-DD"))
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	entries, err := h.Repo.ListEntries(userContext(c), ownerID, filter)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"items": entries})
}

func (h *Handler) ReverseEntry(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	entryID := c.Params("id")
	res, err := h.Committer.Reverse(userContext(c), ownerID, entryID)
	if err != nil {
		return domain.FiberError(c, err)
	}

	rec := audit.FromRequest(c, ownerID, "entry_reversed", "ledger_entry", &entryID)
	rec.Metadata = audit.Meta(map[string]any{"reversal_entry_id": res.LedgerEntryID})
	_ = audit.Write(userContext(c), h.Repo.Pool, rec)

	return c.JSON(res)
}

func (h *Handler) Bootstrap(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	accounts, err := h.Repo.Bootstrap(userContext(c), ownerID)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(accounts)
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
