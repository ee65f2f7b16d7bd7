package syncrelay

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/awakeapp/AWAKE-sub000/internal/audit"
	"github.com/awakeapp/AWAKE-sub000/internal/domain"
)

type Handler struct {
	Relay *Relay
}

func NewHandler(relay *Relay) *Handler {
	return &Handler{Relay: relay}
}

func (h *Handler) Batch(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	// The token decides the owner; a mismatched body userId is a client bug.
	if req.UserID != "" && req.UserID != ownerID {
		return fiber.NewError(fiber.StatusForbidden, "userId does not match token")
	}

	res, err := h.Relay.Process(userContext(c), ownerID, req)
	if err != nil {
		return domain.FiberError(c, err)
	}

	if len(res.RejectedMutations) > 0 {
		rec := audit.FromRequest(c, ownerID, "sync_batch_rejected", "sync_batch", nil)
		rec.Metadata = audit.Meta(map[string]any{"rejected": res.RejectedMutations})
		_ = audit.Write(userContext(c), h.Relay.Pool, rec)
	}

	return c.JSON(res)
}

func (h *Handler) LockedDates(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	dates, err := h.Relay.lockedDates(userContext(c), ownerID)
	if err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"lockedDates": dates})
}

type lockDateRequest struct {
	Date string `json:"date"`
}

func (h *Handler) LockDate(c *fiber.Ctx) error {
	ownerID, err := extractUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req lockDateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if err := h.Relay.LockDate(userContext(c), ownerID, strings.TrimSpace(req.Date)); err != nil {
		return domain.FiberError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
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
