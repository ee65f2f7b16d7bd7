package audit

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
	IP         *string
	UserAgent  *string
	Metadata   []byte
}

// Write records an audit entry; failures are returned so callers can ignore if needed.
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	var metadata interface{}
	if len(e.Metadata) > 0 {
		raw := json.RawMessage(e.Metadata)
		metadata = raw
	}

	_, err := db.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, user_agent, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, e.UserAgent, metadata)

	return err
}

// FromRequest builds an Entry carrying the caller's IP and user agent.
func FromRequest(c *fiber.Ctx, userID, action, entityType string, entityID *string) Entry {
	ip := c.IP()
	ua := string(c.Request().Header.UserAgent())
	var uid *string
	if userID != "" {
		uid = &userID
	}
	return Entry{
		UserID:     uid,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IP:         &ip,
		UserAgent:  &ua,
	}
}

// Meta marshals arbitrary keyed values for the metadata column. Marshal
// errors yield nil metadata rather than failing the audited operation.
func Meta(v map[string]any) []byte {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
