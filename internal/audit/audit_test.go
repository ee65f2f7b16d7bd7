package audit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	app := fiber.New()

	var got Entry
	app.Post("/entries/:id/reverse", func(c *fiber.Ctx) error {
		id := c.Params("id")
		got = FromRequest(c, "user-1", "entry_reversed", "ledger_entry", &id)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/entries/e1/reverse", nil)
	req.Header.Set("User-Agent", "audit-test/1.0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, got.UserID)
	assert.Equal(t, "user-1", *got.UserID)
	assert.Equal(t, "entry_reversed", got.Action)
	assert.Equal(t, "ledger_entry", got.EntityType)
	require.NotNil(t, got.EntityID)
	assert.Equal(t, "e1", *got.EntityID)
	require.NotNil(t, got.IP)
	assert.NotEmpty(t, *got.IP)
	require.NotNil(t, got.UserAgent)
	assert.Equal(t, "audit-test/1.0", *got.UserAgent)
}

func TestFromRequestAnonymous(t *testing.T) {
	t.Parallel()

	app := fiber.New()

	var got Entry
	app.Get("/", func(c *fiber.Ctx) error {
		got = FromRequest(c, "", "sync_batch_rejected", "sync_batch", nil)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	assert.Nil(t, got.UserID)
	assert.Nil(t, got.EntityID)
}

func TestMeta(t *testing.T) {
	t.Parallel()

	b := Meta(map[string]any{"reversal_entry_id": "r1", "count": 2})
	require.NotNil(t, b)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "r1", decoded["reversal_entry_id"])
	assert.Equal(t, float64(2), decoded["count"])

	assert.Nil(t, Meta(nil))
	assert.Nil(t, Meta(map[string]any{}))
	// Unmarshalable values never fail the audited operation.
	assert.Nil(t, Meta(map[string]any{"ch": make(chan int)}))
}

func TestWriteNilPool(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Write(context.Background(), nil, Entry{Action: "noop"}))
}
