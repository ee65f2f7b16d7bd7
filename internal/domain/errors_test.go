package domain

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestFromStorage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: KindNotFound},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: KindConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: KindConflict},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: KindConflict},
		{name: "anything else", err: errors.New("broken pipe"), want: KindUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(FromStorage("op", tt.err)))
		})
	}

	assert.NoError(t, FromStorage("op", nil))
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, Retryable(Conflict("op", nil)))
	assert.True(t, Retryable(Unavailable("op", nil)))
	assert.False(t, Retryable(Invalid("amount", "bad")))
	assert.False(t, Retryable(InsufficientFunds(3000, 5000)))
	assert.False(t, Retryable(errors.New("untyped")))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fiber.StatusBadRequest, HTTPStatus(Invalid("x", "y")))
	assert.Equal(t, fiber.StatusNotFound, HTTPStatus(NotFound("account")))
	assert.Equal(t, fiber.StatusUnprocessableEntity, HTTPStatus(InsufficientFunds(1, 2)))
	assert.Equal(t, fiber.StatusConflict, HTTPStatus(Conflict("op", nil)))
	assert.Equal(t, fiber.StatusServiceUnavailable, HTTPStatus(Unavailable("op", nil)))
	assert.Equal(t, fiber.StatusInternalServerError, HTTPStatus(errors.New("untyped")))
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "insufficient funds: available 3000, required 5000",
		InsufficientFunds(3000, 5000).Error())
	assert.Equal(t, "invalid_argument: amount: must be positive",
		Invalid("amount", "must be positive").Error())
	assert.Equal(t, "not_found: account not found", NotFound("account").Error())
}
