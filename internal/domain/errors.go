package domain

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies engine failures so callers know whether a retry is safe.
type ErrorKind string

const (
	KindInvalidArgument   ErrorKind = "invalid_argument"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindConflict          ErrorKind = "conflict"
	KindUnavailable       ErrorKind = "unavailable"
)

// Error is the typed failure every engine operation returns.
// Field is set for invalid_argument; Available/Required for insufficient_funds.
type Error struct {
	Kind      ErrorKind
	Field     string
	Message   string
	Available int64
	Required  int64
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindInsufficientFunds:
		return fmt.Sprintf("insufficient funds: available %d, required %d", e.Available, e.Required)
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(field, message string) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Message: message}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func InsufficientFunds(available, required int64) *Error {
	return &Error{Kind: KindInsufficientFunds, Available: available, Required: required}
}

func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf reports the taxonomy kind of err, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether the whole operation may be replayed from a fresh read.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindConflict || k == KindUnavailable
}

// FromStorage maps pgx failures onto the taxonomy. Serialization and deadlock
// failures become Conflict (safe to retry inside a new transaction); anything
// else transient becomes Unavailable.
func FromStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Message: op, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return Conflict(op, err)
		case "23505": // unique_violation: a concurrent writer got there first
			return Conflict(op, err)
		}
	}
	return Unavailable(op, err)
}

// HTTPStatus maps a taxonomy kind to the status the API surfaces.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInsufficientFunds:
		return fiber.StatusUnprocessableEntity
	case KindConflict:
		return fiber.StatusConflict
	case KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// FiberError converts an engine error into the fiber error the central
// handler renders. Insufficient-funds responses keep the amounts.
func FiberError(c *fiber.Ctx, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	status := HTTPStatus(err)
	body := fiber.Map{"error": string(e.Kind), "message": e.Error()}
	if e.Field != "" {
		body["field"] = e.Field
	}
	if e.Kind == KindInsufficientFunds {
		body["available"] = e.Available
		body["required"] = e.Required
	}
	return c.Status(status).JSON(body)
}
