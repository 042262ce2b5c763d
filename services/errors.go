package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Every failure in this subsystem is caller-visible and leaves state
// consistent; no operation partially applies a mutation before its
// preconditions pass (round-result application is partial by design).
var (
	ErrUnknownEventType         = errors.New("unknown event type")
	ErrInvalidStartTick         = errors.New("invalid start tick")
	ErrEventNotFound            = errors.New("event not found")
	ErrRegistrationClosed       = errors.New("registration closed")
	ErrEventCancelled           = errors.New("event cancelled")
	ErrEventCompleted           = errors.New("event already completed")
	ErrEventInProgress          = errors.New("event in progress")
	ErrAlreadyRegistered        = errors.New("already registered")
	ErrEventFull                = errors.New("event full")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrNotRegistered            = errors.New("not registered")
	ErrInsufficientParticipants = errors.New("not enough participants")
	ErrNoBracket                = errors.New("no bracket generated")
	ErrNoMoreRounds             = errors.New("no more rounds")
	ErrMatchNotFound            = errors.New("match not found")
	ErrInvalidResult            = errors.New("invalid match result")
)

// statusForErr maps scheduler errors onto HTTP statuses for the Fiber layer.
func statusForErr(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrUnknownEventType),
		errors.Is(err, ErrNoBracket),
		errors.Is(err, ErrMatchNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrEventFull),
		errors.Is(err, ErrRegistrationClosed),
		errors.Is(err, ErrEventCancelled),
		errors.Is(err, ErrEventCompleted),
		errors.Is(err, ErrEventInProgress),
		errors.Is(err, ErrNoMoreRounds):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

func errJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusForErr(err)).JSON(fiber.Map{"error": err.Error()})
}
