package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/services"
)

// serviceError maps service sentinel errors onto HTTP statuses.
// Anything unmapped bubbles up as a 500 through fiber's error handler.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		return fiber.NewError(fiber.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrPostcodeRequired),
		errors.Is(err, services.ErrZoneUnavailable),
		errors.Is(err, services.ErrInvalidDeliveryTime),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrAddressRequired),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrInvalidOrderStatus),
		errors.Is(err, services.ErrOrderCancelled),
		errors.Is(err, services.ErrOrderAlreadyPaid),
		errors.Is(err, services.ErrRefundUnsupported),
		errors.Is(err, services.ErrMissingIntentRef),
		errors.Is(err, services.ErrNoChargeToRefund),
		errors.Is(err, services.ErrInvalidIntent),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidPaymentStatus):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}

// notFoundOr turns a gorm record-not-found into a 404 and passes other
// errors through.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, message)
	}
	return err
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
