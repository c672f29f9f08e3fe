package handlers

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/services"
)

func TestServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrOrderNotFound, fiber.StatusNotFound},
		{services.ErrPaymentNotFound, fiber.StatusNotFound},
		{services.ErrNotOwner, fiber.StatusForbidden},
		{services.ErrCartEmpty, fiber.StatusBadRequest},
		{services.ErrZoneUnavailable, fiber.StatusBadRequest},
		{services.ErrInvalidDeliveryTime, fiber.StatusBadRequest},
		{services.ErrOrderAlreadyPaid, fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		var fiberErr *fiber.Error
		if !errors.As(serviceError(tc.err), &fiberErr) {
			t.Errorf("serviceError(%v) is not a fiber error", tc.err)
			continue
		}
		if fiberErr.Code != tc.code {
			t.Errorf("serviceError(%v) = %d, want %d", tc.err, fiberErr.Code, tc.code)
		}
	}
}

func TestServiceErrorPassthrough(t *testing.T) {
	boom := errors.New("connection reset")
	if got := serviceError(boom); !errors.Is(got, boom) {
		t.Fatalf("serviceError(%v) = %v, want passthrough", boom, got)
	}
}

func TestNotFoundOr(t *testing.T) {
	var fiberErr *fiber.Error
	err := notFoundOr(gorm.ErrRecordNotFound, "zone not found")
	if !errors.As(err, &fiberErr) || fiberErr.Code != fiber.StatusNotFound {
		t.Fatalf("notFoundOr(ErrRecordNotFound) = %v, want 404", err)
	}

	boom := errors.New("connection reset")
	if got := notFoundOr(boom, "zone not found"); !errors.Is(got, boom) {
		t.Fatalf("notFoundOr(%v) = %v, want passthrough", boom, got)
	}
}
