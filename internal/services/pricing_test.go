package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/example/halalexpress/internal/models"
)

func zone(name, prefix string, fee string, active bool) models.DeliveryZone {
	return models.DeliveryZone{
		Name:           name,
		PostcodePrefix: prefix,
		Fee:            decimal.RequireFromString(fee),
		ETAMinutes:     60,
		IsActive:       active,
	}
}

func TestMatchZoneLongestPrefixWins(t *testing.T) {
	zones := []models.DeliveryZone{
		zone("wide", "12", "15.00", true),
		zone("narrow", "1234", "8.00", true),
	}

	got := MatchZone("123456", zones)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Name != "narrow" {
		t.Fatalf("expected narrow zone, got %s", got.Name)
	}
}

func TestMatchZoneNormalizesInput(t *testing.T) {
	zones := []models.DeliveryZone{zone("riyadh", " AB1 ", "10.00", true)}

	got := MatchZone("  ab1 2cd ", zones)
	if got == nil || got.Name != "riyadh" {
		t.Fatalf("expected riyadh zone, got %v", got)
	}
}

func TestMatchZoneSkipsInactiveAndEmptyPrefix(t *testing.T) {
	zones := []models.DeliveryZone{
		zone("inactive", "12", "10.00", false),
		zone("blank", "  ", "10.00", true),
	}

	if got := MatchZone("1299", zones); got != nil {
		t.Fatalf("expected no match, got %s", got.Name)
	}
}

func TestMatchZoneNoMatch(t *testing.T) {
	zones := []models.DeliveryZone{zone("riyadh", "11", "10.00", true)}

	if got := MatchZone("9999", zones); got != nil {
		t.Fatalf("expected no match, got %s", got.Name)
	}
	if got := MatchZone("", zones); got != nil {
		t.Fatalf("expected no match for empty postcode, got %s", got.Name)
	}
}

func TestComputeTotals(t *testing.T) {
	items := []PricedItem{
		{UnitPrice: decimal.RequireFromString("40.00"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("20.00"), Quantity: 1},
	}
	fee := decimal.RequireFromString("10.00")
	rate := decimal.RequireFromString("0.05")

	totals, err := ComputeTotals(items, fee, rate)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}

	if totals.Subtotal.StringFixed(2) != "100.00" {
		t.Errorf("subtotal = %s, want 100.00", totals.Subtotal)
	}
	if totals.VATAmount.StringFixed(2) != "5.50" {
		t.Errorf("vat = %s, want 5.50", totals.VATAmount)
	}
	if totals.Total.StringFixed(2) != "115.50" {
		t.Errorf("total = %s, want 115.50", totals.Total)
	}
}

func TestComputeTotalsRoundsVAT(t *testing.T) {
	items := []PricedItem{{UnitPrice: decimal.RequireFromString("9.99"), Quantity: 3}}
	fee := decimal.RequireFromString("5.00")
	rate := decimal.RequireFromString("0.15")

	totals, err := ComputeTotals(items, fee, rate)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}

	// 29.97 + 5.00 = 34.97; 15% = 5.2455, rounds to 5.25
	if totals.VATAmount.StringFixed(2) != "5.25" {
		t.Errorf("vat = %s, want 5.25", totals.VATAmount)
	}
	if totals.Total.StringFixed(2) != "40.22" {
		t.Errorf("total = %s, want 40.22", totals.Total)
	}
}

func TestComputeTotalsZeroRate(t *testing.T) {
	items := []PricedItem{{UnitPrice: decimal.RequireFromString("18.00"), Quantity: 1}}

	totals, err := ComputeTotals(items, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !totals.VATAmount.IsZero() {
		t.Errorf("vat = %s, want 0", totals.VATAmount)
	}
	if totals.Total.StringFixed(2) != "18.00" {
		t.Errorf("total = %s, want 18.00", totals.Total)
	}
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	_, err := ComputeTotals(nil, decimal.Zero, decimal.Zero)
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestComputeTotalsInvalidQuantity(t *testing.T) {
	items := []PricedItem{{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 0}}
	_, err := ComputeTotals(items, decimal.Zero, decimal.Zero)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}
