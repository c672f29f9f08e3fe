package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/halalexpress/internal/models"
)

// Business-rule errors surfaced to callers as 400s.
var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrPostcodeRequired = errors.New("postcode is required")
	ErrZoneUnavailable  = errors.New("delivery not available for this postcode")
)

// MatchZone returns the active zone whose postcode prefix is the
// longest prefix of the given postcode, or nil when none matches.
// Postcode and prefixes are compared trimmed and lowercased. Inactive
// zones and zones with an empty prefix never match.
func MatchZone(postcode string, zones []models.DeliveryZone) *models.DeliveryZone {
	normalized := strings.ToLower(strings.TrimSpace(postcode))
	if normalized == "" {
		return nil
	}

	var best *models.DeliveryZone
	bestLen := 0
	for i := range zones {
		zone := &zones[i]
		if !zone.IsActive {
			continue
		}
		prefix := strings.ToLower(strings.TrimSpace(zone.PostcodePrefix))
		if prefix == "" || !strings.HasPrefix(normalized, prefix) {
			continue
		}
		if len(prefix) > bestLen {
			best = zone
			bestLen = len(prefix)
		}
	}
	return best
}

// PricedItem is one order line with its resolved unit price.
type PricedItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the monetary breakdown of an order, each value fixed to
// two decimal places.
type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	VATAmount   decimal.Decimal
	Total       decimal.Decimal
}

// ComputeTotals prices an order: subtotal over the items, VAT on
// subtotal plus delivery fee, grand total as the sum of all three.
func ComputeTotals(items []PricedItem, fee, vatRate decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ErrCartEmpty
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return Totals{}, ErrInvalidQuantity
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	subtotal = subtotal.Round(2)
	fee = fee.Round(2)
	vatAmount := subtotal.Add(fee).Mul(vatRate).Round(2)

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		VATAmount:   vatAmount,
		Total:       subtotal.Add(fee).Add(vatAmount),
	}, nil
}
