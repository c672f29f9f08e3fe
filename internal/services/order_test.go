package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/models"
)

func testProduct(name, price string) models.Product {
	p := models.Product{
		Name:        name,
		Description: "test product",
		BasePrice:   decimal.RequireFromString(price),
		IsAvailable: true,
	}
	p.ID = uuid.New()
	return p
}

func TestBuildOrderItems(t *testing.T) {
	shawarma := testProduct("Shawarma", "18.00")
	juice := testProduct("Juice", "12.50")
	products := map[uuid.UUID]models.Product{
		shawarma.ID: shawarma,
		juice.ID:    juice,
	}

	inputs := []OrderItemInput{
		{ProductID: shawarma.ID, Quantity: 2, SelectedOptions: map[string]interface{}{"Size": "Large"}},
		{ProductID: juice.ID, Quantity: 1, ExtraInstructions: "no ice"},
	}

	items, priced, err := BuildOrderItems(inputs, products)
	if err != nil {
		t.Fatalf("BuildOrderItems: %v", err)
	}
	if len(items) != 2 || len(priced) != 2 {
		t.Fatalf("expected 2 items and 2 priced lines, got %d/%d", len(items), len(priced))
	}

	if items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", items[0].Quantity)
	}
	if items[0].Price.StringFixed(2) != "18.00" {
		t.Errorf("price = %s, want 18.00", items[0].Price)
	}
	if items[1].ExtraInstructions != "no ice" {
		t.Errorf("instructions = %q", items[1].ExtraInstructions)
	}

	var snap struct {
		Name      string `json:"name"`
		BasePrice string `json:"base_price"`
	}
	if err := json.Unmarshal(items[0].ProductSnapshot, &snap); err != nil {
		t.Fatalf("snapshot unmarshal: %v", err)
	}
	if snap.Name != "Shawarma" || snap.BasePrice != "18.00" {
		t.Errorf("snapshot = %+v", snap)
	}

	if priced[0].UnitPrice.StringFixed(2) != "18.00" || priced[0].Quantity != 2 {
		t.Errorf("priced line = %+v", priced[0])
	}
}

func TestBuildOrderItemsUnknownProduct(t *testing.T) {
	inputs := []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}}
	_, _, err := BuildOrderItems(inputs, map[uuid.UUID]models.Product{})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestBuildOrderItemsInvalidQuantity(t *testing.T) {
	p := testProduct("Shawarma", "18.00")
	inputs := []OrderItemInput{{ProductID: p.ID, Quantity: 0}}
	_, _, err := BuildOrderItems(inputs, map[uuid.UUID]models.Product{p.ID: p})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestFlattenAddress(t *testing.T) {
	addr := models.Address{
		Label:    "Home",
		Line1:    "12 King Fahd Rd",
		City:     "Riyadh",
		Postcode: "11564",
		Country:  "SA",
	}

	got := FlattenAddress(addr)
	want := "Home, 12 King Fahd Rd, Riyadh, 11564, SA"
	if got != want {
		t.Fatalf("FlattenAddress = %q, want %q", got, want)
	}
}

func TestFlattenAddressSkipsBlankParts(t *testing.T) {
	addr := models.Address{Line1: "12 King Fahd Rd", Line2: "  ", Postcode: "11564"}

	got := FlattenAddress(addr)
	want := "12 King Fahd Rd, 11564"
	if got != want {
		t.Fatalf("FlattenAddress = %q, want %q", got, want)
	}
}

func TestParseDeliveryTime(t *testing.T) {
	cases := []string{
		"2026-09-01T18:30:00Z",
		"2026-09-01T18:30:00",
		"2026-09-01T18:30",
		"2026-09-01 18:30:00",
		"2026-09-01 18:30",
		"2026-09-01",
	}
	for _, value := range cases {
		if _, err := ParseDeliveryTime(value); err != nil {
			t.Errorf("ParseDeliveryTime(%q): %v", value, err)
		}
	}
}

func TestParseDeliveryTimeInvalid(t *testing.T) {
	for _, value := range []string{"", "tomorrow", "18:30"} {
		if _, err := ParseDeliveryTime(value); !errors.Is(err, ErrInvalidDeliveryTime) {
			t.Errorf("ParseDeliveryTime(%q) = %v, want ErrInvalidDeliveryTime", value, err)
		}
	}
}

func TestRetryOnDuplicateRecoversFromCollision(t *testing.T) {
	calls := 0
	err := retryOnDuplicate(5, func() error {
		calls++
		if calls < 3 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryOnDuplicate: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryOnDuplicateStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := retryOnDuplicate(5, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryOnDuplicateGivesUp(t *testing.T) {
	calls := 0
	err := retryOnDuplicate(3, func() error {
		calls++
		return gorm.ErrDuplicatedKey
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("err = %v, want ErrDuplicatedKey", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestGenerateInvoiceNumber(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	number, err := GenerateInvoiceNumber(now)
	if err != nil {
		t.Fatalf("GenerateInvoiceNumber: %v", err)
	}

	pattern := regexp.MustCompile(`^INV-20260830-[0-9A-Z]{6}$`)
	if !pattern.MatchString(number) {
		t.Fatalf("invoice number %q does not match %s", number, pattern)
	}

	other, err := GenerateInvoiceNumber(now)
	if err != nil {
		t.Fatalf("GenerateInvoiceNumber: %v", err)
	}
	if number == other {
		t.Fatalf("two generated numbers collided: %s", number)
	}
}
