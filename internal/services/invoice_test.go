package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/example/halalexpress/internal/models"
)

func TestRenderInvoicePDF(t *testing.T) {
	invoice := models.Invoice{
		OrderID:   uuid.New(),
		Number:    "INV-20260830-A1B2C3",
		Currency:  "SAR",
		VATRate:   decimal.RequireFromString("0.15"),
		VATAmount: decimal.RequireFromString("4.20"),
		IssuedAt:  time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}

	order := models.Order{
		UserID:          uuid.New(),
		Subtotal:        decimal.RequireFromString("18.00"),
		DeliveryFee:     decimal.RequireFromString("10.00"),
		VATAmount:       decimal.RequireFromString("4.20"),
		Total:           decimal.RequireFromString("32.20"),
		DeliveryAddress: "12 King Fahd Rd, Riyadh, 11564, SA",
		DeliveryPhone:   "+966500000000",
		DeliveryTime:    time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{
				ProductSnapshot: datatypes.JSON(`{"name":"Chicken Shawarma Wrap"}`),
				Quantity:        1,
				Price:           decimal.RequireFromString("18.00"),
			},
		},
	}

	user := &models.User{Email: "customer@example.com"}

	pdf, err := RenderInvoicePDF(invoice, order, user)
	if err != nil {
		t.Fatalf("RenderInvoicePDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output does not look like a PDF, starts with %q", pdf[:min(8, len(pdf))])
	}
	if len(pdf) < 500 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(pdf))
	}
}

func TestRenderInvoicePDFNoVAT(t *testing.T) {
	invoice := models.Invoice{
		OrderID:  uuid.New(),
		Number:   "INV-20260830-ZZZZZZ",
		Currency: "SAR",
		IssuedAt: time.Now(),
	}
	order := models.Order{
		UserID:       uuid.New(),
		Subtotal:     decimal.RequireFromString("12.00"),
		DeliveryFee:  decimal.Zero,
		Total:        decimal.RequireFromString("12.00"),
		DeliveryTime: time.Now(),
	}

	pdf, err := RenderInvoicePDF(invoice, order, nil)
	if err != nil {
		t.Fatalf("RenderInvoicePDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatal("output does not look like a PDF")
	}
}

func TestSnapshotNameFallback(t *testing.T) {
	item := models.OrderItem{ProductSnapshot: datatypes.JSON(`not json`)}
	if got := snapshotName(item); got != "Item" {
		t.Fatalf("snapshotName = %q, want Item", got)
	}
}
