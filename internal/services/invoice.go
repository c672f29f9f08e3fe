package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/example/halalexpress/internal/models"
)

// RenderInvoicePDF formats an invoice into a PDF document. Purely
// presentational: all amounts come from the persisted order.
func RenderInvoicePDF(invoice models.Invoice, order models.Order, user *models.User) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(17, 17, 17)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 9, "Halal Express - Invoice")
	pdf.Ln(11)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Invoice: %s", invoice.Number))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Issued: %s", invoice.IssuedAt.Format("2 Jan 2006 15:04")))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Order: %s", order.ID))
	pdf.Ln(8)

	customer := order.UserID.String()
	if user != nil && user.Email != "" {
		customer = user.Email
	}
	pdf.Cell(0, 5, fmt.Sprintf("Customer: %s", customer))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Delivery address: %s", order.DeliveryAddress))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Phone: %s", order.DeliveryPhone))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Delivery time: %s", order.DeliveryTime.Format("2 Jan 2006 15:04")))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Items")
	pdf.Ln(7)

	for _, item := range order.Items {
		name := snapshotName(item)
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, fmt.Sprintf("%s x%d", name, item.Quantity))
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(80, 80, 80)
		pdf.Cell(0, 4, fmt.Sprintf("Unit: %s %s    Line: %s %s",
			item.Price.StringFixed(2), invoice.Currency,
			lineTotal.StringFixed(2), invoice.Currency))
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Totals")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Subtotal: %s %s", order.Subtotal.StringFixed(2), invoice.Currency))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Delivery fee: %s %s", order.DeliveryFee.StringFixed(2), invoice.Currency))
	pdf.Ln(5)
	if !invoice.VATRate.IsZero() || !invoice.VATAmount.IsZero() {
		pdf.Cell(0, 5, fmt.Sprintf("VAT (%s%%): %s %s",
			invoice.VATRate.Shift(2).StringFixed(2), invoice.VATAmount.StringFixed(2), invoice.Currency))
		pdf.Ln(5)
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %s %s", order.Total.StringFixed(2), invoice.Currency))
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, "Thank you for your order.", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func snapshotName(item models.OrderItem) string {
	var snap struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(item.ProductSnapshot, &snap); err == nil && snap.Name != "" {
		return snap.Name
	}
	return "Item"
}
