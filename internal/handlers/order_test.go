package handlers

import "testing"

func TestInvoiceContentDisposition(t *testing.T) {
	got := invoiceContentDisposition("INV-20260830-A1B2C3")
	want := "inline; filename=INV-20260830-A1B2C3.pdf"
	if got != want {
		t.Fatalf("disposition = %q, want %q", got, want)
	}
}
