package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/kendall-kelly/cobbler-api/models"
)

// GenerateInvoicePDF renders a stored invoice as an A4 PDF
func GenerateInvoicePDF(shopName string, billing *models.BillingDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	// core fonts are cp1252; tr maps customer text onto it
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, tr(shopName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, "Tax Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Invoice No: %s", billing.InvoiceNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", billing.InvoiceDate.Format("02-Jan-2006")), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// Customer
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Bill To", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, tr("Name: "+billing.CustomerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Phone: "+billing.CustomerPhone), "RB", 1, "L", false, 0, "")
	if billing.CustomerAddress != "" {
		pdf.MultiCell(190, 7, tr("Address: "+billing.CustomerAddress), "LRB", "L", false)
	}
	pdf.Ln(5)

	// Line items
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(70, 7, "Service", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Discount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "GST", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Final", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range billing.Items {
		pdf.CellFormat(70, 6, tr(truncate(item.ServiceName, 38)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, money(item.OriginalAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, money(item.DiscountAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%s (%g%%)", money(item.GSTAmount), item.GSTRate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(item.FinalAmount+item.GSTAmount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(155, 7, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, money(billing.Subtotal), "", 1, "R", false, 0, "")
	if billing.GSTIncluded {
		pdf.CellFormat(155, 7, "GST", "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(billing.GSTAmount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(155, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, money(billing.TotalAmount), "T", 1, "R", false, 0, "")

	if billing.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(190, 6, tr(billing.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", billing.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// truncate shortens s to at most limit runes, marking the cut with "..."
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func money(amount float64) string {
	return fmt.Sprintf("Rs. %.2f", amount)
}
