package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BillingLineInput is one priced service line to bill
type BillingLineInput struct {
	ServiceTypeID   *uint    `json:"serviceTypeId"`
	ServiceName     string   `json:"serviceName"`
	OriginalAmount  float64  `json:"originalAmount"`
	DiscountPercent float64  `json:"discountPercent"`
	GSTRate         *float64 `json:"gstRate"` // nil inherits the invoice rate
}

// BillingInput is everything the calculator needs
type BillingInput struct {
	GSTIncluded bool               `json:"gstIncluded"`
	GSTRate     float64            `json:"gstRate"`
	Items       []BillingLineInput `json:"items"`
}

// BillingLineResult is a computed service line
type BillingLineResult struct {
	ServiceTypeID   *uint   `json:"serviceTypeId"`
	ServiceName     string  `json:"serviceName"`
	OriginalAmount  float64 `json:"originalAmount"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	FinalAmount     float64 `json:"finalAmount"`
	GSTRate         float64 `json:"gstRate"`
	GSTAmount       float64 `json:"gstAmount"`
	LineTotal       float64 `json:"lineTotal"`
}

// BillingResult holds computed lines and invoice totals
type BillingResult struct {
	Items         []BillingLineResult `json:"items"`
	TotalOriginal float64             `json:"totalOriginal"`
	TotalDiscount float64             `json:"totalDiscount"`
	Subtotal      float64             `json:"subtotal"`
	TotalGST      float64             `json:"totalGst"`
	TotalAmount   float64             `json:"totalAmount"`
}

// BillingLineError names one invalid field on one line
type BillingLineError struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BillingValidationError lists every invalid line; no totals are produced
type BillingValidationError struct {
	Lines []BillingLineError
}

func (e *BillingValidationError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("line %d: %s %s", l.Line, l.Field, l.Message))
	}
	return "invalid billing lines: " + strings.Join(parts, "; ")
}

// ValidateBilling checks every line and reports all problems at once.
// Line numbers are 1-based.
func ValidateBilling(input BillingInput) error {
	var lineErrs []BillingLineError
	if input.GSTRate < 0 || input.GSTRate > 100 {
		lineErrs = append(lineErrs, BillingLineError{Line: 0, Field: "gstRate", Message: "must be between 0 and 100"})
	}
	if len(input.Items) == 0 {
		lineErrs = append(lineErrs, BillingLineError{Line: 0, Field: "items", Message: "at least one service line is required"})
	}
	for i, item := range input.Items {
		line := i + 1
		if strings.TrimSpace(item.ServiceName) == "" {
			lineErrs = append(lineErrs, BillingLineError{Line: line, Field: "serviceName", Message: "is required"})
		}
		if item.OriginalAmount < 0 {
			lineErrs = append(lineErrs, BillingLineError{Line: line, Field: "originalAmount", Message: "must not be negative"})
		}
		if item.DiscountPercent < 0 || item.DiscountPercent > 100 {
			lineErrs = append(lineErrs, BillingLineError{Line: line, Field: "discountPercent", Message: "must be between 0 and 100"})
		}
		if item.GSTRate != nil && (*item.GSTRate < 0 || *item.GSTRate > 100) {
			lineErrs = append(lineErrs, BillingLineError{Line: line, Field: "gstRate", Message: "must be between 0 and 100"})
		}
	}
	if len(lineErrs) > 0 {
		return &BillingValidationError{Lines: lineErrs}
	}
	return nil
}

// CalculateBilling computes discounts, GST and totals. It is a pure function
// of its input. Amounts are rounded half away from zero to 2 places.
func CalculateBilling(input BillingInput) (*BillingResult, error) {
	if err := ValidateBilling(input); err != nil {
		return nil, err
	}

	var totalOriginal, totalDiscount, subtotal, totalGST decimal.Decimal
	result := &BillingResult{Items: make([]BillingLineResult, 0, len(input.Items))}

	for _, item := range input.Items {
		rate := input.GSTRate
		if item.GSTRate != nil {
			rate = *item.GSTRate
		}

		original := round2(decimal.NewFromFloat(item.OriginalAmount))
		discount := original.Mul(decimal.NewFromFloat(item.DiscountPercent)).Div(hundred)
		if discount.GreaterThan(original) {
			discount = original
		}
		discount = round2(discount)
		final := round2(original.Sub(discount))

		gst := decimal.Zero
		if input.GSTIncluded && rate > 0 {
			gst = round2(final.Mul(decimal.NewFromFloat(rate)).Div(hundred))
		}

		totalOriginal = totalOriginal.Add(original)
		totalDiscount = totalDiscount.Add(discount)
		subtotal = subtotal.Add(final)
		totalGST = totalGST.Add(gst)

		result.Items = append(result.Items, BillingLineResult{
			ServiceTypeID:   item.ServiceTypeID,
			ServiceName:     strings.TrimSpace(item.ServiceName),
			OriginalAmount:  toFloat(original),
			DiscountPercent: item.DiscountPercent,
			DiscountAmount:  toFloat(discount),
			FinalAmount:     toFloat(final),
			GSTRate:         rate,
			GSTAmount:       toFloat(gst),
			LineTotal:       toFloat(final.Add(gst)),
		})
	}

	result.TotalOriginal = toFloat(totalOriginal)
	result.TotalDiscount = toFloat(totalDiscount)
	result.Subtotal = toFloat(subtotal)
	result.TotalGST = toFloat(totalGST)
	result.TotalAmount = toFloat(subtotal.Add(totalGST))
	return result, nil
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
