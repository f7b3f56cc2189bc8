package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/cobbler-api/models"
	"gorm.io/gorm"
)

// maxInvoiceNumberAttempts bounds retries when a random suffix collides
const maxInvoiceNumberAttempts = 5

// BillingRequest creates or replaces the invoice of an enquiry
type BillingRequest struct {
	BillingInput
	InvoiceDate *time.Time `json:"invoiceDate"`
	Notes       string     `json:"notes"`
}

// FormatInvoiceNumber renders INV-YYYYMMDD-NNN
func FormatInvoiceNumber(date time.Time, suffix int) string {
	return fmt.Sprintf("INV-%s-%03d", date.Format("20060102"), suffix)
}

// CreateBilling issues the invoice for an enquiry in the billing stage
func (s *WorkflowService) CreateBilling(ctx context.Context, enquiryID uint, req BillingRequest) (*models.BillingDetail, error) {
	result, err := CalculateBilling(req.BillingInput)
	if err != nil {
		return nil, err
	}

	var billing models.BillingDetail
	err = s.transition(ctx, "create_billing", func(tx *gorm.DB) error {
		var enquiry models.Enquiry
		if err := findEnquiryInStage(tx, enquiryID, models.StageBilling, &enquiry); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.BillingDetail{}).Where("enquiry_id = ?", enquiryID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return invalidStateError("enquiry %d already has an invoice", enquiryID)
		}
		if err := checkBillingServiceTypes(tx, enquiryID, req.Items); err != nil {
			return err
		}

		invoiceDate := s.now()
		if req.InvoiceDate != nil {
			invoiceDate = *req.InvoiceDate
		}
		invoiceNumber, err := s.nextInvoiceNumber(tx, invoiceDate)
		if err != nil {
			return err
		}

		billing = models.BillingDetail{
			EnquiryID:       enquiryID,
			InvoiceNumber:   invoiceNumber,
			InvoiceDate:     invoiceDate,
			CustomerName:    enquiry.CustomerName,
			CustomerPhone:   enquiry.Phone,
			CustomerAddress: enquiry.Address,
		}
		applyBillingResult(&billing, req, result)
		if err := tx.Create(&billing).Error; err != nil {
			return err
		}

		return tx.Model(&enquiry).Update("final_amount", billing.TotalAmount).Error
	})
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

// UpdateBilling recomputes an existing invoice, keeping its number
func (s *WorkflowService) UpdateBilling(ctx context.Context, enquiryID uint, req BillingRequest) (*models.BillingDetail, error) {
	result, err := CalculateBilling(req.BillingInput)
	if err != nil {
		return nil, err
	}

	var billing models.BillingDetail
	err = s.transition(ctx, "update_billing", func(tx *gorm.DB) error {
		var enquiry models.Enquiry
		if err := findEnquiryInStage(tx, enquiryID, models.StageBilling, &enquiry); err != nil {
			return err
		}
		if err := findByEnquiry(tx, enquiryID, &billing, "billing"); err != nil {
			return err
		}
		if err := checkBillingServiceTypes(tx, enquiryID, req.Items); err != nil {
			return err
		}

		if err := tx.Where("billing_id = ?", billing.ID).Delete(&models.BillingItem{}).Error; err != nil {
			return err
		}

		if req.InvoiceDate != nil {
			billing.InvoiceDate = *req.InvoiceDate
		}
		applyBillingResult(&billing, req, result)
		if err := tx.Omit("Items").Save(&billing).Error; err != nil {
			return err
		}
		for i := range billing.Items {
			billing.Items[i].BillingID = billing.ID
		}
		if err := tx.Create(&billing.Items).Error; err != nil {
			return err
		}

		return tx.Model(&enquiry).Update("final_amount", billing.TotalAmount).Error
	})
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

// MoveToDelivery closes billing and opens the delivery stage
func (s *WorkflowService) MoveToDelivery(ctx context.Context, enquiryID uint) (*models.DeliveryDetail, error) {
	var delivery models.DeliveryDetail
	err := s.transition(ctx, "move_to_delivery", func(tx *gorm.DB) error {
		var enquiry models.Enquiry
		if err := findEnquiryInStage(tx, enquiryID, models.StageBilling, &enquiry); err != nil {
			return err
		}
		var billing models.BillingDetail
		if err := findByEnquiry(tx, enquiryID, &billing, "billing"); err != nil {
			return err
		}

		if err := tx.Model(&enquiry).Update("current_stage", models.StageDelivery).Error; err != nil {
			return err
		}

		delivery = models.DeliveryDetail{
			EnquiryID: enquiryID,
			Status:    models.DeliveryStatusReady,
			Method:    models.DeliveryMethodCustomerPickup,
		}
		return tx.Create(&delivery).Error
	})
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// nextInvoiceNumber draws random suffixes until one is unused
func (s *WorkflowService) nextInvoiceNumber(tx *gorm.DB, date time.Time) (string, error) {
	for attempt := 0; attempt < maxInvoiceNumberAttempts; attempt++ {
		candidate := FormatInvoiceNumber(date, s.suffix())
		var count int64
		if err := tx.Model(&models.BillingDetail{}).Where("invoice_number = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not allocate an invoice number for %s after %d attempts", date.Format("2006-01-02"), maxInvoiceNumberAttempts)
}

func applyBillingResult(billing *models.BillingDetail, req BillingRequest, result *BillingResult) {
	billing.GSTIncluded = req.GSTIncluded
	billing.GSTRate = req.GSTRate
	billing.Subtotal = result.Subtotal
	billing.GSTAmount = result.TotalGST
	billing.TotalAmount = result.TotalAmount
	billing.Notes = strings.TrimSpace(req.Notes)

	billing.Items = make([]models.BillingItem, 0, len(result.Items))
	for _, line := range result.Items {
		billing.Items = append(billing.Items, models.BillingItem{
			ServiceTypeID:   line.ServiceTypeID,
			ServiceName:     line.ServiceName,
			OriginalAmount:  line.OriginalAmount,
			DiscountPercent: line.DiscountPercent,
			DiscountAmount:  line.DiscountAmount,
			GSTRate:         line.GSTRate,
			GSTAmount:       line.GSTAmount,
			FinalAmount:     line.FinalAmount,
		})
	}
}

// checkBillingServiceTypes rejects lines that point at another enquiry's task
func checkBillingServiceTypes(tx *gorm.DB, enquiryID uint, items []BillingLineInput) error {
	for i, item := range items {
		if item.ServiceTypeID == nil {
			continue
		}
		var task models.ServiceType
		err := tx.Where("id = ? AND enquiry_id = ?", *item.ServiceTypeID, enquiryID).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("line %d: service %d does not belong to enquiry %d", i+1, *item.ServiceTypeID, enquiryID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
