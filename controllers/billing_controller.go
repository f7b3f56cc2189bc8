package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
	"gorm.io/gorm"
)

// BillingRequest represents the request body for calculating or saving a bill.
// A missing gstRate falls back to the configured default.
type BillingRequest struct {
	GSTIncluded bool                        `json:"gstIncluded"`
	GSTRate     *float64                    `json:"gstRate"`
	Items       []services.BillingLineInput `json:"items"`
	InvoiceDate *time.Time                  `json:"invoiceDate"`
	Notes       string                      `json:"notes"`
}

func (r BillingRequest) toInput() services.BillingRequest {
	rate := appConfig().DefaultGSTRate
	if r.GSTRate != nil {
		rate = *r.GSTRate
	}
	return services.BillingRequest{
		BillingInput: services.BillingInput{
			GSTIncluded: r.GSTIncluded,
			GSTRate:     rate,
			Items:       r.Items,
		},
		InvoiceDate: r.InvoiceDate,
		Notes:       r.Notes,
	}
}

// CalculateBilling handles POST /api/billing/calculate. Nothing is stored.
func CalculateBilling(c *gin.Context) {
	var req BillingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := services.CalculateBilling(req.toInput().BillingInput)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result, "")
}

// ListBillings handles GET /api/billing
func ListBillings(c *gin.Context) {
	page, limit := parsePagination(c)
	db := config.GetDB().WithContext(c.Request.Context())
	query := db.Model(&models.BillingDetail{})
	if stage := c.Query("currentStage"); stage != "" {
		query = query.Where("enquiry_id IN (?)", enquiriesInStage(db, stage))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, err)
		return
	}

	billings := []models.BillingDetail{}
	if err := query.Preload("Items").Scopes(paginate(page, limit)).Order("invoice_date DESC, id DESC").Find(&billings).Error; err != nil {
		handleError(c, err)
		return
	}
	respondList(c, billings, total, page, limit)
}

// GetBilling handles GET /api/billing/:enquiryId
func GetBilling(c *gin.Context) {
	billing, ok := loadBilling(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, billing, "")
}

// CreateBilling handles POST /api/billing/:enquiryId
func CreateBilling(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req BillingRequest
	if !bindJSON(c, &req) {
		return
	}

	billing, err := workflow().CreateBilling(c.Request.Context(), enquiryID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, billing, "Invoice "+billing.InvoiceNumber+" created")
}

// UpdateBilling handles PUT /api/billing/:enquiryId
func UpdateBilling(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req BillingRequest
	if !bindJSON(c, &req) {
		return
	}

	billing, err := workflow().UpdateBilling(c.Request.Context(), enquiryID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, billing, "Invoice updated")
}

// DownloadInvoice handles GET /api/billing/:enquiryId/invoice
func DownloadInvoice(c *gin.Context) {
	billing, ok := loadBilling(c)
	if !ok {
		return
	}

	pdf, err := services.GenerateInvoicePDF(appConfig().ShopName, billing)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", billing.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// MoveToDelivery handles PATCH /api/billing/:enquiryId/deliver
func MoveToDelivery(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	delivery, err := workflow().MoveToDelivery(c.Request.Context(), enquiryID)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, delivery, "Moved to delivery")
}

func loadBilling(c *gin.Context) (*models.BillingDetail, bool) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return nil, false
	}

	var billing models.BillingDetail
	err := config.GetDB().WithContext(c.Request.Context()).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("enquiry_id = ?", enquiryID).
		First(&billing).Error
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return &billing, true
}
