package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
	"gorm.io/gorm"
)

// CreateEnquiryRequest represents the request body for creating an enquiry
type CreateEnquiryRequest struct {
	CustomerName  string `json:"customerName" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address"`
	Message       string `json:"message"`
	InquirySource string `json:"inquirySource" binding:"required"`
	ProductType   string `json:"productType" binding:"required"`
	Quantity      int    `json:"quantity" binding:"omitempty,gt=0"`
}

// UpdateEnquiryRequest represents the request body for updating an enquiry.
// Stage is never editable here; status cannot be set to converted.
type UpdateEnquiryRequest struct {
	CustomerName  *string  `json:"customerName"`
	Phone         *string  `json:"phone"`
	Address       *string  `json:"address"`
	Message       *string  `json:"message"`
	InquirySource *string  `json:"inquirySource"`
	ProductType   *string  `json:"productType"`
	Quantity      *int     `json:"quantity" binding:"omitempty,gt=0"`
	Status        *string  `json:"status"`
	QuotedAmount  *float64 `json:"quotedAmount" binding:"omitempty,gte=0"`
}

// ConvertEnquiryRequest represents the request body for converting an enquiry
type ConvertEnquiryRequest struct {
	QuotedAmount *float64 `json:"quotedAmount" binding:"required"`
}

// StageRequest represents the request body for an explicit stage change
type StageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// ListEnquiries handles GET /api/enquiries
func ListEnquiries(c *gin.Context) {
	page, limit := parsePagination(c)
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Enquiry{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if stage := c.Query("currentStage"); stage != "" {
		query = query.Where("current_stage = ?", stage)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(customer_name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(address) LIKE ? OR LOWER(message) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, err)
		return
	}

	var enquiries []models.Enquiry
	if err := query.Scopes(paginate(page, limit)).Order("created_at DESC, id DESC").Find(&enquiries).Error; err != nil {
		handleError(c, err)
		return
	}

	respondList(c, enquiries, total, page, limit)
}

// GetEnquiry handles GET /api/enquiries/:id
func GetEnquiry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var enquiry models.Enquiry
	if err := config.GetDB().WithContext(c.Request.Context()).First(&enquiry, id).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, enquiry, "")
}

// CreateEnquiry handles POST /api/enquiries
func CreateEnquiry(c *gin.Context) {
	var req CreateEnquiryRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg := validateEnquiryEnums(&req.InquirySource, &req.ProductType, nil); msg != "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	enquiry := models.Enquiry{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		Message:       strings.TrimSpace(req.Message),
		InquirySource: req.InquirySource,
		ProductType:   req.ProductType,
		Quantity:      req.Quantity,
		Status:        models.EnquiryStatusNew,
		CurrentStage:  models.StageEnquiry,
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&enquiry).Error; err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, enquiry, "Enquiry created successfully")
}

// UpdateEnquiry handles PUT /api/enquiries/:id
func UpdateEnquiry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateEnquiryRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg := validateEnquiryEnums(req.InquirySource, req.ProductType, req.Status); msg != "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var enquiry models.Enquiry
	if err := db.First(&enquiry, id).Error; err != nil {
		handleError(c, err)
		return
	}
	if req.Status != nil && *req.Status != enquiry.Status &&
		(enquiry.Status == models.EnquiryStatusConverted || enquiry.CurrentStage != models.StageEnquiry) {
		respondError(c, http.StatusBadRequest, "INVALID_STATE", "status cannot change once an enquiry is converted")
		return
	}

	updates := map[string]interface{}{}
	setText := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setText("customer_name", req.CustomerName)
	setText("phone", req.Phone)
	setText("address", req.Address)
	setText("message", req.Message)
	setText("inquiry_source", req.InquirySource)
	setText("product_type", req.ProductType)
	setText("status", req.Status)
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.QuotedAmount != nil {
		updates["quoted_amount"] = *req.QuotedAmount
	}
	if name, ok := updates["customer_name"]; ok && name == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "customerName must not be empty")
		return
	}
	if phone, ok := updates["phone"]; ok && phone == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "phone must not be empty")
		return
	}

	if len(updates) > 0 {
		if err := db.Model(&enquiry).Updates(updates).Error; err != nil {
			handleError(c, err)
			return
		}
	}
	if err := db.First(&enquiry, id).Error; err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, enquiry, "Enquiry updated successfully")
}

// DeleteEnquiry handles DELETE /api/enquiries/:id. Stage records and photos
// go with it through cascading foreign keys.
func DeleteEnquiry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	db := config.GetDB().WithContext(ctx)

	var enquiry models.Enquiry
	if err := db.First(&enquiry, id).Error; err != nil {
		handleError(c, err)
		return
	}

	var stored []models.Photo
	if err := db.Where("enquiry_id = ? AND storage_key IS NOT NULL", id).Find(&stored).Error; err != nil {
		handleError(c, err)
		return
	}
	if err := db.Delete(&enquiry).Error; err != nil {
		handleError(c, err)
		return
	}

	store := services.GetPhotoStore()
	for i := range stored {
		store.Discard(ctx, &stored[i])
	}

	respondOK(c, http.StatusOK, gin.H{"id": id}, "Enquiry deleted successfully")
}

// MarkEnquiryContacted handles PATCH /api/enquiries/:id/contact
func MarkEnquiryContacted(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	enquiry, err := workflow().MarkContacted(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, enquiry, "Enquiry marked as contacted")
}

// ConvertEnquiry handles PATCH /api/enquiries/:id/convert
func ConvertEnquiry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ConvertEnquiryRequest
	if !bindJSON(c, &req) {
		return
	}

	enquiry, err := workflow().ConvertEnquiry(c.Request.Context(), id, *req.QuotedAmount)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, enquiry, "Enquiry converted successfully")
}

// UpdateEnquiryStage handles PATCH /api/enquiries/:id/stage
func UpdateEnquiryStage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req StageRequest
	if !bindJSON(c, &req) {
		return
	}

	enquiry, err := workflow().AdvanceStage(c.Request.Context(), id, strings.TrimSpace(req.Stage))
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, enquiry, "Stage updated to "+enquiry.CurrentStage)
}

// ListEnquiryPhotos handles GET /api/enquiries/:id/photos, optionally
// filtered by stage
func ListEnquiryPhotos(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	db := config.GetDB().WithContext(ctx)

	var enquiry models.Enquiry
	if err := db.First(&enquiry, id).Error; err != nil {
		handleError(c, err)
		return
	}

	query := db.Where("enquiry_id = ?", id)
	if stage := c.Query("stage"); stage != "" {
		query = query.Where("stage = ?", stage)
	}
	var photos []models.Photo
	if err := query.Order("id ASC").Find(&photos).Error; err != nil {
		handleError(c, err)
		return
	}

	store := services.GetPhotoStore()
	for i := range photos {
		if err := store.Resolve(ctx, &photos[i]); err != nil {
			handleError(c, err)
			return
		}
	}
	respondOK(c, http.StatusOK, photos, "")
}

// validateEnquiryEnums returns a message for the first invalid enum value
func validateEnquiryEnums(source, productType, status *string) string {
	if source != nil && !models.Contains(models.InquirySources, *source) {
		return "inquirySource must be one of " + strings.Join(models.InquirySources, ", ")
	}
	if productType != nil && !models.Contains(models.ProductTypes, *productType) {
		return "productType must be one of " + strings.Join(models.ProductTypes, ", ")
	}
	if status != nil {
		if *status == models.EnquiryStatusConverted {
			return "use the convert endpoint to convert an enquiry"
		}
		if !models.Contains(models.EnquiryStatuses, *status) {
			return "status must be one of " + strings.Join(models.EnquiryStatuses, ", ")
		}
	}
	return ""
}

// enquiriesInStage selects the ids of enquiries currently in stage
func enquiriesInStage(db *gorm.DB, stage string) *gorm.DB {
	return db.Model(&models.Enquiry{}).Select("id").Where("current_stage = ?", stage)
}
