package controllers

import (
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/services"
	"github.com/kendall-kelly/cobbler-api/utils"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	// maxPage keeps (page-1)*limit well inside int range
	maxPage = 1_000_000
)

// respondOK writes a success envelope
func respondOK(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// respondList writes a success envelope with pagination fields
func respondList(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": int(math.Ceil(float64(total) / float64(limit))),
	})
}

// respondError writes a failure envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// handleError maps service and storage errors onto HTTP responses
func handleError(c *gin.Context, err error) {
	var wfErr *services.WorkflowError
	var billingErr *services.BillingValidationError
	var photoErr *utils.PhotoError

	switch {
	case errors.As(err, &wfErr):
		status := http.StatusBadRequest
		if wfErr.Kind == services.KindNotFound {
			status = http.StatusNotFound
		}
		respondError(c, status, wfErr.Code, wfErr.Message)
	case errors.As(err, &billingErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   billingErr.Error(),
			"code":    "VALIDATION_ERROR",
			"details": billingErr.Lines,
		})
	case errors.As(err, &photoErr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", photoErr.Message)
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message := "Internal server error"
		if cfg := config.GetConfig(); cfg != nil && cfg.IsDevelopment() {
			message = err.Error()
		}
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
	}
}

// bindJSON decodes the request body, writing a validation error on failure
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty
func bindOptionalJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return false
	}
	return true
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page and limit query parameters
func parsePagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// paginate applies page and limit to a query
func paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// workflow returns a workflow service over the shared database and photo store
func workflow() *services.WorkflowService {
	return services.NewWorkflowService(config.GetDB(), services.GetPhotoStore())
}

// appConfig returns the loaded configuration or an empty one in tests
func appConfig() *config.Config {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{ShopName: "Cobbler Repair Studio", DefaultGSTRate: 18}
}
