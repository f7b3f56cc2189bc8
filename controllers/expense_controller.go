package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/models"
	"gorm.io/gorm"
)

// dateLayout is the YYYY-MM-DD format used for expense dates and filters
const dateLayout = "2006-01-02"

// CreateExpenseRequest represents the request body for recording an expense
type CreateExpenseRequest struct {
	Category      string  `json:"category" binding:"required"`
	Description   string  `json:"description" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	ExpenseDate   string  `json:"expenseDate"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `json:"notes"`
}

// UpdateExpenseRequest represents the request body for editing an expense
type UpdateExpenseRequest struct {
	Category      *string  `json:"category"`
	Description   *string  `json:"description"`
	Amount        *float64 `json:"amount" binding:"omitempty,gt=0"`
	ExpenseDate   *string  `json:"expenseDate"`
	PaymentMethod *string  `json:"paymentMethod"`
	Notes         *string  `json:"notes"`
}

// ListExpenses handles GET /api/expenses
func ListExpenses(c *gin.Context) {
	page, limit := parsePagination(c)
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Expense{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if from := c.Query("from"); from != "" {
		start, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "from must be a date in YYYY-MM-DD format")
			return
		}
		query = query.Where("expense_date >= ?", start)
	}
	if to := c.Query("to"); to != "" {
		end, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must be a date in YYYY-MM-DD format")
			return
		}
		query = query.Where("expense_date < ?", end.AddDate(0, 0, 1))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, err)
		return
	}

	expenses := []models.Expense{}
	if err := query.Scopes(paginate(page, limit)).Order("expense_date DESC, id DESC").Find(&expenses).Error; err != nil {
		handleError(c, err)
		return
	}
	respondList(c, expenses, total, page, limit)
}

// GetExpense handles GET /api/expenses/:id
func GetExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var expense models.Expense
	if err := config.GetDB().WithContext(c.Request.Context()).First(&expense, id).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, expense, "")
}

// CreateExpense handles POST /api/expenses
func CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense := models.Expense{
		Category:      req.Category,
		Description:   strings.TrimSpace(req.Description),
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Notes:         strings.TrimSpace(req.Notes),
		ExpenseDate:   time.Now(),
	}
	if expense.PaymentMethod == "" {
		expense.PaymentMethod = "Cash"
	}
	if req.ExpenseDate != "" {
		date, err := time.ParseInLocation(dateLayout, req.ExpenseDate, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "expenseDate must be a date in YYYY-MM-DD format")
			return
		}
		expense.ExpenseDate = date
	}
	if msg := validateExpenseEnums(&expense.Category, &expense.PaymentMethod); msg != "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	if err := config.GetDB().WithContext(c.Request.Context()).Create(&expense).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, expense, "Expense recorded successfully")
}

// UpdateExpense handles PUT /api/expenses/:id
func UpdateExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	if msg := validateExpenseEnums(req.Category, req.PaymentMethod); msg != "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var expense models.Expense
	if err := db.First(&expense, id).Error; err != nil {
		handleError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "description must not be empty")
			return
		}
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.ExpenseDate != nil {
		date, err := time.ParseInLocation(dateLayout, *req.ExpenseDate, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "expenseDate must be a date in YYYY-MM-DD format")
			return
		}
		updates["expense_date"] = date
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.Notes != nil {
		updates["notes"] = strings.TrimSpace(*req.Notes)
	}

	if len(updates) > 0 {
		if err := db.Model(&expense).Updates(updates).Error; err != nil {
			handleError(c, err)
			return
		}
	}
	if err := db.First(&expense, id).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, expense, "Expense updated successfully")
}

// DeleteExpense handles DELETE /api/expenses/:id
func DeleteExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var expense models.Expense
	if err := db.First(&expense, id).Error; err != nil {
		handleError(c, err)
		return
	}
	if err := db.Delete(&expense).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id}, "Expense deleted successfully")
}

func validateExpenseEnums(category, paymentMethod *string) string {
	if category != nil && !models.Contains(models.ExpenseCategories, *category) {
		return "category must be one of " + strings.Join(models.ExpenseCategories, ", ")
	}
	if paymentMethod != nil && !models.Contains(models.ExpensePaymentMethods, *paymentMethod) {
		return "paymentMethod must be one of " + strings.Join(models.ExpensePaymentMethods, ", ")
	}
	return ""
}
