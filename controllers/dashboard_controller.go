package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/models"
	"gorm.io/gorm"
)

// clock is swapped in tests
var clock = time.Now

// DashboardStats is the shop overview
type DashboardStats struct {
	TotalEnquiries int64            `json:"totalEnquiries"`
	EnquiriesToday int64            `json:"enquiriesToday"`
	ByStage        map[string]int64 `json:"byStage"`
	ByStatus       map[string]int64 `json:"byStatus"`
	MonthRevenue   float64          `json:"monthRevenue"`
	MonthExpenses  float64          `json:"monthExpenses"`
	MonthProfit    float64          `json:"monthProfit"`
	LowStockItems  int64            `json:"lowStockItems"`
}

// CategoryTotal is the spend in one expense category
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// ExpenseSummary is the spend per category over a period
type ExpenseSummary struct {
	Period     string          `json:"period"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Total      float64         `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

type groupCount struct {
	Name  string
	Total int64
}

// GetDashboardStats handles GET /api/dashboard/stats
func GetDashboardStats(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())
	current := now.With(clock())
	monthStart, monthEnd := current.BeginningOfMonth(), current.EndOfMonth()

	stats := DashboardStats{
		ByStage:  make(map[string]int64, len(models.Stages)),
		ByStatus: make(map[string]int64, len(models.EnquiryStatuses)),
	}
	for _, stage := range models.Stages {
		stats.ByStage[stage] = 0
	}
	for _, status := range models.EnquiryStatuses {
		stats.ByStatus[status] = 0
	}

	var err error
	if stats.ByStage, err = countBy(db, "current_stage", stats.ByStage); err != nil {
		handleError(c, err)
		return
	}
	if stats.ByStatus, err = countBy(db, "status", stats.ByStatus); err != nil {
		handleError(c, err)
		return
	}
	for _, n := range stats.ByStage {
		stats.TotalEnquiries += n
	}

	if err := db.Model(&models.Enquiry{}).Where("created_at >= ?", current.BeginningOfDay()).Count(&stats.EnquiriesToday).Error; err != nil {
		handleError(c, err)
		return
	}
	if stats.MonthRevenue, err = sumBetween(db.Model(&models.BillingDetail{}), "total_amount", "invoice_date", monthStart, monthEnd); err != nil {
		handleError(c, err)
		return
	}
	if stats.MonthExpenses, err = sumBetween(db.Model(&models.Expense{}), "amount", "expense_date", monthStart, monthEnd); err != nil {
		handleError(c, err)
		return
	}
	stats.MonthProfit = stats.MonthRevenue - stats.MonthExpenses

	if err := db.Model(&models.InventoryItem{}).Where("quantity <= min_stock").Count(&stats.LowStockItems).Error; err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, stats, "")
}

// GetExpenseSummary handles GET /api/dashboard/expenses?period=today|week|month|year
func GetExpenseSummary(c *gin.Context) {
	period := c.DefaultQuery("period", "month")
	current := now.With(clock())

	var from, to time.Time
	switch period {
	case "today":
		from, to = current.BeginningOfDay(), current.EndOfDay()
	case "week":
		from, to = current.BeginningOfWeek(), current.EndOfWeek()
	case "month":
		from, to = current.BeginningOfMonth(), current.EndOfMonth()
	case "year":
		from, to = current.BeginningOfYear(), current.EndOfYear()
	default:
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "period must be one of today, week, month, year")
		return
	}

	categories := []CategoryTotal{}
	err := config.GetDB().WithContext(c.Request.Context()).
		Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("expense_date BETWEEN ? AND ?", from, to).
		Group("category").
		Order("total DESC").
		Scan(&categories).Error
	if err != nil {
		handleError(c, err)
		return
	}

	summary := ExpenseSummary{Period: period, From: from, To: to, Categories: categories}
	for _, ct := range categories {
		summary.Total += ct.Total
	}
	respondOK(c, http.StatusOK, summary, "")
}

func countBy(db *gorm.DB, column string, into map[string]int64) (map[string]int64, error) {
	var rows []groupCount
	err := db.Model(&models.Enquiry{}).
		Select(column + " AS name, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		into[row.Name] = row.Total
	}
	return into, nil
}

func sumBetween(query *gorm.DB, amountColumn, dateColumn string, from, to time.Time) (float64, error) {
	var result struct {
		Total float64
	}
	err := query.
		Select("COALESCE(SUM("+amountColumn+"), 0) AS total").
		Where(dateColumn+" BETWEEN ? AND ?", from, to).
		Scan(&result).Error
	return result.Total, err
}
