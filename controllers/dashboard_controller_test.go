package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseSummary(t *testing.T) {
	router, _ := setupControllerTest(t)
	clock = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local) }
	t.Cleanup(func() { clock = time.Now })

	seedExpenses(t, router, map[string]float64{
		"2026-03-15": 500,
		"2026-03-02": 250,
		"2026-01-10": 100,
		"2025-12-31": 999,
	})

	tests := []struct {
		period        string
		expectedTotal float64
	}{
		{period: "today", expectedTotal: 500},
		{period: "week", expectedTotal: 500},
		{period: "month", expectedTotal: 750},
		{period: "year", expectedTotal: 850},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			w, response := doRequest(t, router, http.MethodGet, "/api/dashboard/expenses?period="+tt.period, nil)
			data := expectOK(t, w, response, http.StatusOK)
			assert.Equal(t, tt.period, data["period"])
			assert.Equal(t, tt.expectedTotal, data["total"])
		})
	}

	w, response := doRequest(t, router, http.MethodGet, "/api/dashboard/expenses?period=decade", nil)
	expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestDashboardStats(t *testing.T) {
	router, db := setupControllerTest(t)

	billed := testutil.CreateEnquiry(t, db, func(e *models.Enquiry) {
		e.Status = models.EnquiryStatusConverted
		e.CurrentStage = models.StageBilling
	})
	testutil.CreateEnquiry(t, db)
	testutil.CreateEnquiry(t, db, func(e *models.Enquiry) { e.Status = models.EnquiryStatusLost })

	now := time.Now()
	require.NoError(t, db.Create(&models.BillingDetail{
		EnquiryID:     billed.ID,
		InvoiceNumber: "INV-TEST-001",
		InvoiceDate:   now,
		TotalAmount:   1062,
	}).Error)
	require.NoError(t, db.Create(&models.Expense{
		Category:      "Rent",
		Description:   "Shop rent",
		Amount:        300,
		ExpenseDate:   now,
		PaymentMethod: "Cash",
	}).Error)
	require.NoError(t, db.Create(&models.InventoryItem{Name: "Glue", Category: "Consumables", Unit: "tube", Quantity: 1, MinStock: 2}).Error)
	require.NoError(t, db.Create(&models.InventoryItem{Name: "Laces", Category: "Consumables", Unit: "pair", Quantity: 40, MinStock: 5}).Error)

	w, response := doRequest(t, router, http.MethodGet, "/api/dashboard/stats", nil)
	data := expectOK(t, w, response, http.StatusOK)

	assert.Equal(t, float64(3), data["totalEnquiries"])
	assert.Equal(t, float64(3), data["enquiriesToday"])
	assert.Equal(t, float64(1062), data["monthRevenue"])
	assert.Equal(t, float64(300), data["monthExpenses"])
	assert.Equal(t, float64(762), data["monthProfit"])
	assert.Equal(t, float64(1), data["lowStockItems"])

	byStage := data["byStage"].(map[string]interface{})
	assert.Equal(t, float64(2), byStage["enquiry"])
	assert.Equal(t, float64(1), byStage["billing"])
	assert.Equal(t, float64(0), byStage["completed"])

	byStatus := data["byStatus"].(map[string]interface{})
	assert.Equal(t, float64(1), byStatus["new"])
	assert.Equal(t, float64(1), byStatus["lost"])
	assert.Equal(t, float64(1), byStatus["converted"])
}
