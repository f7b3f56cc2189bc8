package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/services"
	"github.com/kendall-kelly/cobbler-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupControllerTest points the controllers at a fresh in-memory database
// and returns a router carrying every route under test
func setupControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	config.SetDB(db)
	config.SetConfig(&config.Config{GoEnv: "test", ShopName: "Test Cobbler", DefaultGSTRate: 18})
	services.SetPhotoStore(services.InlinePhotoStore{})
	t.Cleanup(func() {
		config.SetDB(nil)
		config.SetConfig(nil)
	})

	router := gin.New()
	api := router.Group("/api")

	api.GET("/enquiries", ListEnquiries)
	api.POST("/enquiries", CreateEnquiry)
	api.GET("/enquiries/:id", GetEnquiry)
	api.PUT("/enquiries/:id", UpdateEnquiry)
	api.DELETE("/enquiries/:id", DeleteEnquiry)
	api.PATCH("/enquiries/:id/contact", MarkEnquiryContacted)
	api.PATCH("/enquiries/:id/convert", ConvertEnquiry)
	api.PATCH("/enquiries/:id/stage", UpdateEnquiryStage)
	api.GET("/enquiries/:id/photos", ListEnquiryPhotos)

	api.GET("/pickup", ListPickups)
	api.GET("/pickup/:enquiryId", GetPickup)
	api.PATCH("/pickup/:enquiryId/schedule", SchedulePickup)
	api.PATCH("/pickup/:enquiryId/assign", AssignPickup)
	api.PATCH("/pickup/:enquiryId/collect", CollectPickup)
	api.PATCH("/pickup/:enquiryId/receive", ReceivePickup)

	api.GET("/service", ListServices)
	api.GET("/service/:enquiryId", GetService)
	api.POST("/service/:enquiryId/services", AssignServices)
	api.PATCH("/service/:enquiryId/services/:serviceId/start", StartService)
	api.PATCH("/service/:enquiryId/services/:serviceId/complete", CompleteService)
	api.PATCH("/service/:enquiryId/overall-before", SaveOverallBeforePhoto)
	api.PATCH("/service/:enquiryId/overall-after", SaveOverallAfterPhoto)
	api.PATCH("/service/:enquiryId/complete", CompleteServiceWorkflow)

	api.POST("/billing/calculate", CalculateBilling)
	api.GET("/billing", ListBillings)
	api.GET("/billing/:enquiryId", GetBilling)
	api.POST("/billing/:enquiryId", CreateBilling)
	api.PUT("/billing/:enquiryId", UpdateBilling)
	api.GET("/billing/:enquiryId/invoice", DownloadInvoice)
	api.PATCH("/billing/:enquiryId/deliver", MoveToDelivery)

	api.GET("/delivery", ListDeliveries)
	api.GET("/delivery/:enquiryId", GetDelivery)
	api.PATCH("/delivery/:enquiryId/schedule", ScheduleDelivery)
	api.PATCH("/delivery/:enquiryId/dispatch", DispatchDelivery)
	api.PATCH("/delivery/:enquiryId/complete", CompleteDelivery)

	api.GET("/photos/:id", GetPhoto)

	api.GET("/inventory", ListInventoryItems)
	api.POST("/inventory", CreateInventoryItem)
	api.GET("/inventory/:id", GetInventoryItem)
	api.PUT("/inventory/:id", UpdateInventoryItem)
	api.DELETE("/inventory/:id", DeleteInventoryItem)
	api.PATCH("/inventory/:id/adjust", AdjustInventoryItem)
	api.GET("/inventory/:id/movements", ListInventoryMovements)

	api.GET("/expenses", ListExpenses)
	api.POST("/expenses", CreateExpense)
	api.GET("/expenses/:id", GetExpense)
	api.PUT("/expenses/:id", UpdateExpense)
	api.DELETE("/expenses/:id", DeleteExpense)

	api.GET("/dashboard/stats", GetDashboardStats)
	api.GET("/dashboard/expenses", GetExpenseSummary)

	return router, db
}

// doRequest sends body as JSON (nil for none) and decodes the JSON response
func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	}
	return w, response
}

// expectOK asserts a success envelope with the given status and returns data
func expectOK(t *testing.T, w *httptest.ResponseRecorder, response map[string]interface{}, status int) map[string]interface{} {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	require.Equal(t, true, response["success"])
	data, _ := response["data"].(map[string]interface{})
	return data
}

// expectError asserts a failure envelope
func expectError(t *testing.T, w *httptest.ResponseRecorder, response map[string]interface{}, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	require.Equal(t, false, response["success"])
	require.Equal(t, code, response["code"])
}

var testPhoto = testutil.PhotoData("photo")
