package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var invoicePattern = regexp.MustCompile(`^INV-\d{8}-\d{3}$`)

// convertedEnquiry creates an enquiry that is ready for pickup
func convertedEnquiry(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	enquiry := testutil.CreateEnquiry(t, db, func(e *models.Enquiry) {
		e.Status = models.EnquiryStatusConverted
		e.QuotedAmount = testutil.Float(1200)
	})
	return enquiry.ID
}

// walkToService takes a converted enquiry through pickup and returns the
// ids of its assigned repair tasks
func walkToService(t *testing.T, router *gin.Engine, id uint, kinds ...string) []uint {
	t.Helper()

	steps := []struct {
		path string
		body map[string]interface{}
	}{
		{path: "/api/pickup/%d/schedule", body: map[string]interface{}{"notes": "Evening slot"}},
		{path: "/api/pickup/%d/assign", body: map[string]interface{}{"assignedTo": "Ravi"}},
		{path: "/api/pickup/%d/collect", body: map[string]interface{}{"photo": testPhoto}},
		{path: "/api/pickup/%d/receive", body: map[string]interface{}{"photo": testPhoto}},
	}
	for _, step := range steps {
		w, response := doRequest(t, router, http.MethodPatch, fmt.Sprintf(step.path, id), step.body)
		expectOK(t, w, response, http.StatusOK)
	}

	assignments := make([]map[string]interface{}, 0, len(kinds))
	for _, kind := range kinds {
		assignments = append(assignments, map[string]interface{}{"serviceType": kind, "assignedTo": "Meena"})
	}
	w, response := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/service/%d/services", id), map[string]interface{}{"services": assignments})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	tasks := response["data"].([]interface{})
	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, uint(task.(map[string]interface{})["id"].(float64)))
	}
	return ids
}

// walkToBilling finishes every repair task and closes the service stage
func walkToBilling(t *testing.T, router *gin.Engine, id uint) {
	t.Helper()
	for _, taskID := range walkToService(t, router, id, "Sole Replacement") {
		for _, action := range []string{"start", "complete"} {
			w, response := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/service/%d/services/%d/%s", id, taskID, action), map[string]interface{}{"photo": testPhoto})
			expectOK(t, w, response, http.StatusOK)
		}
	}
	w, response := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/service/%d/overall-after", id), map[string]interface{}{"photo": testPhoto})
	expectOK(t, w, response, http.StatusOK)
	w, response = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/service/%d/complete", id), nil)
	expectOK(t, w, response, http.StatusOK)
}

var standardBill = map[string]interface{}{
	"gstIncluded": true,
	"gstRate":     18,
	"items": []map[string]interface{}{
		{"serviceName": "Sole Replacement", "originalAmount": 1000, "discountPercent": 10},
	},
}

func TestPickupEndpoints(t *testing.T) {
	router, db := setupControllerTest(t)
	id := convertedEnquiry(t, db)
	pickupPath := fmt.Sprintf("/api/pickup/%d", id)

	w, response := doRequest(t, router, http.MethodGet, pickupPath, nil)
	expectError(t, w, response, http.StatusNotFound, "NOT_FOUND")

	w, response = doRequest(t, router, http.MethodPatch, pickupPath+"/schedule", nil)
	data := expectOK(t, w, response, http.StatusOK)
	assert.Equal(t, "scheduled", data["status"])

	t.Run("Collect before assignment", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, pickupPath+"/collect", map[string]interface{}{"photo": testPhoto})
		expectError(t, w, response, http.StatusBadRequest, "INVALID_STATE")
	})

	t.Run("Assign requires a name", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, pickupPath+"/assign", map[string]interface{}{})
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Assign and reassign", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, pickupPath+"/assign", map[string]interface{}{"assignedTo": "Ravi"})
		expectOK(t, w, response, http.StatusOK)
		w, response = doRequest(t, router, http.MethodPatch, pickupPath+"/assign", map[string]interface{}{"assignedTo": "Kiran"})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "assigned", data["status"])
		assert.Equal(t, "Kiran", data["assignedTo"])
	})

	t.Run("Collect requires a photo", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, pickupPath+"/collect", nil)
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Collect rejects unsupported photos", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, pickupPath+"/collect", map[string]interface{}{"photo": "data:text/plain;base64,aGVsbG8="})
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Collect", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, pickupPath+"/collect", map[string]interface{}{"photo": testPhoto, "notes": "Box sealed"})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "collected", data["status"])
		assert.NotNil(t, data["collectionPhotoId"])
		assert.Equal(t, "Box sealed", data["notes"])
	})

	t.Run("List pickups", func(t *testing.T) {
		testutil.CreateEnquiry(t, db)
		w, response := doRequest(t, router, http.MethodGet, "/api/pickup?status=collected", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), response["total"])
		record := response["data"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "Priya Sharma", record["enquiry"].(map[string]interface{})["customerName"])
	})

	t.Run("Receive with estimate", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, pickupPath+"/receive", map[string]interface{}{"photo": testPhoto, "estimatedCost": 1350})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, float64(1350), data["estimatedCost"])
		assert.NotNil(t, data["receivedPhotoId"])
	})

	t.Run("Pickup list no longer shows the enquiry", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, "/api/pickup", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), response["total"])
	})

	t.Run("Stage record lookup is by enquiry", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, pickupPath, nil)
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "received", data["status"])
		assert.Equal(t, "Kiran", data["assignedTo"])
	})
}

func TestServiceEndpoints(t *testing.T) {
	router, db := setupControllerTest(t)
	id := convertedEnquiry(t, db)
	taskIDs := walkToService(t, router, id, "Sole Replacement", "Cleaning & Polishing")
	require.Len(t, taskIDs, 2)
	servicePath := fmt.Sprintf("/api/service/%d", id)
	taskPath := func(taskID uint, action string) string {
		return fmt.Sprintf("%s/services/%d/%s", servicePath, taskID, action)
	}

	t.Run("Reject unknown service type", func(t *testing.T) {
		body := map[string]interface{}{"services": []map[string]interface{}{{"serviceType": "Tattooing"}}}
		w, response := doRequest(t, router, http.MethodPost, servicePath+"/services", body)
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Detail carries tasks and the quoted estimate", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, servicePath, nil)
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, float64(1200), data["estimatedCost"])
		assert.Len(t, data["services"], 2)
	})

	t.Run("Complete before start", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, taskPath(taskIDs[0], "complete"), map[string]interface{}{"photo": testPhoto})
		expectError(t, w, response, http.StatusBadRequest, "INVALID_STATE")
	})

	t.Run("Start requires a photo", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, taskPath(taskIDs[0], "start"), nil)
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Unknown task", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, taskPath(9999, "start"), map[string]interface{}{"photo": testPhoto})
		expectError(t, w, response, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("Start and complete first task", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, taskPath(taskIDs[0], "start"), map[string]interface{}{"photo": testPhoto})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "in-progress", data["status"])
		assert.NotNil(t, data["startedAt"])

		w, response = doRequest(t, router, http.MethodPatch, taskPath(taskIDs[0], "complete"), map[string]interface{}{"photo": testPhoto})
		data = expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "done", data["status"])
		assert.NotNil(t, data["afterPhotoId"])
	})

	t.Run("Final photo waits for every task", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, servicePath+"/overall-after", map[string]interface{}{"photo": testPhoto})
		expectError(t, w, response, http.StatusBadRequest, "INVALID_STATE")
	})

	t.Run("Workflow completion waits for every task", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, servicePath+"/complete", nil)
		expectError(t, w, response, http.StatusBadRequest, "INVALID_STATE")
	})

	t.Run("Finish the work", func(t *testing.T) {
		for _, action := range []string{"start", "complete"} {
			w, response := doRequest(t, router, http.MethodPatch, taskPath(taskIDs[1], action), map[string]interface{}{"photo": testPhoto})
			expectOK(t, w, response, http.StatusOK)
		}
		w, response := doRequest(t, router, http.MethodPatch, servicePath+"/overall-before", map[string]interface{}{"photo": testPhoto})
		expectOK(t, w, response, http.StatusOK)
		w, response = doRequest(t, router, http.MethodPatch, servicePath+"/overall-after", map[string]interface{}{"photo": testPhoto, "notes": "Polished"})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "Polished", data["overallAfterNotes"])
	})

	t.Run("List services in stage", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, "/api/service", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), response["total"])
		view := response["data"].([]interface{})[0].(map[string]interface{})
		assert.Len(t, view["services"], 2)
	})

	t.Run("Complete workflow", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, servicePath+"/complete", map[string]interface{}{"actualCost": 1100, "workNotes": "All good"})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, float64(1100), data["actualCost"])
		assert.NotNil(t, data["completedAt"])

		var enquiry models.Enquiry
		require.NoError(t, db.First(&enquiry, id).Error)
		assert.Equal(t, models.StageBilling, enquiry.CurrentStage)
	})
}

func TestCalculateBilling(t *testing.T) {
	router, _ := setupControllerTest(t)

	t.Run("Totals", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPost, "/api/billing/calculate", standardBill)
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, float64(1000), data["totalOriginal"])
		assert.Equal(t, float64(100), data["totalDiscount"])
		assert.Equal(t, float64(900), data["subtotal"])
		assert.Equal(t, float64(162), data["totalGst"])
		assert.Equal(t, float64(1062), data["totalAmount"])
	})

	t.Run("Missing rate falls back to the configured default", func(t *testing.T) {
		body := map[string]interface{}{
			"gstIncluded": true,
			"items":       []map[string]interface{}{{"serviceName": "Stitching", "originalAmount": 500}},
		}
		w, response := doRequest(t, router, http.MethodPost, "/api/billing/calculate", body)
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, float64(90), data["totalGst"])
		assert.Equal(t, float64(590), data["totalAmount"])
	})

	t.Run("Every invalid line is reported", func(t *testing.T) {
		body := map[string]interface{}{
			"gstIncluded": true,
			"gstRate":     18,
			"items": []map[string]interface{}{
				{"serviceName": "", "originalAmount": 100},
				{"serviceName": "Stitching", "originalAmount": 100, "discountPercent": 120},
			},
		}
		w, response := doRequest(t, router, http.MethodPost, "/api/billing/calculate", body)
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
		details := response["details"].([]interface{})
		require.Len(t, details, 2)
		assert.Equal(t, float64(1), details[0].(map[string]interface{})["line"])
		assert.Equal(t, "discountPercent", details[1].(map[string]interface{})["field"])
	})
}

func TestBillingEndpoints(t *testing.T) {
	router, db := setupControllerTest(t)
	id := convertedEnquiry(t, db)
	billingPath := fmt.Sprintf("/api/billing/%d", id)

	t.Run("Billing before the stage", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPost, billingPath, standardBill)
		expectError(t, w, response, http.StatusNotFound, "NOT_FOUND")
	})

	walkToBilling(t, router, id)

	t.Run("Deliver without an invoice", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, billingPath+"/deliver", nil)
		expectError(t, w, response, http.StatusNotFound, "NOT_FOUND")
	})

	var invoiceNumber string
	t.Run("Create invoice", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPost, billingPath, standardBill)
		data := expectOK(t, w, response, http.StatusCreated)
		invoiceNumber, _ = data["invoiceNumber"].(string)
		assert.Regexp(t, invoicePattern, invoiceNumber)
		assert.Equal(t, float64(1062), data["totalAmount"])
		assert.Equal(t, "Priya Sharma", data["customerName"])
		assert.Len(t, data["items"], 1)

		var enquiry models.Enquiry
		require.NoError(t, db.First(&enquiry, id).Error)
		require.NotNil(t, enquiry.FinalAmount)
		assert.Equal(t, 1062.0, *enquiry.FinalAmount)
	})

	t.Run("Second invoice is rejected", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPost, billingPath, standardBill)
		expectError(t, w, response, http.StatusBadRequest, "INVALID_STATE")
	})

	t.Run("Update keeps the invoice number", func(t *testing.T) {
		body := map[string]interface{}{
			"gstIncluded": false,
			"items": []map[string]interface{}{
				{"serviceName": "Sole Replacement", "originalAmount": 1000, "discountPercent": 10},
				{"serviceName": "Cleaning & Polishing", "originalAmount": 200},
			},
			"notes": "Added polish",
		}
		w, response := doRequest(t, router, http.MethodPut, billingPath, body)
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, invoiceNumber, data["invoiceNumber"])
		assert.Equal(t, float64(1100), data["totalAmount"])
		assert.Equal(t, float64(0), data["gstAmount"])
	})

	t.Run("Get invoice", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, billingPath, nil)
		data := expectOK(t, w, response, http.StatusOK)
		items := data["items"].([]interface{})
		require.Len(t, items, 2)
		assert.Equal(t, "Sole Replacement", items[0].(map[string]interface{})["serviceName"])
	})

	t.Run("Download invoice", func(t *testing.T) {
		w, _ := doRequest(t, router, http.MethodGet, billingPath+"/invoice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), invoiceNumber+".pdf")
		assert.True(t, len(w.Body.Bytes()) > 4)
		assert.Equal(t, "%PDF", string(w.Body.Bytes()[:4]))
	})

	t.Run("List invoices by stage", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, "/api/billing?currentStage=billing", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), response["total"])

		w, response = doRequest(t, router, http.MethodGet, "/api/billing?currentStage=delivery", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), response["total"])
	})

	t.Run("Move to delivery", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, billingPath+"/deliver", nil)
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "ready", data["status"])
		assert.Equal(t, "customer-pickup", data["method"])
	})

	t.Run("Invoice is frozen after billing", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPut, billingPath, standardBill)
		expectError(t, w, response, http.StatusNotFound, "NOT_FOUND")
	})
}

func TestDeliveryEndpoints(t *testing.T) {
	router, db := setupControllerTest(t)
	id := convertedEnquiry(t, db)
	walkToBilling(t, router, id)
	w, response := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/billing/%d", id), standardBill)
	expectOK(t, w, response, http.StatusCreated)
	w, response = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/billing/%d/deliver", id), nil)
	expectOK(t, w, response, http.StatusOK)

	deliveryPath := fmt.Sprintf("/api/delivery/%d", id)

	t.Run("Dispatch before scheduling", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, deliveryPath+"/dispatch", map[string]interface{}{"assignedTo": "Suresh"})
		expectError(t, w, response, http.StatusBadRequest, "INVALID_STATE")
	})

	t.Run("Schedule requires a known method", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, deliveryPath+"/schedule", map[string]interface{}{"method": "drone"})
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Schedule", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, deliveryPath+"/schedule", map[string]interface{}{
			"method":        "home-delivery",
			"scheduledTime": "2026-03-20T11:00:00Z",
		})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "scheduled", data["status"])
		assert.Equal(t, "home-delivery", data["method"])
	})

	t.Run("Dispatch", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, deliveryPath+"/dispatch", map[string]interface{}{"assignedTo": "Suresh"})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "out-for-delivery", data["status"])
		assert.Equal(t, "Suresh", data["assignedTo"])
	})

	t.Run("List deliveries", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, "/api/delivery?status=out-for-delivery", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), response["total"])
	})

	t.Run("Complete requires a photo", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, deliveryPath+"/complete", nil)
		expectError(t, w, response, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Complete", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodPatch, deliveryPath+"/complete", map[string]interface{}{"photo": testPhoto})
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "delivered", data["status"])
		assert.NotNil(t, data["deliveredAt"])

		w, response = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/enquiries/%d", id), nil)
		enquiry := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "completed", enquiry["currentStage"])
		assert.Equal(t, float64(1062), enquiry["finalAmount"])
	})

	t.Run("Delivered record is still readable", func(t *testing.T) {
		w, response := doRequest(t, router, http.MethodGet, deliveryPath, nil)
		data := expectOK(t, w, response, http.StatusOK)
		assert.Equal(t, "delivered", data["status"])
	})
}
