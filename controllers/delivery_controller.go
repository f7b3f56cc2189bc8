package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
)

// ListDeliveries handles GET /api/delivery
func ListDeliveries(c *gin.Context) {
	listStageRecords[models.DeliveryDetail](c, models.StageDelivery)
}

// GetDelivery handles GET /api/delivery/:enquiryId
func GetDelivery(c *gin.Context) {
	delivery, ok := getStageRecord[models.DeliveryDetail](c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, delivery, "")
}

// ScheduleDelivery handles PATCH /api/delivery/:enquiryId/schedule
func ScheduleDelivery(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req services.ScheduleDeliveryInput
	if !bindJSON(c, &req) {
		return
	}

	delivery, err := workflow().ScheduleDelivery(c.Request.Context(), enquiryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, delivery, "Delivery scheduled")
}

// DispatchDelivery handles PATCH /api/delivery/:enquiryId/dispatch
func DispatchDelivery(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	delivery, err := workflow().DispatchDelivery(c.Request.Context(), enquiryID, req.AssignedTo)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, delivery, "Out for delivery")
}

// CompleteDelivery handles PATCH /api/delivery/:enquiryId/complete
func CompleteDelivery(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req services.PhotoInput
	if !bindOptionalJSON(c, &req) {
		return
	}

	delivery, err := workflow().MarkDelivered(c.Request.Context(), enquiryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, delivery, "Delivered; enquiry completed")
}
