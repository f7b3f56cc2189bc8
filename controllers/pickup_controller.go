package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
)

// AssignRequest represents the request body for assigning staff
type AssignRequest struct {
	AssignedTo string `json:"assignedTo" binding:"required"`
}

// ListPickups handles GET /api/pickup
func ListPickups(c *gin.Context) {
	listStageRecords[models.PickupDetail](c, models.StagePickup)
}

// GetPickup handles GET /api/pickup/:enquiryId
func GetPickup(c *gin.Context) {
	pickup, ok := getStageRecord[models.PickupDetail](c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, pickup, "")
}

// SchedulePickup handles PATCH /api/pickup/:enquiryId/schedule
func SchedulePickup(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req services.SchedulePickupInput
	if !bindOptionalJSON(c, &req) {
		return
	}

	pickup, err := workflow().SchedulePickup(c.Request.Context(), enquiryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pickup, "Pickup scheduled")
}

// AssignPickup handles PATCH /api/pickup/:enquiryId/assign
func AssignPickup(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	pickup, err := workflow().AssignPickup(c.Request.Context(), enquiryID, req.AssignedTo)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pickup, "Pickup assigned to "+pickup.AssignedTo)
}

// CollectPickup handles PATCH /api/pickup/:enquiryId/collect
func CollectPickup(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req services.PhotoInput
	if !bindOptionalJSON(c, &req) {
		return
	}

	pickup, err := workflow().MarkCollected(c.Request.Context(), enquiryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pickup, "Item collected")
}

// ReceivePickup handles PATCH /api/pickup/:enquiryId/receive
func ReceivePickup(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req services.ReceiveInput
	if !bindOptionalJSON(c, &req) {
		return
	}

	detail, err := workflow().MarkReceived(c.Request.Context(), enquiryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail, "Item received and moved to service")
}
