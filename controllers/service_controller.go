package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
	"gorm.io/gorm"
)

// AssignServicesRequest represents the request body for assigning repair tasks
type AssignServicesRequest struct {
	Services []services.ServiceAssignment `json:"services" binding:"required"`
}

// ServiceView is a service detail with its repair tasks
type ServiceView struct {
	*models.ServiceDetail
	Services []models.ServiceType `json:"services"`
}

// ListServices handles GET /api/service
func ListServices(c *gin.Context) {
	page, limit := parsePagination(c)
	db := config.GetDB().WithContext(c.Request.Context())

	query := db.Model(&models.ServiceDetail{}).
		Where("enquiry_id IN (?)", enquiriesInStage(db, models.StageService)).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, err)
		return
	}

	var details []models.ServiceDetail
	if err := query.Preload("Enquiry").Scopes(paginate(page, limit)).Order("updated_at DESC, id DESC").Find(&details).Error; err != nil {
		handleError(c, err)
		return
	}

	enquiryIDs := make([]uint, 0, len(details))
	for _, d := range details {
		enquiryIDs = append(enquiryIDs, d.EnquiryID)
	}
	var tasks []models.ServiceType
	if len(enquiryIDs) > 0 {
		if err := db.Where("enquiry_id IN ?", enquiryIDs).Order("id ASC").Find(&tasks).Error; err != nil {
			handleError(c, err)
			return
		}
	}
	byEnquiry := make(map[uint][]models.ServiceType)
	for _, task := range tasks {
		byEnquiry[task.EnquiryID] = append(byEnquiry[task.EnquiryID], task)
	}

	views := make([]ServiceView, 0, len(details))
	for i := range details {
		tasksFor := byEnquiry[details[i].EnquiryID]
		if tasksFor == nil {
			tasksFor = []models.ServiceType{}
		}
		views = append(views, ServiceView{ServiceDetail: &details[i], Services: tasksFor})
	}

	respondList(c, views, total, page, limit)
}

// GetService handles GET /api/service/:enquiryId
func GetService(c *gin.Context) {
	detail, ok := getStageRecord[models.ServiceDetail](c)
	if !ok {
		return
	}

	view, err := loadServiceView(config.GetDB().WithContext(c.Request.Context()), detail)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view, "")
}

// AssignServices handles POST /api/service/:enquiryId/services
func AssignServices(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req AssignServicesRequest
	if !bindJSON(c, &req) {
		return
	}

	tasks, err := workflow().AssignServices(c.Request.Context(), enquiryID, req.Services)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, tasks, "Services assigned")
}

// StartService handles PATCH /api/service/:enquiryId/services/:serviceId/start
func StartService(c *gin.Context) {
	runServiceStep(c, (*services.WorkflowService).StartService, "Service started")
}

// CompleteService handles PATCH /api/service/:enquiryId/services/:serviceId/complete
func CompleteService(c *gin.Context) {
	runServiceStep(c, (*services.WorkflowService).CompleteService, "Service completed")
}

// SaveOverallBeforePhoto handles PATCH /api/service/:enquiryId/overall-before
func SaveOverallBeforePhoto(c *gin.Context) {
	runServicePhoto(c, (*services.WorkflowService).SaveOverallBeforePhoto, "Overall before photo saved")
}

// SaveOverallAfterPhoto handles PATCH /api/service/:enquiryId/overall-after
func SaveOverallAfterPhoto(c *gin.Context) {
	runServicePhoto(c, (*services.WorkflowService).SaveOverallAfterPhoto, "Final photo saved")
}

// CompleteServiceWorkflow handles PATCH /api/service/:enquiryId/complete
func CompleteServiceWorkflow(c *gin.Context) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req services.CompleteWorkflowInput
	if !bindOptionalJSON(c, &req) {
		return
	}

	detail, err := workflow().CompleteWorkflow(c.Request.Context(), enquiryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail, "Service completed and moved to billing")
}

type serviceStepFunc func(*services.WorkflowService, context.Context, uint, uint, services.ServiceStepInput) (*models.ServiceType, error)

func runServiceStep(c *gin.Context, step serviceStepFunc, message string) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}
	serviceID, ok := parseID(c, "serviceId")
	if !ok {
		return
	}

	var req services.ServiceStepInput
	if !bindOptionalJSON(c, &req) {
		return
	}

	task, err := step(workflow(), c.Request.Context(), enquiryID, serviceID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, task, message)
}

type servicePhotoFunc func(*services.WorkflowService, context.Context, uint, services.PhotoInput) (*models.ServiceDetail, error)

func runServicePhoto(c *gin.Context, save servicePhotoFunc, message string) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return
	}

	var req services.PhotoInput
	if !bindOptionalJSON(c, &req) {
		return
	}

	detail, err := save(workflow(), c.Request.Context(), enquiryID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail, message)
}

func loadServiceView(db *gorm.DB, detail *models.ServiceDetail) (*ServiceView, error) {
	tasks := []models.ServiceType{}
	if err := db.Where("enquiry_id = ?", detail.EnquiryID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return &ServiceView{ServiceDetail: detail, Services: tasks}, nil
}
