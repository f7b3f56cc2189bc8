package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/cobbler-api/models"
	"gorm.io/gorm"
)

// ServiceAssignment is one repair task to add to an enquiry
type ServiceAssignment struct {
	ServiceType string `json:"serviceType"`
	AssignedTo  string `json:"assignedTo"`
	Department  string `json:"department"`
	Notes       string `json:"notes"`
}

// ServiceStepInput is the photo for starting or finishing a task
type ServiceStepInput struct {
	Photo      string `json:"photo"`
	Notes      string `json:"notes"`
	AssignedTo string `json:"assignedTo"`
}

// CompleteWorkflowInput closes the service stage
type CompleteWorkflowInput struct {
	ActualCost *float64 `json:"actualCost"`
	WorkNotes  string   `json:"workNotes"`
}

// AssignServices adds pending repair tasks to an enquiry in the service stage
func (s *WorkflowService) AssignServices(ctx context.Context, enquiryID uint, assignments []ServiceAssignment) ([]models.ServiceType, error) {
	if len(assignments) == 0 {
		return nil, validationError("at least one service type is required")
	}
	for i, a := range assignments {
		if !models.Contains(models.ServiceKinds, strings.TrimSpace(a.ServiceType)) {
			return nil, validationError("service %d: serviceType must be one of %s", i+1, strings.Join(models.ServiceKinds, ", "))
		}
	}

	var tasks []models.ServiceType
	err := s.transition(ctx, "assign_services", func(tx *gorm.DB) error {
		var enquiry models.Enquiry
		if err := findEnquiryInStage(tx, enquiryID, models.StageService, &enquiry); err != nil {
			return err
		}

		detail := models.ServiceDetail{EnquiryID: enquiryID}
		if err := tx.Where("enquiry_id = ?", enquiryID).FirstOrCreate(&detail).Error; err != nil {
			return err
		}

		for _, a := range assignments {
			task := models.ServiceType{
				EnquiryID:   enquiryID,
				ServiceType: strings.TrimSpace(a.ServiceType),
				Status:      models.ServiceStatusPending,
				AssignedTo:  strings.TrimSpace(a.AssignedTo),
				Department:  strings.TrimSpace(a.Department),
				Notes:       strings.TrimSpace(a.Notes),
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}

		return tx.Where("enquiry_id = ?", enquiryID).Order("id ASC").Find(&tasks).Error
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// StartService records the before photo and puts a pending task in progress
func (s *WorkflowService) StartService(ctx context.Context, enquiryID, serviceID uint, input ServiceStepInput) (*models.ServiceType, error) {
	var task models.ServiceType
	photo := &models.Photo{
		EnquiryID:     enquiryID,
		Stage:         models.StageService,
		PhotoType:     models.PhotoTypeBefore,
		ServiceTypeID: &serviceID,
		Notes:         strings.TrimSpace(input.Notes),
	}

	err := s.transitionWithPhoto(ctx, "start_service", photo, input.Photo, func(tx *gorm.DB) error {
		if err := findServiceTask(tx, enquiryID, serviceID, &task); err != nil {
			return err
		}
		if task.Status != models.ServiceStatusPending {
			return invalidStateError("service %d is %s and cannot be started", serviceID, task.Status)
		}
		if err := tx.Create(photo).Error; err != nil {
			return err
		}

		now := s.now()
		task.Status = models.ServiceStatusInProgress
		task.StartedAt = &now
		task.BeforePhotoID = &photo.ID
		if assignedTo := strings.TrimSpace(input.AssignedTo); assignedTo != "" {
			task.AssignedTo = assignedTo
		}
		if photo.Notes != "" {
			task.Notes = photo.Notes
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteService records the after photo and marks an in-progress task done
func (s *WorkflowService) CompleteService(ctx context.Context, enquiryID, serviceID uint, input ServiceStepInput) (*models.ServiceType, error) {
	var task models.ServiceType
	photo := &models.Photo{
		EnquiryID:     enquiryID,
		Stage:         models.StageService,
		PhotoType:     models.PhotoTypeAfter,
		ServiceTypeID: &serviceID,
		Notes:         strings.TrimSpace(input.Notes),
	}

	err := s.transitionWithPhoto(ctx, "complete_service", photo, input.Photo, func(tx *gorm.DB) error {
		if err := findServiceTask(tx, enquiryID, serviceID, &task); err != nil {
			return err
		}
		if task.Status != models.ServiceStatusInProgress {
			return invalidStateError("service %d is %s and cannot be completed", serviceID, task.Status)
		}
		if err := tx.Create(photo).Error; err != nil {
			return err
		}

		now := s.now()
		task.Status = models.ServiceStatusDone
		task.CompletedAt = &now
		task.AfterPhotoID = &photo.ID
		if photo.Notes != "" {
			task.Notes = photo.Notes
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SaveOverallBeforePhoto records the whole item before any work
func (s *WorkflowService) SaveOverallBeforePhoto(ctx context.Context, enquiryID uint, input PhotoInput) (*models.ServiceDetail, error) {
	var detail models.ServiceDetail
	photo := &models.Photo{
		EnquiryID: enquiryID,
		Stage:     models.StageService,
		PhotoType: models.PhotoTypeOverallBefore,
		Notes:     strings.TrimSpace(input.Notes),
	}

	err := s.transitionWithPhoto(ctx, "save_overall_before", photo, input.Photo, func(tx *gorm.DB) error {
		if err := findServiceDetail(tx, enquiryID, &detail); err != nil {
			return err
		}
		photo.ServiceDetailID = &detail.ID
		if err := tx.Create(photo).Error; err != nil {
			return err
		}

		detail.OverallBeforePhotoID = &photo.ID
		detail.OverallBeforeNotes = photo.Notes
		return tx.Save(&detail).Error
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// SaveOverallAfterPhoto records the finished item once every task is done
func (s *WorkflowService) SaveOverallAfterPhoto(ctx context.Context, enquiryID uint, input PhotoInput) (*models.ServiceDetail, error) {
	var detail models.ServiceDetail
	photo := &models.Photo{
		EnquiryID: enquiryID,
		Stage:     models.StageService,
		PhotoType: models.PhotoTypeOverallAfter,
		Notes:     strings.TrimSpace(input.Notes),
	}

	err := s.transitionWithPhoto(ctx, "save_overall_after", photo, input.Photo, func(tx *gorm.DB) error {
		if err := findServiceDetail(tx, enquiryID, &detail); err != nil {
			return err
		}
		if err := requireAllServicesDone(tx, enquiryID); err != nil {
			return err
		}
		photo.ServiceDetailID = &detail.ID
		if err := tx.Create(photo).Error; err != nil {
			return err
		}

		detail.OverallAfterPhotoID = &photo.ID
		detail.OverallAfterNotes = photo.Notes
		return tx.Save(&detail).Error
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// CompleteWorkflow closes the service stage and moves the enquiry to billing
func (s *WorkflowService) CompleteWorkflow(ctx context.Context, enquiryID uint, input CompleteWorkflowInput) (*models.ServiceDetail, error) {
	if input.ActualCost != nil && *input.ActualCost < 0 {
		return nil, validationError("actualCost must not be negative")
	}

	var detail models.ServiceDetail
	err := s.transition(ctx, "complete_workflow", func(tx *gorm.DB) error {
		if err := findServiceDetail(tx, enquiryID, &detail); err != nil {
			return err
		}
		if err := requireAllServicesDone(tx, enquiryID); err != nil {
			return err
		}
		if detail.OverallAfterPhotoID == nil {
			return invalidStateError("enquiry %d needs a final overall photo before the workflow can be completed", enquiryID)
		}

		now := s.now()
		actual := detail.EstimatedCost
		if input.ActualCost != nil {
			actual = *input.ActualCost
		}
		detail.ActualCost = &actual
		detail.WorkNotes = strings.TrimSpace(input.WorkNotes)
		detail.CompletedAt = &now
		if err := tx.Save(&detail).Error; err != nil {
			return err
		}

		return tx.Model(&models.Enquiry{}).
			Where("id = ?", enquiryID).
			Update("current_stage", models.StageBilling).Error
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func findServiceDetail(tx *gorm.DB, enquiryID uint, detail *models.ServiceDetail) error {
	var enquiry models.Enquiry
	if err := findEnquiryInStage(tx, enquiryID, models.StageService, &enquiry); err != nil {
		return err
	}
	return findByEnquiry(tx, enquiryID, detail, "service detail")
}

func findServiceTask(tx *gorm.DB, enquiryID, serviceID uint, task *models.ServiceType) error {
	var enquiry models.Enquiry
	if err := findEnquiryInStage(tx, enquiryID, models.StageService, &enquiry); err != nil {
		return err
	}
	if err := tx.Where("id = ? AND enquiry_id = ?", serviceID, enquiryID).First(task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("service %d not found for enquiry %d", serviceID, enquiryID)
		}
		return fmt.Errorf("failed to load service %d: %w", serviceID, err)
	}
	return nil
}

// requireAllServicesDone fails unless the enquiry has tasks and all are done
func requireAllServicesDone(tx *gorm.DB, enquiryID uint) error {
	var total, done int64
	if err := tx.Model(&models.ServiceType{}).Where("enquiry_id = ?", enquiryID).Count(&total).Error; err != nil {
		return err
	}
	if total == 0 {
		return invalidStateError("enquiry %d has no assigned services", enquiryID)
	}
	if err := tx.Model(&models.ServiceType{}).
		Where("enquiry_id = ? AND status = ?", enquiryID, models.ServiceStatusDone).
		Count(&done).Error; err != nil {
		return err
	}
	if done != total {
		return invalidStateError("%d of %d services for enquiry %d are not done", total-done, total, enquiryID)
	}
	return nil
}
