package services

import (
	"context"
	"strings"
	"time"

	"github.com/kendall-kelly/cobbler-api/models"
	"gorm.io/gorm"
)

// ScheduleDeliveryInput picks how and when the item goes back
type ScheduleDeliveryInput struct {
	Method        string     `json:"method"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	Notes         string     `json:"notes"`
}

// ScheduleDelivery plans the hand-back of a ready item
func (s *WorkflowService) ScheduleDelivery(ctx context.Context, enquiryID uint, input ScheduleDeliveryInput) (*models.DeliveryDetail, error) {
	method := strings.TrimSpace(input.Method)
	if !models.Contains(models.DeliveryMethods, method) {
		return nil, validationError("method must be one of %s", strings.Join(models.DeliveryMethods, ", "))
	}

	var delivery models.DeliveryDetail
	err := s.transition(ctx, "schedule_delivery", func(tx *gorm.DB) error {
		if err := findDelivery(tx, enquiryID, &delivery); err != nil {
			return err
		}
		if delivery.Status != models.DeliveryStatusReady {
			return invalidStateError("delivery for enquiry %d is %s and cannot be scheduled", enquiryID, delivery.Status)
		}

		delivery.Status = models.DeliveryStatusScheduled
		delivery.Method = method
		delivery.ScheduledTime = input.ScheduledTime
		if notes := strings.TrimSpace(input.Notes); notes != "" {
			delivery.Notes = notes
		}
		return tx.Save(&delivery).Error
	})
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// DispatchDelivery hands a scheduled delivery to a staff member
func (s *WorkflowService) DispatchDelivery(ctx context.Context, enquiryID uint, assignedTo string) (*models.DeliveryDetail, error) {
	assignedTo, err := requireText(assignedTo, "assignedTo")
	if err != nil {
		return nil, err
	}

	var delivery models.DeliveryDetail
	err = s.transition(ctx, "dispatch_delivery", func(tx *gorm.DB) error {
		if err := findDelivery(tx, enquiryID, &delivery); err != nil {
			return err
		}
		if delivery.Status != models.DeliveryStatusScheduled {
			return invalidStateError("delivery for enquiry %d is %s and cannot be dispatched", enquiryID, delivery.Status)
		}

		delivery.Status = models.DeliveryStatusOutForDelivery
		delivery.AssignedTo = assignedTo
		return tx.Save(&delivery).Error
	})
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// MarkDelivered records the proof photo and completes the enquiry
func (s *WorkflowService) MarkDelivered(ctx context.Context, enquiryID uint, input PhotoInput) (*models.DeliveryDetail, error) {
	var delivery models.DeliveryDetail
	photo := &models.Photo{
		EnquiryID: enquiryID,
		Stage:     models.StageDelivery,
		PhotoType: models.PhotoTypeAfter,
		Notes:     strings.TrimSpace(input.Notes),
	}

	err := s.transitionWithPhoto(ctx, "mark_delivered", photo, input.Photo, func(tx *gorm.DB) error {
		if err := findDelivery(tx, enquiryID, &delivery); err != nil {
			return err
		}
		if delivery.Status != models.DeliveryStatusOutForDelivery {
			return invalidStateError("delivery for enquiry %d is %s and cannot be marked delivered", enquiryID, delivery.Status)
		}
		if err := tx.Create(photo).Error; err != nil {
			return err
		}

		now := s.now()
		delivery.Status = models.DeliveryStatusDelivered
		delivery.DeliveredAt = &now
		delivery.DeliveryPhotoID = &photo.ID
		if photo.Notes != "" {
			delivery.Notes = photo.Notes
		}
		if err := tx.Save(&delivery).Error; err != nil {
			return err
		}

		return tx.Model(&models.Enquiry{}).
			Where("id = ?", enquiryID).
			Update("current_stage", models.StageCompleted).Error
	})
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func findDelivery(tx *gorm.DB, enquiryID uint, delivery *models.DeliveryDetail) error {
	var enquiry models.Enquiry
	if err := findEnquiryInStage(tx, enquiryID, models.StageDelivery, &enquiry); err != nil {
		return err
	}
	return findByEnquiry(tx, enquiryID, delivery, "delivery")
}
