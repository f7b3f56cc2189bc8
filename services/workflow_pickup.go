package services

import (
	"context"
	"strings"
	"time"

	"github.com/kendall-kelly/cobbler-api/models"
	"gorm.io/gorm"
)

// SchedulePickupInput is the optional detail for a new pickup
type SchedulePickupInput struct {
	ScheduledTime *time.Time `json:"scheduledTime"`
	Notes         string     `json:"notes"`
}

// ReceiveInput is the condition photo plus an optional cost estimate
type ReceiveInput struct {
	Photo         string   `json:"photo"`
	Notes         string   `json:"notes"`
	EstimatedCost *float64 `json:"estimatedCost"`
}

// SchedulePickup moves a converted enquiry into the pickup stage
func (s *WorkflowService) SchedulePickup(ctx context.Context, enquiryID uint, input SchedulePickupInput) (*models.PickupDetail, error) {
	var pickup models.PickupDetail
	err := s.transition(ctx, "schedule_pickup", func(tx *gorm.DB) error {
		var enquiry models.Enquiry
		if err := findEnquiryInStage(tx, enquiryID, models.StageEnquiry, &enquiry); err != nil {
			return err
		}
		if enquiry.Status != models.EnquiryStatusConverted {
			return invalidStateError("enquiry %d must be converted before pickup is scheduled", enquiryID)
		}

		if err := tx.Model(&enquiry).Update("current_stage", models.StagePickup).Error; err != nil {
			return err
		}

		pickup = models.PickupDetail{
			EnquiryID:     enquiryID,
			Status:        models.PickupStatusScheduled,
			ScheduledTime: input.ScheduledTime,
			Notes:         strings.TrimSpace(input.Notes),
		}
		return tx.Create(&pickup).Error
	})
	if err != nil {
		return nil, err
	}
	return &pickup, nil
}

// AssignPickup sets who collects the item. Re-assigning is allowed until the
// item is collected.
func (s *WorkflowService) AssignPickup(ctx context.Context, enquiryID uint, assignedTo string) (*models.PickupDetail, error) {
	assignedTo, err := requireText(assignedTo, "assignedTo")
	if err != nil {
		return nil, err
	}

	var pickup models.PickupDetail
	err = s.transition(ctx, "assign_pickup", func(tx *gorm.DB) error {
		if err := findPickup(tx, enquiryID, &pickup); err != nil {
			return err
		}
		if pickup.Status != models.PickupStatusScheduled && pickup.Status != models.PickupStatusAssigned {
			return invalidStateError("pickup for enquiry %d is already %s", enquiryID, pickup.Status)
		}

		pickup.Status = models.PickupStatusAssigned
		pickup.AssignedTo = assignedTo
		return tx.Save(&pickup).Error
	})
	if err != nil {
		return nil, err
	}
	return &pickup, nil
}

// MarkCollected records the collection proof photo
func (s *WorkflowService) MarkCollected(ctx context.Context, enquiryID uint, input PhotoInput) (*models.PickupDetail, error) {
	var pickup models.PickupDetail
	photo := &models.Photo{
		EnquiryID: enquiryID,
		Stage:     models.StagePickup,
		PhotoType: models.PhotoTypeAfter,
		Notes:     strings.TrimSpace(input.Notes),
	}

	err := s.transitionWithPhoto(ctx, "mark_collected", photo, input.Photo, func(tx *gorm.DB) error {
		if err := findPickup(tx, enquiryID, &pickup); err != nil {
			return err
		}
		if pickup.Status != models.PickupStatusAssigned {
			return invalidStateError("pickup for enquiry %d must be assigned before collection, it is %s", enquiryID, pickup.Status)
		}
		if err := tx.Create(photo).Error; err != nil {
			return err
		}

		now := s.now()
		pickup.Status = models.PickupStatusCollected
		pickup.CollectedAt = &now
		pickup.CollectionPhotoID = &photo.ID
		if photo.Notes != "" {
			pickup.Notes = photo.Notes
		}
		return tx.Save(&pickup).Error
	})
	if err != nil {
		return nil, err
	}
	return &pickup, nil
}

// MarkReceived records the item arriving at the shop and opens the service stage
func (s *WorkflowService) MarkReceived(ctx context.Context, enquiryID uint, input ReceiveInput) (*models.ServiceDetail, error) {
	if input.EstimatedCost != nil && *input.EstimatedCost < 0 {
		return nil, validationError("estimatedCost must not be negative")
	}

	var detail models.ServiceDetail
	photo := &models.Photo{
		EnquiryID: enquiryID,
		Stage:     models.StagePickup,
		PhotoType: models.PhotoTypeBefore,
		Notes:     strings.TrimSpace(input.Notes),
	}

	err := s.transitionWithPhoto(ctx, "mark_received", photo, input.Photo, func(tx *gorm.DB) error {
		var pickup models.PickupDetail
		if err := findPickup(tx, enquiryID, &pickup); err != nil {
			return err
		}
		if pickup.Status != models.PickupStatusCollected {
			return invalidStateError("pickup for enquiry %d must be collected before it is received, it is %s", enquiryID, pickup.Status)
		}
		if err := tx.Create(photo).Error; err != nil {
			return err
		}

		now := s.now()
		pickup.Status = models.PickupStatusReceived
		pickup.ReceivedAt = &now
		pickup.ReceivedPhotoID = &photo.ID
		if err := tx.Save(&pickup).Error; err != nil {
			return err
		}

		var enquiry models.Enquiry
		if err := findEnquiry(tx, enquiryID, &enquiry); err != nil {
			return err
		}
		if err := tx.Model(&enquiry).Update("current_stage", models.StageService).Error; err != nil {
			return err
		}

		estimate := 0.0
		switch {
		case input.EstimatedCost != nil:
			estimate = *input.EstimatedCost
		case enquiry.QuotedAmount != nil:
			estimate = *enquiry.QuotedAmount
		}

		detail = models.ServiceDetail{
			EnquiryID:       enquiryID,
			EstimatedCost:   estimate,
			ReceivedPhotoID: &photo.ID,
			ReceivedNotes:   photo.Notes,
		}
		return tx.Create(&detail).Error
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// findPickup loads the pickup record of an enquiry in the pickup stage
func findPickup(tx *gorm.DB, enquiryID uint, pickup *models.PickupDetail) error {
	var enquiry models.Enquiry
	if err := findEnquiryInStage(tx, enquiryID, models.StagePickup, &enquiry); err != nil {
		return err
	}
	return findByEnquiry(tx, enquiryID, pickup, "pickup")
}
