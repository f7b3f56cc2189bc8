package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/kendall-kelly/cobbler-api/metrics"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/utils"
	"gorm.io/gorm"
)

// PhotoInput carries a required photo and optional notes
type PhotoInput struct {
	Photo string `json:"photo"`
	Notes string `json:"notes"`
}

// WorkflowService moves enquiries through the stage sequence. Every
// operation commits in a single transaction or not at all.
type WorkflowService struct {
	db     *gorm.DB
	photos PhotoStore
	now    func() time.Time
	suffix func() int
}

// NewWorkflowService creates a workflow service over db
func NewWorkflowService(db *gorm.DB, photos PhotoStore) *WorkflowService {
	if photos == nil {
		photos = InlinePhotoStore{}
	}
	return &WorkflowService{
		db:     db,
		photos: photos,
		now:    time.Now,
		suffix: func() int { return 100 + rand.IntN(900) },
	}
}

// ConvertEnquiry marks a new or contacted enquiry as converted with a quote
func (s *WorkflowService) ConvertEnquiry(ctx context.Context, enquiryID uint, quotedAmount float64) (*models.Enquiry, error) {
	if quotedAmount < 0 {
		return nil, validationError("quotedAmount must not be negative")
	}

	var enquiry models.Enquiry
	err := s.transition(ctx, "convert_enquiry", func(tx *gorm.DB) error {
		if err := findEnquiry(tx, enquiryID, &enquiry); err != nil {
			return err
		}
		if enquiry.CurrentStage != models.StageEnquiry ||
			(enquiry.Status != models.EnquiryStatusNew && enquiry.Status != models.EnquiryStatusContacted) {
			return invalidStateError("enquiry %d is %s in the %s stage and cannot be converted", enquiryID, enquiry.Status, enquiry.CurrentStage)
		}

		now := s.now()
		enquiry.Status = models.EnquiryStatusConverted
		enquiry.Contacted = true
		enquiry.ContactedAt = &now
		enquiry.QuotedAmount = &quotedAmount
		return tx.Save(&enquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}

// MarkContacted records that staff reached the customer
func (s *WorkflowService) MarkContacted(ctx context.Context, enquiryID uint) (*models.Enquiry, error) {
	var enquiry models.Enquiry
	err := s.transition(ctx, "mark_contacted", func(tx *gorm.DB) error {
		if err := findEnquiry(tx, enquiryID, &enquiry); err != nil {
			return err
		}
		if enquiry.CurrentStage != models.StageEnquiry ||
			(enquiry.Status != models.EnquiryStatusNew && enquiry.Status != models.EnquiryStatusContacted) {
			return invalidStateError("enquiry %d is %s and cannot be marked contacted", enquiryID, enquiry.Status)
		}

		now := s.now()
		enquiry.Status = models.EnquiryStatusContacted
		enquiry.Contacted = true
		enquiry.ContactedAt = &now
		return tx.Save(&enquiry).Error
	})
	if err != nil {
		return nil, err
	}
	return &enquiry, nil
}

// AdvanceStage handles an explicit stage change request. Only the immediate
// next stage is legal, and only pickup can be entered this way; every later
// stage is entered by the operation that owns its preconditions.
func (s *WorkflowService) AdvanceStage(ctx context.Context, enquiryID uint, target string) (*models.Enquiry, error) {
	if !models.IsValidStage(target) {
		return nil, validationError("stage must be one of %s", strings.Join(models.Stages, ", "))
	}

	var enquiry models.Enquiry
	if err := findEnquiry(s.db.WithContext(ctx), enquiryID, &enquiry); err != nil {
		return nil, err
	}

	switch {
	case models.StageIndex(target) <= models.StageIndex(enquiry.CurrentStage):
		return nil, invalidTransitionError("enquiry %d is already in %s stage and cannot move to %s", enquiryID, enquiry.CurrentStage, target)
	case target != models.NextStage(enquiry.CurrentStage):
		return nil, invalidTransitionError("enquiry %d cannot skip from %s to %s", enquiryID, enquiry.CurrentStage, target)
	case target != models.StagePickup:
		return nil, invalidTransitionError("the %s stage is entered by completing the %s stage", target, enquiry.CurrentStage)
	}

	if _, err := s.SchedulePickup(ctx, enquiryID, SchedulePickupInput{}); err != nil {
		return nil, err
	}
	if err := findEnquiry(s.db.WithContext(ctx), enquiryID, &enquiry); err != nil {
		return nil, err
	}
	return &enquiry, nil
}

// transition runs fn in a transaction and counts it when it commits
func (s *WorkflowService) transition(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	metrics.WorkflowTransitions.WithLabelValues(operation).Inc()
	return nil
}

// transitionWithPhoto stores the photo, then runs fn in a transaction; fn
// must insert the photo row itself. A failed transaction discards the photo.
func (s *WorkflowService) transitionWithPhoto(ctx context.Context, operation string, photo *models.Photo, encoded string, fn func(tx *gorm.DB) error) error {
	if err := s.photos.Store(ctx, photo, encoded); err != nil {
		return photoError(err)
	}
	if err := s.transition(ctx, operation, fn); err != nil {
		s.photos.Discard(ctx, photo)
		return err
	}
	return nil
}

func photoError(err error) error {
	var pe *utils.PhotoError
	if errors.As(err, &pe) {
		return &WorkflowError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: pe.Message}
	}
	return fmt.Errorf("failed to store photo: %w", err)
}

func findEnquiry(tx *gorm.DB, enquiryID uint, enquiry *models.Enquiry) error {
	if err := tx.First(enquiry, enquiryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("enquiry %d not found", enquiryID)
		}
		return fmt.Errorf("failed to load enquiry %d: %w", enquiryID, err)
	}
	return nil
}

// findEnquiryInStage loads an enquiry that must currently be in stage
func findEnquiryInStage(tx *gorm.DB, enquiryID uint, stage string, enquiry *models.Enquiry) error {
	if err := findEnquiry(tx, enquiryID, enquiry); err != nil {
		return err
	}
	if enquiry.CurrentStage != stage {
		return notFoundError("enquiry %d not found in %s stage", enquiryID, stage)
	}
	return nil
}

// findByEnquiry loads the one stage record owned by enquiryID
func findByEnquiry(tx *gorm.DB, enquiryID uint, dest interface{}, what string) error {
	if err := tx.Where("enquiry_id = ?", enquiryID).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("%s for enquiry %d not found", what, enquiryID)
		}
		return fmt.Errorf("failed to load %s for enquiry %d: %w", what, enquiryID, err)
	}
	return nil
}

func requireText(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", validationError("%s is required", field)
	}
	return value, nil
}
