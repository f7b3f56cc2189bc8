package models

import "time"

// Service task statuses
const (
	ServiceStatusPending    = "pending"
	ServiceStatusInProgress = "in-progress"
	ServiceStatusDone       = "done"
)

// ServiceKinds are the repair tasks the shop offers
var ServiceKinds = []string{
	"Sole Replacement",
	"Zipper Repair",
	"Stitching",
	"Cleaning & Polishing",
	"Color Restoration",
	"Heel Repair",
}

// ServiceDetail holds the service-stage summary for an enquiry
type ServiceDetail struct {
	ID                   uint          `gorm:"primaryKey" json:"id"`
	EnquiryID            uint          `gorm:"not null;uniqueIndex" json:"enquiryId"`
	Enquiry              *Enquiry      `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE" json:"enquiry,omitempty"`
	EstimatedCost        float64       `gorm:"not null;default:0" json:"estimatedCost"`
	ActualCost           *float64      `json:"actualCost"`
	ReceivedPhotoID      *uint         `json:"receivedPhotoId"`
	ReceivedNotes        string        `gorm:"type:text" json:"receivedNotes"`
	OverallBeforePhotoID *uint         `json:"overallBeforePhotoId"`
	OverallBeforeNotes   string        `gorm:"type:text" json:"overallBeforeNotes"`
	OverallAfterPhotoID  *uint         `json:"overallAfterPhotoId"`
	OverallAfterNotes    string        `gorm:"type:text" json:"overallAfterNotes"`
	WorkNotes            string        `gorm:"type:text" json:"workNotes"`
	CompletedAt          *time.Time    `json:"completedAt"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// TableName specifies the table name for the ServiceDetail model
func (ServiceDetail) TableName() string {
	return "service_details"
}

// ServiceType is one repair task assigned to an enquiry
type ServiceType struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	EnquiryID     uint       `gorm:"not null;index" json:"enquiryId"`
	Enquiry       *Enquiry   `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE" json:"-"`
	ServiceType   string     `gorm:"not null" json:"serviceType"`
	Status        string     `gorm:"not null;default:'pending'" json:"status"`
	AssignedTo    string     `json:"assignedTo"`
	Department    string     `json:"department"`
	Notes         string     `gorm:"type:text" json:"notes"`
	BeforePhotoID *uint      `json:"beforePhotoId"`
	AfterPhotoID  *uint      `json:"afterPhotoId"`
	StartedAt     *time.Time `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the ServiceType model
func (ServiceType) TableName() string {
	return "service_types"
}
