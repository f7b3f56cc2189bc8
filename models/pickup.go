package models

import "time"

// Pickup statuses
const (
	PickupStatusScheduled = "scheduled"
	PickupStatusAssigned  = "assigned"
	PickupStatusCollected = "collected"
	PickupStatusReceived  = "received"
)

// PickupDetail tracks collecting the item from the customer
type PickupDetail struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	EnquiryID         uint       `gorm:"not null;uniqueIndex" json:"enquiryId"`
	Enquiry           *Enquiry   `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE" json:"enquiry,omitempty"`
	Status            string     `gorm:"not null;default:'scheduled'" json:"status"`
	ScheduledTime     *time.Time `json:"scheduledTime"`
	AssignedTo        string     `json:"assignedTo"`
	CollectedAt       *time.Time `json:"collectedAt"`
	CollectionPhotoID *uint      `json:"collectionPhotoId"`
	ReceivedAt        *time.Time `json:"receivedAt"`
	ReceivedPhotoID   *uint      `json:"receivedPhotoId"`
	Notes             string     `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the PickupDetail model
func (PickupDetail) TableName() string {
	return "pickup_details"
}
