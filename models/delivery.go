package models

import "time"

// Delivery statuses
const (
	DeliveryStatusReady          = "ready"
	DeliveryStatusScheduled      = "scheduled"
	DeliveryStatusOutForDelivery = "out-for-delivery"
	DeliveryStatusDelivered      = "delivered"
)

// Delivery methods
const (
	DeliveryMethodCustomerPickup = "customer-pickup"
	DeliveryMethodHomeDelivery   = "home-delivery"
)

var DeliveryMethods = []string{DeliveryMethodCustomerPickup, DeliveryMethodHomeDelivery}

// DeliveryDetail tracks handing the finished item back to the customer
type DeliveryDetail struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EnquiryID       uint       `gorm:"not null;uniqueIndex" json:"enquiryId"`
	Enquiry         *Enquiry   `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE" json:"enquiry,omitempty"`
	Status          string     `gorm:"not null;default:'ready'" json:"status"`
	Method          string     `gorm:"not null;default:'customer-pickup'" json:"method"`
	ScheduledTime   *time.Time `json:"scheduledTime"`
	AssignedTo      string     `json:"assignedTo"`
	DeliveredAt     *time.Time `json:"deliveredAt"`
	DeliveryPhotoID *uint      `json:"deliveryPhotoId"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the DeliveryDetail model
func (DeliveryDetail) TableName() string {
	return "delivery_details"
}
