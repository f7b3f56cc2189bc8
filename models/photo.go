package models

import "time"

// Photo types. Pickup uses after_photo as collection proof and before_photo as
// the received-condition shot; delivery uses after_photo as delivery proof.
const (
	PhotoTypeBefore        = "before_photo"
	PhotoTypeAfter         = "after_photo"
	PhotoTypeOverallBefore = "overall_before"
	PhotoTypeOverallAfter  = "overall_after"
)

// Photo is an append-only image record. Either ImageData holds the encoded
// image inline or StorageKey points at the object store.
type Photo struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EnquiryID       uint      `gorm:"not null;index" json:"enquiryId"`
	Enquiry         *Enquiry  `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE" json:"-"`
	Stage           string    `gorm:"not null" json:"stage"`
	PhotoType       string    `gorm:"not null" json:"photoType"`
	ServiceTypeID   *uint     `gorm:"index" json:"serviceTypeId"`
	ServiceDetailID *uint     `json:"serviceDetailId"`
	ImageData       string    `gorm:"type:text" json:"imageData,omitempty"`
	StorageKey      *string   `json:"storageKey,omitempty"`
	ImageURL        string    `gorm:"-" json:"imageUrl,omitempty"` // computed, presigned URL for stored objects
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName specifies the table name for the Photo model
func (Photo) TableName() string {
	return "photos"
}
