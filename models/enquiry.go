package models

import (
	"time"
)

// Enquiry statuses
const (
	EnquiryStatusNew       = "new"
	EnquiryStatusContacted = "contacted"
	EnquiryStatusConverted = "converted"
	EnquiryStatusClosed    = "closed"
	EnquiryStatusLost      = "lost"
)

// Workflow stages, in order
const (
	StageEnquiry   = "enquiry"
	StagePickup    = "pickup"
	StageService   = "service"
	StageBilling   = "billing"
	StageDelivery  = "delivery"
	StageCompleted = "completed"
)

// Stages is the fixed order an enquiry moves through
var Stages = []string{StageEnquiry, StagePickup, StageService, StageBilling, StageDelivery, StageCompleted}

var (
	EnquiryStatuses = []string{EnquiryStatusNew, EnquiryStatusContacted, EnquiryStatusConverted, EnquiryStatusClosed, EnquiryStatusLost}
	InquirySources  = []string{"Instagram", "Facebook", "WhatsApp", "Phone", "Walk-in", "Website"}
	ProductTypes    = []string{"Bag", "Shoe", "Wallet", "Belt", "Furniture"}
)

// Enquiry is a customer request; it owns every workflow record below it
type Enquiry struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CustomerName  string     `gorm:"not null" json:"customerName"`
	Phone         string     `gorm:"not null;index" json:"phone"`
	Address       string     `gorm:"type:text" json:"address"`
	Message       string     `gorm:"type:text" json:"message"`
	InquirySource string     `gorm:"not null" json:"inquirySource"`
	ProductType   string     `gorm:"not null" json:"productType"`
	Quantity      int        `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	Status        string     `gorm:"not null;default:'new';index" json:"status"`
	Contacted     bool       `gorm:"not null;default:false" json:"contacted"`
	ContactedAt   *time.Time `json:"contactedAt"`
	CurrentStage  string     `gorm:"not null;default:'enquiry';index" json:"currentStage"`
	QuotedAmount  *float64   `json:"quotedAmount"`
	FinalAmount   *float64   `json:"finalAmount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the Enquiry model
func (Enquiry) TableName() string {
	return "enquiries"
}

// StageIndex returns the position of stage in Stages, or -1 if unknown
func StageIndex(stage string) int {
	for i, s := range Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

// NextStage returns the stage after stage, or "" at the end of the sequence
func NextStage(stage string) string {
	i := StageIndex(stage)
	if i < 0 || i == len(Stages)-1 {
		return ""
	}
	return Stages[i+1]
}

// IsValidStage reports whether stage is one of Stages
func IsValidStage(stage string) bool {
	return StageIndex(stage) >= 0
}

// Contains reports whether value is one of allowed
func Contains(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
