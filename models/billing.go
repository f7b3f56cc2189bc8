package models

import "time"

// BillingDetail is the invoice header for an enquiry
type BillingDetail struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	EnquiryID       uint          `gorm:"not null;uniqueIndex" json:"enquiryId"`
	Enquiry         *Enquiry      `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE" json:"enquiry,omitempty"`
	InvoiceNumber   string        `gorm:"not null;uniqueIndex" json:"invoiceNumber"`
	InvoiceDate     time.Time     `gorm:"not null" json:"invoiceDate"`
	GSTIncluded     bool          `gorm:"not null;default:false" json:"gstIncluded"`
	GSTRate         float64       `gorm:"not null;default:0" json:"gstRate"`
	Subtotal        float64       `gorm:"not null;default:0" json:"subtotal"`
	GSTAmount       float64       `gorm:"not null;default:0" json:"gstAmount"`
	TotalAmount     float64       `gorm:"not null;default:0" json:"totalAmount"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	CustomerAddress string        `gorm:"type:text" json:"customerAddress"`
	Notes           string        `gorm:"type:text" json:"notes"`
	Items           []BillingItem `gorm:"foreignKey:BillingID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// TableName specifies the table name for the BillingDetail model
func (BillingDetail) TableName() string {
	return "billing_details"
}

// BillingItem is one priced service line on an invoice
type BillingItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BillingID       uint      `gorm:"not null;index" json:"billingId"`
	ServiceTypeID   *uint     `json:"serviceTypeId"`
	ServiceName     string    `gorm:"not null" json:"serviceName"`
	OriginalAmount  float64   `gorm:"not null" json:"originalAmount"`
	DiscountPercent float64   `gorm:"not null;default:0" json:"discountPercent"`
	DiscountAmount  float64   `gorm:"not null;default:0" json:"discountAmount"`
	GSTRate         float64   `gorm:"not null;default:0" json:"gstRate"`
	GSTAmount       float64   `gorm:"not null;default:0" json:"gstAmount"`
	FinalAmount     float64   `gorm:"not null" json:"finalAmount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName specifies the table name for the BillingItem model
func (BillingItem) TableName() string {
	return "billing_items"
}
