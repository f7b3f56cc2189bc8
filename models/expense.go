package models

import "time"

var (
	ExpenseCategories     = []string{"Materials", "Rent", "Salary", "Utilities", "Transport", "Marketing", "Other"}
	ExpensePaymentMethods = []string{"Cash", "UPI", "Card", "Bank Transfer"}
)

// Expense is money spent running the shop
type Expense struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Category      string    `gorm:"not null;index" json:"category"`
	Description   string    `gorm:"not null" json:"description"`
	Amount        float64   `gorm:"not null;check:amount > 0" json:"amount"`
	ExpenseDate   time.Time `gorm:"not null;index" json:"expenseDate"`
	PaymentMethod string    `gorm:"not null;default:'Cash'" json:"paymentMethod"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
