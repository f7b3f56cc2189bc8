package models

import "time"

// InventoryItem is a stocked material or consumable
type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Category  string    `gorm:"not null;index" json:"category"`
	SKU       *string   `gorm:"uniqueIndex" json:"sku"`
	Unit      string    `gorm:"not null;default:'pcs'" json:"unit"`
	Quantity  int       `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	MinStock  int       `gorm:"not null;default:0" json:"minStock"`
	UnitCost  float64   `gorm:"not null;default:0" json:"unitCost"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the InventoryItem model
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// IsLowStock reports whether the item is at or below its reorder level
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.MinStock
}

// InventoryMovement is an append-only record of a stock change
type InventoryMovement struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ItemID        uint           `gorm:"not null;index" json:"itemId"`
	Item          *InventoryItem `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
	Delta         int            `gorm:"not null" json:"delta"`
	Reason        string         `json:"reason"`
	RecordedBy    string         `json:"recordedBy"`
	QuantityAfter int            `gorm:"not null" json:"quantityAfter"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// TableName specifies the table name for the InventoryMovement model
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}
