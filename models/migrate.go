package models

import "gorm.io/gorm"

// All lists every model in dependency order for migration
func All() []interface{} {
	return []interface{}{
		&Enquiry{},
		&Photo{},
		&PickupDetail{},
		&ServiceDetail{},
		&ServiceType{},
		&BillingDetail{},
		&BillingItem{},
		&DeliveryDetail{},
		&InventoryItem{},
		&InventoryMovement{},
		&Expense{},
	}
}

// AutoMigrate creates or updates the schema for every model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
