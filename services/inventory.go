package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kendall-kelly/cobbler-api/metrics"
	"github.com/kendall-kelly/cobbler-api/models"
	"gorm.io/gorm"
)

// StockAdjustment is a single change to an item's quantity
type StockAdjustment struct {
	Delta      int
	Reason     string
	RecordedBy string
}

// AdjustStock applies adj.Delta to an item's quantity and records the
// movement. The quantity is changed in the database with a guarded update so
// concurrent adjustments never overwrite each other. A result below zero is
// rejected and nothing changes.
func AdjustStock(ctx context.Context, db *gorm.DB, itemID uint, adj StockAdjustment) (*models.InventoryItem, error) {
	if adj.Delta == 0 {
		return nil, validationError("delta must not be zero")
	}

	var item models.InventoryItem
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND quantity + ? >= 0", itemID, adj.Delta).
			Update("quantity", gorm.Expr("quantity + ?", adj.Delta))
		if result.Error != nil {
			return result.Error
		}

		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("inventory item %d not found", itemID)
			}
			return err
		}
		if result.RowsAffected == 0 {
			return validationError("cannot remove %d %s of %s, only %d in stock", -adj.Delta, item.Unit, item.Name, item.Quantity)
		}

		return tx.Create(&models.InventoryMovement{
			ItemID:        item.ID,
			Delta:         adj.Delta,
			Reason:        strings.TrimSpace(adj.Reason),
			RecordedBy:    adj.RecordedBy,
			QuantityAfter: item.Quantity,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.WorkflowTransitions.WithLabelValues("adjust_stock").Inc()
	return &item, nil
}
