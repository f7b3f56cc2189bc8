package services

import (
	"context"
	"sync"
	"testing"

	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStock(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	item := models.InventoryItem{Name: "Leather sole", Category: "Materials", Unit: "pair", Quantity: 5, MinStock: 2}
	require.NoError(t, db.Create(&item).Error)

	tests := []struct {
		name         string
		delta        int
		wantKind     ErrorKind
		wantQuantity int
	}{
		{name: "restock", delta: 10, wantQuantity: 15},
		{name: "use some", delta: -4, wantQuantity: 11},
		{name: "zero delta", delta: 0, wantKind: KindValidation, wantQuantity: 11},
		{name: "below zero", delta: -12, wantKind: KindValidation, wantQuantity: 11},
		{name: "use all", delta: -11, wantQuantity: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AdjustStock(ctx, db, item.ID, StockAdjustment{Delta: tt.delta, Reason: "  " + tt.name + "  "})
			if tt.wantKind != 0 {
				assert.True(t, IsKind(err, tt.wantKind), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantQuantity, got.Quantity)
			}

			var stored models.InventoryItem
			require.NoError(t, db.First(&stored, item.ID).Error)
			assert.Equal(t, tt.wantQuantity, stored.Quantity)
		})
	}

	var movements []models.InventoryMovement
	require.NoError(t, db.Where("item_id = ?", item.ID).Order("id ASC").Find(&movements).Error)
	require.Len(t, movements, 3)
	assert.Equal(t, "restock", movements[0].Reason)
	assert.Equal(t, 15, movements[0].QuantityAfter)
	assert.Equal(t, 0, movements[2].QuantityAfter)
}

func TestAdjustStock_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := AdjustStock(context.Background(), db, 404, StockAdjustment{Delta: 1})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestAdjustStock_ConcurrentAdjustmentsAllCount(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	item := models.InventoryItem{Name: "Rubber heel", Category: "Heels", Unit: "pair", Quantity: 5}
	require.NoError(t, db.Create(&item).Error)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = AdjustStock(ctx, db, item.ID, StockAdjustment{Delta: -1, Reason: "job", RecordedBy: "admin"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, IsKind(err, KindValidation), "got %v", err)
		}
	}
	assert.Equal(t, 5, succeeded)

	var stored models.InventoryItem
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, 0, stored.Quantity)

	var movements []models.InventoryMovement
	require.NoError(t, db.Where("item_id = ?", item.ID).Order("id ASC").Find(&movements).Error)
	require.Len(t, movements, 5)
	for i, movement := range movements {
		assert.Equal(t, 4-i, movement.QuantityAfter)
		assert.Equal(t, "admin", movement.RecordedBy)
	}
}
