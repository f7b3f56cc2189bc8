package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/middleware"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
	"gorm.io/gorm"
)

// CreateInventoryItemRequest represents the request body for adding stock
type CreateInventoryItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category" binding:"required"`
	SKU      string  `json:"sku"`
	Unit     string  `json:"unit"`
	Quantity int     `json:"quantity" binding:"gte=0"`
	MinStock int     `json:"minStock" binding:"gte=0"`
	UnitCost float64 `json:"unitCost" binding:"gte=0"`
	Notes    string  `json:"notes"`
}

// UpdateInventoryItemRequest represents the request body for editing an item.
// Quantity changes go through the adjust endpoint.
type UpdateInventoryItemRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	SKU      *string  `json:"sku"`
	Unit     *string  `json:"unit"`
	MinStock *int     `json:"minStock" binding:"omitempty,gte=0"`
	UnitCost *float64 `json:"unitCost" binding:"omitempty,gte=0"`
	Notes    *string  `json:"notes"`
}

// AdjustStockRequest represents the request body for a stock movement
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// InventoryItemView adds the derived low-stock flag
type InventoryItemView struct {
	models.InventoryItem
	LowStock bool `json:"lowStock"`
}

func inventoryView(item models.InventoryItem) InventoryItemView {
	return InventoryItemView{InventoryItem: item, LowStock: item.IsLowStock()}
}

// ListInventoryItems handles GET /api/inventory
func ListInventoryItems(c *gin.Context) {
	page, limit := parsePagination(c)
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.InventoryItem{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern, pattern)
	}
	if c.Query("lowStock") == "true" {
		query = query.Where("quantity <= min_stock")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, err)
		return
	}

	var items []models.InventoryItem
	if err := query.Scopes(paginate(page, limit)).Order("name ASC, id ASC").Find(&items).Error; err != nil {
		handleError(c, err)
		return
	}

	views := make([]InventoryItemView, 0, len(items))
	for _, item := range items {
		views = append(views, inventoryView(item))
	}
	respondList(c, views, total, page, limit)
}

// GetInventoryItem handles GET /api/inventory/:id
func GetInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item models.InventoryItem
	if err := config.GetDB().WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inventoryView(item), "")
}

// CreateInventoryItem handles POST /api/inventory
func CreateInventoryItem(c *gin.Context) {
	var req CreateInventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item := models.InventoryItem{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		SKU:      optionalText(req.SKU),
		Unit:     strings.TrimSpace(req.Unit),
		Quantity: req.Quantity,
		MinStock: req.MinStock,
		UnitCost: req.UnitCost,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if item.SKU != nil && skuTaken(c, *item.SKU, 0) {
		return
	}

	if err := config.GetDB().WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, inventoryView(item), "Item created successfully")
}

// UpdateInventoryItem handles PUT /api/inventory/:id
func UpdateInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateInventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var item models.InventoryItem
	if err := db.First(&item, id).Error; err != nil {
		handleError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name must not be empty")
			return
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.SKU != nil {
		sku := optionalText(*req.SKU)
		if sku != nil && skuTaken(c, *sku, item.ID) {
			return
		}
		updates["sku"] = sku
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.MinStock != nil {
		updates["min_stock"] = *req.MinStock
	}
	if req.UnitCost != nil {
		updates["unit_cost"] = *req.UnitCost
	}
	if req.Notes != nil {
		updates["notes"] = strings.TrimSpace(*req.Notes)
	}

	if len(updates) > 0 {
		if err := db.Model(&item).Updates(updates).Error; err != nil {
			handleError(c, err)
			return
		}
	}
	if err := db.First(&item, id).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inventoryView(item), "Item updated successfully")
}

// DeleteInventoryItem handles DELETE /api/inventory/:id
func DeleteInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var item models.InventoryItem
	if err := db.First(&item, id).Error; err != nil {
		handleError(c, err)
		return
	}
	if err := db.Delete(&item).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id}, "Item deleted successfully")
}

// AdjustInventoryItem handles PATCH /api/inventory/:id/adjust
func AdjustInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}

	adj := services.StockAdjustment{Delta: req.Delta, Reason: req.Reason}
	if user, err := middleware.GetUser(c); err == nil {
		adj.RecordedBy = user.Username
	}

	item, err := services.AdjustStock(c.Request.Context(), config.GetDB(), id, adj)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, inventoryView(*item), "Stock adjusted")
}

// ListInventoryMovements handles GET /api/inventory/:id/movements
func ListInventoryMovements(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var item models.InventoryItem
	if err := db.First(&item, id).Error; err != nil {
		handleError(c, err)
		return
	}

	movements := []models.InventoryMovement{}
	if err := db.Where("item_id = ?", id).Order("id DESC").Find(&movements).Error; err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, movements, "")
}

// skuTaken writes a validation error when another item already uses sku
func skuTaken(c *gin.Context, sku string, exceptID uint) bool {
	var count int64
	err := config.GetDB().WithContext(c.Request.Context()).
		Model(&models.InventoryItem{}).
		Where("sku = ? AND id <> ?", sku, exceptID).
		Count(&count).Error
	if err != nil {
		handleError(c, err)
		return true
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "sku "+sku+" is already in use")
		return true
	}
	return false
}

func optionalText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
