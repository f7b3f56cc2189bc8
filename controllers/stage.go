package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"gorm.io/gorm"
)

// listStageRecords pages through the stage records of every enquiry that is
// currently in stage, filtered by the optional status query parameter
func listStageRecords[T any](c *gin.Context, stage string) {
	page, limit := parsePagination(c)
	db := config.GetDB().WithContext(c.Request.Context())

	query := db.Model(new(T)).Where("enquiry_id IN (?)", enquiriesInStage(db, stage))
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		handleError(c, err)
		return
	}

	records := []T{}
	if err := query.Preload("Enquiry").Scopes(paginate(page, limit)).Order("updated_at DESC, id DESC").Find(&records).Error; err != nil {
		handleError(c, err)
		return
	}

	respondList(c, records, total, page, limit)
}

// getStageRecord loads the stage record of one enquiry with the enquiry attached
func getStageRecord[T any](c *gin.Context) (*T, bool) {
	enquiryID, ok := parseID(c, "enquiryId")
	if !ok {
		return nil, false
	}

	record := new(T)
	err := config.GetDB().WithContext(c.Request.Context()).
		Preload("Enquiry").
		Where("enquiry_id = ?", enquiryID).
		First(record).Error
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return record, true
}
