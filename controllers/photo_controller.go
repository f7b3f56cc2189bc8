package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
)

// GetPhoto handles GET /api/photos/:id. Stored objects come back with a
// presigned imageUrl instead of inline data.
func GetPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var photo models.Photo
	if err := config.GetDB().WithContext(ctx).First(&photo, id).Error; err != nil {
		handleError(c, err)
		return
	}
	if err := services.GetPhotoStore().Resolve(ctx, &photo); err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, photo, "")
}
