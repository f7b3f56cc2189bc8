package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/models"
	"github.com/kendall-kelly/cobbler-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Cobbler API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	if err := models.AutoMigrate(config.GetDB()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if err := configurePhotoStore(context.Background(), cfg); err != nil {
		log.Fatalf("Failed to configure photo storage: %v", err)
	}

	router := setupRouter(cfg)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// configurePhotoStore selects where workflow photos are kept
func configurePhotoStore(ctx context.Context, cfg *config.Config) error {
	if cfg.PhotoStorage != config.PhotoStorageS3 {
		services.SetPhotoStore(services.InlinePhotoStore{})
		log.Println("Photos are stored inline in the database")
		return nil
	}

	s3Service, err := services.NewS3Service(ctx, cfg)
	if err != nil {
		return err
	}
	services.SetPhotoStore(services.NewS3PhotoStore(s3Service))
	log.Printf("Photos are stored in S3 bucket %s", cfg.AWSS3Bucket)
	return nil
}

// healthCheck handles the liveness endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cobbler API is running",
	})
}

// databaseStatus reports whether the database answers a ping
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Database not configured",
			"code":    "DATABASE_ERROR",
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Failed to get database instance",
			"code":    "DATABASE_ERROR",
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Database connection failed",
			"code":    "DATABASE_CONNECTION_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cobbler API is running",
		"data":    gin.H{"database": "connected"},
	})
}
