package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cobbler-api/config"
	"github.com/kendall-kelly/cobbler-api/controllers"
	"github.com/kendall-kelly/cobbler-api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter wires every route; everything under /api except the health
// check needs the shared token
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), middleware.Recovery(), middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/health", databaseStatus)

	protected := api.Group("", middleware.RequireToken(cfg.APIToken))
	{
		enquiries := protected.Group("/enquiries")
		enquiries.GET("", controllers.ListEnquiries)
		enquiries.POST("", controllers.CreateEnquiry)
		enquiries.GET("/:id", controllers.GetEnquiry)
		enquiries.PUT("/:id", controllers.UpdateEnquiry)
		enquiries.DELETE("/:id", controllers.DeleteEnquiry)
		enquiries.PATCH("/:id/contact", controllers.MarkEnquiryContacted)
		enquiries.PATCH("/:id/convert", controllers.ConvertEnquiry)
		enquiries.PATCH("/:id/stage", controllers.UpdateEnquiryStage)
		enquiries.GET("/:id/photos", controllers.ListEnquiryPhotos)

		pickup := protected.Group("/pickup")
		pickup.GET("", controllers.ListPickups)
		pickup.GET("/:enquiryId", controllers.GetPickup)
		pickup.PATCH("/:enquiryId/schedule", controllers.SchedulePickup)
		pickup.PATCH("/:enquiryId/assign", controllers.AssignPickup)
		pickup.PATCH("/:enquiryId/collect", controllers.CollectPickup)
		pickup.PATCH("/:enquiryId/receive", controllers.ReceivePickup)

		service := protected.Group("/service")
		service.GET("", controllers.ListServices)
		service.GET("/:enquiryId", controllers.GetService)
		service.POST("/:enquiryId/services", controllers.AssignServices)
		service.PATCH("/:enquiryId/services/:serviceId/start", controllers.StartService)
		service.PATCH("/:enquiryId/services/:serviceId/complete", controllers.CompleteService)
		service.PATCH("/:enquiryId/overall-before", controllers.SaveOverallBeforePhoto)
		service.PATCH("/:enquiryId/overall-after", controllers.SaveOverallAfterPhoto)
		service.PATCH("/:enquiryId/complete", controllers.CompleteServiceWorkflow)

		billing := protected.Group("/billing")
		billing.POST("/calculate", controllers.CalculateBilling)
		billing.GET("", controllers.ListBillings)
		billing.GET("/:enquiryId", controllers.GetBilling)
		billing.POST("/:enquiryId", controllers.CreateBilling)
		billing.PUT("/:enquiryId", controllers.UpdateBilling)
		billing.GET("/:enquiryId/invoice", controllers.DownloadInvoice)
		billing.PATCH("/:enquiryId/deliver", controllers.MoveToDelivery)

		delivery := protected.Group("/delivery")
		delivery.GET("", controllers.ListDeliveries)
		delivery.GET("/:enquiryId", controllers.GetDelivery)
		delivery.PATCH("/:enquiryId/schedule", controllers.ScheduleDelivery)
		delivery.PATCH("/:enquiryId/dispatch", controllers.DispatchDelivery)
		delivery.PATCH("/:enquiryId/complete", controllers.CompleteDelivery)

		protected.GET("/photos/:id", controllers.GetPhoto)

		inventory := protected.Group("/inventory")
		inventory.GET("", controllers.ListInventoryItems)
		inventory.POST("", controllers.CreateInventoryItem)
		inventory.GET("/:id", controllers.GetInventoryItem)
		inventory.PUT("/:id", controllers.UpdateInventoryItem)
		inventory.DELETE("/:id", controllers.DeleteInventoryItem)
		inventory.PATCH("/:id/adjust", controllers.AdjustInventoryItem)
		inventory.GET("/:id/movements", controllers.ListInventoryMovements)

		expenses := protected.Group("/expenses")
		expenses.GET("", controllers.ListExpenses)
		expenses.POST("", controllers.CreateExpense)
		expenses.GET("/:id", controllers.GetExpense)
		expenses.PUT("/:id", controllers.UpdateExpense)
		expenses.DELETE("/:id", controllers.DeleteExpense)

		dashboard := protected.Group("/dashboard")
		dashboard.GET("/stats", controllers.GetDashboardStats)
		dashboard.GET("/expenses", controllers.GetExpenseSummary)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Token"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
