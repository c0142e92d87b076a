package routes

import (
	"net/http"
	"time"

	"hotel-reservation/controllers"
	"hotel-reservation/middleware"
	"hotel-reservation/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Controllers struct {
	Rooms        *controllers.RoomController
	Reservations *controllers.ReservationController
	Discounts    *controllers.DiscountController
	Catalog      *controllers.CatalogController
	System       *controllers.SystemController
}

func SetupRouter(ctl Controllers, corsOrigins []string, logger *zap.SugaredLogger) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger))

	allowCredentials := true
	for _, origin := range corsOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With",
			middleware.ActorHeader, middleware.RoleHeader, middleware.ClientIDHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	need := middleware.RequireCapability

	api := r.Group("/api", middleware.Actor())
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", ctl.Rooms.GetRooms)
			// static paths before /:id
			rooms.GET("/available", ctl.Rooms.Available)
			rooms.GET("/stats", need(services.CapManageRooms), ctl.Rooms.Stats)
			rooms.GET("/:id", ctl.Rooms.GetRoom)
			rooms.GET("/:id/quote", ctl.Rooms.Quote)
			rooms.POST("", need(services.CapManageRooms), ctl.Rooms.CreateRoom)
			rooms.PUT("/:id", need(services.CapManageRooms), ctl.Rooms.UpdateRoom)
			rooms.DELETE("/:id", need(services.CapManageRooms), ctl.Rooms.DeleteRoom)
			rooms.PATCH("/:id/maintenance", need(services.CapManageRooms), ctl.Rooms.SetMaintenance)
			rooms.POST("/:id/recompute", need(services.CapManageRooms), ctl.Rooms.Recompute)
		}

		res := api.Group("/reservations")
		{
			res.POST("", need(services.CapReserve), ctl.Reservations.Create)
			res.GET("", need(services.CapViewAll), ctl.Reservations.List)
			res.GET("/mine", ctl.Reservations.Mine)
			res.GET("/stats", need(services.CapViewAll), ctl.Reservations.Stats)
			res.GET("/:id", ctl.Reservations.Get)
			res.PUT("/:id/services", ctl.Reservations.AttachServices)
			res.POST("/:id/discount", ctl.Reservations.ApplyDiscount)
			res.DELETE("/:id/discount", ctl.Reservations.RemoveDiscount)
			res.POST("/:id/pay", need(services.CapPay), ctl.Reservations.Pay)
			res.POST("/:id/cancel", ctl.Reservations.Cancel)
			res.POST("/:id/checkin", need(services.CapManageStay), ctl.Reservations.CheckIn())
			res.POST("/:id/checkout", need(services.CapManageStay), ctl.Reservations.CheckOut())
			res.POST("/:id/finalize", need(services.CapManageStay), ctl.Reservations.Finalize())
			res.POST("/:id/archive", need(services.CapArchive), ctl.Reservations.Archive())
			res.DELETE("/:id", need(services.CapDelete), ctl.Reservations.Delete)
		}

		discounts := api.Group("/discounts", need(services.CapManageDiscounts))
		{
			discounts.GET("", ctl.Discounts.List)
			discounts.POST("", ctl.Discounts.Create)
			discounts.DELETE("/:code", ctl.Discounts.Deactivate)
		}

		catalog := api.Group("/services")
		{
			catalog.GET("", ctl.Catalog.List)
			catalog.POST("", need(services.CapManageCatalog), ctl.Catalog.Create)
			catalog.PATCH("/:id", need(services.CapManageCatalog), ctl.Catalog.SetActive)
		}

		api.GET("/audit", need(services.CapViewAudit), ctl.System.Audit)
		api.GET("/notifications", need(services.CapViewAudit), ctl.System.Notifications)
		api.POST("/sync", need(services.CapRunSync), ctl.System.RunSync)
	}

	return r
}
