package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
)

// SetupRouter wires the transaction engine behind the HTTP surface.
func SetupRouter(db *gorm.DB, cache *redis.Client) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	// Engine wiring: satu runner, service di atasnya, collaborator default
	runner := database.NewTxRunner(db)
	sequences := services.NewSequenceService(runner)
	pricer := services.NewPricingService()
	allocator := services.NewPaymentAllocator()
	flags := services.NewFlagService(db)
	audit := services.NewAuditService(db)
	shifts := services.NewShiftService(runner, audit)
	orders := services.NewOrderService(
		runner,
		sequences,
		pricer,
		allocator,
		shifts,
		flags,
		services.NewStockLedgerService(),
		services.NewLoyaltyPointService(),
		kds.NewHubBroadcaster(),
		audit,
	)
	sync := services.NewSyncService(runner, orders, shifts, audit, cache)

	orderCtrl := controllers.NewOrderController(orders)
	shiftCtrl := controllers.NewShiftController(shifts)
	syncCtrl := controllers.NewSyncController(sync)
	tableCtrl := controllers.NewTableController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		// ORDERS
		api.POST("/orders", orderCtrl.CreateOrder)
		api.GET("/orders", orderCtrl.GetOrders)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.POST("/orders/:order_id/items", orderCtrl.AddItems)
		api.PATCH("/orders/:order_id/status", orderCtrl.UpdateStatus)
		api.POST("/orders/:order_id/payments", orderCtrl.AddPayment)

		// CASH SHIFTS
		api.POST("/shifts/open", shiftCtrl.OpenShift)
		api.POST("/shifts/close", shiftCtrl.CloseShift)

		// TABLES
		api.GET("/tables", tableCtrl.GetTables)
		api.POST("/tables", tableCtrl.CreateTable)

		// OFFLINE SYNC
		api.GET("/sync/pull", syncCtrl.Pull)
		api.POST("/sync/push", syncCtrl.Push)

		// KDS WebSocket
		api.GET("/kds/ws", controllers.KDSHandler)
	}

	return r
}
