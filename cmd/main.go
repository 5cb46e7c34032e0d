package main

import (
	"github.com/agrofount/backoffice/internal/geo"
	"github.com/agrofount/backoffice/internal/handler"
	"github.com/agrofount/backoffice/internal/middleware"
	"github.com/agrofount/backoffice/internal/model"
	"github.com/agrofount/backoffice/pkg/cache"
	"github.com/agrofount/backoffice/pkg/config"
	"github.com/agrofount/backoffice/pkg/database"
	"github.com/agrofount/backoffice/pkg/jwtutil"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/pkg/messaging"
	"github.com/agrofount/backoffice/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting back-office service...", cfg.LogFields()...)

	// Initialize JWT signing
	jwtutil.Initialize(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})

	// Initialize database and run migrations
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Role{},
		&model.Admin{},
		&model.Country{},
		&model.State{},
		&model.City{},
		&model.Product{},
		&model.ProductLocation{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.User{},
		&model.Cart{},
		&model.CreditFacilityRequest{},
		&model.Driver{},
		&model.Shipment{},
		&model.Post{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Redis is optional: rollups and reference lists recompute on a miss
	if err := cache.Init(&cfg.Redis); err != nil {
		log.Warn("Cache unavailable, rollups will recompute on every request", zap.Error(err))
	} else {
		log.Info("Cache connection established", zap.String("addr", cfg.Redis.Addr))
		defer cache.Close()
	}

	// The broker is optional too: price updates return 503 while it is down
	if err := messaging.Init(&cfg.Broker); err != nil {
		log.Warn("Message broker unavailable, event publishing disabled", zap.Error(err))
	} else {
		log.Info("Message broker connected", zap.String("exchange", cfg.Broker.Exchange))
		defer messaging.Close()
	}

	// Wire handler-level configuration
	handler.InitPlatform(cfg.Platform)
	handler.InitUpload(cfg.Upload)
	handler.InitRollupTTL(cfg.Redis.RollupTTL)
	handler.InitGeocoder(geo.New(&cfg.Geocoder))

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(middleware.MetricsMiddleware)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	e.POST("/auth/admin/login", handler.Login)
	e.POST("/admin/verify-email", handler.VerifyEmail)

	// Everything below requires an admin session
	api := e.Group("", middleware.AuthMiddleware)

	api.GET("/auth/profile", handler.Profile)

	admins := api.Group("/admin")
	admins.GET("", handler.ListAdmins)
	admins.POST("", handler.InviteAdmin)
	admins.GET("/:id", handler.GetAdmin)
	admins.PUT("/:id", handler.UpdateAdmin)
	admins.DELETE("/:id", handler.DeleteAdmin)

	roles := api.Group("/role")
	roles.GET("/permissions", handler.ListPermissions)
	roles.GET("", handler.ListRoles)
	roles.POST("", handler.CreateRole)
	roles.GET("/:id", handler.GetRole)
	roles.PUT("/:id", handler.UpdateRole)
	roles.DELETE("/:id", handler.DeleteRole)

	countries := api.Group("/country")
	countries.GET("/active", handler.ActiveCountries)
	countries.GET("", handler.ListCountries)
	countries.POST("", handler.CreateCountry)
	countries.PUT("/:id", handler.UpdateCountry)
	countries.DELETE("/:id", handler.DeleteCountry)

	states := api.Group("/state")
	states.GET("", handler.ListStates)
	states.POST("", handler.CreateState)
	states.PUT("/:id", handler.UpdateState)
	states.DELETE("/:id", handler.DeleteState)

	cities := api.Group("/city")
	cities.GET("", handler.ListCities)
	cities.POST("", handler.CreateCity)
	cities.PUT("/:id", handler.UpdateCity)
	cities.DELETE("/:id", handler.DeleteCity)

	products := api.Group("/product")
	products.GET("", handler.ListProducts)
	products.POST("", handler.CreateProduct)
	products.GET("/:id", handler.GetProduct)
	products.PUT("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)

	listings := api.Group("/product-location")
	listings.GET("", handler.ListProductLocations)
	listings.POST("", handler.CreateProductLocation)
	listings.GET("/:slug", handler.GetProductLocation)
	listings.PUT("/:slug", handler.UpdateProductLocation)
	listings.DELETE("/:slug", handler.DeleteProductLocation)
	listings.POST("/:slug/publish", handler.PublishProductLocation)
	listings.POST("/:slug/unpublish", handler.UnpublishProductLocation)
	listings.POST("/:slug/out-of-stock", handler.MarkOutOfStock)
	listings.POST("/:slug/restock", handler.MarkAvailable)
	listings.PUT("/:slug/seo", handler.UpdateSEO)

	orders := api.Group("/order")
	// Static route first so "monthly-target" never binds as an :id
	orders.GET("/monthly-target", handler.MonthlyTarget)
	orders.GET("", handler.ListOrders)
	orders.GET("/:id", handler.GetOrder)
	orders.POST("/:id/cancel", handler.CancelOrder)
	orders.POST("/:id/items", handler.AddOrderItem)
	orders.PUT("/:id/items/:itemId", handler.UpdateOrderItem)
	orders.DELETE("/:id/items/:itemId", handler.DeleteOrderItem)

	payments := api.Group("/payment")
	payments.GET("", handler.ListPayments)
	payments.GET("/:id", handler.GetPayment)
	payments.POST("/:id/confirm-transfer-received", handler.ConfirmTransferReceived)
	payments.POST("/:id/cancel", handler.CancelPayment)

	users := api.Group("/user")
	users.GET("", handler.ListUsers)
	users.GET("/:id", handler.GetUser)
	users.POST("/:id/activate", handler.ActivateUser)
	users.POST("/:id/deactivate", handler.DeactivateUser)

	api.GET("/cart", handler.ListCarts)

	credits := api.Group("/credit-facility")
	credits.GET("", handler.ListCreditRequests)
	credits.GET("/:id", handler.GetCreditRequest)
	credits.POST("/:id/handle-approval", handler.HandleApproval)

	posts := api.Group("/posts")
	posts.GET("", handler.ListPosts)
	posts.POST("", handler.CreatePost)
	posts.GET("/:slug", handler.GetPost)
	posts.PUT("/:slug", handler.UpdatePost)
	posts.DELETE("/:slug", handler.DeletePost)

	drivers := api.Group("/supply-chain/drivers")
	drivers.GET("", handler.ListDrivers)
	drivers.POST("", handler.CreateDriver)
	drivers.PUT("/:id", handler.UpdateDriver)
	drivers.DELETE("/:id", handler.DeleteDriver)

	shipments := api.Group("/supply-chain/shipments")
	shipments.GET("", handler.ListShipments)
	shipments.POST("", handler.CreateShipment)
	shipments.GET("/:id", handler.GetShipment)
	shipments.POST("/:id/status", handler.UpdateShipmentStatus)

	uploads := api.Group("/upload")
	uploads.POST("", handler.UploadFile)
	uploads.GET("/progress/:session", handler.UploadProgress)

	api.POST("/message/price-updates/send", handler.SendPriceUpdates)

	api.GET("/dashboard/summary", handler.DashboardSummary)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
