package app

import (
	"fishlink-backend/internal/auth"
	"fishlink-backend/internal/config"
	"fishlink-backend/internal/expiration"
	"fishlink-backend/internal/infrastructure/database"
	"fishlink-backend/internal/listings"
	"fishlink-backend/internal/middleware"
	"fishlink-backend/internal/models"
	"fishlink-backend/internal/notifications"
	"fishlink-backend/internal/orders"
	"fishlink-backend/internal/pricing"
	"fishlink-backend/internal/profiles"
	"fishlink-backend/internal/reviews"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with global middleware and all route
// registration. The returned DB and Redis clients are exposed for startup
// checks.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	sessionCfg := middleware.SessionConfig{
		Secret:       cfg.SessionSecret,
		RedisURL:     cfg.RedisURL,
		IsProduction: cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth (session cookie issued here; everything below requires it)
	authHandlers := &auth.Handlers{Service: &auth.Service{DB: db}, Redis: rdb, Cookie: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", middleware.RequireAuth(), authHandlers.Me)
	authGroup.Delete("/logout", middleware.RequireAuth(), authHandlers.Logout)

	// Profiles
	profileHandlers := &profiles.Handlers{Service: &profiles.Service{DB: db}}
	profileGroup := app.Group("/api/v1/profiles", middleware.RequireAuth())
	profileGroup.Get("/me", profileHandlers.GetMyProfile)
	profileGroup.Put("/me", profileHandlers.UpdateMyProfile)

	// Listings: browsing is open to both sides, mutations are farmer-only
	listingHandlers := &listings.Handlers{Service: &listings.Service{DB: db}}
	listingGroup := app.Group("/api/v1/listings", middleware.RequireAuth())
	listingGroup.Post("/create-listing", middleware.RequireRole(models.RoleFarmer), listingHandlers.CreateListing)
	listingGroup.Get("/get-all-active-listings", listingHandlers.GetAllActiveListings)
	listingGroup.Get("/get-my-listings", middleware.RequireRole(models.RoleFarmer), listingHandlers.GetMyListings)
	listingGroup.Get("/get-listing/:listing_id", listingHandlers.GetListingByID)
	listingGroup.Post("/deactivate-listing", middleware.RequireRole(models.RoleFarmer), listingHandlers.DeactivateListing)

	// Orders
	notifService := &notifications.Service{DB: db}
	orderService := &orders.Service{
		DB:            db,
		Pricing:       &pricing.Service{DB: db},
		Expiration:    &expiration.Service{DB: db, Notifications: notifService},
		Notifications: notifService,
	}
	orderHandlers := &orders.Handlers{Service: orderService, PaymentQRURL: cfg.PaymentQRURL}
	orderGroup := app.Group("/api/v1/orders", middleware.RequireAuth())
	orderGroup.Post("/create-order", middleware.RequireRole(models.RoleRestaurant), orderHandlers.CreateOrder)
	orderGroup.Get("/get-orders", orderHandlers.GetOrders)
	orderGroup.Get("/get-order/:order_id", orderHandlers.GetOrder)
	orderGroup.Post("/accept-order", middleware.RequireRole(models.RoleFarmer), orderHandlers.AcceptOrder)
	orderGroup.Post("/reject-order", middleware.RequireRole(models.RoleFarmer), orderHandlers.RejectOrder)
	orderGroup.Post("/start-preparing", middleware.RequireRole(models.RoleFarmer), orderHandlers.StartPreparing)
	orderGroup.Post("/start-delivering", middleware.RequireRole(models.RoleFarmer), orderHandlers.StartDelivering)
	orderGroup.Post("/complete-order", middleware.RequireRole(models.RoleRestaurant), orderHandlers.CompleteOrder)
	orderGroup.Post("/mark-paid", middleware.RequireRole(models.RoleRestaurant), orderHandlers.MarkPaid)

	// Reviews
	reviewHandlers := &reviews.Handlers{Service: &reviews.Service{DB: db, Notifications: notifService}}
	reviewGroup := app.Group("/api/v1/reviews", middleware.RequireAuth())
	reviewGroup.Post("/create-review", reviewHandlers.CreateReview)
	reviewGroup.Get("/get-order-reviews/:order_id", reviewHandlers.GetOrderReviews)

	// Notifications
	notifHandlers := &notifications.Handlers{Service: notifService}
	notifGroup := app.Group("/api/v1/notifications", middleware.RequireAuth())
	notifGroup.Get("/get-notifications", notifHandlers.GetNotifications)

	return app, db, rdb, nil
}
