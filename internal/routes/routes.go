package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/halalexpress/internal/config"
	"github.com/example/halalexpress/internal/handlers"
	"github.com/example/halalexpress/internal/middleware"
	"github.com/example/halalexpress/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	orderService := services.NewOrderService(db, cfg)
	provider := services.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	paymentService := services.NewPaymentService(db, cfg, provider)

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	addressHandler := handlers.NewAddressHandler(db)
	orderHandler := handlers.NewOrderHandler(db, orderService)
	deliveryHandler := handlers.NewDeliveryHandler(db, cfg)
	paymentHandler := handlers.NewPaymentHandler(db, cfg, paymentService)
	notificationHandler := handlers.NewNotificationHandler(db)
	adminHandler := handlers.NewAdminHandler(db, orderService)

	api := app.Group("/api")

	requireAuth := middleware.AuthMiddleware(cfg)
	requireAdmin := middleware.AdminMiddleware()

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", requireAuth, authHandler.Me)

	// Catalog routes
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", requireAuth, requireAdmin, catalogHandler.CreateCategory)
	categories.Put("/:id", requireAuth, requireAdmin, catalogHandler.UpdateCategory)
	categories.Delete("/:id", requireAuth, requireAdmin, catalogHandler.DeleteCategory)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", requireAuth, requireAdmin, productHandler.CreateProduct)
	products.Put("/:id", requireAuth, requireAdmin, productHandler.UpdateProduct)
	products.Delete("/:id", requireAuth, requireAdmin, productHandler.DeleteProduct)

	// Delivery routes. Zones and quotes are public so clients can price
	// a basket before login.
	delivery := api.Group("/delivery")
	delivery.Get("/zones", deliveryHandler.ListZones)
	delivery.Post("/quote", deliveryHandler.Quote)
	delivery.Get("/zones/admin", requireAuth, requireAdmin, deliveryHandler.ListZonesAdmin)
	delivery.Post("/zones", requireAuth, requireAdmin, deliveryHandler.CreateZone)
	delivery.Put("/zones/:id", requireAuth, requireAdmin, deliveryHandler.UpdateZone)
	delivery.Delete("/zones/:id", requireAuth, requireAdmin, deliveryHandler.DeleteZone)
	delivery.Get("/couriers", requireAuth, requireAdmin, deliveryHandler.ListCouriers)
	delivery.Post("/couriers", requireAuth, requireAdmin, deliveryHandler.CreateCourier)
	delivery.Put("/couriers/:id", requireAuth, requireAdmin, deliveryHandler.UpdateCourier)
	delivery.Post("/couriers/:id/location", requireAuth, requireAdmin, deliveryHandler.UpdateCourierLocation)

	// The webhook verifies its own signature and must stay outside auth.
	payments := api.Group("/payments")
	payments.Post("/webhook", paymentHandler.Webhook)
	payments.Get("/config", paymentHandler.Config)
	payments.Post("/intent", requireAuth, paymentHandler.CreateIntent)
	payments.Post("/confirm", requireAuth, paymentHandler.Confirm)
	payments.Post("/cod/confirm", requireAuth, paymentHandler.ConfirmCOD)
	payments.Get("/my", requireAuth, paymentHandler.MyPayments)
	payments.Get("/admin", requireAuth, requireAdmin, paymentHandler.AdminListPayments)
	payments.Post("/:id/refund", requireAuth, requireAdmin, paymentHandler.Refund)
	payments.Put("/:id/status", requireAuth, requireAdmin, paymentHandler.SetStatus)

	// Protected routes
	protected := api.Group("", requireAuth)

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Put("/", cartHandler.ReplaceCart)
	cart.Delete("/", cartHandler.ClearCart)

	addresses := protected.Group("/addresses")
	addresses.Get("/", addressHandler.ListAddresses)
	addresses.Post("/", addressHandler.CreateAddress)
	addresses.Put("/:id", addressHandler.UpdateAddress)
	addresses.Post("/:id/default", addressHandler.SetDefaultAddress)
	addresses.Delete("/:id", addressHandler.DeleteAddress)

	orders := protected.Group("/orders")
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Get("/:id/invoice.pdf", orderHandler.GetInvoicePDF)

	notifications := protected.Group("/notifications")
	notifications.Get("/device-tokens/my", notificationHandler.MyTokens)
	notifications.Post("/device-tokens/register", notificationHandler.RegisterToken)
	notifications.Post("/device-tokens/deactivate", notificationHandler.DeactivateToken)

	// Admin routes
	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.Get("/me", adminHandler.Me)
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Put("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/invoices", adminHandler.ListInvoices)
	admin.Get("/device-tokens", notificationHandler.AdminListTokens)
}
