package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/auth"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	AuthUC     *auth.UseCase
	Sync       *kyc.SyncController
	CustomerUC *kyc.CustomerUseCase
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login is public)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Protected routes (require the active session token)
	protected := api.Group("/", AuthMiddleware(deps.AuthUC))
	protected.Post("/auth/logout", authHandler.Logout)

	// Dashboard view (protected)
	dashboardHandler := NewDashboardHandler(deps.Sync)
	protected.Get("/dashboard", dashboardHandler.Get)

	// Customers (protected)
	customerHandler := NewCustomerHandler(deps.Sync, deps.CustomerUC)
	exportHandler := NewExportHandler(deps.Sync)
	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.List)
	customers.Get("/export", exportHandler.Master)
	customers.Get("/export/daily", exportHandler.Daily)
	customers.Post("/import", customerHandler.Import)
	customers.Put("/:id", customerHandler.Edit)
	customers.Delete("/:id", customerHandler.Delete)
	customers.Post("/:id/documents/:field", customerHandler.Attach)
}
