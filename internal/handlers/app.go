package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/billsplit/backend/internal/config"
	"github.com/billsplit/backend/internal/metrics"
	"github.com/billsplit/backend/internal/middleware"
	"github.com/billsplit/backend/internal/services"
	"github.com/billsplit/backend/internal/storage/gormstore"
)

// NewApp builds the Fiber application with every route mounted. limiter
// guards the unauthenticated auth endpoints.
func NewApp(cfg *config.Config, db *gorm.DB, limiter *middleware.RateLimiter) (*fiber.App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed getting sql.DB from gorm: %w", err)
	}

	store := gormstore.New(db)
	debug := cfg.App.Debug

	authService := services.NewAuthService(store)
	groupService := services.NewGroupService(store)
	billService := services.NewBillService(store)
	balanceService := services.NewBalanceService(store)

	authHandler := NewAuthHandler(authService, debug)
	groupsHandler := NewGroupsHandler(groupService, debug)
	billsHandler := NewBillsHandler(billService, debug)
	balanceHandler := NewBalanceHandler(balanceService, debug)
	healthHandler := NewHealthHandler(cfg.App, cfg.DB.Driver, sqlDB)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: ErrorHandler(debug),
	})
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())
	app.Use(recover.New(recover.Config{EnableStackTrace: debug}))
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api/v1")
	api.Get("/health", healthHandler.Check)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", limiter.Handler(), authHandler.Register)
	authRoutes.Post("/login", limiter.Handler(), authHandler.Login)
	authRoutes.Post("/logout", authMiddleware.RequireAuth, authHandler.Logout)
	authRoutes.Post("/refresh", limiter.Handler(), authMiddleware.RequireRefresh, authHandler.Refresh)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	groupRoutes := api.Group("/groups", authMiddleware.RequireAuth)
	groupRoutes.Post("/", groupsHandler.Create)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Get("/my", groupsHandler.ListMine)
	groupRoutes.Get("/:id", groupsHandler.Get)
	groupRoutes.Put("/:id", groupsHandler.Update)
	groupRoutes.Delete("/:id", groupsHandler.Delete)

	groupRoutes.Post("/:id/members", groupsHandler.AddMember)
	groupRoutes.Get("/:id/members", groupsHandler.Members)
	groupRoutes.Delete("/:id/members/:memberId", groupsHandler.RemoveMember)

	groupRoutes.Post("/:id/bills", billsHandler.Create)
	groupRoutes.Get("/:id/bills", billsHandler.List)
	groupRoutes.Get("/:id/bills/:billId", billsHandler.Get)
	groupRoutes.Put("/:id/bills/:billId", billsHandler.Update)
	groupRoutes.Delete("/:id/bills/:billId", billsHandler.Delete)

	groupRoutes.Get("/:id/balance", balanceHandler.Group)
	groupRoutes.Get("/:id/my-balance", balanceHandler.Mine)

	return app, nil
}
