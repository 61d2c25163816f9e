package routes

import (
	"topcoop-lending/internal/adapters/http/handlers"
	"topcoop-lending/internal/adapters/http/middleware"
	"topcoop-lending/internal/adapters/persistence/repositories"
	"topcoop-lending/internal/config"
	"topcoop-lending/internal/core/authz"
	"topcoop-lending/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	requestService := services.NewRequestService(userRepo, requestRepo, loanRepo, uow)
	loanService := services.NewLoanService(userRepo, requestRepo, loanRepo, uow)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	requestHandler := handlers.NewRequestHandler(requestService)
	loanHandler := handlers.NewLoanHandler(loanService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, stricter rate limit)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupUserRoutes(userRoutes, userHandler)

	// Loan request routes
	requestRoutes := apiV1.Group("/requests")
	requestRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupRequestRoutes(requestRoutes, requestHandler)

	// Loan routes
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	setupLoanRoutes(loanRoutes, loanHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes. Every route carries an
// authorization middleware that resolves the target user and checks the
// permission table; the single-user routes take the addressed account as
// the target.
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/",
		middleware.AuthorizeList(authz.ResourceUser, middleware.TargetFromQuery),
		handler.ListUsers)
	router.Get("/:id",
		middleware.Authorize(authz.ResourceUser, authz.ActionRead, middleware.TargetFromParam),
		handler.GetUser)
	router.Put("/:id",
		middleware.Authorize(authz.ResourceUser, authz.ActionEdit, middleware.TargetFromParam),
		handler.UpdateUser)
	router.Delete("/:id",
		middleware.Authorize(authz.ResourceUser, authz.ActionDelete, middleware.TargetFromParam),
		handler.DeleteUser)
}

// setupRequestRoutes configures loan request routes. All routes take an
// optional user_id query target; without one the operation covers the
// caller's own requests, and ownership is checked against the fetched
// request. Approve and decline are role-only checks.
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler) {
	router.Get("/",
		middleware.AuthorizeList(authz.ResourceRequest, middleware.TargetFromQuery),
		handler.ListRequests)
	router.Post("/",
		middleware.Authorize(authz.ResourceRequest, authz.ActionCreate, middleware.TargetFromQuery),
		handler.CreateRequest)
	router.Get("/:id",
		middleware.Authorize(authz.ResourceRequest, authz.ActionRead, middleware.TargetFromQuery),
		handler.GetRequest)
	router.Put("/:id",
		middleware.Authorize(authz.ResourceRequest, authz.ActionEdit, middleware.TargetFromQuery),
		handler.UpdateRequest)
	router.Delete("/:id",
		middleware.Authorize(authz.ResourceRequest, authz.ActionDelete, middleware.TargetFromQuery),
		handler.DeleteRequest)
	router.Put("/:id/approve",
		middleware.AuthorizeAction(authz.ResourceRequest, authz.ActionApprove),
		handler.ApproveRequest)
	router.Put("/:id/decline",
		middleware.AuthorizeAction(authz.ResourceRequest, authz.ActionDecline),
		handler.DeclineRequest)
}

// setupLoanRoutes configures loan routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Get("/",
		middleware.AuthorizeList(authz.ResourceLoan, middleware.TargetFromQuery),
		handler.ListLoans)
	router.Get("/:id",
		middleware.Authorize(authz.ResourceLoan, authz.ActionRead, middleware.TargetFromQuery),
		handler.GetLoan)
	router.Put("/:id",
		middleware.Authorize(authz.ResourceLoan, authz.ActionEdit, middleware.TargetFromQuery),
		handler.UpdateLoan)
	router.Delete("/:id",
		middleware.Authorize(authz.ResourceLoan, authz.ActionDelete, middleware.TargetFromQuery),
		handler.DeleteLoan)
	router.Put("/:id/pay",
		middleware.AuthorizeAction(authz.ResourceLoan, authz.ActionPay),
		handler.PayLoan)
}
