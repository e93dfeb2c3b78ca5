// Package routes defines the API routing configuration.
// It wires repositories, services and handlers together and groups routes
// by authentication requirements.
package routes

import (
	"time"

	"kredo/internal/config"
	"kredo/internal/handlers"
	"kredo/internal/middleware"
	"kredo/internal/repositories"
	"kredo/internal/repositories/cache"
	"kredo/internal/services/auth"
	"kredo/internal/services/catalog"
	"kredo/internal/services/gift"
	"kredo/internal/services/payment"
	"kredo/internal/services/purchase"
	"kredo/internal/services/transfer"
	"kredo/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes. The database handle and
// cache service are injected here and passed down explicitly; no component
// reaches for ambient global state.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.Service) {
	// Repositories
	ledger := repositories.NewLedgerRepository(db)
	userRepo := repositories.NewUserRepository(db, cacheSvc)

	// Collaborators
	catalogSvc := catalog.NewClient(
		config.GetEnv("CATALOG_URL", "http://localhost:4000"),
		config.GetDurationEnv("CATALOG_TIMEOUT", 5*time.Second),
		cacheSvc,
	)
	checkoutProvider := payment.NewStripeProvider(
		config.GetEnv("STRIPE_SECRET_KEY", ""),
		config.GetEnv("STRIPE_CURRENCY", "usd"),
		config.GetEnv("STRIPE_SUCCESS_URL", "http://localhost:5173/topup/success"),
		config.GetEnv("STRIPE_CANCEL_URL", "http://localhost:5173/topup/cancel"),
	)

	// Services
	jwtSecret := config.GetEnv("JWT_SECRET", "kredo")
	signupCredit := config.GetDecimalEnv("SIGNUP_CREDIT", decimal.Zero)
	authService := auth.NewService(userRepo, jwtSecret, signupCredit)
	walletService := wallet.NewService(ledger)
	purchaseService := purchase.NewService(walletService, catalogSvc, ledger)
	giftService := gift.NewService(walletService, catalogSvc, userRepo, ledger)
	transferService := transfer.NewService(walletService, userRepo, ledger)
	paymentService := payment.NewService(ledger, checkoutProvider)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(walletService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	giftHandler := handlers.NewGiftHandler(giftService)
	transferHandler := handlers.NewTransferHandler(transferService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, config.GetEnv("STRIPE_WEBHOOK_SECRET", ""))

	authMiddleware := middleware.NewAuthMiddleware(jwtSecret)

	// Public routes
	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Processor webhook: authenticated by signature, not by identity.
	api.Post("/webhook/stripe", paymentHandler.StripeWebhook)

	// Authenticated routes
	authed := api.Group("/", authMiddleware.Handler)
	authed.Post("/logout", authHandler.Logout)
	authed.Get("/wallet", walletHandler.GetWallet)
	authed.Post("/purchase", purchaseHandler.Purchase)
	authed.Get("/orders", purchaseHandler.ListOrders)
	authed.Post("/gift", giftHandler.Gift)
	authed.Get("/gifts", giftHandler.ListGifts)
	authed.Post("/transfer", transferHandler.Transfer)
	authed.Get("/transfers", transferHandler.ListTransfers)
	authed.Post("/topup", paymentHandler.InitiateTopUp)
	authed.Post("/topup/reconcile", paymentHandler.ReconcilePending)
}
