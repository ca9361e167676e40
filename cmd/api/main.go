package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"examplehub_backend/internal/controller"
	"examplehub_backend/internal/entitlement"
	"examplehub_backend/internal/middleware"
	"examplehub_backend/internal/model"
	"examplehub_backend/internal/repository"
	"examplehub_backend/pkg/config"
	"examplehub_backend/pkg/cron"
	"examplehub_backend/pkg/database"
	"examplehub_backend/pkg/email"
	"examplehub_backend/pkg/logging"
	"examplehub_backend/pkg/seed"
	"examplehub_backend/pkg/utils/jwt"
	"examplehub_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App, cfg *config.Config, limits fiber.Storage) {
	api := app.Group("/api")

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimiter("signup", 10, time.Hour, limits), controller.Signup)
	auth.Post("/signin", middleware.RateLimiter("signin", 20, 15*time.Minute, limits), controller.Signin)
	auth.Post("/signout", controller.Signout)
	auth.Get("/session", middleware.OptionalAuth(), controller.Session)

	// Catalog
	api.Get("/plans", controller.ListPlans)
	api.Get("/categories", controller.ListCategories)
	api.Get("/examples", controller.ListExamples)
	api.Get("/examples/:slug", controller.GetExample)
	api.Get("/examples/:slug/comments", controller.ListComments)

	// Gated actions. OptionalAuth lets the handlers answer anonymous callers
	// with the action-specific sign-in message.
	gated := middleware.RateLimiter("gated", 60, time.Minute, limits)
	api.Post("/examples/:slug/download", middleware.OptionalAuth(), gated, controller.DownloadExample)
	api.Post("/examples/:slug/comments", middleware.OptionalAuth(), gated, controller.PostComment)
	api.Get("/favorites/:exampleId", middleware.OptionalAuth(), controller.GetFavoriteStatus)
	api.Post("/favorites/:exampleId", middleware.OptionalAuth(), gated, controller.AddFavorite)

	api.Get("/favorites", middleware.AuthMiddleware(), controller.ListFavorites)
	api.Delete("/favorites/:exampleId", middleware.AuthMiddleware(), controller.RemoveFavorite)

	api.Delete("/comments/:id", middleware.AuthMiddleware(), middleware.CheckCommentOwnership(), controller.DeleteComment)

	// Account
	me := api.Group("/me", middleware.AuthMiddleware())
	me.Get("/", controller.GetProfile)
	me.Put("/", controller.UpdateProfile)
	me.Put("/password", controller.ChangePassword)
	me.Get("/usage", controller.GetUsage)

	// Newsletter
	api.Post("/subscriptions", middleware.RateLimiter("newsletter", 5, time.Hour, limits), controller.SubscribeNewsletter)

	// Payments
	payments := api.Group("/payments")
	payments.Post("/create-checkout", middleware.AuthMiddleware(), controller.CreateCheckout)
	payments.Post("/webhook", controller.HandleStripeWebhook)

	// Admin
	admin := api.Group("/admin", middleware.AdminAPIKey(cfg.Admin.APIKey))
	admin.Get("/stats", controller.GetAdminStats)
	admin.Get("/subscribers", controller.ListSubscribers)
	admin.Get("/examples", controller.AdminListExamples)
	admin.Post("/examples", controller.AdminCreateExample)
	admin.Delete("/examples/:id", controller.AdminDeleteExample)
	admin.Post("/examples/:id/cover", controller.UploadExampleCover)
	admin.Get("/categories", controller.AdminListCategories)
	admin.Post("/categories", controller.AdminCreateCategory)
	admin.Get("/activity", controller.GetRecentActivity)
}

func main() {
	cfg := config.Load()

	flush, err := logging.Init(cfg.Log, cfg.Server.Environment)
	if err != nil {
		logrus.WithError(err).Fatal("Could not initialize logging")
	}
	defer flush()

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	if err := database.InitDB(cfg.Database); err != nil {
		logrus.WithError(err).Fatal("Could not connect to database")
	}
	defer database.Close()

	if err := database.MigrateDatabase(model.AllModels()...); err != nil {
		logrus.WithError(err).Warn("Migration warning")
	}
	if err := seed.Seed(database.DB); err != nil {
		logrus.WithError(err).Warn("Seeding failed")
	}

	jwt.Init(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	deps := controller.Deps{
		DB:     database.DB,
		Config: cfg,
	}

	if cfg.Email.ResendAPIKey != "" {
		if err := email.InitEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Server.SiteURL); err != nil {
			logrus.WithError(err).Fatal("Could not initialize email service")
		}
		deps.Mailer = email.GlobalEmailService
		logrus.Info("Email service initialized")
	} else {
		logrus.Warn("RESEND_API_KEY not set, emails are disabled")
	}

	if cfg.Storage.Enabled() {
		r2, err := storage.NewR2(context.Background(), cfg.Storage)
		if err != nil {
			logrus.WithError(err).Fatal("Could not initialize R2 storage")
		}
		deps.Storage = r2
		logrus.Info("R2 storage initialized")
	} else {
		logrus.Warn("R2 storage not configured, downloads fall back to image URLs")
	}

	store := repository.NewStore(database.DB)
	deps.Gate = entitlement.NewService(store, entitlement.SystemClock, logrus.StandardLogger())
	controller.Init(deps)

	scheduler := cron.NewScheduler()
	if err := cron.InitUsageResetCron(scheduler, store, entitlement.SystemClock.Now); err != nil {
		logrus.WithError(err).Fatal("Could not schedule usage reset")
	}
	if err := cron.InitDailyDigestCron(scheduler, database.DB, email.GlobalEmailService, cfg.Email.AdminEmail); err != nil {
		logrus.WithError(err).Fatal("Could not schedule daily digest")
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				logging.LogError("unhandled_error", err, map[string]interface{}{
					"path":   c.Path(),
					"method": c.Method(),
				})
				return c.Status(code).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.SiteURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key, Stripe-Signature",
		AllowCredentials: true,
	}))

	setupRoutes(app, cfg, middleware.NewRateLimitStorage(cfg.Redis))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	logrus.Infof("Server is running on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logrus.WithError(err).Error("Server stopped")
	}
}
