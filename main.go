package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/HSouheill/storefront_backend/config"
	"github.com/HSouheill/storefront_backend/controllers"
	"github.com/HSouheill/storefront_backend/middleware"
	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/HSouheill/storefront_backend/routes"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/HSouheill/storefront_backend/utils"
	"github.com/HSouheill/storefront_backend/views"
	"github.com/HSouheill/storefront_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := config.ConnectDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	redisClient, err := config.ConnectRedis(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	secret := cfg.SessionSecret
	if secret == "" {
		if !cfg.IsDevelopment() {
			logger.Fatal("SESSION_SECRET must be set outside development")
		}
		// sessions will not survive a restart
		secret = uuid.NewString()
		logger.Warn("SESSION_SECRET not set, using a random secret")
	}
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not set, admin login is disabled")
	}

	// Repositories
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	pageRepo := repositories.NewPageRepository(db)
	announcementRepo := repositories.NewAnnouncementRepository(db)
	newsletterRepo := repositories.NewNewsletterRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	sessionRepo := repositories.NewSessionRepository(redisClient)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// Services
	categoryService := services.NewCategoryService(categoryRepo)
	productService := services.NewProductService(productRepo, categoryService)
	newsletterService := services.NewNewsletterService(newsletterRepo)
	announcementService := services.NewAnnouncementService(announcementRepo)
	brandService := services.NewBrandService(brandRepo, productRepo)
	seoService := services.NewSeoService(pageRepo)

	orderOpts := []services.OrderServiceOption{
		services.WithNotifier(hub),
		services.WithSubscriber(newsletterService),
	}
	if mailer := services.NewSMTPMailer(cfg); mailer != nil {
		orderOpts = append(orderOpts, services.WithMailer(mailer))
	} else {
		logger.Warn("SMTP not configured, order confirmation mails are disabled")
	}
	orderService := services.NewOrderService(orderRepo, productRepo,
		services.NewPricingPolicy(cfg.DeliveryFee, cfg.FreeDeliveryThreshold), logger, orderOpts...)

	authService := services.NewAuthService(sessionRepo, secret, map[models.Realm]services.Credentials{
		models.RealmAdmin: {Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		models.RealmSeo:   {Username: cfg.SeoAdminUsername, Password: cfg.SeoAdminPassword},
	})

	if err := seoService.EnsureDefaultPages(ctx); err != nil {
		logger.Warn("failed to seed default pages", zap.Error(err))
	}

	images := utils.NewImageStore(cfg.UploadDir)
	if err := images.InitializeStorage("products", "brands", "carousel"); err != nil {
		logger.Fatal("failed to create upload directories", zap.Error(err))
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Renderer = renderer

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.CORS(cfg.BaseURL))
	e.Use(middleware.SecurityHeaders(middleware.SecurityConfig{
		HSTS:          !cfg.IsDevelopment(),
		AllowInlineJS: true,
	}))
	e.Use(rateLimiter.RateLimit())

	e.Static("/static", "public")

	shop := controllers.NewShopController(productService, categoryService, brandService, announcementService, seoService,
		controllers.ShopSettings{
			SiteName:              cfg.SiteName,
			BaseURL:               cfg.BaseURL,
			DeliveryFee:           cfg.DeliveryFee,
			FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		}, logger)

	routes.SetupRoutes(e, routes.Controllers{
		Auth:          controllers.NewAuthController(authService, shop, !cfg.IsDevelopment(), logger),
		Categories:    controllers.NewCategoryController(categoryService, logger),
		Products:      controllers.NewProductController(productService, categoryService, images, logger),
		Shop:          shop,
		Orders:        controllers.NewOrderController(orderService, hub, shop, cfg.BaseURL, logger),
		Seo:           controllers.NewSeoController(seoService, logger),
		Announcements: controllers.NewAnnouncementController(announcementService, logger),
		Newsletters:   controllers.NewNewsletterController(newsletterService, logger),
		Brands:        controllers.NewBrandController(brandService, images, logger),
		Homepage:      controllers.NewHomepageController(productService, images, logger),
	}, authService, cfg.UploadDir, logger)

	go func() {
		logger.Info("storefront listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
