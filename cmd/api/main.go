package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/printshop/printshop-api/internal/bot"
	"github.com/printshop/printshop-api/internal/config"
	"github.com/printshop/printshop-api/internal/database"
	"github.com/printshop/printshop-api/internal/export"
	"github.com/printshop/printshop-api/internal/handler"
	"github.com/printshop/printshop-api/internal/middleware"
	"github.com/printshop/printshop-api/internal/repository"
	"github.com/printshop/printshop-api/internal/service"
	"github.com/printshop/printshop-api/internal/storage"
	"github.com/printshop/printshop-api/internal/worker"
)

// main is the application entrypoint: one process hosts the storefront HTTP
// API, the Telegram bot and the notification worker.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting printshop api")

	// 3. Connect database
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 4. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// 5. Initialize file stores
	exporter := export.NewExcelExporter(cfg.ExcelPath)
	photoStore := storage.NewPhotoStore(cfg.PhotosPath)

	// 6. Connect bot transport
	tg, err := bot.NewTelegram(cfg.BotToken, nil)
	if err != nil {
		log.Error().Err(err).Msg("bot connection failed")
		fmt.Fprintf(os.Stderr, "bot connection failed: %v\n", err)
		os.Exit(1)
	}

	// 7. Initialize services and the conversation engine
	notifier := worker.NewNotifyWorker(userRepo, tg)
	catalogSvc := service.NewCatalogService(productRepo, photoStore)
	orderSvc := service.NewOrderService(orderRepo, productRepo, exporter, notifier)
	engine := bot.NewEngine(userRepo, catalogSvc, orderSvc, exporter, tg, cfg.AdminPassword, cfg.WebAppURL)
	tg.SetEngine(engine)

	// 8. Initialize handlers
	productHandler := handler.NewProductHandler(catalogSvc)
	orderHandler := handler.NewOrderHandler(orderSvc, exporter)
	healthHandler := handler.NewHealthHandler(db)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.GetHealth)
		api.GET("/products", productHandler.GetProducts)
		api.POST("/orders/checkout", orderHandler.Checkout)
		api.GET("/orders/excel/latest", orderHandler.DownloadExcel)
	}

	// Storefront webapp assets
	router.StaticFile("/", filepath.Join(cfg.StaticPath, "index.html"))
	router.Static("/static", cfg.StaticPath)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start background loops
	go notifier.Start(ctx)
	go tg.Run(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop the bot and the notifier
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
