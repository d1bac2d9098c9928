package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinelight-api/internal/config"
	"cinelight-api/internal/db"
	"cinelight-api/internal/handler"
	"cinelight-api/internal/logger"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/security"
	"cinelight-api/internal/server"
	"cinelight-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, cfg.DatabaseURL, "up"); err != nil {
			log.Error("failed to migrate database", "err", err)
			os.Exit(1)
		}
		log.Info("database migrated")
	}

	pg, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	categoryRepo := repository.CategoryRepository{DB: pg}
	equipmentRepo := repository.EquipmentRepository{DB: pg}
	bundleRepo := repository.BundleRepository{DB: pg}
	quotationRepo := repository.QuotationRepository{DB: pg}

	// services
	authSvc := service.AuthService{
		Users:  userRepo,
		Tokens: security.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn),
		Logger: log,
	}
	userSvc := service.UserService{Users: userRepo, Logger: log}
	categorySvc := service.CategoryService{Categories: categoryRepo, Logger: log}
	equipmentSvc := service.EquipmentService{Equipment: equipmentRepo, Categories: categoryRepo, Logger: log}
	bundleSvc := service.BundleService{Bundles: bundleRepo, Equipment: equipmentRepo, Logger: log}
	quotationSvc := service.QuotationService{Quotations: quotationRepo, Logger: log, Now: time.Now}

	// handlers
	errs := handler.Errors{Logger: log, HideInternal: cfg.IsProduction()}
	handlers := server.Handlers{
		Health:     handler.HealthHandler{DB: pg},
		Auth:       handler.AuthHandler{Service: authSvc, Errors: errs},
		Users:      handler.UserHandler{Service: userSvc, Errors: errs},
		Categories: handler.CategoryHandler{Service: categorySvc, Errors: errs},
		Equipment:  handler.EquipmentHandler{Service: equipmentSvc, Errors: errs},
		Bundles:    handler.BundleHandler{Service: bundleSvc, Errors: errs},
		Quotations: handler.QuotationHandler{Service: quotationSvc, Errors: errs},
	}

	router := server.NewRouter(cfg, log, authSvc, handlers)

	if err := server.Start(ctx, cfg, router, log); err != nil {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
}
