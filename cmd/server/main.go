package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mytheresa/go-storefront/app"
	"github.com/mytheresa/go-storefront/cart"
	"github.com/mytheresa/go-storefront/config"
	"github.com/mytheresa/go-storefront/models"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		panic(err)
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Option{},
		&models.Variant{},
		&models.StorageEntry{},
		&models.Subscriber{},
	); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	carts := cart.NewRegistry(models.NewStorageRepository(db), cfg.CartCacheSize,
		cart.WithMaxLineQuantity(cfg.MaxLineQuantity),
		cart.WithLogger(logger.Named("cart")))

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := app.NewRouter(app.Dependencies{
		Products:     models.NewProductsRepository(db),
		Categories:   models.NewCategoriesRepository(db),
		Carts:        carts,
		Subscribers:  models.NewSubscribersRepository(db),
		Settings:     cfg.Settings(),
		AllowOrigins: cfg.CORSAllowOrigins,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("storefront server started", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("storefront server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return cfg.Build()
}
