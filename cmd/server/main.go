package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	natsadapter "github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/adapter/messaging/nats"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/adapter/repository/cache"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/adapter/repository/mongodb"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/adapter/rest"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/adapter/storage/s3"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/config"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/media"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/listing/usecase"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/mailer"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/metrics"
	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/tracer"
)

func main() {
	cfg := config.MustLoad()

	appLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()

	if cfg.Otel.Enabled {
		tp, err := tracer.Init(ctx, "listing-service", cfg.Otel.Endpoint)
		if err != nil {
			appLogger.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				appLogger.Error("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		appLogger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDB.Database)
	appLogger.Info("MongoDB connected", zap.String("database", cfg.MongoDB.Database))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	natsPublisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		appLogger.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer natsPublisher.Close()

	storageClient, err := s3.NewS3Storage(s3.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize object storage", zap.Error(err))
	}

	metricsManager := metrics.NewManager("listing_service")
	go func() {
		if err := metrics.StartServer(cfg.MetricsPort, appLogger, metricsManager.Registry); err != nil && err != http.ErrServerClosed {
			appLogger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	listingRepo := mongodb.NewListingRepository(db)
	vendorRepo := mongodb.NewVendorRepository(db, appLogger)
	listingCache := cache.NewListingCache(redisClient)

	cleaner := media.NewCleaner(storageClient, appLogger, metricsManager, media.CleanerConfig{
		BatchSize:  cfg.Media.CleanupBatchSize,
		BatchDelay: cfg.Media.CleanupBatchDelay,
	})
	listingUc := usecase.NewListingUsecase(listingRepo, vendorRepo, cleaner, appLogger)

	var listingMailer mailer.Mailer
	if cfg.SMTP.Host != "" {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			SenderEmail: cfg.SMTP.SenderEmail,
		})
		if err != nil {
			appLogger.Warn("mailer disabled", zap.Error(err))
		} else {
			listingMailer = smtpMailer
		}
	}

	handler := rest.NewHandler(
		listingUc,
		vendorRepo,
		storageClient,
		listingCache,
		natsPublisher,
		listingMailer,
		metricsManager,
		appLogger,
		cfg.Env == "local",
	)
	router := rest.NewRouter(handler, cfg.JWTSecret, appLogger)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	go func() {
		appLogger.Info("HTTP server starting", zap.String("port", cfg.HTTPServer.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("server stopped")
}
