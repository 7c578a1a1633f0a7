package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/SashaDiz/real-estate-directory/internal/adapter/httpapi"
	natsadapter "github.com/SashaDiz/real-estate-directory/internal/adapter/messaging/nats"
	"github.com/SashaDiz/real-estate-directory/internal/adapter/repository/cache"
	"github.com/SashaDiz/real-estate-directory/internal/adapter/repository/mongodb"
	localstorage "github.com/SashaDiz/real-estate-directory/internal/adapter/storage/local"
	s3storage "github.com/SashaDiz/real-estate-directory/internal/adapter/storage/s3"
	"github.com/SashaDiz/real-estate-directory/internal/config"
	"github.com/SashaDiz/real-estate-directory/internal/mailer"
	"github.com/SashaDiz/real-estate-directory/internal/platform/logger"
	"github.com/SashaDiz/real-estate-directory/internal/platform/tracer"
	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
	"github.com/SashaDiz/real-estate-directory/internal/property/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	if cfg.OTELEndpoint != "" {
		tp, err := tracer.Init(ctx, cfg.OTELEndpoint)
		if err != nil {
			zl.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer tp.Shutdown(ctx)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zl.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)
	db := mongoClient.Database(cfg.MongoDB)

	propertyRepo := mongodb.NewPropertyRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		zl.Warn("failed to ensure user indexes", zap.Error(err))
	}

	var propertyCache usecase.Cache
	if cfg.RedisAddress != "" {
		c, err := cache.NewPropertyCache(cfg.RedisAddress)
		if err != nil {
			zl.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer c.Close()
		propertyCache = c
	}

	var publisher usecase.Publisher
	if cfg.NATSURL != "" {
		p, err := natsadapter.NewPublisher(cfg.NATSURL)
		if err != nil {
			zl.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	}

	var agentMailer mailer.Mailer
	if cfg.SMTPHost != "" {
		agentMailer = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	var imageStorage domain.ImageStorage
	var uploadsDir string
	switch cfg.StorageBackend {
	case "s3":
		imageStorage, err = s3storage.NewStorage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, zl)
		if err != nil {
			zl.Fatal("failed to initialize s3 storage", zap.Error(err))
		}
	default:
		ls, err := localstorage.NewStorage(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			zl.Fatal("failed to initialize local storage", zap.Error(err))
		}
		imageStorage = ls
		uploadsDir = ls.Dir()
	}

	directory := usecase.NewPropertyUsecase(propertyRepo, propertyCache, publisher, agentMailer, zl)
	images := usecase.NewImageUsecase(imageStorage, zl)
	auth := usecase.NewAuthUsecase(userRepo, cfg.JWTSecret, cfg.AdminUsername, cfg.AdminPassword, zl)

	handler := httpapi.NewHandler(directory, images, auth, zl)
	router := httpapi.NewRouter(handler, zl, httpapi.RouterConfig{
		CORSOrigins:  cfg.CORSOrigins,
		AuthRequired: cfg.AuthRequired,
		UploadsDir:   uploadsDir,
		Tracing:      cfg.OTELEndpoint != "",
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	zl.Info("server stopped")
}
