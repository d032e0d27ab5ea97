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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/api"
	"github.com/akm12109/SDM-Admin/internal/config"
	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/form"
	"github.com/akm12109/SDM-Admin/internal/listing"
	"github.com/akm12109/SDM-Admin/internal/logger"
	"github.com/akm12109/SDM-Admin/internal/repository"
	"github.com/akm12109/SDM-Admin/internal/repository/mongo"
	"github.com/akm12109/SDM-Admin/internal/service"
	"github.com/akm12109/SDM-Admin/internal/storage"
	"github.com/akm12109/SDM-Admin/internal/upload"
)

// @title SDM Admin API
// @version 1.0
// @description Administration console for school notices, classes, homework, events, slides, teachers and students.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return err
	}
	defer func() {
		zl.Info("disconnecting mongodb")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			zl.Error("mongodb disconnect failed", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	zl.Info("database connection established", zap.String("database", cfg.Database.Name))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureUserIndexes(ctx, appDB.Collection(domain.CollectionUsers)); err != nil {
			zl.Warn("user index creation failed", zap.Error(err))
		}
		if err := mongo.EnsureRecordIndexes(ctx, appDB); err != nil {
			zl.Warn("record index creation failed", zap.Error(err))
		}
	}()

	// --- Storage, notifier, metrics ---
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, zl)
	if err != nil {
		return err
	}
	metrics := service.NewMetricsService()

	notifier, publisher, closeNotifier, err := buildNotifier(cfg, appDB, zl)
	if err != nil {
		return err
	}
	defer closeNotifier()

	// --- Services ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, zl)
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	uploader := upload.NewUploader(fileStorage, metrics, zl)
	validate := form.NewValidator()
	students := listing.Publishing[*domain.User](userRepo, publisher, domain.CollectionUsers, zl)
	forms := api.Forms{
		Notices:  registry(form.NoticeSpec(), appDB, uploader, publisher, validate, metrics, zl),
		Classes:  registry(form.ClassSpec(), appDB, uploader, publisher, validate, metrics, zl),
		Videos:   registry(form.VideoSpec(), appDB, uploader, publisher, validate, metrics, zl),
		Homework: registry(form.HomeworkSpec(), appDB, uploader, publisher, validate, metrics, zl),
		Events:   registry(form.EventSpec(), appDB, uploader, publisher, validate, metrics, zl),
		Slides:   registry(form.SlideSpec(), appDB, uploader, publisher, validate, metrics, zl),
		Teachers: registry(form.TeacherSpec(), appDB, uploader, publisher, validate, metrics, zl),
		Students: registryFor(form.StudentSpec(), students, uploader, validate, metrics, zl),
	}
	studentFeed := listing.NewFeed(notifier, domain.CollectionUsers, students.List, zl)

	// --- HTTP ---
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(zl), api.MetricsMiddleware(metrics))
	router.MaxMultipartMemory = 8 << 20

	api.SetupRoutes(router, api.Dependencies{
		JWTSecret:   cfg.JWT.Secret,
		MaxFileSize: cfg.Upload.MaxFileSize,
		AuthService: authService,
		Forms:       forms,
		Students:    studentFeed,
		Storage:     fileStorage,
		Metrics:     metrics,
		Logger:      zl,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}
	zl.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return err
	}
	zl.Info("server exiting")
	return nil
}

// buildNotifier picks the change feed for live listings. With Redis, writes must
// publish, so a publisher is returned too.
func buildNotifier(cfg config.Config, db *mongodrv.Database, zl *zap.Logger) (listing.Notifier, listing.Publisher, func(), error) {
	switch cfg.Listing.Notifier {
	case config.NotifierRedis:
		client, err := listing.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		n := listing.NewRedisNotifier(client, cfg.Listing.Channel, zl)
		return n, n, func() { _ = client.Close() }, nil
	default:
		return mongo.NewChangeStreamNotifier(db, zl), nil, func() {}, nil
	}
}

func registry[E any, T interface {
	*E
	domain.Record
}](spec form.Spec[T], db *mongodrv.Database, uploader *upload.Uploader, publisher listing.Publisher, validate *validator.Validate, metrics *service.MetricsService, zl *zap.Logger) *form.Registry[T] {
	repo := listing.Publishing[T](mongo.NewMongoRecordRepository[E, T](db, spec.Collection), publisher, spec.Collection, zl)
	return registryFor(spec, repo, uploader, validate, metrics, zl)
}

// registryFor builds one controller per admin. Each controller keeps its own
// listing snapshot.
func registryFor[T domain.Record](spec form.Spec[T], repo repository.RecordRepository[T], uploader *upload.Uploader, validate *validator.Validate, metrics *service.MetricsService, zl *zap.Logger) *form.Registry[T] {
	return form.NewRegistry(func() *form.Controller[T] {
		return form.NewController(spec, uploader, repo,
			form.WithValidator[T](validate),
			form.WithMetrics[T](metrics),
			form.WithLogger[T](zl))
	})
}
