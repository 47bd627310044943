package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/athlete-records-api/api/swagger"
	"github.com/noah-isme/athlete-records-api/internal/form"
	"github.com/noah-isme/athlete-records-api/internal/handler"
	internalmiddleware "github.com/noah-isme/athlete-records-api/internal/middleware"
	"github.com/noah-isme/athlete-records-api/internal/repository"
	"github.com/noah-isme/athlete-records-api/internal/service"
	"github.com/noah-isme/athlete-records-api/pkg/cache"
	"github.com/noah-isme/athlete-records-api/pkg/config"
	"github.com/noah-isme/athlete-records-api/pkg/database"
	"github.com/noah-isme/athlete-records-api/pkg/export"
	"github.com/noah-isme/athlete-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/athlete-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/athlete-records-api/pkg/middleware/requestid"
	"github.com/noah-isme/athlete-records-api/pkg/postgrest"
)

// @title Athlete Records API
// @version 1.0.0
// @description Student athletic and medical records backed by the data service procedures.
// @BasePath /api/v1
// @schemes http

// dataService bundles every call the services make against the data service.
type dataService interface {
	service.CatalogReader
	service.StudentListReader
	service.StudentDeleter
	service.StudentGateway
	form.Gateway
}

// postgresDataService serves the data service calls over a direct database connection.
type postgresDataService struct {
	*repository.StudentGateway
	*repository.CatalogRepository
	*repository.StudentListRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	data, closeData, err := openDataService(cfg, metrics, checks)
	if err != nil {
		logr.Fatal("failed to reach data service", zap.String("driver", cfg.Gateway.Driver), zap.Error(err))
	}
	defer closeData()

	redisClient, err := cache.NewRedis(cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		repo := repository.NewCacheRepository(redisClient, cfg.Redis.Namespace, logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
		checks["cache"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.CatalogTTL, logr, cfg.Cache.Enabled)

	catalogSvc := service.NewCatalogService(data, cacheSvc, cfg.Cache.CatalogTTL, logr)
	listSvc := service.NewListService(data, data, catalogSvc, cacheSvc, cfg.Cache.ListTTL, logr)
	studentSvc := service.NewStudentService(data, catalogSvc, cacheSvc, metrics, logr)
	formSvc := service.NewFormSessionService(catalogSvc, studentSvc, data, cacheSvc, metrics, cfg.Forms.SessionTTL, logr)
	printSvc := service.NewPrintService(cfg.Print.InstitutionName, export.NewCSVExporter(), export.NewPDFExporter())

	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, listSvc, printSvc)
	formHandler := handler.NewFormHandler(formSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	api.GET("/metrics/summary", metricsHandler.Summary)

	catalogs := api.Group("/catalogs")
	catalogs.GET("", catalogHandler.List)
	catalogs.GET("/majors", catalogHandler.Majors)

	students := api.Group("/students")
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.GET("/search", studentHandler.Search)
	students.GET("/export", studentHandler.Export)
	students.GET("/:cedula", studentHandler.Get)
	students.PUT("/:cedula", studentHandler.Update)
	students.GET("/:cedula/print", studentHandler.Print)
	students.DELETE("/:id", studentHandler.Delete)

	forms := api.Group("/forms")
	forms.POST("", formHandler.Open)
	forms.GET("/:id", formHandler.Get)
	forms.DELETE("/:id", formHandler.Close)
	forms.PATCH("/:id/fields", formHandler.UpdateField)
	forms.POST("/:id/physical-tests", formHandler.AddPhysicalTest)
	forms.PUT("/:id/physical-tests/:index", formHandler.SetPhysicalTest)
	forms.DELETE("/:id/physical-tests/:index", formHandler.RemovePhysicalTest)
	forms.POST("/:id/competition-records", formHandler.AddCompetitionRecord)
	forms.PUT("/:id/competition-records/:index", formHandler.SetCompetitionRecord)
	forms.DELETE("/:id/competition-records/:index", formHandler.RemoveCompetitionRecord)
	forms.POST("/:id/submit", formHandler.Submit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "driver", cfg.Gateway.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openDataService connects the configured gateway driver and registers its readiness check.
func openDataService(cfg *config.Config, metrics *service.MetricsService, checks map[string]handler.ReadinessCheck) (dataService, func(), error) {
	switch cfg.Gateway.Driver {
	case config.GatewayDriverPostgREST:
		var signer *postgrest.TokenSigner
		if cfg.Gateway.JWTSecret != "" {
			s, err := postgrest.NewTokenSigner(cfg.Gateway.JWTSecret, cfg.Gateway.JWTRole, cfg.Gateway.JWTTTL)
			if err != nil {
				return nil, nil, err
			}
			signer = s
		}
		client := postgrest.NewClient(postgrest.Config{
			URL:     cfg.Gateway.URL,
			APIKey:  cfg.Gateway.APIKey,
			Signer:  signer,
			Timeout: cfg.Gateway.Timeout,
		}, nil)
		gateway := repository.NewRESTGateway(client, metrics)
		checks["data_service"] = func(ctx context.Context) error {
			_, err := gateway.ListSports(ctx)
			return err
		}
		return gateway, func() {}, nil
	case config.GatewayDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		checks["data_service"] = pingCheck(db)
		return postgresDataService{
			StudentGateway:        repository.NewStudentGateway(db, metrics),
			CatalogRepository:     repository.NewCatalogRepository(db, metrics),
			StudentListRepository: repository.NewStudentListRepository(db, metrics),
		}, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown gateway driver %q", cfg.Gateway.Driver)
	}
}

func pingCheck(db *sqlx.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}
