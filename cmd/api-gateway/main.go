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
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academic-record-api/internal/catalog"
	"github.com/noah-isme/academic-record-api/internal/handler"
	internalmiddleware "github.com/noah-isme/academic-record-api/internal/middleware"
	"github.com/noah-isme/academic-record-api/internal/repository"
	"github.com/noah-isme/academic-record-api/internal/service"
	"github.com/noah-isme/academic-record-api/pkg/cache"
	"github.com/noah-isme/academic-record-api/pkg/config"
	"github.com/noah-isme/academic-record-api/pkg/database"
	"github.com/noah-isme/academic-record-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academic-record-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-record-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	courses := catalog.New()
	if err := catalog.LoadFiles(courses, cfg.Catalog.CurriculaFile); err != nil {
		logr.Sugar().Fatalw("failed to load catalog", "file", cfg.Catalog.CurriculaFile, "error", err)
	}
	logr.Sugar().Infow("catalog loaded", "curricula", len(courses.Curricula()), "courses", len(courses.Courses()))

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to prepare schema", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	recordRepo := repository.NewRecordRepository(db)
	lockRepo := repository.NewStudentLockRepository(redisClient, cfg.Redis.LockTTL, cfg.Redis.LockWait)

	recordSvc := service.NewAcademicRecordService(recordRepo, courses, lockRepo, metricsSvc, validate, logr)
	transcriptSvc := service.NewTranscriptService(recordSvc, logr, nil, nil)

	recordHandler := handler.NewAcademicRecordHandler(recordSvc, transcriptSvc)
	catalogHandler := handler.NewCatalogHandler(recordSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	api := r.Group(cfg.APIPrefix)

	students := api.Group("/students")
	students.POST("", recordHandler.RegisterStudent)
	students.POST("/:padron/curricula", recordHandler.RegisterCurriculum)
	students.GET("/:padron/curricula", recordHandler.ListCurricula)
	students.POST("/:padron/enrollments", recordHandler.EnrollCourse)
	students.GET("/:padron/enrollments", recordHandler.ListEnrollments)
	students.DELETE("/:padron/enrollments/:code", recordHandler.WithdrawCourse)
	students.POST("/:padron/approvals", recordHandler.ApproveCourse)
	students.GET("/:padron/approvals", recordHandler.ListApprovals)
	students.POST("/:padron/course-names", recordHandler.ResolveCourseNames)
	students.GET("/:padron/progress", recordHandler.Progress)
	students.GET("/:padron/courses/:code", recordHandler.GetCourse)
	students.GET("/:padron/courses/:code/missing-prerequisites", recordHandler.MissingPrerequisites)
	students.GET("/:padron/transcript", recordHandler.Transcript)

	catalogGroup := api.Group("/catalog")
	catalogGroup.GET("/courses", catalogHandler.Courses)
	catalogGroup.GET("/courses/:code/prerequisites", catalogHandler.Prerequisites)
	catalogGroup.GET("/curricula", catalogHandler.Curricula)
	catalogGroup.GET("/curricula/:id", catalogHandler.Curriculum)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "db_driver", cfg.Database.Driver, "redis_lock", redisClient != nil)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Sugar().Errorw("server shutdown failed", "error", err)
		}
		logr.Sugar().Infow("server stopped")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}
}
