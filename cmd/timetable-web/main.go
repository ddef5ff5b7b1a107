package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable/api/swagger"
	"github.com/noah-isme/sma-timetable/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable/internal/middleware"
	"github.com/noah-isme/sma-timetable/internal/repository"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/cache"
	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/export"
	"github.com/noah-isme/sma-timetable/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable/pkg/middleware/requestid"
)

// @title SMA Timetable
// @version 0.1.0
// @description Collects teacher/subject pairs per browser session and generates a weekly timetable PDF
// @BasePath /
// @schemes http

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

	sessionRepo, pinger, closeStore, err := newSessionRepository(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("session store init failed", "store", cfg.Session.Store, "error", err)
	}
	defer closeStore()

	sessions := service.NewSessionService(sessionRepo, metrics, cfg.Session.TTL, validator.New(), logr)
	generator := service.NewTimetableService(service.TimetableConfig{
		Days:            cfg.Timetable.Days,
		PeriodsPerDay:   cfg.Timetable.PeriodsPerDay,
		StrictConflicts: cfg.Timetable.StrictConflicts,
	}, nil, metrics, logr)
	exporter := service.NewExportService(export.NewPDFExporter(), metrics, logr)
	tokens := service.NewSessionTokenService(cfg.Session.Secret, cfg.Session.TTL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metrics))
	}

	handler.RegisterRoutes(r, handler.Routes{
		Timetable: handler.NewTimetableHandler(sessions, generator, exporter, logr),
		Ops:       handler.NewMetricsHandler(metrics, pinger),
		Session: internalmiddleware.Session(tokens, internalmiddleware.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.SecureCookie,
		}, logr),
		EnableMetrics: cfg.Metrics.Enabled,
	})

	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting",
			"addr", addr,
			"env", cfg.Env,
			"session_store", cfg.Session.Store,
			"days", cfg.Timetable.Days,
			"periods_per_day", cfg.Timetable.PeriodsPerDay,
			"strict_conflicts", cfg.Timetable.StrictConflicts,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newSessionRepository(cfg *config.Config, logr *zap.Logger) (service.SessionRepository, handler.Pinger, func(), error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return repository.NewMemorySessionRepository(), nil, func() {}, nil
	}

	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := repository.NewRedisSessionRepository(client, logr)
	closeFn := func() {
		if err := repo.Close(); err != nil {
			logr.Warn("redis close failed", zap.Error(err))
		}
	}
	return repo, repo, closeFn, nil
}
