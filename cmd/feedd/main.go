package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tickerfeed/internal/config"
	cronrunner "tickerfeed/internal/cron"
	"tickerfeed/internal/db"
	"tickerfeed/internal/handler"
	"tickerfeed/internal/logger"
	"tickerfeed/internal/queue"
	gormrepository "tickerfeed/internal/repository/gorm"
	"tickerfeed/internal/service"
)

func main() {
	cfgPath := os.Getenv("TF_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TF_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	scoreQueue, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.Fatal("queue init failed", zap.Error(err))
	}
	defer scoreQueue.Close()
	if err := scoreQueue.Ping(context.Background()); err != nil {
		logger.Warn("score queue unreachable at startup, sweep will cover", zap.Error(err))
	}

	postSvc := service.NewPostService(store, scoreQueue, logger)
	insightSvc := service.NewInsightService(store, logger)
	sweepSvc := service.NewScoreSweepService(store, scoreQueue, logger, cfg.Sweep.Grace, cfg.Sweep.Batch)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	feedHandler := &handler.FeedHandler{Posts: postSvc, PageSize: cfg.Feed.PageSize}
	feedHandler.Register(engine)
	postHandler := &handler.PostHandler{Posts: postSvc}
	postHandler.Register(engine)
	insightHandler := &handler.InsightHandler{Insights: insightSvc}
	insightHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Sweep.Enabled {
		_, err = cronRunner.Add(cfg.Sweep.Schedule, func(ctx context.Context) {
			if _, err := sweepSvc.SweepOnce(ctx); err != nil {
				logger.Warn("score sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register score sweep failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-User-ID")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
