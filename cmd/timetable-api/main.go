package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/scolaire/timetable-api/api/swagger"
	"github.com/scolaire/timetable-api/internal/handler"
	"github.com/scolaire/timetable-api/internal/middleware"
	"github.com/scolaire/timetable-api/internal/repository"
	"github.com/scolaire/timetable-api/internal/service"
	"github.com/scolaire/timetable-api/pkg/cache"
	"github.com/scolaire/timetable-api/pkg/config"
	"github.com/scolaire/timetable-api/pkg/database"
	"github.com/scolaire/timetable-api/pkg/logger"
	corsmiddleware "github.com/scolaire/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/scolaire/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 0.1.0
// @description Class timetable engine: grid rendering, break windows, schedule generation and conflict detection
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Engine.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, conflict cache disabled", "error", err)
			redisClient = nil
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	classRepo := repository.NewClassRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	breakSvc := service.NewBreakPeriodService(cfg.Breaks)
	generator := service.NewScheduleGeneratorService(service.GeneratorConfig{
		PlaceholderRoom: cfg.Engine.PlaceholderRoom,
		TargetDays:      cfg.Engine.TargetDays,
	}, nil, logr)
	detector := service.NewConflictDetectorService(logr)
	conflictCache := service.NewRedisConflictCache(redisClient, cfg.Engine.ConflictCacheTTL, metrics, logr)

	timetableSvc := service.NewTimetableService(
		classRepo, teacherRepo, roomRepo, subjectRepo, timetableRepo,
		generator, detector, breakSvc, conflictCache, db, metrics, validate, logr,
	)

	timetableHandler := handler.NewTimetableHandler(timetableSvc, breakSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	timetable := api.Group("/timetable")
	{
		timetable.POST("/generate", timetableHandler.Generate)
		timetable.GET("/classes/:id", timetableHandler.ClassTimetable)
		timetable.GET("/conflicts", timetableHandler.Conflicts)
		timetable.GET("/breaks", timetableHandler.GetBreaks)
		timetable.PUT("/breaks", timetableHandler.UpdateBreaks)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
