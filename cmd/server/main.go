package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-enroll-api/api/swagger"
	"github.com/noah-isme/campus-enroll-api/internal/handler"
	internalmiddleware "github.com/noah-isme/campus-enroll-api/internal/middleware"
	"github.com/noah-isme/campus-enroll-api/internal/models"
	"github.com/noah-isme/campus-enroll-api/internal/repository"
	"github.com/noah-isme/campus-enroll-api/internal/service"
	"github.com/noah-isme/campus-enroll-api/pkg/cache"
	"github.com/noah-isme/campus-enroll-api/pkg/config"
	"github.com/noah-isme/campus-enroll-api/pkg/database"
	"github.com/noah-isme/campus-enroll-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-enroll-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-enroll-api/pkg/middleware/requestid"
)

// @title Campus Enroll API
// @version 0.1.0
// @description Student enrollment platform: admission, rosters, grades
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Catalog.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, course cache disabled", "error", err)
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	userRepo := repository.NewUserRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	var courseCache *repository.CacheRepository
	if redisClient != nil {
		courseCache = repository.NewCacheRepository(redisClient)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	courseSvc := newCourseService(courseRepo, courseCache, cfg, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, metricsSvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	healthHandler := handler.NewHealthHandler(db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Health)
	r.GET("/health/db", healthHandler.HealthDB)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	secured.GET("/courses", courseHandler.List)
	secured.GET("/courses/:id", courseHandler.Get)

	secured.POST("/enrollments", enrollmentHandler.Admit)
	secured.GET("/enrollments/my", enrollmentHandler.ListMine)
	secured.DELETE("/enrollments/:id", enrollmentHandler.Drop)

	faculty := internalmiddleware.RequireRole(models.RoleFaculty, models.RoleAdmin)
	secured.GET("/students/:studentId/enrollments", faculty, enrollmentHandler.ListByStudent)
	secured.GET("/courses/:id/roster", faculty, enrollmentHandler.Roster)
	secured.GET("/courses/:id/roster/export", faculty, enrollmentHandler.ExportRoster)

	secured.POST("/grades", faculty, gradeHandler.Upsert)
	secured.GET("/grades/my", gradeHandler.ListMine)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newCourseService keeps a typed nil out of the service's cache interface.
func newCourseService(repo *repository.CourseRepository, courseCache *repository.CacheRepository, cfg *config.Config, logr *zap.Logger) *service.CourseService {
	if courseCache == nil {
		return service.NewCourseService(repo, nil, cfg.Catalog.CacheTTL, logr)
	}
	return service.NewCourseService(repo, courseCache, cfg.Catalog.CacheTTL, logr)
}
