package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sekolahku/gradebook-api/api/swagger"
	"github.com/sekolahku/gradebook-api/internal/handler"
	"github.com/sekolahku/gradebook-api/internal/middleware"
	"github.com/sekolahku/gradebook-api/internal/models"
	"github.com/sekolahku/gradebook-api/internal/repository"
	"github.com/sekolahku/gradebook-api/internal/service"
	"github.com/sekolahku/gradebook-api/pkg/config"
	"github.com/sekolahku/gradebook-api/pkg/logger"
	corsmiddleware "github.com/sekolahku/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sekolahku/gradebook-api/pkg/middleware/requestid"

	"github.com/sekolahku/gradebook-api/pkg/cache"
	"github.com/sekolahku/gradebook-api/pkg/database"
)

// @title Gradebook API
// @version 1.0.0
// @description Grade aggregation, ranking, and report card service
// @BasePath /api/v1
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Rankings.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, ranking cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Rankings.CacheTTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	termRepo := repository.NewTermRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	scoreRepo := repository.NewScoreEntryRepository(db)
	scaleRepo := repository.NewGradeScaleRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gradebook-api",
	})
	studentService := service.NewStudentService(studentRepo, nil, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, cacheService, nil, logr)
	classService := service.NewClassService(classRepo, logr)
	subjectService := service.NewSubjectService(subjectRepo, logr)
	termService := service.NewTermService(termRepo, logr)
	categoryService := service.NewCategoryService(categoryRepo, nil, logr)
	scaleService := service.NewGradeScaleService(scaleRepo, nil, logr)
	scoreService := service.NewScoreService(scoreRepo, categoryRepo, enrollmentRepo, cacheService, nil, logr)
	gradebookService := service.NewGradebookService(enrollmentRepo, scoreRepo, categoryRepo, classRepo, studentRepo, scaleService, logr)
	rankingService := service.NewRankingService(gradebookService, cacheService, metricsService, logr)
	reportService := service.NewReportService(gradebookService, rankingService, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	classHandler := handler.NewClassHandler(classService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	termHandler := handler.NewTermHandler(termService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	scaleHandler := handler.NewGradeScaleHandler(scaleService)
	scoreHandler := handler.NewScoreHandler(scoreService)
	gradebookHandler := handler.NewGradebookHandler(gradebookService, rankingService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	students := protected.Group("/students")
	{
		students.GET("", staff, studentHandler.List)
		students.GET("/:studentId", staff, studentHandler.Get)
		students.POST("", adminOnly, studentHandler.Create)
		students.PUT("/:studentId", adminOnly, studentHandler.Update)
		students.GET("/:studentId/report-card", middleware.RBAC("ADMIN", "TEACHER", middleware.SelfScope), gradebookHandler.ReportCard)
	}

	enrollments := protected.Group("/enrollments")
	{
		enrollments.GET("", staff, enrollmentHandler.List)
		enrollments.POST("", adminOnly, enrollmentHandler.Enroll)
		enrollments.POST("/:id/withdraw", adminOnly, enrollmentHandler.Withdraw)
	}

	classes := protected.Group("/classes")
	{
		classes.GET("", staff, classHandler.List)
		classes.GET("/:classId", staff, classHandler.Get)
		classes.GET("/:classId/subjects", staff, classHandler.Subjects)
		classes.GET("/:classId/gradebook", staff, gradebookHandler.ClassGradebook)
		classes.GET("/:classId/rankings", staff, gradebookHandler.ClassRankings)
		classes.GET("/:classId/distribution", staff, gradebookHandler.Distribution)
	}

	subjects := protected.Group("/subjects")
	{
		subjects.GET("", staff, subjectHandler.List)
		subjects.GET("/:id", staff, subjectHandler.Get)
	}

	terms := protected.Group("/terms")
	{
		terms.GET("", staff, termHandler.List)
		terms.GET("/active", staff, termHandler.Active)
		terms.GET("/:id", staff, termHandler.Get)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", staff, categoryHandler.List)
		categories.GET("/:id", staff, categoryHandler.Get)
		categories.POST("", staff, categoryHandler.Create)
		categories.PUT("/:id", staff, categoryHandler.Update)
		categories.DELETE("/:id", staff, categoryHandler.Delete)
	}

	scales := protected.Group("/grade-scales")
	{
		scales.GET("", staff, scaleHandler.List)
		scales.GET("/:id", staff, scaleHandler.Get)
		scales.POST("", adminOnly, scaleHandler.Create)
		scales.PUT("/:id", adminOnly, scaleHandler.Update)
		scales.POST("/:id/activate", adminOnly, scaleHandler.SetCurrent)
		scales.DELETE("/:id", adminOnly, scaleHandler.Delete)
	}

	scores := protected.Group("/scores")
	{
		scores.GET("", staff, scoreHandler.List)
		scores.POST("", staff, scoreHandler.Upsert)
		scores.POST("/bulk", staff, scoreHandler.Bulk)
		scores.DELETE("/:id", staff, scoreHandler.Delete)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/classes/:classId/gradebook", staff, reportHandler.ExportGradebook)
		reports.GET("/classes/:classId/rankings", staff, reportHandler.ExportRanking)
		reports.GET("/students/:studentId/report-card", middleware.RBAC("ADMIN", "TEACHER", middleware.SelfScope), reportHandler.ExportReportCard)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
