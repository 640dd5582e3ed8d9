package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classdesk/classdesk-api/api/swagger"
	"github.com/classdesk/classdesk-api/internal/ai"
	"github.com/classdesk/classdesk-api/internal/handler"
	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/repository"
	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/pkg/cache"
	"github.com/classdesk/classdesk-api/pkg/config"
	"github.com/classdesk/classdesk-api/pkg/database"
	"github.com/classdesk/classdesk-api/pkg/export"
	"github.com/classdesk/classdesk-api/pkg/logger"
	corsmiddleware "github.com/classdesk/classdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classdesk/classdesk-api/pkg/middleware/requestid"
	"github.com/classdesk/classdesk-api/pkg/storage"
)

// @title ClassDesk API
// @version 1.0.0
// @description Classroom management backend with an AI chat proxy
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stream cache disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init file storage", "error", err)
	}

	validate := validator.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	postRepo := repository.NewPostRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "classdesk-api",
	})
	classSvc := service.NewClassService(classRepo, membershipRepo, userRepo, validate, logr)
	memberSvc := service.NewMemberService(membershipRepo, userRepo, classSvc, logr)
	postSvc := service.NewPostService(postRepo, userRepo, classSvc, cacheRepo, cfg.Stream.CacheTTL, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, classSvc, validate, logr)
	materialSvc := service.NewMaterialService(materialRepo, classSvc, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, assignmentRepo, userRepo, classSvc, validate, logr)
	commentSvc := service.NewCommentService(commentRepo, userRepo, validate, logr)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, store, cfg.Storage.MaxFileSize, logr)
	chatSvc := service.NewChatService(ai.NewClient(cfg.AI), logr)
	exportSvc := service.NewExportService(classRepo, membershipRepo, assignmentRepo, submissionRepo, userRepo, classSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	classHandler := handler.NewClassHandler(classSvc, exportSvc)
	memberHandler := handler.NewMemberHandler(memberSvc)
	postHandler := handler.NewPostHandler(postSvc)
	classworkHandler := handler.NewClassworkHandler(assignmentSvc, materialSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	attachmentHandler := handler.NewAttachmentHandler(attachmentSvc)
	chatHandler := handler.NewChatHandler(chatSvc, metricsSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.Static("/files", store.Dir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	// The chat proxy answers its own preflight so CORS holds even when the
	// allow-list is configured for the rest of the API.
	api.POST("/chat", chatHandler.Stream)
	api.OPTIONS("/chat", chatHandler.Preflight)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		classes := authed.Group("/classes")
		{
			classes.GET("", classHandler.List)
			classes.POST("", middleware.RequireRoles(models.RoleTeacher), classHandler.Create)
			classes.POST("/join", classHandler.Join)
			classes.GET("/:id", classHandler.Get)
			classes.PUT("/:id", classHandler.Update)
			classes.DELETE("/:id", classHandler.Delete)
			classes.GET("/:id/is-teacher", classHandler.IsTeacher)
			classes.GET("/:id/gradebook", classHandler.ExportGradebook)

			classes.GET("/:id/members", memberHandler.List)
			classes.DELETE("/:id/members/:memberId", memberHandler.Remove)

			classes.GET("/:id/posts", postHandler.List)
			classes.POST("/:id/posts", postHandler.Create)

			classes.GET("/:id/assignments", classworkHandler.ListAssignments)
			classes.POST("/:id/assignments", classworkHandler.CreateAssignment)
			classes.GET("/:id/materials", classworkHandler.ListMaterials)
			classes.POST("/:id/materials", classworkHandler.CreateMaterial)
		}

		authed.DELETE("/posts/:postId", postHandler.Delete)

		assignments := authed.Group("/assignments")
		{
			assignments.GET("/:assignmentId", classworkHandler.GetAssignment)
			assignments.PUT("/:assignmentId", classworkHandler.UpdateAssignment)
			assignments.DELETE("/:assignmentId", classworkHandler.DeleteAssignment)
			assignments.GET("/:assignmentId/submissions", submissionHandler.List)
			assignments.POST("/:assignmentId/submissions", submissionHandler.Submit)
			assignments.GET("/:assignmentId/submissions/me", submissionHandler.GetOwn)
		}

		authed.DELETE("/materials/:materialId", classworkHandler.DeleteMaterial)
		authed.POST("/submissions/:submissionId/grade", submissionHandler.Grade)

		authed.GET("/comments/:parentType/:parentId", commentHandler.List)
		authed.POST("/comments/:parentType/:parentId", commentHandler.Create)
		authed.GET("/attachments/:parentType/:parentId", attachmentHandler.List)
		authed.POST("/attachments/:parentType/:parentId", attachmentHandler.Upload)

		authed.GET("/metrics/summary", metricsHandler.Summary)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
