package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-logistics-api/api/swagger"
	"github.com/noah-isme/exam-logistics-api/internal/handler"
	"github.com/noah-isme/exam-logistics-api/internal/middleware"
	"github.com/noah-isme/exam-logistics-api/internal/repository"
	"github.com/noah-isme/exam-logistics-api/internal/service"
	rediscache "github.com/noah-isme/exam-logistics-api/pkg/cache"
	"github.com/noah-isme/exam-logistics-api/pkg/config"
	"github.com/noah-isme/exam-logistics-api/pkg/database"
	"github.com/noah-isme/exam-logistics-api/pkg/jobs"
	"github.com/noah-isme/exam-logistics-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-logistics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-logistics-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-logistics-api/pkg/storage"
)

// @title Exam Logistics API
// @version 0.1.0
// @description Exam scheduling and logistics with section-level conflict detection
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	blockRepo := repository.NewBlockRepository(db)
	floorRepo := repository.NewFloorRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	programRepo := repository.NewProgramRepository(db)
	yearRepo := repository.NewYearRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	invigilatorRepo := repository.NewInvigilatorRepository(db)
	examRepo := repository.NewExamRepository(db)

	blockSvc := service.NewBlockService(blockRepo, validate, logr)
	floorSvc := service.NewFloorService(floorRepo, blockRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, floorRepo, validate, logr)
	programSvc := service.NewProgramService(programRepo, validate, logr)
	yearSvc := service.NewYearService(yearRepo, programRepo, validate, logr)
	branchSvc := service.NewBranchService(branchRepo, yearRepo, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, branchRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, sectionRepo, validate, logr)
	invigilatorSvc := service.NewInvigilatorService(invigilatorRepo, validate, logr)

	examSvc := service.NewExamService(
		examRepo, subjectRepo, programRepo, yearRepo, branchRepo, sectionRepo,
		validate, logr,
	).WithMetrics(metricsSvc)
	if cacheRepo := examReadCache(cfg, logr); cacheRepo != nil {
		invalidations := jobs.NewQueue("cache-invalidation", cacheRepo.InvalidationHandler(), jobs.Options{
			Workers:    1,
			MaxRetries: 5,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
		invalidations.Start(context.Background())
		defer invalidations.Stop()
		examSvc = examSvc.WithCache(repository.NewQueuedCache(cacheRepo, invalidations), cfg.Cache.TTL)
	}
	exportSvc := service.NewExportService(examSvc, logr)
	if cfg.Exports.Enabled && cfg.Exports.Dir != "" {
		archive, err := storage.NewArchive(cfg.Exports.Dir)
		if err != nil {
			logr.Warn("export archive unavailable", zap.Error(err))
		} else {
			exportSvc = exportSvc.WithArchive(archive)
		}
	}

	blockH := handler.NewBlockHandler(blockSvc)
	floorH := handler.NewFloorHandler(floorSvc)
	roomH := handler.NewRoomHandler(roomSvc)
	programH := handler.NewProgramHandler(programSvc)
	yearH := handler.NewYearHandler(yearSvc)
	branchH := handler.NewBranchHandler(branchSvc)
	sectionH := handler.NewSectionHandler(sectionSvc)
	subjectH := handler.NewSubjectHandler(subjectSvc)
	studentH := handler.NewStudentHandler(studentSvc)
	invigilatorH := handler.NewInvigilatorHandler(invigilatorSvc)
	examH := handler.NewExamHandler(examSvc)
	exportH := handler.NewExportHandler(exportSvc)
	metricsH := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsH.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsH.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/blocks", blockH.List)
		api.POST("/blocks", blockH.Create)
		api.PUT("/blocks/:id", blockH.Update)
		api.DELETE("/blocks/:id", blockH.Delete)
		api.GET("/blocks/:id/floors", floorH.ListByBlock)

		api.POST("/floors", floorH.Create)
		api.PUT("/floors/:id", floorH.Update)
		api.DELETE("/floors/:id", floorH.Delete)
		api.GET("/floors/:id/rooms", roomH.ListByFloor)

		api.POST("/rooms", roomH.Create)
		api.PUT("/rooms/:id", roomH.Update)
		api.DELETE("/rooms/:id", roomH.Delete)

		api.GET("/programs", programH.List)
		api.POST("/programs", programH.Create)
		api.PUT("/programs/:id", programH.Update)
		api.DELETE("/programs/:id", programH.Delete)
		api.GET("/programs/:id/years", yearH.ListByProgram)

		api.POST("/years", yearH.Create)
		api.PUT("/years/:id", yearH.Update)
		api.DELETE("/years/:id", yearH.Delete)
		api.GET("/years/:id/branches", branchH.ListByYear)

		api.POST("/branches", branchH.Create)
		api.PUT("/branches/:id", branchH.Update)
		api.DELETE("/branches/:id", branchH.Delete)
		api.GET("/branches/:id/sections", sectionH.ListByBranch)

		api.POST("/sections", sectionH.Create)
		api.PUT("/sections/:id", sectionH.Update)
		api.DELETE("/sections/:id", sectionH.Delete)
		api.GET("/sections/:id/exams", examH.ListBySection)

		api.GET("/subjects", subjectH.List)
		api.POST("/subjects", subjectH.Create)
		api.GET("/subjects/:id", subjectH.Get)
		api.PUT("/subjects/:id", subjectH.Update)
		api.DELETE("/subjects/:id", subjectH.Delete)
		api.GET("/subjects/:id/exams", examH.ListBySubject)

		api.GET("/students", studentH.List)
		api.POST("/students", studentH.Create)
		api.PUT("/students/:id", studentH.Update)
		api.DELETE("/students/:id", studentH.Delete)

		api.GET("/invigilators", invigilatorH.List)
		api.POST("/invigilators", invigilatorH.Create)
		api.PUT("/invigilators/:id", invigilatorH.Update)
		api.DELETE("/invigilators/:id", invigilatorH.Delete)

		api.GET("/exams", examH.List)
		api.POST("/exams", examH.Create)
		api.GET("/exams/:id", examH.Get)
		api.PUT("/exams/:id", examH.Update)
		api.DELETE("/exams/:id", examH.Delete)
		api.GET("/exam-types/:type/exams", examH.ListByType)
		api.POST("/overlap-checks", examH.CheckOverlap)

		if cfg.Exports.Enabled {
			api.GET("/exports/timetable.csv", exportH.TimetableCSV)
			api.GET("/exports/timetable.pdf", exportH.TimetablePDF)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// examReadCache connects Redis when the exam cache is enabled. A connection
// failure downgrades to uncached reads instead of aborting startup.
func examReadCache(cfg *config.Config, logr *zap.Logger) *repository.CacheRepository {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, exam cache disabled", zap.Error(err))
		return nil
	}
	return repository.NewCacheRepository(client, logr)
}
