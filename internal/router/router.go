package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/handler"
	"github.com/noah-isme/class-schedule-api/internal/middleware"
	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/service"
	"github.com/noah-isme/class-schedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-schedule-api/pkg/middleware/requestid"
)

// Options holds everything the HTTP surface is built from.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool

	Logger  *zap.Logger
	Tokens  middleware.TokenValidator
	Metrics *service.MetricsService

	Schedules *handler.ScheduleHandler
	Courses   *handler.CourseHandler
	Exports   *handler.ExportHandler
	Ops       *handler.MetricsHandler
}

// New builds the gin engine with the ops routes at the root and the API
// under APIPrefix behind JWT.
func New(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", opts.Ops.Health)
	r.GET("/ready", opts.Ops.Ready)
	r.GET("/metrics", opts.Ops.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.JWT(opts.Tokens), middleware.WithResponseMeta())

	planners := middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler)
	admins := middleware.RequireRoles(models.RoleAdmin)

	api.GET("/metrics/summary", admins, opts.Ops.Summary)

	schedules := api.Group("/schedules")
	schedules.POST("/generate", planners, opts.Schedules.Generate)
	schedules.POST("/generate-all", planners, opts.Schedules.GenerateAll)
	schedules.GET("/jobs/:id", planners, opts.Schedules.Job)
	schedules.GET("", opts.Schedules.List)
	schedules.GET("/instructor/:instructorId", opts.Schedules.InstructorTimetable)
	schedules.GET("/:id", opts.Schedules.Get)
	schedules.PATCH("/:id/publish", admins, opts.Schedules.Publish)
	schedules.DELETE("/:id", admins, opts.Schedules.Delete)

	api.GET("/export/schedule/:id/:format", opts.Exports.Export)

	courses := api.Group("/courses")
	courses.POST("", planners, opts.Courses.Create)
	courses.PUT("/:id", planners, opts.Courses.Update)

	return r
}
