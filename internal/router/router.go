package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/handler"
	"github.com/noah-isme/school-roster-api/internal/middleware"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/service"
	"github.com/noah-isme/school-roster-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-roster-api/pkg/middleware/requestid"
)

// Options configures the engine.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
}

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Students   *handler.StudentHandler
	Attendance *handler.AttendanceHandler
	Dashboard  *handler.DashboardHandler
	System     *handler.MetricsHandler
}

// New builds the gin engine with the middleware chain and every route.
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(logger.Recovery(log))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log, "/health", "/metrics"))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.System.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(normalizePrefix(opts.APIPrefix))
	authn := middleware.JWT(opts.Tokens)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/seed", h.Auth.Seed)
	auth.POST("/logout", authn, h.Auth.Logout)
	auth.GET("/me", authn, h.Auth.Me)

	api.POST("/users", authn, adminOnly, h.Users.Create)

	students := api.Group("/students", authn)
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/filters", h.Students.Filters)
	students.GET("/export", h.Students.Export)
	students.POST("/import", adminOnly, h.Students.Import)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)
	students.GET("/:id/attendance", h.Attendance.List)
	students.POST("/:id/attendance", h.Attendance.Mark)
	students.DELETE("/:id/attendance", h.Attendance.Delete)

	dashboard := api.Group("/dashboard", authn)
	dashboard.GET("", h.Dashboard.Summary)
	dashboard.GET("/classes", h.Dashboard.Classes)
	dashboard.GET("/classes/:grade", h.Dashboard.Class)

	return r
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
