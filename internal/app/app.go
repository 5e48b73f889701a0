package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/handler"
	"github.com/noah-isme/school-roster-api/internal/repository"
	"github.com/noah-isme/school-roster-api/internal/router"
	"github.com/noah-isme/school-roster-api/internal/service"
	"github.com/noah-isme/school-roster-api/pkg/cache"
	"github.com/noah-isme/school-roster-api/pkg/config"
	"github.com/noah-isme/school-roster-api/pkg/imageproc"
)

// App is the assembled HTTP application.
type App struct {
	Engine *gin.Engine
	Stores *Stores
	Redis  *redis.Client
}

// SeedConfig maps configuration onto the demo account bootstrap.
func SeedConfig(cfg *config.Config) service.SeedConfig {
	return service.SeedConfig{
		SecretKey:       cfg.Seed.SecretKey,
		AdminEmail:      cfg.Seed.AdminEmail,
		AdminPassword:   cfg.Seed.AdminPassword,
		TeacherEmail:    cfg.Seed.TeacherEmail,
		TeacherPassword: cfg.Seed.TeacherPassword,
	}
}

// New opens storage, the optional Redis cache, and wires services into the router.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	stores, err := OpenStores(ctx, cfg, true)
	if err != nil {
		return nil, err
	}

	rdb, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, continuing without cache and session revocation", zap.Error(err))
		rdb = nil
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	var (
		cacheSvc *service.CacheService
		authSvc  *service.AuthService
	)
	authCfg := service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	}
	checks := map[string]handler.Pinger{stores.Driver: stores.Students}
	if rdb != nil {
		cacheRepo := repository.NewCacheRepository(rdb)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, log, cfg.Dashboard.CacheEnabled)
		authSvc = service.NewAuthService(stores.Users, repository.NewSessionRepository(rdb), validate, log, authCfg)
		checks["redis"] = cacheRepo
	} else {
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Dashboard.CacheTTL, log, false)
		authSvc = service.NewAuthService(stores.Users, nil, validate, log, authCfg)
	}
	authSvc.WithMetrics(metrics)

	userSvc := service.NewUserService(stores.Users, validate, log, SeedConfig(cfg))
	studentSvc := service.NewStudentService(service.StudentServiceParams{
		Repo: stores.Students,
		Photos: imageproc.NewPhotoProcessor(imageproc.Options{
			MaxBytes:     cfg.Photo.MaxBytes,
			MaxDimension: cfg.Photo.MaxDimension,
			JPEGQuality:  cfg.Photo.JPEGQuality,
		}),
		Cache:     cacheSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    log,
	})
	attendanceSvc := service.NewAttendanceService(stores.Attendance, stores.Students, metrics, validate, log, cfg.Location())
	dashboardSvc := service.NewDashboardService(stores.Students, cacheSvc, log)

	engine := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         log,
		Metrics:        metrics,
		Tokens:         authSvc,
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, userSvc),
		Users:      handler.NewUserHandler(userSvc),
		Students:   handler.NewStudentHandler(studentSvc, cfg.Import.MaxBytes),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		System:     handler.NewMetricsHandler(metrics, checks),
	})

	return &App{Engine: engine, Stores: stores, Redis: rdb}, nil
}

// Close releases storage and cache connections.
func (a *App) Close(ctx context.Context) error {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	return a.Stores.Close(ctx)
}
