package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/presensi/presensi-server/config"
	"github.com/presensi/presensi-server/controllers"
	"github.com/presensi/presensi-server/middleware"
	"github.com/presensi/presensi-server/services"
	"github.com/presensi/presensi-server/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cfg config.AppConfig) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// access log goes to its own rolling file when configured
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			utils.Logger.Warn("gin access log unavailable, using app logger", zap.Error(err))
		} else {
			accessLog = gl
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, "ok", gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(services.NewAuthService(db, cfg))
	presensiController := controllers.NewPresensiController(
		services.NewPresensiService(db),
		utils.NewPhotoStore(cfg.UploadDir, cfg.PhotoMaxWidth, cfg.PhotoMaxSizeMB),
	)
	reportController := controllers.NewReportController(services.NewReportService(db, cfg.Location()))

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(limiter.Middleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), limiter.Middleware())

	presensi := protected.Group("/presensi")
	presensi.POST("/checkin", presensiController.CheckIn)
	presensi.POST("/checkout", presensiController.CheckOut)
	presensi.GET("/status", presensiController.Status)
	presensi.GET("/history", presensiController.History)
	presensi.PUT("/:id", presensiController.Update)
	presensi.PATCH("/:id", presensiController.Update)
	presensi.DELETE("/:id", presensiController.Delete)

	reports := protected.Group("/reports")
	reports.Use(middleware.AdminOnly())
	reports.GET("/daily", reportController.Daily)
	reports.GET("/daily/export", reportController.Export)
	reports.GET("/by-date", reportController.ByDate)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
