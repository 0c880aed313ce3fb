package handler

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rfid-attendance/internal/auth"
	"rfid-attendance/internal/httpmiddleware"
)

// RouterOptions configure the middleware stack around the handler.
type RouterOptions struct {
	AllowOrigins          string // comma separated, "*" for any
	ExportRateLimitPerMin int
	Gatherer              prometheus.Gatherer // nil serves the default registry
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(h.Logger, "/healthz", "/metrics"))
	r.Use(corsMiddleware(opts.AllowOrigins))
	r.Use(httpmiddleware.SecurityHeaders())

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")
	v1.POST("/auth/login", h.Login)
	v1.GET("/auth/session", h.Session)

	authed := v1.Group("", auth.RequireSession(h.Auth, h.settings.JWTSigningKey, h.settings.JWTIssuer))
	authed.POST("/auth/logout", h.Logout)
	authed.POST("/scans", h.Scan)
	authed.GET("/scanner", h.ScannerState)
	authed.GET("/dashboard", h.Dashboard)
	authed.GET("/attendance", h.ListAttendance)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id", h.UpdateUser)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.POST("/users/:id/photo", h.UploadPhoto)

	admin.GET("/reports", h.Report)
	exports := admin.Group("/reports", httpmiddleware.NewTokenBucket(0, opts.ExportRateLimitPerMin).Middleware())
	exports.GET("/export", h.ExportReport)
	exports.POST("/jobs", h.EnqueueExport)
	admin.GET("/reports/files/:name", h.DownloadExport)

	return r
}

func corsMiddleware(origins string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", httpmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins == "" || origins == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	}
	return cors.New(cfg)
}
