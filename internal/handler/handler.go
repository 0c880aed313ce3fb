package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rfid-attendance/internal/attendance"
	"rfid-attendance/internal/auth"
	"rfid-attendance/internal/cloudinary"
	"rfid-attendance/internal/httpmiddleware"
	"rfid-attendance/internal/metrics"
	"rfid-attendance/internal/pkg/validation"
	"rfid-attendance/internal/queue"
	"rfid-attendance/internal/report"
	"rfid-attendance/internal/roster"
)

// PhotoUploader stores a user photo and returns its public URL.
type PhotoUploader interface {
	UploadBytes(ctx context.Context, publicID string, data []byte, filename string) (*cloudinary.UploadResult, error)
	UploadDataURL(ctx context.Context, publicID, data string) (*cloudinary.UploadResult, error)
}

// Deps are the components the HTTP layer drives.
type Deps struct {
	Users    *roster.Roster
	Records  *attendance.Repository
	Scanner  *attendance.Scanner
	Auth     *auth.Store
	Exporter *report.Exporter
	Queue    queue.Queue
	Photos   PhotoUploader // nil when photo storage is not configured
	Metrics  *metrics.Metrics
	Health   map[string]func(context.Context) bool
	Logger   *zap.Logger
}

// Settings are the request-independent knobs of the HTTP layer.
type Settings struct {
	Location      *time.Location
	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
	RecentLimit   int
	ExportDir     string
}

// Handler serves the attendance API.
type Handler struct {
	Deps
	settings Settings
	now      func() time.Time
}

// New creates a Handler.
func New(deps Deps, settings Settings) *Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.RecentLimit <= 0 {
		settings.RecentLimit = attendance.DefaultRecentLimit
	}
	return &Handler{Deps: deps, settings: settings, now: time.Now}
}

// Healthz reports the status of every registered dependency.
func (h *Handler) Healthz(c *gin.Context) {
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for name, check := range h.Health {
		ok := check(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

func (h *Handler) logger(c *gin.Context) *zap.Logger {
	return httpmiddleware.Logger(c, h.Logger)
}

// respondError maps domain errors onto status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		validation.Respond(c, err)
	case errors.Is(err, roster.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, roster.ErrDuplicateTag):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrEmptyToken), errors.Is(err, attendance.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter both username and password"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, report.ErrEmptyReport):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "level": "warning"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		h.logger(c).Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
	}
}
