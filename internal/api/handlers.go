package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JustJay7/fir-manager/internal/access"
	"github.com/JustJay7/fir-manager/internal/apperr"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/directory"
	"github.com/JustJay7/fir-manager/internal/fir"
	"github.com/JustJay7/fir-manager/internal/legal"
	"github.com/JustJay7/fir-manager/internal/notify"
	"github.com/JustJay7/fir-manager/internal/records"
	"github.com/JustJay7/fir-manager/internal/report"
	"github.com/JustJay7/fir-manager/internal/workflow"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHeader carries the ID of the user authenticated by the gateway
const UserHeader = "X-User-ID"

const (
	userKey    = "user"
	dateFormat = "2006-01-02"
)

// PDFRenderer prints a rendered report
type PDFRenderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

// ReadinessProbe reports whether the AI backend answered its health probe
type ReadinessProbe interface {
	Ready() bool
}

// Deps are the services the handlers call. PDF and AI may be nil.
type Deps struct {
	DB       *gorm.DB
	FIRs     *fir.Service
	Records  *records.Recorder
	Legal    *legal.Generator
	Notifier *notify.Notifier
	Stations *directory.Repo[database.Station]
	Users    *directory.Repo[database.User]
	PDF      PDFRenderer
	AI       ReadinessProbe
	Logger   *logger.Logger
}

// Handlers holds all HTTP handlers
type Handlers struct {
	db       *gorm.DB
	firs     *fir.Service
	records  *records.Recorder
	legal    *legal.Generator
	notifier *notify.Notifier
	stations *directory.Repo[database.Station]
	users    *directory.Repo[database.User]
	pdf      PDFRenderer
	ai       ReadinessProbe
	logger   *logger.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		db:       d.DB,
		firs:     d.FIRs,
		records:  d.Records,
		legal:    d.Legal,
		notifier: d.Notifier,
		stations: d.Stations,
		users:    d.Users,
		pdf:      d.PDF,
		ai:       d.AI,
		logger:   d.Logger,
	}
}

// Identify loads the active user named by the X-User-ID header
func (h *Handlers) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserHeader)
		id, err := strconv.ParseUint(raw, 10, 32)
		if raw == "" || err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing or invalid " + UserHeader + " header",
			})
			return
		}

		var user database.User
		err = h.db.WithContext(c.Request.Context()).
			Where("active = ?", true).
			First(&user, uint(id)).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				h.logger.Error("Failed to load request user", "user_id", id, "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unknown user",
			})
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *database.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*database.User); ok {
			return u
		}
	}
	return nil
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	dbHealthy := false
	if sqlDB, err := h.db.DB(); err == nil {
		dbHealthy = sqlDB.PingContext(c.Request.Context()) == nil
	}

	aiReady := false
	if h.ai != nil {
		aiReady = h.ai.Ready()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"ai":       aiReady,
		"pdf":      h.pdf != nil,
		"time":     time.Now().Unix(),
	})
}

// CacheStats returns dashboard cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.firs.CacheStats(),
	})
}

// Dashboard returns the admin or officer dashboard of the current user
func (h *Handlers) Dashboard(c *gin.Context) {
	d, err := h.firs.Dashboard(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    d,
	})
}

// fail maps service errors to status codes
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, access.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, workflow.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, report.ErrPDFDisabled):
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		msg = "internal server error"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseDate reads a YYYY-MM-DD value. Empty input yields the zero time.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, apperr.Invalid("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}
