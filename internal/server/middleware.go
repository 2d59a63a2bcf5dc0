package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/JustJay7/fir-manager/internal/api"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/gin-gonic/gin"
)

// gateway probes hit this every few seconds
const healthPath = "/api/health"

var (
	allowedHeaders = strings.Join([]string{
		"Accept", "Authorization", "Cache-Control", "Content-Type", "Origin", api.UserHeader,
	}, ", ")
	allowedMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
)

// requestLogger logs one line per request at a level chosen by status
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.FullPath() == healthPath && c.Writer.Status() == http.StatusOK {
			return
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.RequestURI(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"user_id", c.GetHeader(api.UserHeader),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("HTTP Request", fields...)
		default:
			log.Info("HTTP Request", fields...)
		}
	}
}

// cors lets browser clients send the identity header and read download
// file names
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", allowedHeaders)
		h.Set("Access-Control-Allow-Methods", allowedMethods)
		h.Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
