package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/livaro/home/backend/api/pkg/logger"
	"github.com/livaro/home/backend/api/pkg/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID propagates an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger logs one line per request and records its latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		switch {
		case status >= 500:
			logger.Errorf("%s %s %d %s id=%s", c.Request.Method, c.Request.URL.Path, status, elapsed, GetRequestID(c))
		case status >= 400:
			logger.Warnf("%s %s %d %s id=%s", c.Request.Method, c.Request.URL.Path, status, elapsed, GetRequestID(c))
		default:
			logger.Infof("%s %s %d %s id=%s", c.Request.Method, c.Request.URL.Path, status, elapsed, GetRequestID(c))
		}
	}
}
