package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/livaro/home/backend/api/internal/record/service"
)

// StatusInfo carries startup facts reported by the diagnostic endpoint.
type StatusInfo struct {
	DatabaseURLSet  bool
	DatabaseNameSet bool
	StartedAt       time.Time
	// PingTimeout bounds each database check; zero means defaultPingTimeout.
	PingTimeout time.Duration
}

const (
	maxListedCollections = 20
	defaultPingTimeout   = 5 * time.Second
)

// connected pings the store under the configured timeout so a dead
// database cannot hold the request past it.
func connected(c *gin.Context, svc service.Service, info StatusInfo) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout(info))
	defer cancel()
	return svc.Connected(ctx)
}

// RegisterStatusRoutes registers the banner, liveness, readiness and
// database diagnostic endpoints.
func RegisterStatusRoutes(r gin.IRouter, svc service.Service, info StatusInfo) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "LIVARO Home API", "status": "ok"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready only when the document store answers
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{"database": connected(c, svc, info)}
		uptime := time.Since(info.StartedAt).Truncate(time.Second).String()
		if !deps["database"] {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})

	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, diagnose(c, svc, info))
	})
}

func diagnose(c *gin.Context, svc service.Service, info StatusInfo) gin.H {
	status := gin.H{
		"backend":       "✅ Running",
		"database":      "❌ Not Available",
		"database_url":  setFlag(info.DatabaseURLSet),
		"database_name": setFlag(info.DatabaseNameSet),
		"collections":   []string{},
	}
	if !connected(c, svc, info) {
		status["database"] = "❌ Not Connected"
		return status
	}
	status["database"] = "✅ Connected"
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout(info))
	defer cancel()
	names, err := svc.Collections(ctx)
	if err != nil {
		status["database"] = "⚠️ Connected but error: " + truncate(err.Error(), 80)
		return status
	}
	if len(names) > maxListedCollections {
		names = names[:maxListedCollections]
	}
	if names != nil {
		status["collections"] = names
	}
	return status
}

func pingTimeout(info StatusInfo) time.Duration {
	if info.PingTimeout <= 0 {
		return defaultPingTimeout
	}
	return info.PingTimeout
}

func setFlag(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
