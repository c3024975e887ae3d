package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/livaro/home/backend/api/internal/record"
	"github.com/livaro/home/backend/api/internal/record/service"
	"github.com/livaro/home/backend/api/pkg/logger"
)

// Options tune the list endpoints and error responses.
type Options struct {
	DefaultLimit int64
	// MaxLimit clamps caller-supplied limits; 0 disables the clamp.
	MaxLimit int64
	// DetailMax bounds the error text returned with a 500 response, in runes.
	DetailMax int
}

// DefaultOptions mirrors the limits used when nothing is configured.
func DefaultOptions() Options {
	return Options{DefaultLimit: service.DefaultLimit, MaxLimit: 500, DetailMax: 200}
}

// RegisterRecordRoutes registers POST and GET /<path> for every kind.
func RegisterRecordRoutes(r gin.IRouter, svc service.Service, opts Options) {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = service.DefaultLimit
	}
	for _, k := range record.Kinds() {
		r.POST("/"+k.Path, createHandler(svc, k, opts))
		r.GET("/"+k.Path, listHandler(svc, k, opts))
	}
}

func createHandler(svc service.Service, kind record.Kind, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := kind.New()
		if err := c.ShouldBindJSON(rec); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		id, err := svc.Store(c.Request.Context(), kind, rec)
		if err != nil {
			serverError(c, kind, "create", err, opts.DetailMax)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "message": kind.Message})
	}
}

func listHandler(svc service.Service, kind record.Kind, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := kind.BuildFilter(c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		limit, err := parseLimit(c.Query("limit"), opts)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		docs, err := svc.Query(c.Request.Context(), kind, filter, limit)
		if err != nil {
			serverError(c, kind, "list", err, opts.DetailMax)
			return
		}
		logger.Debugf("list %s: filter=%v limit=%d returned=%d", kind.Collection(), filter.BSON(), limit, len(docs))
		c.JSON(http.StatusOK, docs)
	}
}

var errBadLimit = errors.New("limit must be a positive integer")

func parseLimit(raw string, opts Options) (int64, error) {
	if raw == "" {
		return opts.DefaultLimit, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, &record.ValidationError{Field: "limit", Err: errBadLimit}
	}
	if opts.MaxLimit > 0 && n > opts.MaxLimit {
		n = opts.MaxLimit
	}
	return n, nil
}

// serverError writes a generic 500; the cause is not distinguished beyond
// its (truncated) text.
func serverError(c *gin.Context, kind record.Kind, op string, err error, max int) {
	logger.Errorf("%s %s failed: %v", op, kind.Collection(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": truncate(err.Error(), max)})
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
