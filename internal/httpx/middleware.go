// Package httpx holds the gin middleware chain and the error-to-status mapping shared by handlers.
package httpx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/MikeMC777/taller-ecom/internal/apperr"
	"github.com/MikeMC777/taller-ecom/internal/logx"
)

const (
	ridKey       = "rid"
	principalKey = "principal"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ridKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// Logger attaches a request-scoped zap logger to the request context and logs one line per request.
func Logger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetString(ridKey)
		log := base.With(zap.String("rid", rid))
		c.Request = c.Request.WithContext(logx.WithContext(c.Request.Context(), log))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
		}
		if p, ok := Principal(c); ok {
			fields = append(fields, zap.Int64("principal", p))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("http", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("http", fields...)
		default:
			log.Info("http", fields...)
		}
	}
}

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Handler records requests by route template, not raw path, to bound label cardinality.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.duration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Timeout bounds every request's context; the store drivers abort on cancellation.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// TokenVerifier resolves a bearer token to a customer id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Auth requires a valid bearer token and stores the principal for the handler.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			WriteError(c, apperr.Unauthenticated("missing authorization token"))
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			WriteError(c, apperr.Unauthenticated("invalid authorization format, expected Bearer token"))
			c.Abort()
			return
		}
		id, err := v.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			logx.FromContext(c.Request.Context()).Warn("invalid token", zap.Error(err))
			WriteError(c, apperr.Unauthenticated("invalid or expired token"))
			c.Abort()
			return
		}
		c.Set(principalKey, id)
		c.Next()
	}
}

// Principal returns the customer id set by Auth.
func Principal(c *gin.Context) (int64, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
