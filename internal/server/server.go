package server

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Skufu/healthdesk/internal/chat"
	"github.com/Skufu/healthdesk/internal/metrics"
	"github.com/Skufu/healthdesk/internal/risk"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the process-wide, read-only collaborators shared by every
// request. They must be fully built before the router serves traffic.
type Deps struct {
	DB               HealthChecker
	Matcher          *chat.Matcher
	Assessor         *risk.Assessor
	FAQCount         int
	IndexReady       bool
	Logger           *zap.Logger
	StaticRoot       string
	CORSOrigins      []string
	MaxMessageLength int
	Now              func() time.Time
}

const requestIDHeader = "X-Request-ID"

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxMessageLength <= 0 {
		d.MaxMessageLength = 500
	}
	if len(d.CORSOrigins) == 0 {
		d.CORSOrigins = []string{"*"}
	}
	if d.Matcher == nil {
		d.Matcher = chat.NewMatcher(nil, nil)
	}
	if d.StaticRoot == "" {
		d.StaticRoot = "."
	}

	h := &handlers{deps: d}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(d.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			d.Logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("request_id", c.GetString(requestIDHeader)))
			metrics.RecordError("internal")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Sunucu hatası", "status": "error"})
		}),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: d.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.Static("/static", d.StaticRoot)
	router.StaticFile("/", filepath.Join(d.StaticRoot, "index.html"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", h.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/predict", h.predict)
	router.POST("/chatbot", h.chatbot)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sayfa bulunamadı"})
	})

	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(route).Observe(elapsed.Seconds())

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("request_id", c.GetString(requestIDHeader)),
		)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
