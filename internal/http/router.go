// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, caller
// identity, CORS, security headers, and rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/moodlog/go-mood-backend/internal/clock"
	"github.com/moodlog/go-mood-backend/internal/config"
	"github.com/moodlog/go-mood-backend/internal/http/handlers"
	"github.com/moodlog/go-mood-backend/internal/http/middleware"
	"github.com/moodlog/go-mood-backend/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// RegisterRoutes attaches all middleware and endpoints to the given engine.
//
// Middleware order matters:
//  1. OpenTelemetry tracing
//  2. RequestID (generate/propagate correlation id)
//  3. Logger (structured access logs)
//  4. Recovery (panics to JSON 500, after logger so they are captured)
//  5. Body size limiter
//  6. Metrics plus the /metrics endpoint
//  7. Token-bucket rate limiter per user/IP
//  8. CORS and security headers
//
// Caller identity (X-User-ID) is enforced only on the versioned API group;
// /healthz and /metrics stay open for probes and scrapers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, clk clock.Clock, cfg config.Config) error {
	r.HandleMethodNotAllowed = true

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	notifSvc := services.NewNotificationService(db)
	recordSvc := services.NewRecordService(db, clk, cfg.ContentMaxLen, cfg.PublishDelay)
	quotaSvc := services.NewQuotaService(db, clk, loc, cfg.DailyFeedLimit)
	ledgerSvc := services.NewLedgerService(db, notifSvc)
	h := handlers.New(recordSvc, recordSvc, quotaSvc, ledgerSvc, notifSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Identity())
	{
		// Mood records
		api.POST("/records", h.CreateRecord)
		api.GET("/records", h.ListMyRecords)
		api.GET("/records/:id", h.GetRecord)
		api.PUT("/records/:id", h.UpdateRecord)
		api.DELETE("/records/:id", h.DeleteRecord)

		// Feed and daily view quota
		api.GET("/feed", h.Feed)
		api.POST("/feed/:id/view", h.MarkViewed)
		api.GET("/feed/quota", h.Quota)
		api.DELETE("/feed/quota", h.ResetQuota)

		// Interactions
		api.PUT("/feed/:id/empathy", h.AddEmpathy)
		api.DELETE("/feed/:id/empathy", h.RemoveEmpathy)
		api.POST("/feed/:id/message", h.SendMessage)
		api.GET("/presets", h.Presets)

		// Notifications
		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/unread-count", h.UnreadCount)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)
		api.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	}

	return nil
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Oversized bodies fail on the first downstream read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
