// Package router assembles the gin engine: middleware chain, templates,
// metrics and the page routes.
package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/prescripto/patient-portal/internal/config"
	"github.com/prescripto/patient-portal/internal/handler"
	authHandler "github.com/prescripto/patient-portal/internal/handler/auth"
	bookingHandler "github.com/prescripto/patient-portal/internal/handler/booking"
	doctorHandler "github.com/prescripto/patient-portal/internal/handler/doctor"
	profileHandler "github.com/prescripto/patient-portal/internal/handler/profile"
	siteHandler "github.com/prescripto/patient-portal/internal/handler/site"
	"github.com/prescripto/patient-portal/internal/middleware"
	"github.com/prescripto/patient-portal/internal/session"
	"github.com/prescripto/patient-portal/pkg/metrics"
)

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	siteH    *siteHandler.Handler
	authH    *authHandler.Handler
	doctorH  *doctorHandler.Handler
	bookingH *bookingHandler.Handler
	profileH *profileHandler.Handler
	metrics  *metrics.Metrics
	cfg      *config.Config
}

func NewRouter(
	cfg *config.Config,
	m *metrics.Metrics,
	auth *middleware.AuthMiddleware,
	siteH *siteHandler.Handler,
	authH *authHandler.Handler,
	doctorH *doctorHandler.Handler,
	bookingH *bookingHandler.Handler,
	profileH *profileHandler.Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		siteH:    siteH,
		authH:    authH,
		doctorH:  doctorH,
		bookingH: bookingH,
		profileH: profileH,
		metrics:  m,
		cfg:      cfg,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		session.SameSite,
		r.metricsMiddleware(),
	)

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	engine.LoadHTMLGlob("web/templates/*.html")
	engine.Static("/static", "./web/static")

	return r
}

func (r *Router) Engine() *gin.Engine { return r.engine }

func (r *Router) Setup() {
	r.engine.GET("/health", handler.HealthCheck)
	if r.cfg.Monitoring.MetricsEnabled {
		r.engine.GET(r.cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	pages := r.engine.Group("", r.auth.LoadSession())
	r.siteH.RegisterRoutes(pages)
	r.authH.RegisterRoutes(pages)
	r.doctorH.RegisterRoutes(pages)
	r.bookingH.RegisterRoutes(pages, r.auth)
	r.profileH.RegisterRoutes(pages, r.auth)
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		r.metrics.ObserveHTTP(c.Request.Method, path, status, time.Since(start))
	}
}
