package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/middleware"
)

// Handler mounts its routes on a group, guarding them with auth as needed.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

type PublicHandler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	health  PublicHandler
	authH   Handler
	bedH    Handler
	patient Handler
	events  Handler
	config  RouterConfig
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MetricsNamespace string
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	health PublicHandler,
	authH Handler,
	bedH Handler,
	patientH Handler,
	eventsH Handler,
	config RouterConfig,
) *Router {
	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:  engine,
		auth:    auth,
		health:  health,
		authH:   authH,
		bedH:    bedH,
		patient: patientH,
		events:  eventsH,
		config:  config,
		metrics: initRouterMetrics(config.MetricsNamespace, config.Registerer),
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(false),
		middleware.CORS(config.CORSConfig),
		middleware.BodyLimit(middleware.DefaultMaxBodySize),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Everything except the event stream runs under the request timeout.
	timed := api.Group("", middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}))

	r.health.RegisterRoutes(timed)
	r.authH.RegisterRoutes(timed, r.auth)
	r.bedH.RegisterRoutes(timed, r.auth)
	r.patient.RegisterRoutes(timed, r.auth)
	r.events.RegisterRoutes(api, r.auth)

	return r.engine
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Metrics initialization and middleware
func initRouterMetrics(namespace string, reg prometheus.Registerer) *routerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "errors_total",
				Help:      "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Unmatched routes share one label to keep cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case code >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case code >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
