package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deployprobe/deployprobe/internal/auth"
	"github.com/deployprobe/deployprobe/internal/circuitbreaker"
	"github.com/deployprobe/deployprobe/internal/config"
	"github.com/deployprobe/deployprobe/internal/handler"
	"github.com/deployprobe/deployprobe/internal/healthcheck"
	"github.com/deployprobe/deployprobe/internal/metrics"
	"github.com/deployprobe/deployprobe/internal/middleware"
	"github.com/deployprobe/deployprobe/internal/probe"
	"github.com/deployprobe/deployprobe/internal/ratelimit"
	"github.com/deployprobe/deployprobe/internal/storage"
)

// Version is reported by /health and the startup log.
const Version = "0.2.0"

type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     *zap.Logger
	collector  *metrics.Collector
	limiter    ratelimit.Limiter
	checker    *healthcheck.Checker
	authSvc    *auth.Service
	httpServer *http.Server
}

func New(cfg *config.Config, logger *zap.Logger, redis *storage.RedisClient) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	collector := metrics.NewCollector()
	limiter := ratelimit.NewLimiter(
		cfg.RateLimit.Strategy,
		cfg.RateLimit.Store,
		cfg.RateLimit.RequestsPerWindow,
		cfg.RateLimit.Window(),
		redis,
	)

	breaker := circuitbreaker.New(circuitbreaker.Config{
		MaxFailures:     5,
		Timeout:         30 * time.Second,
		HalfOpenSuccess: 1,
	})
	prober := probe.NewClient(cfg.Probe.Timeout(), breaker)

	checker := healthcheck.NewChecker(&healthcheck.Config{
		Targets:  cfg.Probe.Targets,
		Interval: cfg.Probe.HealthInterval(),
	}, logger)

	authSvc := auth.NewService(cfg.Admin.Secret, cfg.Admin.TokenTTL())

	s := &Server{
		router:    router,
		config:    cfg,
		logger:    logger,
		collector: collector,
		limiter:   limiter,
		checker:   checker,
		authSvc:   authSvc,
	}

	s.setupMiddleware()
	s.setupRoutes(prober, breaker)

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	// A websocket session lives as long as the peer keeps it open; its
	// duration is not a request latency.
	s.router.Use(middleware.Metrics(s.collector, "/ws"))
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.SecurityHeaders())
	// Platform probes hitting /health and the dashboard are never throttled.
	s.router.Use(middleware.RateLimit(s.limiter, "/health", "/"))
}

func (s *Server) setupRoutes(prober *probe.Client, breaker *circuitbreaker.CircuitBreaker) {
	systemHandler := handler.NewSystemHandler(Version, s.collector, s.checker, s.limiter, breaker)
	metricsHandler := handler.NewMetricsHandler(s.collector)
	probeHandler := handler.NewProbeHandler(prober, s.config.Probe.DefaultURL)
	filesHandler := handler.NewFilesHandler(s.config.Upload.MaxBytes)
	wsHandler := handler.NewWSHandler(s.logger)
	dashboardHandler := handler.NewDashboardHandler()

	s.router.GET("/", dashboardHandler.Index)
	s.router.GET("/platform", systemHandler.Platform)
	s.router.GET("/health", systemHandler.Health)
	s.router.GET("/metrics", metricsHandler.Get)

	s.router.GET("/fast", probeHandler.Fast)
	s.router.POST("/slow", probeHandler.Slow)
	s.router.GET("/external", probeHandler.External)
	s.router.GET("/error/404", probeHandler.Error404)
	s.router.GET("/error/500", probeHandler.Error500)

	s.router.POST("/upload", filesHandler.Upload)
	s.router.GET("/download", filesHandler.Download)

	s.router.GET("/ws", wsHandler.Echo)

	if s.authSvc.Enabled() {
		authHandler := handler.NewAuthHandler(s.authSvc)
		s.router.POST("/auth/token", authHandler.Token)

		admin := s.router.Group("/admin")
		admin.Use(middleware.RequireAuth(s.authSvc))
		{
			admin.GET("/status", systemHandler.AdminStatus)
			admin.POST("/metrics/reset", metricsHandler.Reset)
		}
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})
}

func (s *Server) Run(addr string) error {
	s.checker.Start()

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
		// /slow deliberately holds connections, so the write timeout has
		// to stay generous.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting deploy probe",
		zap.String("addr", addr),
		zap.String("version", Version),
		zap.String("environment", s.config.Server.Environment),
		zap.String("rate_limit_strategy", s.config.RateLimit.Strategy),
		zap.Bool("admin_enabled", s.authSvc.Enabled()),
	)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.checker.Stop()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
