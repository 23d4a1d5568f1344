package app

import (
	"go-directory/internal/apiclient"
	"go-directory/internal/config"
	"go-directory/internal/employee"
	"go-directory/internal/health"
	"go-directory/internal/metrics"
	"go-directory/internal/middleware"
	"go-directory/internal/shared/connection"
	"go-directory/internal/view"
	"go-directory/internal/webui"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type modules struct {
	cfg       *config.Config
	logger    *zap.Logger
	handle    *connection.Handle
	rdb       *redis.Client
	publisher employee.EventPublisher
	registry  *prometheus.Registry
}

func registerModules(router *gin.Engine, m modules) {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(m.handle)

	// --- Services ---
	employeeService := employee.NewServiceWithPublisher(
		employeeRepo,
		m.rdb,
		m.publisher,
		m.cfg.Redis.ListCacheTTL,
		m.logger,
	)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, m.logger)

	var cacheCheck redis.Cmdable
	if m.rdb != nil {
		cacheCheck = m.rdb
	}
	healthChecker := health.NewChecker(m.handle, cacheCheck, m.logger)

	// --- Routes Registration ---
	router.GET("/healthz", healthChecker.Handle)
	router.GET("/metrics", metrics.Handler(m.registry))

	api := router.Group("/api/v1", middleware.LegacyStatus(m.cfg.HTTP.LegacyStatus))
	{
		employee.RegisterRoutes(api, employeeHandler, m.rdb)
	}

	if m.cfg.Web.Enabled {
		client := apiclient.New(m.cfg.Web.APIBaseURL, apiclient.WithLogger(m.logger))
		session := view.NewSession(client, view.LogNotifier{Logger: m.logger.Named("webui.session")})
		webui.RegisterRoutes(router, webui.NewHandler(session, view.NewRenderer(), m.logger))
	}
}
