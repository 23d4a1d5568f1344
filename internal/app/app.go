package app

import (
	"go-directory/internal/bootstrap"
	"go-directory/internal/config"
	"go-directory/internal/employee"
	"go-directory/internal/messaging/kafka/producer"
	"go-directory/internal/metrics"
	"go-directory/internal/middleware"
	"go-directory/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildApp wires infrastructure, modules and routes onto router. The store
// connection opens lazily on first use. The returned closers release what
// was opened, in order.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) ([]bootstrap.Closer, error) {
	var closers []bootstrap.Closer

	// 1. Setup Infrastructure
	handle := connection.NewHandle(connection.PostgresOpener(cfg.Postgres, cfg.DBMaxRetries))
	closers = append(closers, bootstrap.Closer{Name: "postgres", Close: handle.Close})

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		client, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.DBMaxRetries)
		if err != nil {
			return closers, err
		}
		rdb = client
		closers = append(closers, bootstrap.Closer{Name: "redis", Close: rdb.Close})
		logger.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Info("REDIS_ADDR not set, employee list caching and idempotency disabled")
	}

	var publisher employee.EventPublisher
	if cfg.Kafka.Broker != "" {
		writer, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.DBMaxRetries)
		if err != nil {
			return closers, err
		}
		closers = append(closers, bootstrap.Closer{Name: "kafka", Close: writer.Close})
		publisher = producer.NewEventPublisher(writer, cfg.Kafka.Topic)
		logger.Info("Kafka writer ready", zap.String("topic", cfg.Kafka.Topic))
	} else {
		logger.Info("KAFKA_BROKER not set, employee lifecycle events disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	router.Use(
		middleware.ContextLogger(logger),
		appMetrics.Middleware(),
	)

	// 2. Register Modules & Routes
	registerModules(router, modules{
		cfg:       cfg,
		logger:    logger,
		handle:    handle,
		rdb:       rdb,
		publisher: publisher,
		registry:  reg,
	})

	return closers, nil
}
