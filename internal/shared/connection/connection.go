package connection

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// retryDelay is the pause between connection attempts.
var retryDelay = 5 * time.Second

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// NewPool builds a pgx pool and checks it answers a ping.
func NewPool(ctx context.Context, cfg PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = 3
	poolConfig.MaxConns = 25
	poolConfig.MaxConnIdleTime = 30 * time.Second
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection to PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL DB: %w", err)
	}

	return pool, nil
}

// OpenGORM bridges a pgx pool into gorm through database/sql.
func OpenGORM(pool *pgxpool.Pool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// PostgresOpener returns an Opener that retries the first connect up to
// maxRetries times.
func PostgresOpener(cfg PostgresConfig, maxRetries int) Opener {
	if maxRetries < 1 {
		maxRetries = 1
	}

	return func(ctx context.Context) (*gorm.DB, error) {
		var lastErr error

		for i := 1; i <= maxRetries; i++ {
			pool, err := NewPool(ctx, cfg)
			if err != nil {
				lastErr = err
				log.Printf("⚠️ DB connect failed (%d/%d): %v", i, maxRetries, err)
				if !sleep(ctx, i, maxRetries) {
					break
				}
				continue
			}

			db, err := OpenGORM(pool)
			if err != nil {
				pool.Close()
				lastErr = err
				log.Printf("⚠️ GORM open failed (%d/%d): %v", i, maxRetries, err)
				if !sleep(ctx, i, maxRetries) {
					break
				}
				continue
			}

			log.Println("✅ GORM connected to database")
			return db, nil
		}

		return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
	}
}

func sleep(ctx context.Context, attempt, maxRetries int) bool {
	if attempt == maxRetries {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(retryDelay):
		return true
	}
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	for i := 1; i <= maxRetries; i++ {
		ctx := context.Background()
		if err := rdb.Ping(ctx).Err(); err == nil {
			log.Println("✅ Connected to Redis")
			return rdb, nil
		}

		log.Printf("⚠️ Redis retry %d/%d failed", i, maxRetries)
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect redis at %s", addr)
}

// NewKafkaWriter returns a writer tuned for one event per request: each
// message is flushed immediately instead of waiting out the default 1s batch.
func NewKafkaWriter(broker string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		BatchSize:              1,
		BatchTimeout:           5 * time.Millisecond,
		MaxAttempts:            3,
		WriteTimeout:           time.Second,
	}
}

func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafka.Writer, error) {
	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := kafka.DialContext(context.Background(), "tcp", broker)
		if err == nil {
			_ = conn.Close()
			log.Println("✅ Connected to Kafka")
			return NewKafkaWriter(broker), nil
		}

		lastErr = err
		log.Printf("⚠️ Kafka retry %d/%d failed: %v", i, maxRetries, err)
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect kafka: %w", lastErr)
}
