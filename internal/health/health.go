package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	db     DBPinger
	rdb    redis.Cmdable
	logger *zap.Logger
}

// NewChecker builds the /healthz handler. rdb may be nil when caching is
// disabled; the cache entry is then omitted.
func NewChecker(db DBPinger, rdb redis.Cmdable, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.L()
	}
	return &Checker{db: db, rdb: rdb, logger: logger.Named("health")}
}

func (h *Checker) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	h.logger.Debug("performing health checks")

	status := map[string]string{}
	overall := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status["database"] = statusUnavailable
		overall = http.StatusServiceUnavailable
		h.logger.Warn("health check failed: database ping", zap.Error(err))
	} else {
		status["database"] = statusOK
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			status["cache"] = statusUnavailable
			overall = http.StatusServiceUnavailable
			h.logger.Warn("health check failed: redis ping", zap.Error(err))
		} else {
			status["cache"] = statusOK
		}
	}

	c.JSON(overall, status)
}
