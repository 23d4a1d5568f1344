package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-directory/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(_ *testing.T) {
	reg := prometheus.NewRegistry()

	_ = metrics.NewMetrics(reg)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/employees/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", metrics.Handler(reg))

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+id, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, "/api/v1/employees/:id", "404")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "directory_http_requests_total")
}
