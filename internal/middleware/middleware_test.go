package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-directory/internal/shared/apperror"
	"go-directory/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestContextLogger(t *testing.T) {
	t.Run("reuses incoming request id", func(t *testing.T) {
		r := gin.New()
		r.Use(ContextLogger(zap.NewNop()))
		r.GET("/ping", func(c *gin.Context) {
			assert.Equal(t, "rid-1", contextutil.GetRequestID(c.Request.Context()))
			assert.NotNil(t, contextutil.GetLogger(c.Request.Context(), nil))
			c.Status(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderRequestID, "rid-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "rid-1", w.Header().Get(HeaderRequestID))
	})

	t.Run("generates request id", func(t *testing.T) {
		r := gin.New()
		r.Use(ContextLogger(nil))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	})
}

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.POST("/x", RateLimitByIP(1, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Contains(t, w.Body.String(), apperror.CodeTooManyRequests)
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLegacyStatus(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Employee not found", "code": apperror.CodeNotFound})
	}

	t.Run("enabled rewrites failures to 200", func(t *testing.T) {
		r := gin.New()
		r.Use(LegacyStatus(true))
		r.GET("/x", handler)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeNotFound)
	})

	t.Run("enabled keeps success codes", func(t *testing.T) {
		r := gin.New()
		r.Use(LegacyStatus(true))
		r.POST("/x", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{}) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		r := gin.New()
		r.Use(LegacyStatus(false))
		r.GET("/x", handler)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestIdempotency(t *testing.T) {
	const key = "abc-123"
	cacheKey := IdempotencyCacheKey("/employees", key)
	lockKey := cacheKey + ":lock"

	newRouter := func(t *testing.T, calls *int) (*gin.Engine, redismock.ClientMock) {
		rdb, mock := redismock.NewClientMock()
		r := gin.New()
		r.POST("/employees", Idempotency(rdb), func(c *gin.Context) {
			*calls++
			c.JSON(http.StatusCreated, gin.H{"id": "e-1"})
		})
		t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
		return r, mock
	}

	post := func(r http.Handler, withKey bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(`{}`))
		if withKey {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("first request is stored", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		stored, err := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(`{"id":"e-1"}`)})
		require.NoError(t, err)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(true)
		mock.ExpectSet(cacheKey, string(stored), idempotencyCacheTTL).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		w := post(r, true)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("repeat is replayed", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"body":{"id":"e-1"}}`)

		w := post(r, true)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":"e-1"}`, w.Body.String())
		assert.Equal(t, "true", w.Header().Get(HeaderReplayed))
		assert.Equal(t, 0, calls)
	})

	t.Run("in-flight duplicate is rejected", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(false)

		w := post(r, true)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeProcessing)
		assert.Equal(t, 0, calls)
	})

	t.Run("redis outage passes through", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		mock.ExpectGet(cacheKey).SetErr(errors.New("connection refused"))

		w := post(r, true)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("no key skips redis", func(t *testing.T) {
		calls := 0
		r, _ := newRouter(t, &calls)

		w := post(r, false)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("failure behind legacy status is not stored", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		core, logs := observer.New(zapcore.DebugLevel)

		r := gin.New()
		r.Use(ContextLogger(zap.New(core)))
		api := r.Group("/api/v1")
		api.Use(LegacyStatus(true))
		calls := 0
		api.POST("/employees", Idempotency(rdb), func(c *gin.Context) {
			calls++
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error creating employee",
				"code":    apperror.CodeStoreError,
			})
		})

		apiCacheKey := IdempotencyCacheKey("/api/v1/employees", key)
		mock.ExpectGet(apiCacheKey).RedisNil()
		mock.ExpectSetNX(apiCacheKey+":lock", "locked", idempotencyLockTTL).SetVal(true)
		mock.ExpectDel(apiCacheKey + ":lock").SetVal(1)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees", strings.NewReader(`{}`))
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), apperror.CodeStoreError)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
		// an unexpected SET would surface as a failed cache write
		assert.Zero(t, logs.FilterMessage("idempotency cache write failed").Len())
		assert.Zero(t, logs.FilterMessage("idempotency lock release failed").Len())
	})

	t.Run("success behind legacy status is stored with its status", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()

		r := gin.New()
		api := r.Group("/api/v1")
		api.Use(LegacyStatus(true))
		api.POST("/employees", Idempotency(rdb), func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"id": "e-1"})
		})

		apiCacheKey := IdempotencyCacheKey("/api/v1/employees", key)
		stored, err := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(`{"id":"e-1"}`)})
		require.NoError(t, err)

		mock.ExpectGet(apiCacheKey).RedisNil()
		mock.ExpectSetNX(apiCacheKey+":lock", "locked", idempotencyLockTTL).SetVal(true)
		mock.ExpectSet(apiCacheKey, string(stored), idempotencyCacheTTL).SetVal("OK")
		mock.ExpectDel(apiCacheKey + ":lock").SetVal(1)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees", strings.NewReader(`{}`))
		req.Header.Set(HeaderIdempotencyKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil client", func(t *testing.T) {
		r := gin.New()
		r.POST("/employees", Idempotency(nil), func(c *gin.Context) { c.Status(http.StatusCreated) })

		w := post(r, true)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
