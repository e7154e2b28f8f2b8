package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func requestLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	t.Fatal("no HTTP Request entry logged")
	return observer.LoggedEntry{}
}

func TestGinMiddleware(t *testing.T) {
	t.Run("successful requests log at info with the access fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.POST("/api/v1/billing/invoices", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"id": "INV-0001"})
		})

		req := httptest.NewRequest("POST", "/api/v1/billing/invoices", nil)
		req.Header.Set("User-Agent", "backoffice-cli/1.0")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		entry := requestLog(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		keys := make(map[string]bool)
		for _, field := range entry.Context {
			keys[field.Key] = true
		}
		for _, want := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
			assert.True(t, keys[want], "missing field %q", want)
		}
	})

	t.Run("4xx responses log at warn, 5xx at error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/reject", func(c *gin.Context) {
			c.JSON(http.StatusConflict, gin.H{"error": "INVALID_STATE"})
		})
		router.GET("/boom", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL"})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/reject", nil))
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

		logs := recorded.All()
		require.Len(t, logs, 2)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
	})

	t.Run("request ID set upstream is carried on the access line", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-list-9")
			c.Next()
		})
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/billing/invoices", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/billing/invoices", nil))

		entry := requestLog(t, recorded)
		found := false
		for _, field := range entry.Context {
			if field.Key == "request_id" {
				found = true
				assert.Equal(t, "req-list-9", field.String)
			}
		}
		assert.True(t, found)
	})

	t.Run("query strings are logged when present", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/billing/invoices", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/billing/invoices?status=CONFIRMED&page=2", nil))

		entry := requestLog(t, recorded)
		found := false
		for _, field := range entry.Context {
			if field.Key == "query" {
				found = true
				assert.Contains(t, field.String, "status=CONFIRMED")
			}
		}
		assert.True(t, found)
	})

	t.Run("request context exposes the scoped logger to downstream layers", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)

		var ctxLogger *zap.Logger
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/billing/invoices", func(c *gin.Context) {
			ctxLogger = L(c.Request.Context())
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/billing/invoices", nil))

		assert.NotNil(t, ctxLogger)
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("nil batch in allocation plan")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	t.Run("returns the request-scoped logger", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)

		var got *zap.Logger
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/billing/invoices", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/billing/invoices", nil))

		assert.NotNil(t, got)
	})

	t.Run("falls back to a no-op logger when none is set", func(t *testing.T) {
		var got *zap.Logger
		router := gin.New()
		router.GET("/bare", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/bare", nil))

		require.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("noop") })
	})
}
