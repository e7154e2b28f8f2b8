package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(maxBytes int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(maxBytes))
		router.POST("/api/v1/billing/invoices", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				c.String(http.StatusBadRequest, "body too large")
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		return router
	}

	t.Run("passes a payload under the cap", func(t *testing.T) {
		router := newRouter(1024)

		body := strings.NewReader(`{"invoice_type":"SALE","party_id":"P-001"}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/billing/invoices", body))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an oversized Content-Length with 413", func(t *testing.T) {
		router := newRouter(100)

		body := strings.NewReader(strings.Repeat("x", 200))
		req := httptest.NewRequest("POST", "/api/v1/billing/invoices", body)
		req.ContentLength = 200
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})

	t.Run("caps a chunked body mid-read", func(t *testing.T) {
		router := newRouter(50)

		// ContentLength -1 skips the up-front check; MaxBytesReader
		// must still stop the read.
		body := strings.NewReader(strings.Repeat("x", 200))
		req := httptest.NewRequest("POST", "/api/v1/billing/invoices", body)
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ignores bodyless GET requests", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(10))
		router.GET("/api/v1/billing/invoices", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/billing/invoices", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
