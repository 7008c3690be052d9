package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridloal/retail-pos/internal/platform/config"
)

// serve runs req through the router with a cancellable context, as the
// http.Server gives every incoming request. ReverseProxy needs one to
// notice the client going away.
func serve(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil).WithContext(ctx))
	return w
}

func TestGatewayRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Path", r.URL.RequestURI())
		w.WriteHeader(http.StatusTeapot)
	}))
	defer backend.Close()

	router, err := newGatewayRouter(config.GatewayConfig{POSServiceURL: backend.URL, AllowedCORSOrigin: "http://till.local"})
	require.NoError(t, err)

	t.Run("Forwards API calls unchanged", func(t *testing.T) {
		w := serve(t, router, http.MethodGet, "/api/v1/reports/sales?range=daily")
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "/api/v1/reports/sales?range=daily", w.Header().Get("X-Seen-Path"))
		assert.Equal(t, "http://till.local", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Preflight answered locally", func(t *testing.T) {
		w := serve(t, router, http.MethodOptions, "/api/v1/invoices")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("X-Seen-Path"))
	})

	t.Run("Unknown prefix", func(t *testing.T) {
		w := serve(t, router, http.MethodGet, "/admin")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGatewayRouter_BadTarget(t *testing.T) {
	_, err := newGatewayRouter(config.GatewayConfig{POSServiceURL: "localhost"})
	assert.Error(t, err)
}

func TestGatewayRouter_BackendDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	backend := httptest.NewServer(http.NotFoundHandler())
	deadURL := backend.URL
	backend.Close()

	router, err := newGatewayRouter(config.GatewayConfig{POSServiceURL: deadURL, AllowedCORSOrigin: "*"})
	require.NoError(t, err)

	w := serve(t, router, http.MethodGet, "/api/v1/products")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Service unavailable")
}
