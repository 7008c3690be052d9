package main

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/retail-pos/internal/platform/config"
	"github.com/ridloal/retail-pos/internal/platform/logger"
	"github.com/ridloal/retail-pos/internal/platform/middleware"
)

func newSingleHostReverseProxy(targetHost string) (*httputil.ReverseProxy, error) {
	targetURL, err := url.Parse(targetHost)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target URL '%s': %w", targetHost, err)
	}
	if targetURL.Scheme == "" || targetURL.Host == "" {
		return nil, fmt.Errorf("target URL '%s' needs a scheme and host", targetHost)
	}

	proxy := httputil.NewSingleHostReverseProxy(targetURL)
	proxy.ErrorHandler = func(rw http.ResponseWriter, req *http.Request, err error) {
		logger.Error(fmt.Sprintf("Gateway: proxy error for %s %s to %s", req.Method, req.URL.Path, targetURL), err, nil)
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusBadGateway)
		_, _ = rw.Write([]byte(`{"error":"Service unavailable or proxy error","code":"INTERNAL"}`))
	}
	return proxy, nil
}

// newGatewayRouter forwards the API and health check to the POS service.
// Paths are passed through unchanged.
func newGatewayRouter(cfg config.GatewayConfig) (*gin.Engine, error) {
	proxy, err := newSingleHostReverseProxy(cfg.POSServiceURL)
	if err != nil {
		return nil, err
	}
	forward := gin.WrapH(proxy)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedCORSOrigin))
	router.Any("/api/v1/*path", forward)
	router.GET("/health", forward)
	return router, nil
}

func main() {
	config.LoadEnvFile()
	logger.SetLevel(config.GetEnv("LOG_LEVEL", "info"))
	cfg := config.LoadGatewayConfig()
	logger.Info("Starting API Gateway on port " + cfg.ListenPort)

	router, err := newGatewayRouter(cfg)
	if err != nil {
		logger.Error("Failed to create reverse proxy for POS service", err, nil)
		return
	}
	logger.Info(fmt.Sprintf("Routing /api/v1/ to %s", cfg.POSServiceURL))

	server := &http.Server{
		Addr:    ":" + cfg.ListenPort,
		Handler: router,
	}

	logger.Info(fmt.Sprintf("API Gateway successfully configured and listening on :%s", cfg.ListenPort))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API Gateway failed to start or crashed", err, nil)
	}
}
