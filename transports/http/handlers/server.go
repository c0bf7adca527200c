package handlers

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasthttp/router"
	geminiproxy "github.com/maximhq/geminiproxy"
	"github.com/maximhq/geminiproxy/transports/lib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// ShutdownTimeout bounds plugin cleanup after the listener has stopped.
const ShutdownTimeout = 30 * time.Second

// ProxyHTTPServer is the local development server around the proxy.
type ProxyHTTPServer struct {
	Host string
	Port string

	Config   *lib.Config
	Proxy    *geminiproxy.Proxy
	Registry *prometheus.Registry

	Server *fasthttp.Server
	Router *router.Router
}

// NewProxyHTTPServer creates a server for config. Call Bootstrap before Start.
func NewProxyHTTPServer(config *lib.Config) *ProxyHTTPServer {
	return &ProxyHTTPServer{
		Host:     config.Host,
		Port:     config.Port,
		Config:   config,
		Registry: prometheus.NewRegistry(),
	}
}

// RegisterCollectorSafely attempts to register a Prometheus collector,
// handling the case where it may already be registered.
// It logs any errors that occur during registration, except for AlreadyRegisteredError.
func (s *ProxyHTTPServer) RegisterCollectorSafely(collector prometheus.Collector) {
	if err := s.Registry.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			logger.Error("failed to register prometheus collector: %v", err)
		}
	}
}

// Bootstrap registers the collectors, builds the proxy with its plugins and sets up the routes.
func (s *ProxyHTTPServer) Bootstrap() error {
	var err error

	s.RegisterCollectorSafely(collectors.NewGoCollector())
	s.RegisterCollectorSafely(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	logger.Debug("prometheus Go/Process collectors registered.")

	s.Proxy, err = lib.NewProxy(s.Config, logger, s.Registry)
	if err != nil {
		return fmt.Errorf("failed to initialize proxy: %v", err)
	}

	s.RegisterRoutes()

	s.Server = &fasthttp.Server{
		Handler: s.Router.Handler,
	}
	return nil
}

// RegisterRoutes initializes the routes of the server.
func (s *ProxyHTTPServer) RegisterRoutes() {
	s.Router = router.New()

	NewProxyHandler(s.Proxy, logger).RegisterRoutes(s.Router)
	NewHealthHandler(logger).RegisterRoutes(s.Router)

	// Add Prometheus /metrics endpoint
	s.Router.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))
	// 404 handler
	s.Router.NotFound = func(ctx *fasthttp.RequestCtx) {
		SendError(ctx, fasthttp.StatusNotFound, "Route not found: "+string(ctx.Path()), logger)
	}
}

// Start starts the HTTP server at the configured host and port.
// It blocks until the server fails or a SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *ProxyHTTPServer) Start() error {
	sigChan := make(chan os.Signal, 1)
	errChan := make(chan error, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverAddr := net.JoinHostPort(s.Host, s.Port)
	go func() {
		logger.Info("gemini proxy listening on http://%s%s", serverAddr, NetlifyFunctionPath)
		if err := s.Server.ListenAndServe(serverAddr); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received signal %v, initiating graceful shutdown...", sig)
		if err := s.Server.Shutdown(); err != nil {
			logger.Error("error during graceful shutdown: %v", err)
		} else {
			logger.Info("server gracefully shutdown")
		}
		s.cleanup()
	case err := <-errChan:
		s.cleanup()
		return err
	}
	return nil
}

// cleanup releases plugin resources, giving up after ShutdownTimeout.
func (s *ProxyHTTPServer) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Proxy.Cleanup()
	}()

	select {
	case <-done:
		logger.Info("cleanup completed")
	case <-ctx.Done():
		logger.Warn("cleanup timed out after %s", ShutdownTimeout)
	}
}
