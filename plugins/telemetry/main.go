// Package telemetry provides a Prometheus metrics plugin for the proxy.
// It counts invocations by outbound status code and records how long each one took.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/maximhq/geminiproxy/schemas"
	"github.com/prometheus/client_golang/prometheus"
)

// PluginName is the name reported by GetName.
const PluginName = "telemetry"

type contextKey string

const startTimeKey contextKey = "telemetry-start-time"

// Plugin records request metrics.
type Plugin struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	logger          schemas.Logger
}

// Init creates the collectors and registers them with registerer.
// Collectors that are already registered are reused.
func Init(registerer prometheus.Registerer, logger schemas.Logger) (*Plugin, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gemini_proxy_requests_total",
			Help: "Total number of proxy invocations by outbound status code.",
		},
		[]string{"status_code"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gemini_proxy_request_duration_seconds",
			Help:    "Duration of proxy invocations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	counter, err := registerSafely(registerer, requestsTotal)
	if err != nil {
		return nil, err
	}
	histogram, err := registerSafely(registerer, requestDuration)
	if err != nil {
		return nil, err
	}

	logger.Debug("telemetry collectors registered")

	return &Plugin{
		requestsTotal:   counter.(*prometheus.CounterVec),
		requestDuration: histogram.(prometheus.Histogram),
		logger:          logger,
	}, nil
}

// registerSafely registers collector, returning the existing collector when an
// identical one was registered before.
func registerSafely(registerer prometheus.Registerer, collector prometheus.Collector) (prometheus.Collector, error) {
	if err := registerer.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector, nil
		}
		return nil, fmt.Errorf("failed to register prometheus collector: %w", err)
	}
	return collector, nil
}

// GetName returns the plugin name.
func (plugin *Plugin) GetName() string {
	return PluginName
}

// PreHook stores the invocation start time in the context.
func (plugin *Plugin) PreHook(ctx *context.Context, req *schemas.InboundRequest) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}
	*ctx = context.WithValue(*ctx, startTimeKey, time.Now())
	return nil
}

// PostHook counts the response and observes the elapsed time.
func (plugin *Plugin) PostHook(ctx *context.Context, resp *schemas.OutboundResponse) error {
	if resp == nil {
		return fmt.Errorf("no response to record")
	}
	plugin.requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if ctx == nil {
		return fmt.Errorf("context is nil")
	}
	startTime, ok := (*ctx).Value(startTimeKey).(time.Time)
	if !ok {
		return fmt.Errorf("start time not found in context")
	}
	plugin.requestDuration.Observe(time.Since(startTime).Seconds())
	return nil
}

// Cleanup does nothing; collectors stay registered for the life of the process.
func (plugin *Plugin) Cleanup() error {
	return nil
}
