// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics records HTTP request metrics with OpenTelemetry and
// exposes them in the Prometheus text format.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"

	"github.com/olegiv/pressroom/internal/cache"
)

// Instrument names as they appear after Prometheus name sanitizing.
const (
	RequestCountName    = "http_server_request_count"
	RequestDurationName = "http_server_duration_seconds"
	CacheHitsName       = "auth_cache_hits"
	CacheMissesName     = "auth_cache_misses"
)

// unmatchedRoute labels requests that matched no route pattern.
const unmatchedRoute = "unmatched"

var latencyBoundaries = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	keyMethod = attribute.Key("method")
	keyRoute  = attribute.Key("route")
	keyStatus = attribute.Key("status")
)

// Recorder owns the meter and the Prometheus exporter.
type Recorder struct {
	exporter *prometheus.Exporter
	meter    metric.Meter
	requests metric.Int64Counter
	duration metric.Float64ValueRecorder
}

// New creates a Recorder whose instruments are named under serviceName.
func New(serviceName string) (*Recorder, error) {
	config := prometheus.Config{DefaultHistogramBoundaries: latencyBoundaries}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
		controller.WithCollectPeriod(0),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, fmt.Errorf("initializing prometheus exporter: %w", err)
	}

	meter := exporter.MeterProvider().Meter(serviceName)
	must := metric.Must(meter)

	return &Recorder{
		exporter: exporter,
		meter:    meter,
		requests: must.NewInt64Counter(
			"http/server/request_count",
			metric.WithDescription("Count of completed requests, by method, route and status"),
		),
		duration: must.NewFloat64ValueRecorder(
			"http/server/duration_seconds",
			metric.WithDescription("Request latency in seconds, by method and route"),
		),
	}, nil
}

// Handler serves the collected metrics.
func (m *Recorder) Handler() http.Handler {
	return m.exporter
}

// Middleware counts requests and records their latency, labelled by the
// chi route pattern so ids do not explode the label space.
func (m *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		ctx := context.WithoutCancel(r.Context())
		m.requests.Add(ctx, 1,
			keyMethod.String(r.Method),
			keyRoute.String(route),
			keyStatus.String(strconv.Itoa(status)),
		)
		m.duration.Record(ctx, time.Since(start).Seconds(),
			keyMethod.String(r.Method),
			keyRoute.String(route),
		)
	})
}

// ObserveCache exports the hit and miss counters of the credential cache.
// Backends without counters are ignored.
func (m *Recorder) ObserveCache(c cache.Cacher, backend string) {
	sp, ok := c.(cache.StatsProvider)
	if !ok {
		return
	}
	labels := []attribute.KeyValue{attribute.String("backend", backend)}
	must := metric.Must(m.meter)
	must.NewInt64SumObserver("auth/cache/hits",
		func(_ context.Context, result metric.Int64ObserverResult) {
			result.Observe(sp.Stats().Hits, labels...)
		},
		metric.WithDescription("Credential checks answered from the cache"),
	)
	must.NewInt64SumObserver("auth/cache/misses",
		func(_ context.Context, result metric.Int64ObserverResult) {
			result.Observe(sp.Stats().Misses, labels...)
		},
		metric.WithDescription("Credential checks that ran the password hash"),
	)
}
