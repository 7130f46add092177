// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus collectors exported on /metrics:
// inbound HTTP traffic and outbound calls to the remote blog API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cervejas"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	apiCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_calls_total",
		Help:      "Calls to the remote blog API, by operation and outcome.",
	}, []string{"operation", "outcome"})

	apiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_call_duration_seconds",
		Help:      "Remote blog API latency by operation.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	categoryRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_refreshes_total",
		Help:      "Category store refreshes, by outcome.",
	}, []string{"outcome"})

	liveViews = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_views",
		Help:      "Live views currently registered.",
	})
)

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveAPICall records one call to the remote API. outcome is "ok" or the
// error kind.
func ObserveAPICall(operation, outcome string, d time.Duration) {
	apiCalls.WithLabelValues(operation, outcome).Inc()
	apiDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveCategoryRefresh records a category store refresh.
func ObserveCategoryRefresh(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	categoryRefreshes.WithLabelValues(outcome).Inc()
}

// SetLiveViews reports the number of registered live views.
func SetLiveViews(n int) {
	liveViews.Set(float64(n))
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
