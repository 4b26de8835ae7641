// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestCount     *prometheus.CounterVec
	requestLatencyMS *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_request_count",
				Help: "Number of API requests",
			},
			[]string{"path", "status"},
		),
		requestLatencyMS: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "api_request_latency_ms",
				Help:    "Latency of API requests in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 14),
			},
			[]string{"path"},
		),
	}

	registerer.MustRegister(m.requestCount)
	registerer.MustRegister(m.requestLatencyMS)

	return &m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrument(metrics *Metrics, path string, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.requestCount.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		metrics.requestLatencyMS.WithLabelValues(path).Observe(float64(time.Since(start).Milliseconds()))
	})
}
