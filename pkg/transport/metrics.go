// SPDX-License-Identifier: Apache-2.0
//
// Copyright 2025 The frost-enrollment Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics error types.
var (
	// ErrMetricsRegistrationFailed indicates metric registration failed.
	ErrMetricsRegistrationFailed = errors.New("transport: metric registration failed")
)

// MetricsConfig holds configuration for the metrics collector.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Namespace is the Prometheus namespace for all metrics
	// (default: "frost_enrollment").
	Namespace string

	// Subsystem is the Prometheus subsystem for all metrics
	// (default: "transport").
	Subsystem string

	// RoundDurationBuckets defines custom histogram buckets for round
	// duration. If nil, default buckets are used.
	RoundDurationBuckets []float64
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled:   true,
		Namespace: "frost_enrollment",
		Subsystem: "transport",
		RoundDurationBuckets: []float64{
			0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0, 30.0,
		},
	}
}

// MetricsCollector collects Prometheus metrics for the enrollment
// transport layer. It uses its own registry to avoid polluting the
// global one.
type MetricsCollector struct {
	config   *MetricsConfig
	registry *prometheus.Registry

	sessionsTotal  *prometheus.CounterVec
	messagesTotal  *prometheus.CounterVec
	joinsRejected  prometheus.Counter
	roundDuration  *prometheus.HistogramVec
	activeSessions atomic.Int64

	activeSessionsGauge prometheus.GaugeFunc
}

// NewMetricsCollector creates a new metrics collector with the given
// configuration.
func NewMetricsCollector(config *MetricsConfig) (*MetricsCollector, error) {
	if config == nil {
		config = DefaultMetricsConfig()
	}

	if !config.Enabled {
		return &MetricsCollector{config: config}, nil
	}

	namespace := config.Namespace
	if namespace == "" {
		namespace = "frost_enrollment"
	}
	subsystem := config.Subsystem
	if subsystem == "" {
		subsystem = "transport"
	}
	buckets := config.RoundDurationBuckets
	if buckets == nil {
		buckets = DefaultMetricsConfig().RoundDurationBuckets
	}

	mc := &MetricsCollector{
		config:   config,
		registry: prometheus.NewRegistry(),
	}

	mc.sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Total number of enrollment sessions by outcome.",
		},
		[]string{"outcome"},
	)

	mc.messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_total",
			Help:      "Total number of relayed protocol messages by type.",
		},
		[]string{"type"},
	)

	mc.joinsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "joins_rejected_total",
			Help:      "Total number of join requests rejected by rate limiting.",
		},
	)

	mc.roundDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "round_duration_seconds",
			Help:      "Enrollment round duration distribution in seconds.",
			Buckets:   buckets,
		},
		[]string{"round"},
	)

	mc.activeSessionsGauge = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Number of currently active enrollment sessions.",
		},
		func() float64 {
			return float64(mc.activeSessions.Load())
		},
	)

	collectors := []prometheus.Collector{
		mc.sessionsTotal,
		mc.messagesTotal,
		mc.joinsRejected,
		mc.roundDuration,
		mc.activeSessionsGauge,
	}
	for _, collector := range collectors {
		if err := mc.registry.Register(collector); err != nil {
			return nil, ErrMetricsRegistrationFailed
		}
	}

	return mc, nil
}

// Registry returns the Prometheus registry used by this collector.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Enabled returns true if metrics collection is enabled.
func (mc *MetricsCollector) Enabled() bool {
	return mc.config != nil && mc.config.Enabled
}

// SessionStarted records a new active session.
func (mc *MetricsCollector) SessionStarted() {
	if !mc.Enabled() {
		return
	}
	mc.activeSessions.Add(1)
	mc.sessionsTotal.WithLabelValues("started").Inc()
}

// SessionCompleted records a session finishing successfully.
func (mc *MetricsCollector) SessionCompleted() {
	if !mc.Enabled() {
		return
	}
	mc.activeSessions.Add(-1)
	mc.sessionsTotal.WithLabelValues("completed").Inc()
}

// SessionAborted records a session finishing in failure.
func (mc *MetricsCollector) SessionAborted() {
	if !mc.Enabled() {
		return
	}
	mc.activeSessions.Add(-1)
	mc.sessionsTotal.WithLabelValues("aborted").Inc()
}

// MessageRelayed records one routed protocol message.
func (mc *MetricsCollector) MessageRelayed(msgType MessageType) {
	if !mc.Enabled() {
		return
	}
	mc.messagesTotal.WithLabelValues(msgTypeLabel(msgType)).Inc()
}

// JoinRejected records a rate-limited join request.
func (mc *MetricsCollector) JoinRejected() {
	if !mc.Enabled() {
		return
	}
	mc.joinsRejected.Inc()
}

// ObserveRoundDuration records how long one protocol round took.
func (mc *MetricsCollector) ObserveRoundDuration(round string, seconds float64) {
	if !mc.Enabled() {
		return
	}
	mc.roundDuration.WithLabelValues(round).Observe(seconds)
}

func msgTypeLabel(t MessageType) string {
	switch t {
	case MsgTypeJoin:
		return "join"
	case MsgTypeSessionInfo:
		return "session_info"
	case MsgTypeRound11:
		return "round11"
	case MsgTypeRound11Deliver:
		return "round11_deliver"
	case MsgTypeRound12:
		return "round12"
	case MsgTypeRound2Deliver:
		return "round2_deliver"
	case MsgTypeError:
		return "error"
	case MsgTypeComplete:
		return "complete"
	default:
		return "unknown"
	}
}
