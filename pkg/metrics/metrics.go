// Copyright 2025 Edgewatch Systems GmbH
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

// Package metrics owns all Prometheus instrumentation for the agent:
// cache behaviour, health check results, request counting and the host
// telemetry gauges refreshed on every scrape.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edgewatch/edgewatch/pkg/models"
)

const (
	namespace = "edgewatch"
)

var (
	// Cache behaviour per instance.
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache reads served fresh without a refresh",
	}, []string{"cache"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache reads that required a refresh attempt",
	}, []string{"cache"})

	cacheRefreshErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "refresh_errors_total",
		Help:      "Refresh attempts that failed",
	}, []string{"cache"})

	cacheStaleServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "stale_served_total",
		Help:      "Reads answered with a stale value after a failed refresh",
	}, []string{"cache"})

	// Health check results from the last generated report.
	healthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "health",
		Name:      "check_status",
		Help:      "Status of a health check (0=healthy, 1=degraded, 2=unhealthy)",
	}, []string{"check"})

	healthCheckValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "health",
		Name:      "check_value",
		Help:      "Measured value of a health check; absent while unmeasured",
	}, []string{"check"})

	healthDependencyReachable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "health",
		Name:      "dependency_reachable",
		Help:      "Whether a dependency was reachable at last report (0 or 1)",
	}, []string{"dependency"})

	healthOverallStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "health",
		Name:      "overall_status",
		Help:      "Overall status of the last report (0=healthy, 1=degraded, 2=unhealthy)",
	})

	// Device readings surfaced through the caches. Series only appear once
	// a reading exists, so "no data yet" is never rendered as zero.
	deviceTemperature = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "temperature_celsius",
		Help:      "Device temperature in Celsius from the local device API",
	}, []string{"sensor"})

	deviceInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "device",
		Name:      "info",
		Help:      "Device identity as labels, value is always 1",
	}, []string{"serial", "firmware", "model"})

	// Request counting for the inbound surface.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests handled per path",
	}, []string{"path", "status"})
)

// IncCacheHit counts a fresh read for the named cache instance.
func IncCacheHit(cache string) {
	cacheHits.WithLabelValues(cache).Inc()
}

// IncCacheMiss counts a read that had to attempt a refresh.
func IncCacheMiss(cache string) {
	cacheMisses.WithLabelValues(cache).Inc()
}

// IncCacheRefreshError counts a failed refresh attempt.
func IncCacheRefreshError(cache string) {
	cacheRefreshErrors.WithLabelValues(cache).Inc()
}

// IncCacheStaleServed counts a stale value served after a failed refresh.
func IncCacheStaleServed(cache string) {
	cacheStaleServed.WithLabelValues(cache).Inc()
}

// IncHTTPRequest counts one handled request.
func IncHTTPRequest(path, status string) {
	httpRequests.WithLabelValues(path, status).Inc()
}

// SetDeviceTemperature publishes the latest cached temperature reading.
func SetDeviceTemperature(sensor string, celsius float64) {
	deviceTemperature.WithLabelValues(sensor).Set(celsius)
}

// SetDeviceInfo publishes device identity labels.
func SetDeviceInfo(info models.DeviceInfo) {
	deviceInfo.WithLabelValues(info.SerialNumber, info.FirmwareVersion, info.Model).Set(1)
}

// RecordHealthReport mirrors a generated report into the health gauges.
func RecordHealthReport(report models.HealthReport) {
	for _, check := range report.Checks {
		healthCheckStatus.WithLabelValues(check.Name).Set(float64(check.Status))
		if check.Measured {
			healthCheckValue.WithLabelValues(check.Name).Set(check.Value)
		} else {
			healthCheckValue.DeleteLabelValues(check.Name)
		}
	}
	for _, dep := range report.Dependencies {
		reachable := 0.0
		if dep.Reachable {
			reachable = 1.0
		}
		healthDependencyReachable.WithLabelValues(dep.Name).Set(reachable)
	}
	healthOverallStatus.Set(float64(report.Status))
}
