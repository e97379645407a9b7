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

package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"
)

var (
	uptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "uptime_seconds",
		Help:      "Host uptime in seconds",
	})

	memoryTotalBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "memory_total_bytes",
		Help:      "Total memory in bytes",
	})

	memoryAvailableBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "memory_available_bytes",
		Help:      "Available memory in bytes",
	})

	diskTotalBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "disk_total_bytes",
		Help:      "Total disk space of the root filesystem in bytes",
	})

	diskFreeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "disk_free_bytes",
		Help:      "Free disk space of the root filesystem in bytes",
	})

	loadAverage1m = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "load_average_1m",
		Help:      "1-minute load average",
	})

	cpuUsagePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "cpu_usage_percent",
		Help:      "CPU utilization percentage since the previous scrape",
	})

	networkRxBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "network_rx_bytes_total",
		Help:      "Total bytes received per interface",
	}, []string{"interface"})

	networkTxBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "system",
		Name:      "network_tx_bytes_total",
		Help:      "Total bytes transmitted per interface",
	}, []string{"interface"})
)

// CollectSystemTelemetry refreshes the host telemetry gauges from gopsutil.
// It is called on every metrics scrape; refresh is demand-driven so there
// is no background sampler to schedule. Each probe failure is logged and
// skipped, a single failed probe never fails the scrape.
func CollectSystemTelemetry(ctx context.Context, log *zap.SugaredLogger) {
	if uptime, err := host.UptimeWithContext(ctx); err != nil {
		log.Warnf("Failed to collect uptime: %v", err)
	} else {
		uptimeSeconds.Set(float64(uptime))
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		log.Warnf("Failed to collect memory stats: %v", err)
	} else {
		memoryTotalBytes.Set(float64(vm.Total))
		memoryAvailableBytes.Set(float64(vm.Available))
	}

	if usage, err := disk.UsageWithContext(ctx, "/"); err != nil {
		log.Warnf("Failed to collect disk stats: %v", err)
	} else {
		diskTotalBytes.Set(float64(usage.Total))
		diskFreeBytes.Set(float64(usage.Free))
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		log.Warnf("Failed to collect load average: %v", err)
	} else {
		loadAverage1m.Set(avg.Load1)
	}

	// Interval zero means "since the previous call", which matches the
	// scrape-to-scrape delta the gauge documents.
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		log.Warnf("Failed to collect CPU usage: %v", err)
	} else if len(percents) > 0 {
		cpuUsagePercent.Set(percents[0])
	}

	if counters, err := net.IOCountersWithContext(ctx, true); err != nil {
		log.Warnf("Failed to collect network stats: %v", err)
	} else {
		for _, counter := range counters {
			if counter.Name == "lo" {
				continue
			}
			networkRxBytes.WithLabelValues(counter.Name).Set(float64(counter.BytesRecv))
			networkTxBytes.WithLabelValues(counter.Name).Set(float64(counter.BytesSent))
		}
	}
}
