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

// Package healthmonitor evaluates a fixed set of named checks against
// warning/critical thresholds and reduces them to one overall status.
// Checks are fed partly by the TTL-cached device readings and partly by
// local resource probes; every report is built fresh, nothing is persisted.
package healthmonitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/pkg/constants"
	"github.com/edgewatch/edgewatch/pkg/eventlog"
	"github.com/edgewatch/edgewatch/pkg/logger"
	"github.com/edgewatch/edgewatch/pkg/models"
)

// Probe reads one scalar quantity. A probe error marks the corresponding
// check as unmeasured instead of feeding a sentinel value into the
// threshold comparison.
type Probe func(ctx context.Context) (float64, error)

// Dependency is an external collaborator whose reachability is reported
// alongside the checks.
type Dependency struct {
	Name  string
	Probe func(ctx context.Context) bool
}

// Config wires a Service. Temperature is required (the cached device
// reading); the resource probes default to gopsutil and exist as fields so
// tests can substitute them.
type Config struct {
	ServiceName  string
	Temperature  Probe
	Dependencies []Dependency
	Events       eventlog.Recorder

	// Optional probe overrides, nil means the gopsutil default.
	MemoryAvailableMB Probe
	DiskFreeMB        Probe
	CPUUsagePercent   Probe
}

// Service generates health reports on demand.
type Service struct {
	serviceName  string
	temperature  Probe
	memory       Probe
	diskFree     Probe
	cpuUsage     Probe
	dependencies []Dependency
	events       eventlog.Recorder
	log          *zap.SugaredLogger

	mu         sync.Mutex
	lastStatus models.Status
	hasLast    bool
}

// New creates a health monitor service.
func New(cfg Config) *Service {
	s := &Service{
		serviceName:  cfg.ServiceName,
		temperature:  cfg.Temperature,
		memory:       cfg.MemoryAvailableMB,
		diskFree:     cfg.DiskFreeMB,
		cpuUsage:     cfg.CPUUsagePercent,
		dependencies: cfg.Dependencies,
		events:       cfg.Events,
		log:          logger.For(logger.ComponentHealthMonitor),
	}
	if s.memory == nil {
		s.memory = memoryAvailableMB
	}
	if s.diskFree == nil {
		s.diskFree = diskFreeMB
	}
	if s.cpuUsage == nil {
		s.cpuUsage = cpuUsagePercent
	}
	return s
}

func memoryAvailableMB(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return float64(vm.Available) / (1024.0 * 1024.0), nil
}

func diskFreeMB(ctx context.Context) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return 0, err
	}
	return float64(usage.Free) / (1024.0 * 1024.0), nil
}

func cpuUsagePercent(ctx context.Context) (float64, error) {
	// Interval zero measures since the previous call; the first report
	// after startup measures since boot, which is close enough for a
	// threshold check.
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no cpu usage samples returned")
	}
	return percents[0], nil
}

// buildCheck runs a probe and assembles the evaluated check. A failed
// probe yields an unmeasured check and a warning event.
func (s *Service) buildCheck(ctx context.Context, name string, probe Probe,
	warning, critical float64, direction models.Direction) models.HealthCheck {

	check := models.HealthCheck{
		Name:              name,
		WarningThreshold:  warning,
		CriticalThreshold: critical,
		Direction:         direction,
	}

	value, err := probe(ctx)
	if err != nil {
		s.log.Warnf("Check %s could not be measured: %v", name, err)
		if s.events != nil {
			s.events.Record(eventlog.SeverityWarning, "check %s could not be measured: %v", name, err)
		}
	} else {
		check.Value = value
		check.Measured = true
	}

	check.Status = EvaluateCheck(check)
	return check
}

// GenerateReport builds one fresh health report: four threshold checks,
// the dependency reachability checks, and the worst-case overall status.
// A transition of the overall status relative to the previous report is
// recorded in the event log.
func (s *Service) GenerateReport(ctx context.Context) models.HealthReport {
	checks := []models.HealthCheck{
		s.buildCheck(ctx, "memory_available_mb", s.memory,
			constants.MemoryWarningMB, constants.MemoryCriticalMB, models.LowerIsBad),
		s.buildCheck(ctx, "disk_free_mb", s.diskFree,
			constants.DiskWarningMB, constants.DiskCriticalMB, models.LowerIsBad),
		s.buildCheck(ctx, "temperature_celsius", s.temperature,
			constants.TemperatureWarningCelsius, constants.TemperatureCriticalCelsius, models.HigherIsBad),
		s.buildCheck(ctx, "cpu_usage_percent", s.cpuUsage,
			constants.CPUWarningPercent, constants.CPUCriticalPercent, models.HigherIsBad),
	}

	deps := make([]models.DependencyCheck, 0, len(s.dependencies))
	for _, dep := range s.dependencies {
		reachable := dep.Probe(ctx)
		deps = append(deps, models.DependencyCheck{
			Name:      dep.Name,
			Reachable: reachable,
			Status:    DependencyStatus(reachable),
		})
	}

	overall := EvaluateOverall(checks, deps)
	s.recordTransition(overall)

	return models.HealthReport{
		Service:      s.serviceName,
		Status:       overall,
		Severity:     overall.Severity(),
		GeneratedAt:  time.Now().UTC(),
		Checks:       checks,
		Dependencies: deps,
	}
}

// recordTransition emits an event when the overall status changes between
// consecutive reports, tagged with the new status' severity.
func (s *Service) recordTransition(current models.Status) {
	s.mu.Lock()
	previous, had := s.lastStatus, s.hasLast
	s.lastStatus = current
	s.hasLast = true
	s.mu.Unlock()

	if !had || previous == current || s.events == nil {
		return
	}
	s.events.Record(eventlog.Severity(current.Severity()),
		"overall status changed from %s to %s", previous, current)
}
