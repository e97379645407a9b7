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

package healthmonitor_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgewatch/edgewatch/pkg/eventlog"
	"github.com/edgewatch/edgewatch/pkg/healthmonitor"
	"github.com/edgewatch/edgewatch/pkg/models"
)

var _ = Describe("Service", func() {
	var (
		ctx    context.Context
		events *eventlog.Buffer

		memoryMB  float64
		diskMB    float64
		tempC     float64
		tempErr   error
		cpuPct    float64
		reachable bool
	)

	fixed := func(value *float64, err *error) healthmonitor.Probe {
		return func(ctx context.Context) (float64, error) {
			if err != nil && *err != nil {
				return 0, *err
			}
			return *value, nil
		}
	}

	newService := func() *healthmonitor.Service {
		return healthmonitor.New(healthmonitor.Config{
			ServiceName:       "edgewatch",
			Temperature:       fixed(&tempC, &tempErr),
			MemoryAvailableMB: fixed(&memoryMB, nil),
			DiskFreeMB:        fixed(&diskMB, nil),
			CPUUsagePercent:   fixed(&cpuPct, nil),
			Events:            events,
			Dependencies: []healthmonitor.Dependency{
				{Name: "device-api", Probe: func(ctx context.Context) bool { return reachable }},
			},
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		events = eventlog.New(20, nil)

		memoryMB = 220
		diskMB = 1024
		tempC = 46.7
		tempErr = nil
		cpuPct = 12
		reachable = true
	})

	It("should produce a healthy report when every source is fine", func() {
		report := newService().GenerateReport(ctx)

		Expect(report.Service).To(Equal("edgewatch"))
		Expect(report.Status).To(Equal(models.StatusHealthy))
		Expect(report.Severity).To(Equal("info"))
		Expect(report.Checks).To(HaveLen(4))
		Expect(report.Dependencies).To(HaveLen(1))
		Expect(report.GeneratedAt).ToNot(BeZero())
	})

	It("should name the four fixed checks", func() {
		report := newService().GenerateReport(ctx)

		names := make([]string, 0, len(report.Checks))
		for _, check := range report.Checks {
			names = append(names, check.Name)
		}
		Expect(names).To(Equal([]string{
			"memory_available_mb", "disk_free_mb", "temperature_celsius", "cpu_usage_percent",
		}))
	})

	It("should degrade the whole report on an unreachable dependency", func() {
		reachable = false
		report := newService().GenerateReport(ctx)

		Expect(report.Status).To(Equal(models.StatusDegraded))
		Expect(report.Dependencies[0].Status).To(Equal(models.StatusDegraded))
		Expect(report.Dependencies[0].Reachable).To(BeFalse())
	})

	It("should turn unhealthy on a critical check", func() {
		cpuPct = 99
		report := newService().GenerateReport(ctx)
		Expect(report.Status).To(Equal(models.StatusUnhealthy))
	})

	Context("when the temperature source cannot be read", func() {
		BeforeEach(func() {
			tempErr = errors.New("no data available")
		})

		It("should mark the check unmeasured instead of using a sentinel", func() {
			report := newService().GenerateReport(ctx)

			var temp models.HealthCheck
			for _, check := range report.Checks {
				if check.Name == "temperature_celsius" {
					temp = check
				}
			}
			Expect(temp.Measured).To(BeFalse())
			Expect(temp.Status).To(Equal(models.StatusDegraded))
		})

		It("should record a warning event", func() {
			newService().GenerateReport(ctx)

			entries := events.Export(-1)
			Expect(entries).ToNot(BeEmpty())
			Expect(entries[0].Severity).To(Equal(eventlog.SeverityWarning))
			Expect(entries[0].Message).To(ContainSubstring("temperature_celsius"))
		})
	})

	Context("status transitions", func() {
		It("should record an event when the overall status changes", func() {
			service := newService()
			service.GenerateReport(ctx)

			cpuPct = 99
			service.GenerateReport(ctx)

			entries := events.Export(-1)
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Severity).To(Equal(eventlog.SeverityCritical))
			Expect(entries[0].Message).To(ContainSubstring("healthy to unhealthy"))
		})

		It("should stay quiet while the status is stable", func() {
			service := newService()
			service.GenerateReport(ctx)
			service.GenerateReport(ctx)
			service.GenerateReport(ctx)

			Expect(events.Export(-1)).To(BeEmpty())
		})

		It("should record recovery as well", func() {
			service := newService()
			cpuPct = 99
			service.GenerateReport(ctx)

			cpuPct = 12
			service.GenerateReport(ctx)

			entries := events.Export(-1)
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Severity).To(Equal(eventlog.SeverityInfo))
			Expect(entries[0].Message).To(ContainSubstring("unhealthy to healthy"))
		})
	})
})
