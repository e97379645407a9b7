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

package healthmonitor

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edgewatch/edgewatch/pkg/models"
)

// MockReporter is a mock report generator for transport-level tests.
type MockReporter struct {
	mock.Mock
}

// NewMockReporter creates a new mock reporter instance.
func NewMockReporter() *MockReporter {
	return &MockReporter{}
}

// GenerateReport is a mock implementation of the report generator.
func (m *MockReporter) GenerateReport(ctx context.Context) models.HealthReport {
	args := m.Called(ctx)
	return args.Get(0).(models.HealthReport)
}

// CreateHealthyReport returns a report with all checks passing, for tests.
func CreateHealthyReport(service string) models.HealthReport {
	checks := []models.HealthCheck{
		{Name: "memory_available_mb", Value: 220.5, Measured: true,
			WarningThreshold: 50, CriticalThreshold: 20, Direction: models.LowerIsBad},
		{Name: "disk_free_mb", Value: 1024, Measured: true,
			WarningThreshold: 100, CriticalThreshold: 50, Direction: models.LowerIsBad},
		{Name: "temperature_celsius", Value: 46.7, Measured: true,
			WarningThreshold: 70, CriticalThreshold: 80, Direction: models.HigherIsBad},
		{Name: "cpu_usage_percent", Value: 12.3, Measured: true,
			WarningThreshold: 80, CriticalThreshold: 95, Direction: models.HigherIsBad},
	}
	for i := range checks {
		checks[i].Status = EvaluateCheck(checks[i])
	}
	deps := []models.DependencyCheck{
		{Name: "device-api", Reachable: true, Status: models.StatusHealthy},
	}

	return models.HealthReport{
		Service:      service,
		Status:       EvaluateOverall(checks, deps),
		Severity:     models.StatusHealthy.Severity(),
		GeneratedAt:  time.Now().UTC(),
		Checks:       checks,
		Dependencies: deps,
	}
}
