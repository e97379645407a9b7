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

import "github.com/edgewatch/edgewatch/pkg/models"

// EvaluateCheck derives the status of a single check. Comparisons are
// strict: a value exactly at the warning threshold is still Healthy.
// An unmeasured check evaluates to Degraded — the source could not be
// read this cycle, which reduces confidence without proving a failure.
func EvaluateCheck(check models.HealthCheck) models.Status {
	if !check.Measured {
		return models.StatusDegraded
	}

	if check.Direction == models.LowerIsBad {
		if check.Value < check.CriticalThreshold {
			return models.StatusUnhealthy
		}
		if check.Value < check.WarningThreshold {
			return models.StatusDegraded
		}
		return models.StatusHealthy
	}

	if check.Value > check.CriticalThreshold {
		return models.StatusUnhealthy
	}
	if check.Value > check.WarningThreshold {
		return models.StatusDegraded
	}
	return models.StatusHealthy
}

// DependencyStatus maps reachability onto a status. Unreachability never
// escalates past Degraded: an unreachable optional dependency reduces
// confidence but does not prove the service itself is broken.
func DependencyStatus(reachable bool) models.Status {
	if reachable {
		return models.StatusHealthy
	}
	return models.StatusDegraded
}

// EvaluateOverall reduces all checks and dependencies to one status by
// worst-case aggregation. A single Unhealthy check forces the overall
// status to Unhealthy no matter how many others are Healthy.
func EvaluateOverall(checks []models.HealthCheck, deps []models.DependencyCheck) models.Status {
	overall := models.StatusHealthy
	for _, check := range checks {
		overall = overall.Worse(EvaluateCheck(check))
	}
	for _, dep := range deps {
		overall = overall.Worse(DependencyStatus(dep.Reachable))
	}
	return overall
}
