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

package models

import (
	"fmt"
	"time"
)

// Status is the health status of a single check or a whole report.
// The values form a total order (Healthy < Degraded < Unhealthy) so an
// overall status can be derived by worst-case reduction. The ordering is
// part of the contract, not an accident of declaration order.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

// Worse returns the more severe of the two statuses.
func (s Status) Worse(other Status) Status {
	if other > s {
		return other
	}
	return s
}

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Severity maps a status onto the event log severity scale.
func (s Status) Severity() string {
	switch s {
	case StatusHealthy:
		return "info"
	case StatusDegraded:
		return "warning"
	case StatusUnhealthy:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

// Direction states which way a check's value is bad.
type Direction int

const (
	// LowerIsBad applies to quantities like free memory or free disk.
	LowerIsBad Direction = iota
	// HigherIsBad applies to quantities like temperature or CPU load.
	HigherIsBad
)

func (d Direction) String() string {
	if d == HigherIsBad {
		return "higher_is_bad"
	}
	return "lower_is_bad"
}

// HealthCheck is one named threshold check, constructed fresh on every
// report generation. Measured distinguishes a genuine reading from a source
// that could not be read this cycle; when false, Value carries no meaning
// and is omitted from the JSON form so it can never be mistaken for a real
// measurement.
type HealthCheck struct {
	Name              string
	Value             float64
	Measured          bool
	WarningThreshold  float64
	CriticalThreshold float64
	Direction         Direction
	Status            Status
}

// MarshalJSON omits the numeric value of an unmeasured check.
func (c HealthCheck) MarshalJSON() ([]byte, error) {
	if !c.Measured {
		return []byte(fmt.Sprintf(
			`{"name":%q,"measured":false,"warning":%g,"critical":%g,"status":%q}`,
			c.Name, c.WarningThreshold, c.CriticalThreshold, c.Status.String())), nil
	}
	return []byte(fmt.Sprintf(
		`{"name":%q,"value":%g,"measured":true,"warning":%g,"critical":%g,"status":%q}`,
		c.Name, c.Value, c.WarningThreshold, c.CriticalThreshold, c.Status.String())), nil
}

// DependencyCheck reports reachability of an external collaborator. An
// unreachable dependency degrades confidence but never proves the service
// itself is broken, so its status caps at Degraded.
type DependencyCheck struct {
	Name      string `json:"name"`
	Reachable bool   `json:"reachable"`
	Status    Status `json:"status"`
}

// HealthReport is the immutable result of one report generation.
type HealthReport struct {
	Service      string            `json:"service"`
	Status       Status            `json:"status"`
	Severity     string            `json:"severity"`
	GeneratedAt  time.Time         `json:"timestamp"`
	Checks       []HealthCheck     `json:"checks"`
	Dependencies []DependencyCheck `json:"dependencies"`
	DeviceInfo   *DeviceInfo       `json:"deviceInfo,omitempty"`
}

// DeviceInfo is the structured record served by the device API. Fields the
// device does not report stay at their zero value.
type DeviceInfo struct {
	SerialNumber    string `json:"serialNumber"`
	FirmwareVersion string `json:"firmwareVersion"`
	Model           string `json:"model"`
	Architecture    string `json:"architecture"`
	Soc             string `json:"soc"`
}
