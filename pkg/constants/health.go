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

package constants

import "time"

// Health check thresholds. Lower-is-bad checks go Degraded below the warning
// threshold and Unhealthy below the critical one; higher-is-bad mirrors.
const (
	MemoryWarningMB  = 50.0
	MemoryCriticalMB = 20.0

	DiskWarningMB  = 100.0
	DiskCriticalMB = 50.0

	TemperatureWarningCelsius  = 70.0
	TemperatureCriticalCelsius = 80.0

	CPUWarningPercent  = 80.0
	CPUCriticalPercent = 95.0
)

// Plausibility bounds for the device temperature reading. Readings outside
// this range are flagged with a warning event but still served.
const (
	TemperatureSaneMinCelsius = -50.0
	TemperatureSaneMaxCelsius = 100.0
)

const (
	// DeviceAPITimeout bounds every call to the local device API so an
	// unresponsive device cannot stall a caller indefinitely.
	DeviceAPITimeout = 5 * time.Second

	// CredentialBrokerTimeout bounds the one synchronous credential
	// acquisition call at startup.
	CredentialBrokerTimeout = 5 * time.Second
)

const (
	// DefaultTemperatureTTL is the cache TTL for the fast-changing scalar reading.
	DefaultTemperatureTTL = 60 * time.Second

	// DefaultDeviceInfoTTL is the cache TTL for the slow-changing device info record.
	DefaultDeviceInfoTTL = 300 * time.Second
)

const (
	// DefaultEventLogCapacity is the number of entries the in-memory ring keeps.
	DefaultEventLogCapacity = 100

	// MaxEventMessageLength bounds a single event log message.
	MaxEventMessageLength = 256
)
