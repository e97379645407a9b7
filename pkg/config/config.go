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

package config

import (
	"time"

	"github.com/edgewatch/edgewatch/pkg/constants"
	"github.com/edgewatch/edgewatch/pkg/env"
)

// Config assembles all agent settings from environment variables. The
// agent runs on a constrained embedded host, so there is no config file,
// just the environment its init system provides.
type Config struct {
	// ServiceName is reported in every health report.
	ServiceName string

	// ListenAddr is the address the HTTP surface binds, e.g. ":8080".
	ListenAddr string

	// BrokerSocketPath is the unix socket of the privileged credential broker.
	BrokerSocketPath string

	// ServiceAccount is the account name requested from the broker.
	ServiceAccount string

	// DeviceAPIBaseURL points at the local device API, host-local only.
	DeviceAPIBaseURL string

	// TemperatureEndpoint is the scalar-reading endpoint path.
	TemperatureEndpoint string

	// DeviceInfoEndpoint is the structured-info endpoint path.
	DeviceInfoEndpoint string

	// TemperatureTTL is the cache TTL for the fast-changing scalar.
	TemperatureTTL time.Duration

	// DeviceInfoTTL is the cache TTL for the slow-changing record.
	DeviceInfoTTL time.Duration

	// EventLogCapacity is the fixed size of the in-memory event ring.
	EventLogCapacity int
}

// Load reads the configuration from the environment, falling back to
// defaults for everything not set.
func Load() (Config, error) {
	var cfg Config
	var err error

	if cfg.ServiceName, err = env.GetAsString("SERVICE_NAME", false, "edgewatch"); err != nil {
		return Config{}, err
	}
	if cfg.ListenAddr, err = env.GetAsString("LISTEN_ADDR", false, ":8080"); err != nil {
		return Config{}, err
	}
	if cfg.BrokerSocketPath, err = env.GetAsString("CREDENTIAL_BROKER_SOCKET", false,
		"/run/credential-broker/broker.sock"); err != nil {
		return Config{}, err
	}
	if cfg.ServiceAccount, err = env.GetAsString("SERVICE_ACCOUNT", false, "edgewatch"); err != nil {
		return Config{}, err
	}
	if cfg.DeviceAPIBaseURL, err = env.GetAsString("DEVICE_API_BASE_URL", false,
		"http://127.0.0.1"); err != nil {
		return Config{}, err
	}
	if cfg.TemperatureEndpoint, err = env.GetAsString("DEVICE_API_TEMPERATURE_ENDPOINT", false,
		"/device-cgi/temperaturecontrol.cgi?device=sensor&id=2&action=query&temperatureunit=celsius"); err != nil {
		return Config{}, err
	}
	if cfg.DeviceInfoEndpoint, err = env.GetAsString("DEVICE_API_INFO_ENDPOINT", false,
		"/device-cgi/basicdeviceinfo.cgi"); err != nil {
		return Config{}, err
	}
	if cfg.TemperatureTTL, err = env.GetAsDuration("TEMPERATURE_TTL", false,
		constants.DefaultTemperatureTTL); err != nil {
		return Config{}, err
	}
	if cfg.DeviceInfoTTL, err = env.GetAsDuration("DEVICE_INFO_TTL", false,
		constants.DefaultDeviceInfoTTL); err != nil {
		return Config{}, err
	}
	if cfg.EventLogCapacity, err = env.GetAsInt("EVENT_LOG_CAPACITY", false,
		constants.DefaultEventLogCapacity); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
