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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgewatch/edgewatch/pkg/cache"
	"github.com/edgewatch/edgewatch/pkg/config"
	"github.com/edgewatch/edgewatch/pkg/credentials"
	"github.com/edgewatch/edgewatch/pkg/deviceapi"
	"github.com/edgewatch/edgewatch/pkg/eventlog"
	"github.com/edgewatch/edgewatch/pkg/healthmonitor"
	"github.com/edgewatch/edgewatch/pkg/httpapi"
	"github.com/edgewatch/edgewatch/pkg/logger"
	"github.com/edgewatch/edgewatch/pkg/models"
)

func main() {
	// Initialize the global logger first thing
	logger.Initialize()
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.For(logger.ComponentCore)
	log.Info("Starting edgewatch agent...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	events := eventlog.New(cfg.EventLogCapacity, logger.For(logger.ComponentEventLog))

	// Credential acquisition failure degrades the device-sourced checks
	// but must not block the rest of the service from starting.
	creds := credentials.NewManager(credentials.NewSocketBroker(cfg.BrokerSocketPath), cfg.ServiceAccount)
	defer creds.Clear()

	if err := creds.Acquire(ctx); err != nil {
		events.Record(eventlog.SeverityWarning, "device API credentials unavailable: %v", err)
	}

	client := deviceapi.NewClient(cfg.DeviceAPIBaseURL, creds, events)

	temperatureCache := cache.New[float64]("temperature", cfg.TemperatureTTL, events)
	deviceInfoCache := cache.New[models.DeviceInfo]("device_info", cfg.DeviceInfoTTL, events)

	fetchTemperature := func(ctx context.Context) (float64, error) {
		return temperatureCache.Get(ctx, func(ctx context.Context) (float64, error) {
			return client.FetchScalar(ctx, cfg.TemperatureEndpoint)
		})
	}
	fetchDeviceInfo := func(ctx context.Context) (models.DeviceInfo, error) {
		return deviceInfoCache.Get(ctx, func(ctx context.Context) (models.DeviceInfo, error) {
			return client.FetchDeviceInfo(ctx, cfg.DeviceInfoEndpoint)
		})
	}

	health := healthmonitor.New(healthmonitor.Config{
		ServiceName: cfg.ServiceName,
		Temperature: fetchTemperature,
		Events:      events,
		Dependencies: []healthmonitor.Dependency{
			{
				// Reachable as long as the cache can produce any value,
				// fresh or stale.
				Name: "device-api",
				Probe: func(ctx context.Context) bool {
					_, err := fetchTemperature(ctx)
					return err == nil
				},
			},
			{
				Name: "credential-broker",
				Probe: func(ctx context.Context) bool {
					return creds.Initialized()
				},
			},
		},
	})

	api := httpapi.New(httpapi.Config{
		Reporter:   health,
		Events:     events,
		DeviceInfo: fetchDeviceInfo,
		Temperature: func() (float64, bool) {
			return temperatureCache.Peek()
		},
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Failed to shut down HTTP server: %v", err)
	}

	// Scrub the credential pair before the process exits.
	creds.Clear()
	log.Info("Shutdown complete")
}
