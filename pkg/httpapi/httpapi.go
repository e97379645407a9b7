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

// Package httpapi is the thin inbound surface of the agent: the health
// report, the event log export and the Prometheus scrape endpoint. It
// returns plain data from the core services; all resilience lives below
// the cache layer, so handlers never fail on a degraded device.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/pkg/eventlog"
	"github.com/edgewatch/edgewatch/pkg/logger"
	"github.com/edgewatch/edgewatch/pkg/metrics"
	"github.com/edgewatch/edgewatch/pkg/models"
)

// Reporter generates one fresh health report per call.
type Reporter interface {
	GenerateReport(ctx context.Context) models.HealthReport
}

// Config wires the server to the core services.
type Config struct {
	Reporter Reporter
	Events   *eventlog.Buffer

	// DeviceInfo returns the cached device record; an error means the
	// record is unavailable and the report simply omits it. May be nil.
	DeviceInfo func(ctx context.Context) (models.DeviceInfo, error)

	// Temperature peeks at the cached reading without refreshing, used to
	// publish the device gauge on scrape. May be nil.
	Temperature func() (float64, bool)
}

// Server owns the gin router and the handlers.
type Server struct {
	cfg    Config
	router *gin.Engine
	log    *zap.SugaredLogger
}

// healthResponse is the wire form of a report, extended with the most
// recent diagnostic events.
type healthResponse struct {
	models.HealthReport
	RecentEvents []eventlog.Entry `json:"recentEvents"`
}

// New builds the router. gin runs in release mode; access logging goes
// through the shared zap logger.
func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	log := logger.For(logger.ComponentHTTPAPI)

	router := gin.New()
	router.Use(ginzap.Ginzap(log.Desugar(), time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(log.Desugar(), true))
	router.Use(countRequests())

	s := &Server{
		cfg:    cfg,
		router: router,
		log:    log,
	}

	router.GET("/health", s.handleHealth)
	router.GET("/logs", s.handleLogs)
	router.GET("/metrics", s.handleMetrics, gin.WrapH(promhttp.Handler()))

	return s
}

// Handler exposes the router for the http.Server in main and for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// countRequests feeds the per-path request counter.
func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.IncHTTPRequest(c.FullPath(), strconv.Itoa(c.Writer.Status()))
	}
}

// handleHealth returns the full health report. The response is always 200;
// the body carries the status. A single failed sub-metric never turns into
// a failed overall response.
func (s *Server) handleHealth(c *gin.Context) {
	report := s.cfg.Reporter.GenerateReport(c.Request.Context())

	if s.cfg.DeviceInfo != nil {
		if info, err := s.cfg.DeviceInfo(c.Request.Context()); err == nil {
			report.DeviceInfo = &info
			metrics.SetDeviceInfo(info)
		} else {
			s.log.Debugf("Device info unavailable: %v", err)
		}
	}

	metrics.RecordHealthReport(report)

	c.JSON(http.StatusOK, healthResponse{
		HealthReport: report,
		RecentEvents: s.cfg.Events.Export(20),
	})
}

// handleLogs exports the event ring, oldest first. ?max= bounds the count.
func (s *Server) handleLogs(c *gin.Context) {
	max := s.cfg.Events.Capacity()
	if raw := c.Query("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a non-negative integer"})
			return
		}
		max = parsed
	}

	entries := s.cfg.Events.Export(max)
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries})
}

// handleMetrics refreshes the demand-driven gauges before the promhttp
// handler renders the registry.
func (s *Server) handleMetrics(c *gin.Context) {
	metrics.CollectSystemTelemetry(c.Request.Context(), s.log)

	if s.cfg.Temperature != nil {
		if celsius, ok := s.cfg.Temperature(); ok {
			metrics.SetDeviceTemperature("device", celsius)
		}
	}
}
