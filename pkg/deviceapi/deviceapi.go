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

// Package deviceapi is the authenticated client for the local device API,
// which exposes one scalar-reading endpoint and one structured-info
// endpoint. Every call is bounded by a hard timeout so an unresponsive
// device cannot stall the caller; callers go through the TTL cache, never
// directly through this client, on the request path.
package deviceapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/pkg/constants"
	"github.com/edgewatch/edgewatch/pkg/eventlog"
	"github.com/edgewatch/edgewatch/pkg/logger"
	"github.com/edgewatch/edgewatch/pkg/models"
)

// Service is the read surface consumed by the cache refresh functions.
type Service interface {
	// FetchScalar fetches a single numeric reading from the given endpoint path.
	FetchScalar(ctx context.Context, endpoint string) (float64, error)

	// FetchDeviceInfo fetches the structured device record from the given endpoint path.
	FetchDeviceInfo(ctx context.Context, endpoint string) (models.DeviceInfo, error)
}

// Credentials hands out the current pair for request signing. Satisfied by
// credentials.Manager; returns an error while no pair is held.
type Credentials interface {
	BasicAuth() (user, pass string, err error)
}

// defaultTransport is a shared transport with connection pooling, tuned
// for many small requests to a single local device.
var defaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   constants.DeviceAPITimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:        10,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	DisableCompression:  true,
}

// Client implements Service against the local device API.
type Client struct {
	baseURL string
	creds   Credentials
	events  eventlog.Recorder
	client  *http.Client
	log     *zap.SugaredLogger
}

// NewClient creates a device API client. baseURL points at the local
// device, e.g. "http://127.0.0.1". events receives plausibility warnings
// and may be nil.
func NewClient(baseURL string, creds Credentials, events eventlog.Recorder) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		events:  events,
		client: &http.Client{
			Transport: defaultTransport,
			Timeout:   constants.DeviceAPITimeout,
		},
		log: logger.For(logger.ComponentDeviceAPI),
	}
}

// do executes one authenticated request and returns the body after
// validating transport success and HTTP status.
func (c *Client) do(req *http.Request) ([]byte, error) {
	user, pass, err := c.creds.BasicAuth()
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(user, pass)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &BadStatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return body, nil
}

// FetchScalar fetches and parses a single numeric token. Implausible
// values (outside the expected physical range) are flagged with a warning
// event but still returned: a suspect reading preserves trend continuity
// better than no reading.
func (c *Client) FetchScalar(ctx context.Context, endpoint string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DeviceAPITimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return 0, &TransportError{Err: err}
	}

	body, err := c.do(req)
	if err != nil {
		return 0, err
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return 0, &ParseError{Err: fmt.Errorf("empty response body")}
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, &ParseError{Err: fmt.Errorf("not a numeric token: %w", err)}
	}

	if value < constants.TemperatureSaneMinCelsius || value > constants.TemperatureSaneMaxCelsius {
		c.log.Warnf("Implausible reading %.2f from %s", value, endpoint)
		if c.events != nil {
			c.events.Record(eventlog.SeverityWarning,
				"implausible reading %.2f from %s", value, endpoint)
		}
	}

	return value, nil
}

// deviceInfoRequest is the fixed request body the structured endpoint expects.
type deviceInfoRequest struct {
	APIVersion string `json:"apiVersion"`
	Context    string `json:"context"`
	Method     string `json:"method"`
}

// deviceInfoResponse mirrors the device's property list envelope. Fields
// absent from the response stay at their zero value; partial information
// beats none.
type deviceInfoResponse struct {
	Data struct {
		PropertyList struct {
			SerialNumber string `json:"SerialNumber"`
			Version      string `json:"Version"`
			ProdNbr      string `json:"ProdNbr"`
			Architecture string `json:"Architecture"`
			Soc          string `json:"Soc"`
		} `json:"propertyList"`
	} `json:"data"`
}

// FetchDeviceInfo fetches the structured device record.
func (c *Client) FetchDeviceInfo(ctx context.Context, endpoint string) (models.DeviceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DeviceAPITimeout)
	defer cancel()

	payload, err := json.Marshal(deviceInfoRequest{
		APIVersion: "1.0",
		Context:    "edgewatch",
		Method:     "getAllProperties",
	})
	if err != nil {
		return models.DeviceInfo{}, &ParseError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.DeviceInfo{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return models.DeviceInfo{}, err
	}

	var parsed deviceInfoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.DeviceInfo{}, &ParseError{Err: err}
	}

	props := parsed.Data.PropertyList
	return models.DeviceInfo{
		SerialNumber:    props.SerialNumber,
		FirmwareVersion: props.Version,
		Model:           props.ProdNbr,
		Architecture:    props.Architecture,
		Soc:             props.Soc,
	}, nil
}
