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

package credentials

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/edgewatch/edgewatch/pkg/constants"
)

// SocketBroker talks to the privileged credential broker over a unix
// domain socket, a channel reachable only from the same device. The broker
// exposes a single endpoint returning the pair for a named service account.
type SocketBroker struct {
	socketPath string
	client     *http.Client
}

// NewSocketBroker creates a broker client for the given socket path.
func NewSocketBroker(socketPath string) *SocketBroker {
	return &SocketBroker{
		socketPath: socketPath,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
				MaxIdleConns:    1,
				IdleConnTimeout: 10 * time.Second,
			},
			Timeout: constants.CredentialBrokerTimeout,
		},
	}
}

type brokerResponse struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// GetCredentials requests the pair for the named service account. The host
// in the URL is a placeholder; routing happens via the unix socket dialer.
func (b *SocketBroker) GetCredentials(ctx context.Context, account string) (string, []byte, error) {
	endpoint := fmt.Sprintf("http://localhost/v1/credentials?account=%s", url.QueryEscape(account))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create broker request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("broker unreachable at %s: %w", b.socketPath, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("broker returned HTTP %d for account %s", resp.StatusCode, account)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read broker response: %w", err)
	}

	var parsed brokerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid broker response: %w", err)
	}
	if parsed.Identifier == "" || parsed.Secret == "" {
		return "", nil, fmt.Errorf("broker returned incomplete credentials for account %s", account)
	}

	return parsed.Identifier, []byte(parsed.Secret), nil
}
