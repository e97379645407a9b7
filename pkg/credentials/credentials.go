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

// Package credentials manages the short-lived service credential pair
// obtained from the host-local privileged broker. The pair lives only in
// process memory, is never logged, and the secret's backing storage is
// overwritten with zeros on Clear.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/pkg/logger"
)

// ErrNotInitialized is returned when credentials are requested before a
// successful Acquire or after Clear.
var ErrNotInitialized = errors.New("credentials: not initialized")

// AuthError wraps a failed credential acquisition. Callers treat dependent
// functionality as degraded rather than crashing the process.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credential acquisition failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Broker issues a service account's credential pair over a local-only
// channel. The secret is returned as bytes so the caller can scrub it.
type Broker interface {
	GetCredentials(ctx context.Context, account string) (identifier string, secret []byte, err error)
}

// Manager owns the credential pair exclusively. All access goes through
// its lock; the identifier/secret are handed out only as transient copies
// for request signing.
type Manager struct {
	broker  Broker
	account string
	log     *zap.SugaredLogger

	mu          sync.Mutex
	identifier  string
	secret      []byte
	initialized bool
}

// NewManager creates a manager for the named service account.
func NewManager(broker Broker, account string) *Manager {
	return &Manager{
		broker:  broker,
		account: account,
		log:     logger.For(logger.ComponentCredentials),
	}
}

// Acquire performs one synchronous call to the broker and stores the pair
// in memory. Any prior pair is scrubbed first, so a re-acquire after an
// authentication failure never leaves two copies around. On failure an
// *AuthError is returned and the manager stays uninitialized.
func (m *Manager) Acquire(ctx context.Context) error {
	identifier, secret, err := m.broker.GetCredentials(ctx, m.account)
	if err != nil {
		m.Clear()
		m.log.Warnf("Failed to acquire credentials for %s: %v", m.account, err)
		return &AuthError{Err: err}
	}

	m.mu.Lock()
	m.zeroLocked()
	m.identifier = identifier
	m.secret = secret
	m.initialized = true
	m.mu.Unlock()

	m.log.Infof("Credentials acquired for service account %s", m.account)
	return nil
}

// Clear overwrites the secret's backing storage with zeros and marks the
// manager uninitialized. Idempotent and safe after a failed Acquire;
// garbage collection alone does not guarantee scrubbing.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.zeroLocked()
	m.identifier = ""
	m.initialized = false
	m.mu.Unlock()
}

func (m *Manager) zeroLocked() {
	for i := range m.secret {
		m.secret[i] = 0
	}
	m.secret = nil
}

// BasicAuth returns a transient copy of the pair for request signing.
func (m *Manager) BasicAuth() (user, pass string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return "", "", ErrNotInitialized
	}
	return m.identifier, string(m.secret), nil
}

// Initialized reports whether a pair is currently held.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}
