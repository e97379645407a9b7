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

package deviceapi

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edgewatch/edgewatch/pkg/models"
)

// MockService is a mock implementation of the Service interface.
type MockService struct {
	mock.Mock
}

// NewMockService creates a new mock service instance.
func NewMockService() *MockService {
	return &MockService{}
}

// FetchScalar is a mock implementation of Service.FetchScalar.
func (m *MockService) FetchScalar(ctx context.Context, endpoint string) (float64, error) {
	args := m.Called(ctx, endpoint)
	return args.Get(0).(float64), args.Error(1)
}

// FetchDeviceInfo is a mock implementation of Service.FetchDeviceInfo.
func (m *MockService) FetchDeviceInfo(ctx context.Context, endpoint string) (models.DeviceInfo, error) {
	args := m.Called(ctx, endpoint)
	return args.Get(0).(models.DeviceInfo), args.Error(1)
}
