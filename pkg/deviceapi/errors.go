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

import "fmt"

// The device API error taxonomy. All of these are non-fatal: a failed
// fetch is absorbed by the cache layer as either a stale value or an
// explicit no-data result, never propagated to the request dispatcher.

// TransportError indicates the request never produced an HTTP response
// (connection refused, timeout, DNS).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("device API transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BadStatusError indicates the device answered with a non-200 status.
type BadStatusError struct {
	Code int
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("device API returned HTTP %d", e.Code)
}

// ParseError indicates the response body could not be interpreted.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("device API response parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
