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

package cache_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/edgewatch/edgewatch/pkg/cache"
	"github.com/edgewatch/edgewatch/pkg/deviceapi"
	"github.com/edgewatch/edgewatch/pkg/eventlog"
)

var _ = Describe("Cached", func() {
	var (
		ctx    context.Context
		now    time.Time
		events *eventlog.Buffer
		c      *cache.Cached[float64]

		fetchCalls  int
		fetchValue  float64
		fetchErr    error
		refreshFunc cache.RefreshFunc[float64]
	)

	clock := func() time.Time { return now }

	warningCount := func() int {
		count := 0
		for _, entry := range events.Export(-1) {
			if entry.Severity == eventlog.SeverityWarning {
				count++
			}
		}
		return count
	}

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		events = eventlog.New(10, nil)
		c = cache.New("test", 60*time.Second, events, cache.WithClock[float64](clock))

		fetchCalls = 0
		fetchValue = 46.7
		fetchErr = nil
		refreshFunc = func(ctx context.Context) (float64, error) {
			fetchCalls++
			return fetchValue, fetchErr
		}
	})

	Context("when no value has ever been fetched", func() {
		It("should fetch on the first call", func() {
			value, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(46.7))
			Expect(fetchCalls).To(Equal(1))
		})

		It("should return ErrNoData when the first fetch fails", func() {
			fetchErr = errors.New("device unreachable")
			_, err := c.Get(ctx, refreshFunc)
			Expect(err).To(MatchError(cache.ErrNoData))
		})

		It("should report no value on Peek", func() {
			_, ok := c.Peek()
			Expect(ok).To(BeFalse())
		})
	})

	Context("when a fresh value is cached", func() {
		BeforeEach(func() {
			_, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should serve hits within the TTL without refreshing", func() {
			now = now.Add(30 * time.Second)
			value, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(46.7))
			Expect(fetchCalls).To(Equal(1))
		})

		It("should refresh once the TTL has elapsed", func() {
			now = now.Add(61 * time.Second)
			fetchValue = 50.2
			value, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(50.2))
			Expect(fetchCalls).To(Equal(2))
		})

		It("should not refresh again within the TTL after a refresh", func() {
			now = now.Add(61 * time.Second)
			fetchValue = 50.2
			_, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())

			now = now.Add(30 * time.Second)
			value, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(50.2))
			Expect(fetchCalls).To(Equal(2))
		})
	})

	Context("when a refresh fails after a prior successful fetch", func() {
		BeforeEach(func() {
			_, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			now = now.Add(61 * time.Second)
			fetchErr = errors.New("device unreachable")
		})

		It("should serve the stale value", func() {
			value, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(46.7))
		})

		It("should emit exactly one warning event per failed refresh", func() {
			_, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(warningCount()).To(Equal(1))

			_, err = c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(warningCount()).To(Equal(2))
		})

		It("should recover when the source comes back", func() {
			_, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())

			fetchErr = nil
			fetchValue = 50.2
			value, err := c.Get(ctx, refreshFunc)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(50.2))
		})
	})

	// The scrape timeline from the service's availability contract:
	// fresh at t=0, hit at t=30, stale at t=61, recovered at t=130.
	It("should survive a device outage without a reporting gap", func() {
		value, err := c.Get(ctx, refreshFunc)
		Expect(err).ToNot(HaveOccurred())
		Expect(value).To(Equal(46.7))
		Expect(fetchCalls).To(Equal(1))

		now = now.Add(30 * time.Second)
		value, err = c.Get(ctx, refreshFunc)
		Expect(err).ToNot(HaveOccurred())
		Expect(value).To(Equal(46.7))
		Expect(fetchCalls).To(Equal(1))

		now = now.Add(31 * time.Second)
		fetchErr = errors.New("timeout")
		value, err = c.Get(ctx, refreshFunc)
		Expect(err).ToNot(HaveOccurred())
		Expect(value).To(Equal(46.7))
		Expect(warningCount()).To(Equal(1))

		now = now.Add(69 * time.Second)
		fetchErr = nil
		fetchValue = 50.2
		value, err = c.Get(ctx, refreshFunc)
		Expect(err).ToNot(HaveOccurred())
		Expect(value).To(Equal(50.2))
	})

	// The wiring used in main: the refresh function closes over the device
	// client, so the client is only hit on miss or expiry.
	Context("backed by the device API client", func() {
		It("should hit the client once per TTL window and fall back to stale", func() {
			service := deviceapi.NewMockService()
			dc := cache.New("temperature", 60*time.Second, events, cache.WithClock[float64](clock))
			get := func() (float64, error) {
				return dc.Get(ctx, func(ctx context.Context) (float64, error) {
					return service.FetchScalar(ctx, "/device-cgi/temperature")
				})
			}

			service.On("FetchScalar", mock.Anything, "/device-cgi/temperature").
				Return(46.7, nil).Once()
			value, err := get()
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(46.7))

			now = now.Add(30 * time.Second)
			_, err = get()
			Expect(err).ToNot(HaveOccurred())

			now = now.Add(31 * time.Second)
			service.On("FetchScalar", mock.Anything, "/device-cgi/temperature").
				Return(0.0, &deviceapi.TransportError{Err: errors.New("timeout")}).Once()
			value, err = get()
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(46.7))

			service.AssertExpectations(GinkgoT())
		})
	})

	Context("with a structured value type", func() {
		type record struct {
			Serial string
			Model  string
		}

		It("should cache and serve the whole record", func() {
			rc := cache.New("record", 300*time.Second, events, cache.WithClock[record](clock))

			fetched, err := rc.Get(ctx, func(ctx context.Context) (record, error) {
				return record{Serial: "ACCC8E012345", Model: "Q6225-LE"}, nil
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(fetched.Serial).To(Equal("ACCC8E012345"))

			// Second read must not invoke the refresh function.
			cached, err := rc.Get(ctx, func(ctx context.Context) (record, error) {
				return record{}, errors.New("should not be called")
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(cached.Model).To(Equal("Q6225-LE"))
		})
	})
})
