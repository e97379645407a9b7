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

package env_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgewatch/edgewatch/pkg/env"
)

var _ = Describe("Env getters", func() {
	setenv := func(key, value string) {
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(os.Unsetenv, key)
	}

	Context("GetAsString", func() {
		It("should fall back to the default when unset", func() {
			value, err := env.GetAsString("EDGEWATCH_TEST_UNSET", false, "fallback")
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal("fallback"))
		})

		It("should error when a required variable is unset", func() {
			_, err := env.GetAsString("EDGEWATCH_TEST_UNSET", true, "")
			Expect(err).To(HaveOccurred())
		})
	})

	Context("GetAsInt", func() {
		It("should parse a set variable", func() {
			setenv("EDGEWATCH_TEST_INT", "42")
			value, err := env.GetAsInt("EDGEWATCH_TEST_INT", false, 7)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(42))
		})

		It("should fall back to the default on garbage input", func() {
			setenv("EDGEWATCH_TEST_INT", "not-a-number")
			value, err := env.GetAsInt("EDGEWATCH_TEST_INT", false, 7)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(7))
		})
	})

	Context("GetAsDuration", func() {
		It("should parse duration syntax", func() {
			setenv("EDGEWATCH_TEST_TTL", "90s")
			value, err := env.GetAsDuration("EDGEWATCH_TEST_TTL", false, time.Minute)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(90 * time.Second))
		})

		It("should fall back to the default when unset", func() {
			value, err := env.GetAsDuration("EDGEWATCH_TEST_TTL", false, 5*time.Minute)
			Expect(err).ToNot(HaveOccurred())
			Expect(value).To(Equal(5 * time.Minute))
		})

		It("should error on garbage input when required", func() {
			setenv("EDGEWATCH_TEST_TTL", "soon")
			_, err := env.GetAsDuration("EDGEWATCH_TEST_TTL", true, time.Minute)
			Expect(err).To(HaveOccurred())
		})
	})
})
