/*
 * Copyright 2018 De-labtory
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package swim

import "time"

// fakeClock is a manually-advanced Clock for deterministic expiry-ladder
// tests (spec.md §1 requires the core to take its clock as a collaborator
// for exactly this reason).
type fakeClock struct {
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// seqSource is a deterministic Source: Intn always returns 0 (insert at
// the front) and Shuffle is a no-op, so memberlist order in tests is the
// reverse of the insertion order.
type seqSource struct{}

func (seqSource) Intn(n int) int                        { return 0 }
func (seqSource) Shuffle(n int, swap func(i, j int)) {}

func testConfig(bind string) Config {
	return Config{
		PingInterval:        10 * time.Millisecond,
		ProtocolPeriod:      20 * time.Millisecond,
		SuspicionPeriod:     40 * time.Millisecond,
		PingReqSubgroupSize: 3,
		BindAddress:         bind,
	}
}
