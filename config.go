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

import (
	"fmt"
	"time"
)

// Config holds the tuning parameters of spec.md §6's Configuration-options
// table. Field names follow the teacher's flat Config struct
// (BindAddress/BindPort/T/AckTimeOut/K) generalized to the durations and
// names spec.md actually specifies.
type Config struct {
	// PingInterval is the delta after which a direct ping is promoted to
	// indirect pings (spec.md: ping_interval).
	PingInterval time.Duration

	// ProtocolPeriod is the delta after which indirect pings have failed
	// and the target is marked Suspect; it also doubles as the tick
	// interval collaborators drive Tick() at (spec.md: protocol_period).
	ProtocolPeriod time.Duration

	// SuspicionPeriod is the delta after which a Suspect peer is declared
	// Failed. Recomputed from max_sends * ProtocolPeriod on every gossip
	// selection (spec.md: suspicion_period); the configured value here is
	// only the seed used before the first recomputation.
	SuspicionPeriod time.Duration

	// PingReqSubgroupSize is k, the indirect-ping fanout.
	PingReqSubgroupSize int

	// BindAddress is this node's own transport address, reported to peers
	// so they can reach us (spec.md's Local node `address`).
	BindAddress string
}

// Validate enforces the ordering spec.md §4.2 requires between the three
// timeout thresholds (ping_interval <= protocol_period <= suspicion_period)
// and that the fanout is positive — generalizing the teacher's
// constructor-time check (`if config.T < config.AckTimeOut { panic(...) }`)
// into a regular error return.
func (c Config) Validate() error {
	if c.PingInterval <= 0 {
		return fmt.Errorf("swim: ping interval must be positive")
	}
	if c.ProtocolPeriod < c.PingInterval {
		return fmt.Errorf("swim: protocol period (%s) must be >= ping interval (%s)", c.ProtocolPeriod, c.PingInterval)
	}
	if c.SuspicionPeriod < c.ProtocolPeriod {
		return fmt.Errorf("swim: suspicion period (%s) must be >= protocol period (%s)", c.SuspicionPeriod, c.ProtocolPeriod)
	}
	if c.PingReqSubgroupSize <= 0 {
		return fmt.Errorf("swim: pingreq subgroup size must be positive")
	}
	if c.BindAddress == "" {
		return fmt.Errorf("swim: bind address must not be empty")
	}
	return nil
}

// DefaultConfig returns conservative defaults in the spirit of the
// teacher's own default-less-but-sane parameters: a 1s protocol period, a
// ping timeout well under it, and three indirect probers.
func DefaultConfig(bindAddress string) Config {
	return Config{
		PingInterval:        500 * time.Millisecond,
		ProtocolPeriod:      1 * time.Second,
		SuspicionPeriod:     5 * time.Second,
		PingReqSubgroupSize: 3,
		BindAddress:         bindAddress,
	}
}
