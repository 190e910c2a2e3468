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

import "fmt"

// PeerState is the liveness state of a peer as tracked by the local node.
type PeerState int

const (
	// Alive means the peer is believed up and reachable.
	Alive PeerState = iota
	// Suspect means a ping (direct or indirect) to the peer has timed out
	// and it is pending confirmation or refutation.
	Suspect
	// Failed means the peer's suspicion timer expired without refutation.
	// Failed peers are removed from the member map and member list.
	Failed
	// Departed is reserved for a future graceful-leave rumor; the core
	// never assigns it today (Rumor kind Depart is a no-op, see §4.4).
	Departed
)

func (s PeerState) String() string {
	switch s {
	case Alive:
		return "Alive"
	case Suspect:
		return "Suspect"
	case Failed:
		return "Failed"
	case Departed:
		return "Departed"
	default:
		return "Unknown"
	}
}

// Peer is the identity and mutable state of a remote node as seen by us.
//
// id and address are set once at discovery time; state and incarnation are
// mutated by the inbound path and by failure-detector timers. remember()
// never changes address, even on a higher incarnation (spec.md §9).
type Peer struct {
	ID          string
	Address     string
	State       PeerState
	Incarnation uint64
}

func (p Peer) String() string {
	return fmt.Sprintf("Peer(%s, %s, %s, %d)", p.ID, p.Address, p.State, p.Incarnation)
}

// clone returns a value copy, used whenever a Peer crosses the outbox
// boundary (current_membership snapshots, Push payloads) so callers can't
// mutate internal state through an aliased pointer.
func (p Peer) clone() Peer {
	return p
}
