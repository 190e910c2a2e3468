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

// PingState distinguishes why a pending ping exists, which governs how the
// expiry ladder treats it (spec.md §3, §4.2).
type PingState int

const (
	// PingNormal is a direct ping we issued ourselves, on our own behalf.
	PingNormal PingState = iota
	// PingForwarded is our own direct ping whose target did not ack within
	// ping_interval, after PingReqs for it were sent to a k-subgroup.
	PingForwarded
	// PingFromElsewhere is a ping we issued because a PingReq asked us to,
	// on behalf of some other requester.
	PingFromElsewhere
)

func (s PingState) String() string {
	switch s {
	case PingNormal:
		return "Normal"
	case PingForwarded:
		return "Forwarded"
	case PingFromElsewhere:
		return "FromElsewhere"
	default:
		return "Unknown"
	}
}

// PendingPing is an in-flight direct or indirect ping with its timer
// (spec.md §3).
type PendingPing struct {
	TargetAddress string
	SeqNo         uint64
	Requester     string
	State         PingState
	SentAt        time.Time
}

// pendingPingTable is the pending-ping table (spec.md §4.2): in-flight pings
// keyed by the id of the peer being pinged.
type pendingPingTable struct {
	pings map[string]*PendingPing
}

func newPendingPingTable() *pendingPingTable {
	return &pendingPingTable{pings: make(map[string]*PendingPing)}
}

func (t *pendingPingTable) add(targetID string, p PendingPing) {
	t.pings[targetID] = &p
}

func (t *pendingPingTable) get(targetID string) (*PendingPing, bool) {
	p, ok := t.pings[targetID]
	return p, ok
}

func (t *pendingPingTable) remove(targetID string) {
	delete(t.pings, targetID)
}

// ids returns a stable snapshot of the currently pending targets, so callers
// can iterate while mutating the table (matching the teacher's idiom of
// taking a membership snapshot before ranging and mutating).
func (t *pendingPingTable) ids() []string {
	out := make([]string, 0, len(t.pings))
	for id := range t.pings {
		out = append(out, id)
	}
	return out
}

func (t *pendingPingTable) len() int { return len(t.pings) }
