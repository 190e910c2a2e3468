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
	"container/heap"
	"math"
)

// RumorKind is the payload shape of a state-change rumor (spec.md §3).
type RumorKind int

const (
	RumorAlive RumorKind = iota
	RumorSuspect
	RumorFailed
	RumorDepart
)

func (k RumorKind) String() string {
	switch k {
	case RumorAlive:
		return "Alive"
	case RumorSuspect:
		return "Suspect"
	case RumorFailed:
		return "Failed"
	case RumorDepart:
		return "Depart"
	default:
		return "Unknown"
	}
}

// Rumor is a single state-change assertion about a peer, piggybacked on
// failure-detector traffic. Address is only meaningful when Kind is
// RumorAlive (new peers are learned from it).
type Rumor struct {
	PeerID      string
	Incarnation uint64
	Kind        RumorKind
	Address     string
}

// wireSize estimates the serialized size of the rumor for the broadcast
// comparator (spec.md §4.1 rule 2, "larger serialized size first"). It does
// not need to match the exact wire encoding byte-for-byte — only the
// relative ordering (an Alive rumor carrying an address is "larger" than a
// bare Suspect/Failed/Depart rumor about the same peer) matters for the
// comparator to do its job.
func (r Rumor) wireSize() int {
	const overhead = 1 + 8 // kind tag + incarnation
	return overhead + len(r.PeerID) + len(r.Address)
}

// PIGGYBACKED_MSGS is the max number of rumors attached to a single
// outgoing message (spec.md §4.1, §6).
const PIGGYBACKED_MSGS = 10

// broadcastEntry wraps a Rumor with the bookkeeping the priority queue
// orders on (spec.md §3 "Broadcast entry").
type broadcastEntry struct {
	rumor Rumor
	sends int
	id    uint64
	size  int
}

// broadcastHeap is a container/heap.Interface min-heap ordered so Pop
// returns the rumor least disseminated — ties broken by larger serialized
// size, then smaller insertion id (spec.md §4.1, §9 "materialize it as a
// total order (sends, -size, id)").
type broadcastHeap []*broadcastEntry

func (h broadcastHeap) Len() int { return len(h) }

func (h broadcastHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.sends != b.sends {
		return a.sends < b.sends
	}
	if a.size != b.size {
		return a.size > b.size
	}
	return a.id < b.id
}

func (h broadcastHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *broadcastHeap) Push(x interface{}) {
	*h = append(*h, x.(*broadcastEntry))
}

func (h *broadcastHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// PriorityPBStore is the rumor/broadcast store (spec.md §4.1): a
// priority-ordered queue of state-change rumors with a per-rumor send
// budget derived from the current membership size.
type PriorityPBStore struct {
	h      broadcastHeap
	nextID uint64
}

// NewPriorityPBStore constructs an empty rumor store.
func NewPriorityPBStore() *PriorityPBStore {
	s := &PriorityPBStore{}
	heap.Init(&s.h)
	return s
}

// MaxSends derives max_sends = ceil(3 * log10(n + 2)) from the current
// membership size n (spec.md §4.1).
func MaxSends(n int) int {
	return int(math.Ceil(3 * math.Log10(float64(n+2))))
}

// Push inserts rumor with sends=0 and the next monotonic id.
func (s *PriorityPBStore) Push(rumor Rumor) {
	heap.Push(&s.h, &broadcastEntry{
		rumor: rumor,
		sends: 0,
		id:    s.nextID,
		size:  rumor.wireSize(),
	})
	s.nextID++
}

// Pop removes and returns the preferred entry, or ok=false if empty.
func (s *PriorityPBStore) Pop() (*broadcastEntry, bool) {
	if s.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&s.h).(*broadcastEntry), true
}

// replay increments sends and reinserts the entry.
func (s *PriorityPBStore) replay(e *broadcastEntry) {
	e.sends++
	heap.Push(&s.h, e)
}

// Len returns the number of rumors currently queued.
func (s *PriorityPBStore) Len() int { return s.h.Len() }

// Piggyback pops up to PIGGYBACKED_MSGS entries for attachment to an
// outgoing message, re-enqueueing (with sends incremented) any entry whose
// send count has not yet exhausted its budget (spec.md §4.1 "A broadcast is
// re-enqueued iff sends < max_sends - 1"). Re-enqueueing happens after the
// batch is selected, so one message never carries the same rumor twice.
// maxSends is derived by the caller from the current membership size via
// MaxSends.
func (s *PriorityPBStore) Piggyback(maxSends int) []Rumor {
	out := make([]Rumor, 0, PIGGYBACKED_MSGS)
	var replays []*broadcastEntry
	for len(out) < PIGGYBACKED_MSGS {
		entry, ok := s.Pop()
		if !ok {
			break
		}
		out = append(out, entry.rumor)
		if entry.sends < maxSends-1 {
			replays = append(replays, entry)
		}
	}
	for _, entry := range replays {
		s.replay(entry)
	}
	return out
}
