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

// MemberMap is the peer table: an id -> Peer map (the membership map) paired
// with an ordered id sequence (the memberlist) used for round-robin ping
// selection (spec.md §3, §9 "Collections"). The two are kept in lockstep:
// for every id in the map there is exactly one entry in the list, and vice
// versa — the local node is never stored here (it is neither a Peer nor a
// memberlist entry; see SWIM.CurrentMembership).
type MemberMap struct {
	src Source

	membership map[string]*Peer
	memberlist []string

	// round-robin cursor into memberlist; advanced by PickPingTarget.
	nextIdx int
}

// NewMemberMap constructs an empty peer table drawing randomness from src.
func NewMemberMap(src Source) *MemberMap {
	return &MemberMap{
		src:        src,
		membership: make(map[string]*Peer),
	}
}

// Get returns a copy of the peer with the given id, if known.
func (m *MemberMap) Get(id string) (Peer, bool) {
	p, ok := m.membership[id]
	if !ok {
		return Peer{}, false
	}
	return p.clone(), true
}

// Len returns the number of known peers (excludes the local node).
func (m *MemberMap) Len() int {
	return len(m.membership)
}

// Members returns a snapshot of all known peers, in no particular order.
func (m *MemberMap) Members() []Peer {
	out := make([]Peer, 0, len(m.membership))
	for _, p := range m.membership {
		out = append(out, p.clone())
	}
	return out
}

// Remember is the remember()/merge primitive of spec.md §4.5.
//
// If the peer is already known, it is updated only when incarnation is
// strictly greater than the stored one — and only state and incarnation are
// overwritten, never address. If the peer is unknown, it is created and
// inserted at a uniformly random position in the memberlist in [0, len].
//
// Returns the resulting peer and whether anything changed (created or
// updated). Remember never enqueues a rumor itself.
func (m *MemberMap) Remember(id, address string, incarnation uint64, state PeerState) (Peer, bool) {
	if existing, ok := m.membership[id]; ok {
		if incarnation > existing.Incarnation {
			existing.Incarnation = incarnation
			existing.State = state
			return existing.clone(), true
		}
		return existing.clone(), false
	}

	p := &Peer{ID: id, Address: address, State: state, Incarnation: incarnation}
	m.membership[id] = p

	pos := 0
	if n := len(m.memberlist); n > 0 {
		pos = m.src.Intn(n + 1)
	}
	m.memberlist = append(m.memberlist, "")
	copy(m.memberlist[pos+1:], m.memberlist[pos:])
	m.memberlist[pos] = id
	// Keep the round-robin cursor stable relative to the entry it was
	// about to visit when an insertion lands at or before it.
	if pos <= m.nextIdx {
		m.nextIdx++
	}

	return p.clone(), true
}

// Remove deletes a peer from both the membership map and the memberlist
// (swap-remove by id, per spec.md §4.4's Failed rule). Returns the removed
// peer, if it was known.
func (m *MemberMap) Remove(id string) (Peer, bool) {
	p, ok := m.membership[id]
	if !ok {
		return Peer{}, false
	}
	delete(m.membership, id)

	idx := -1
	for i, candidate := range m.memberlist {
		if candidate == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		last := len(m.memberlist) - 1
		m.memberlist[idx] = m.memberlist[last]
		m.memberlist = m.memberlist[:last]
		if m.nextIdx > idx {
			m.nextIdx--
		}
		if m.nextIdx > len(m.memberlist) {
			m.nextIdx = len(m.memberlist)
		}
	}

	return p.clone(), true
}

// EnsureCursor reshuffles the memberlist and resets the round-robin cursor
// if it has passed the end (spec.md §4.2: "If the round-robin index has
// passed the end of the memberlist, reshuffle ... and reset the index").
// Split out from picking the target itself so the failure detector can run
// this check before walking the pending-ping table, then pick the target
// afterwards, matching original_source/src/lib.rs's tick() ordering.
func (m *MemberMap) EnsureCursor() {
	if m.nextIdx >= len(m.memberlist) {
		m.src.Shuffle(len(m.memberlist), func(i, j int) {
			m.memberlist[i], m.memberlist[j] = m.memberlist[j], m.memberlist[i]
		})
		m.nextIdx = 0
	}
}

// PickPingTarget returns the peer at the round-robin cursor and advances
// it, or ok=false if there are no known peers. Call EnsureCursor first.
func (m *MemberMap) PickPingTarget() (Peer, bool) {
	if len(m.memberlist) == 0 {
		return Peer{}, false
	}
	id := m.memberlist[m.nextIdx]
	m.nextIdx++
	return m.Get(id)
}

// RandomDistinct returns up to k distinct peers drawn uniformly at random
// from the memberlist, excluding the given id. Used to pick ping-req
// recipients (spec.md §4.2 rule 3).
func (m *MemberMap) RandomDistinct(k int, exclude string) []Peer {
	candidates := make([]string, 0, len(m.memberlist))
	for _, id := range m.memberlist {
		if id != exclude {
			candidates = append(candidates, id)
		}
	}
	m.src.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]Peer, 0, k)
	for _, id := range candidates[:k] {
		if p, ok := m.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}
