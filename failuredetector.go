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

import "github.com/it-chain/iLogger"

// Tick drives one round of the failure detector (spec.md §4.2): the
// round-robin cursor is reshuffled if it wrapped, every pending ping is
// walked against the three-rule expiry ladder (first matching rule wins),
// and finally a new direct ping is sent to the next round-robin target.
// This is the one call spec.md documents as draining and returning the
// outbox.
func (s *SWIM) Tick() []Message {
	s.memberMap.EnsureCursor()

	now := s.clock.Now()
	for _, id := range s.pings.ids() {
		pending, ok := s.pings.get(id)
		if !ok {
			continue
		}
		delta := now.Sub(pending.SentAt)

		switch {
		case delta > s.suspicionPeriod:
			// Rule 1: the suspicion timer fired on a ping that was already
			// being run indirectly. The target is declared Failed and
			// removed locally right now — spec.md §3's invariant that a
			// Failed peer is removed from membership is unconditional, so
			// the detecting node does not wait for its own rumor to come
			// back around via gossip (cf. original_source/src/lib.rs,
			// where this round-trip never actually happens for the
			// detecting node itself).
			if pending.State != PingForwarded {
				iLogger.Error(nil, "swim: suspicion-period expiry on a pending ping that was never forwarded")
			}
			if peer, known := s.memberMap.Get(id); known {
				s.applyFailedRumor(Rumor{PeerID: id, Incarnation: peer.Incarnation, Kind: RumorFailed})
			}
			s.pings.remove(id)

		case delta > s.config.ProtocolPeriod:
			// Rule 2: the protocol period elapsed with no ack, direct or
			// indirect. A ping we sent on someone else's behalf is their
			// concern, not ours; likewise a target that's already been
			// forgotten. Otherwise the target is suspect — emit the rumor
			// and leave the pending entry in place; it is re-evaluated
			// (and re-emits Suspect) every tick until it either acks or
			// ages into rule 1.
			if pending.State == PingFromElsewhere {
				s.pings.remove(id)
				continue
			}
			peer, known := s.memberMap.Get(id)
			if !known {
				s.pings.remove(id)
				continue
			}
			s.broadcasts.Push(Rumor{PeerID: id, Incarnation: peer.Incarnation, Kind: RumorSuspect})

		case delta > s.config.PingInterval && pending.State != PingForwarded:
			// Rule 3: no ack yet within one ping interval. A ping sent on
			// someone else's behalf isn't ours to chase further here.
			if pending.State != PingNormal {
				s.pings.remove(id)
				continue
			}
			if s.memberMap.Len() <= 1 {
				// No peers left to ask indirectly; skip straight to
				// Suspect rather than stall waiting for acks that will
				// never come.
				incarnation := uint64(0)
				if peer, known := s.memberMap.Get(id); known {
					incarnation = peer.Incarnation
				}
				s.broadcasts.Push(Rumor{PeerID: id, Incarnation: incarnation, Kind: RumorSuspect})
				s.pings.remove(id)
				continue
			}

			recipients := s.memberMap.RandomDistinct(s.config.PingReqSubgroupSize, id)
			for _, r := range recipients {
				s.outbox = append(s.outbox, Message{
					RecipientID:          r.ID,
					SenderID:             s.id,
					SenderAddress:        s.config.BindAddress,
					SeqNo:                pending.SeqNo,
					Kind:                 MsgPingReq,
					PingReqTargetID:      id,
					PingReqTargetAddress: pending.TargetAddress,
					Gossip:               s.gossip(),
				})
			}
			pending.State = PingForwarded
		}
	}

	// A rule-1 removal above can leave the cursor at the end of the
	// shortened memberlist; re-check it before picking the target.
	s.memberMap.EnsureCursor()
	if target, ok := s.memberMap.PickPingTarget(); ok {
		s.ping(target.ID, target.Address, s.id)
	}

	return s.drainOutbox()
}
