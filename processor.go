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
	"log"

	"github.com/it-chain/iLogger"
)

// Process applies one inbound message (spec.md §4.3): the preamble bumps
// the local incarnation and remembers the sender as Alive, the message is
// dispatched by kind, and finally every piggybacked rumor is applied via
// the gossip-application rules (spec.md §4.4). Process only enqueues
// replies onto the outbox — see Join's doc comment for why it does not
// drain/return them itself.
func (s *SWIM) Process(msg Message) {
	// Preamble (spec.md §4.3).
	s.incarnation++
	if msg.RecipientID != s.id {
		// A routing bug (spec.md §7.1): the transport handed us a message
		// addressed to someone else. This is a broken collaborator, not a
		// recoverable protocol condition — fail loudly the same way the
		// teacher's messageEndpointFactory does on its own fatal setup
		// errors.
		log.Panic(fmt.Errorf("%w: recipient=%s self=%s", ErrWrongRecipient, msg.RecipientID, s.id))
	}
	s.memberMap.Remember(msg.SenderID, msg.SenderAddress, 0, Alive)

	switch msg.Kind {
	case MsgPing:
		s.handlePing(msg)
	case MsgPingReq:
		s.handlePingReq(msg)
	case MsgAck:
		s.handleAck(msg)
	case MsgPush:
		s.handlePush(msg)
	case MsgPull:
		s.handlePull(msg)
	}

	for _, rumor := range msg.Gossip {
		s.processGossip(rumor)
	}
}

// handlePing replies with Ack(self.id, self.incarnation) to the sender.
func (s *SWIM) handlePing(msg Message) {
	s.ack(s.id, msg.SenderID)
}

// handlePingReq ping's the target on the sender's behalf, tagging the
// pending entry FromElsewhere; a self-targeted PingReq is a routing bug
// (§7.1) and is acked defensively rather than crashing the caller.
func (s *SWIM) handlePingReq(msg Message) {
	if msg.PingReqTargetID == s.id {
		iLogger.Error(nil, ErrSelfPingReq.Error())
		s.ack(s.id, msg.SenderID)
		return
	}
	s.ping(msg.PingReqTargetID, msg.PingReqTargetAddress, msg.SenderID)
}

// handleAck cancels the matching pending ping, forwards the ack to the
// original requester if it wasn't us, and marks the peer Alive on a
// strictly higher incarnation (spec.md §4.3).
func (s *SWIM) handleAck(msg Message) {
	pending, ok := s.pings.get(msg.AckPeerID)
	if !ok {
		iLogger.Debug("swim: unexpected ack, no pending ping")
		return
	}
	s.pings.remove(msg.AckPeerID)

	if msg.SeqNo != pending.SeqNo {
		return
	}
	if pending.Requester != s.id {
		s.ack(msg.AckPeerID, pending.Requester)
	}

	if peer, known := s.memberMap.Get(msg.AckPeerID); known {
		if peer.State != Failed && msg.AckIncarnation > peer.Incarnation {
			s.memberMap.Remember(msg.AckPeerID, peer.Address, msg.AckIncarnation, Alive)
			s.broadcasts.Push(Rumor{PeerID: msg.AckPeerID, Incarnation: msg.AckIncarnation, Kind: RumorAlive, Address: peer.Address})
		}
	} else {
		s.memberMap.Remember(msg.AckPeerID, pending.TargetAddress, msg.AckIncarnation, Alive)
		s.broadcasts.Push(Rumor{PeerID: msg.AckPeerID, Incarnation: msg.AckIncarnation, Kind: RumorAlive, Address: pending.TargetAddress})
	}
}

// handlePush merges each peer in the payload via the remember rule
// (spec.md §4.3) — no rumor is enqueued; Push/Pull convergence is a direct
// state merge, not gossip.
func (s *SWIM) handlePush(msg Message) {
	for _, p := range msg.Peers {
		s.memberMap.Remember(p.ID, p.Address, p.Incarnation, p.State)
	}
}

// handlePull responds with Push(current_membership()) and then merges the
// (possibly empty) peers carried on the Pull itself (spec.md §4.3, §4.6).
func (s *SWIM) handlePull(msg Message) {
	s.outbox = append(s.outbox, Message{
		RecipientID:   msg.SenderID,
		SenderID:      s.id,
		SenderAddress: s.config.BindAddress,
		SeqNo:         0,
		Kind:          MsgPush,
		Peers:         s.CurrentMembership(),
		Gossip:        s.gossip(),
	})

	for _, p := range msg.Peers {
		s.memberMap.Remember(p.ID, p.Address, p.Incarnation, p.State)
	}
}

// processGossip applies one inbound rumor per the conflict-resolution
// rules of spec.md §4.4. Alive and Suspect rumors change a known peer only
// at a strictly higher incarnation, so equal incarnations never overwrite
// stored state; a Failed rumor removes a known peer whatever its
// incarnation.
func (s *SWIM) processGossip(rumor Rumor) {
	switch rumor.Kind {
	case RumorAlive:
		s.applyAliveRumor(rumor)
	case RumorSuspect:
		s.applySuspectRumor(rumor)
	case RumorFailed:
		s.applyFailedRumor(rumor)
	case RumorDepart:
		// Reserved; no-op in this core (spec.md §4.4).
	}
}

func (s *SWIM) applyAliveRumor(rumor Rumor) {
	if rumor.PeerID == s.id {
		// Someone is reporting us under a stale incarnation; bump ours and
		// re-disseminate the rumor exactly as received (matching
		// original_source/src/lib.rs's process_gossip Alive self-branch,
		// which re-pushes rumor.clone() rather than building a fresh one at
		// the bumped incarnation).
		s.incarnation++
		s.broadcasts.Push(rumor)
		return
	}

	if peer, known := s.memberMap.Get(rumor.PeerID); known {
		if rumor.Incarnation > peer.Incarnation {
			s.memberMap.Remember(rumor.PeerID, peer.Address, rumor.Incarnation, Alive)
			s.broadcasts.Push(rumor)
		}
		return
	}

	s.memberMap.Remember(rumor.PeerID, rumor.Address, rumor.Incarnation, Alive)
	s.broadcasts.Push(rumor)
}

func (s *SWIM) applySuspectRumor(rumor Rumor) {
	if rumor.PeerID == s.id {
		// Refutation: reports of our death are greatly exaggerated.
		s.broadcasts.Push(Rumor{PeerID: s.id, Incarnation: s.incarnation, Kind: RumorAlive, Address: s.config.BindAddress})
		return
	}

	if peer, known := s.memberMap.Get(rumor.PeerID); known {
		if rumor.Incarnation > peer.Incarnation {
			s.memberMap.Remember(rumor.PeerID, peer.Address, rumor.Incarnation, Suspect)
			s.broadcasts.Push(rumor)
		}
	}
}

func (s *SWIM) applyFailedRumor(rumor Rumor) {
	if _, known := s.memberMap.Get(rumor.PeerID); known {
		s.memberMap.Remove(rumor.PeerID)
		s.pings.remove(rumor.PeerID)
		s.broadcasts.Push(rumor)
	}
}
