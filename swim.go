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

	"github.com/it-chain/iLogger"
)

// SWIM is the node engine: the single-threaded, cooperatively-driven core
// described by spec.md. One external scheduler owns a SWIM value and calls
// Tick() at the protocol period and Process() on message arrival; every
// call runs to completion (spec.md §5). Tick returns the batch of messages
// produced since the last drain; Process and Join only queue theirs, to be
// collected with DrainOutbox or by the next Tick.
type SWIM struct {
	id     string
	config Config
	clock  Clock
	src    Source

	memberMap  *MemberMap
	broadcasts *PriorityPBStore
	pings      *pendingPingTable

	seqNo           uint64
	incarnation     uint64
	suspicionPeriod time.Duration

	outbox []Message
}

// New constructs a SWIM node. id must be stable and unique cluster-wide;
// config.BindAddress is this node's own transport address, reported in
// outgoing messages and Push/Pull payloads. clock and src are the external
// collaborators spec.md §1 requires (a monotonic clock and a seedable
// random source) — pass NewSystemClock() and NewSource(seed) in
// production, fakes in tests.
func New(id string, config Config, clock Clock, src Source) (*SWIM, error) {
	if err := config.Validate(); err != nil {
		iLogger.Error(nil, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id must not be empty", ErrInvalidConfig)
	}

	return &SWIM{
		id:              id,
		config:          config,
		clock:           clock,
		src:             src,
		memberMap:       NewMemberMap(src),
		broadcasts:      NewPriorityPBStore(),
		pings:           newPendingPingTable(),
		seqNo:           1,
		incarnation:     1,
		suspicionPeriod: config.SuspicionPeriod,
	}, nil
}

// ID returns the local node's id.
func (s *SWIM) ID() string { return s.id }

// Address returns the local node's bind address.
func (s *SWIM) Address() string { return s.config.BindAddress }

func (s *SWIM) String() string {
	return fmt.Sprintf("Node(%s, %d)", s.id, s.incarnation)
}

// PeerAddress returns the known network address of a peer id — the local
// node for s.id, a member's stored address otherwise. Collaborators
// outside this package (the transport/eventloop layers) use this to
// resolve an outgoing message's RecipientID to somewhere to actually send
// it, since Message itself only ever carries ids, not addresses.
func (s *SWIM) PeerAddress(id string) (string, bool) {
	if id == s.id {
		return s.config.BindAddress, true
	}
	peer, ok := s.memberMap.Get(id)
	if !ok {
		return "", false
	}
	return peer.Address, true
}

// CurrentMembership returns a snapshot of the membership view, including
// the local node itself as Alive at its current incarnation (spec.md §6).
func (s *SWIM) CurrentMembership() []Peer {
	self := Peer{ID: s.id, Address: s.config.BindAddress, State: Alive, Incarnation: s.incarnation}
	peers := s.memberMap.Members()
	out := make([]Peer, 0, len(peers)+1)
	out = append(out, self)
	out = append(out, peers...)
	return out
}

// nextSeqNo returns the next outgoing seq_no, incrementing with
// wraparound (spec.md §3, §9).
func (s *SWIM) nextSeqNo() uint64 {
	n := s.seqNo
	s.seqNo++
	return n
}

// gossip selects up to PIGGYBACKED_MSGS rumors to piggyback on the message
// currently being built, and recomputes suspicion_period from the current
// membership size (spec.md §4.1: "It also recomputes the suspicion_period
// as protocol_period * max_sends"). Per original_source/src/lib.rs this
// recomputation happens on every call, i.e. on every outgoing message, not
// once per tick (SPEC_FULL §C.2).
func (s *SWIM) gossip() []Rumor {
	maxSends := MaxSends(s.memberMap.Len())
	s.suspicionPeriod = time.Duration(maxSends) * s.config.ProtocolPeriod
	return s.broadcasts.Piggyback(maxSends)
}

// ack builds and enqueues an Ack(peerID, incarnation) message to recipient.
func (s *SWIM) ack(peerID, recipientID string) {
	s.outbox = append(s.outbox, Message{
		RecipientID:    recipientID,
		SenderID:       s.id,
		SenderAddress:  s.config.BindAddress,
		SeqNo:          s.nextSeqNo(),
		Kind:           MsgAck,
		AckPeerID:      peerID,
		AckIncarnation: s.incarnation,
		Gossip:         s.gossip(),
	})
}

// ping builds and registers a pending Ping to target (id/address), on
// behalf of requester (self.id for a direct round-robin ping, the
// original PingReq sender's id when pinging FromElsewhere).
func (s *SWIM) ping(targetID, targetAddress, requester string) {
	seq := s.nextSeqNo()
	s.outbox = append(s.outbox, Message{
		RecipientID:   targetID,
		SenderID:      s.id,
		SenderAddress: s.config.BindAddress,
		SeqNo:         seq,
		Kind:          MsgPing,
		Gossip:        s.gossip(),
	})

	state := PingNormal
	if requester != s.id {
		state = PingFromElsewhere
	}
	s.pings.add(targetID, PendingPing{
		TargetAddress: targetAddress,
		SeqNo:         seq,
		Requester:     requester,
		State:         state,
		SentAt:        s.clock.Now(),
	})
}

// drainOutbox returns and clears the messages accumulated so far in the
// current call.
func (s *SWIM) drainOutbox() []Message {
	out := s.outbox
	s.outbox = nil
	return out
}
