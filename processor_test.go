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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T, id, bind string) *SWIM {
	t.Helper()
	s, err := New(id, testConfig(bind), newFakeClock(time.Unix(0, 0)), seqSource{})
	require.NoError(t, err)
	return s
}

func TestProcessRejectsWrongRecipient(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")

	assert.Panics(t, func() {
		s.Process(Message{RecipientID: "someone-else", SenderID: "b", SenderAddress: "addr-b", Kind: MsgPing})
	}, "a misrouted message is a routing bug and must fail loudly")

	_, known := s.memberMap.Get("b")
	assert.False(t, known, "a misrouted message must not be treated as contact from its sender")
}

func TestProcessPingRepliesWithAck(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")

	s.Process(Message{RecipientID: "a", SenderID: "b", SenderAddress: "addr-b", Kind: MsgPing, SeqNo: 7})

	out := s.DrainOutbox()
	require.Len(t, out, 1)
	assert.Equal(t, MsgAck, out[0].Kind)
	assert.Equal(t, "b", out[0].RecipientID)
	assert.Equal(t, "a", out[0].AckPeerID)

	peer, known := s.memberMap.Get("b")
	require.True(t, known, "the sender of any message is remembered as alive")
	assert.Equal(t, Alive, peer.State)
	assert.Equal(t, "addr-b", peer.Address)
}

func TestProcessPingReqForwardsPing(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")
	s.memberMap.Remember("c", "addr-c", 1, Alive)

	s.Process(Message{
		RecipientID: "a", SenderID: "b", SenderAddress: "addr-b",
		Kind: MsgPingReq, PingReqTargetID: "c", PingReqTargetAddress: "addr-c",
	})

	out := s.DrainOutbox()
	require.Len(t, out, 1)
	assert.Equal(t, MsgPing, out[0].Kind)
	assert.Equal(t, "c", out[0].RecipientID)

	pending, ok := s.pings.get("c")
	require.True(t, ok)
	assert.Equal(t, PingFromElsewhere, pending.State)
	assert.Equal(t, "b", pending.Requester)
}

func TestProcessPingReqTargetingSelfIsDefensivelyAcked(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")

	s.Process(Message{RecipientID: "a", SenderID: "b", SenderAddress: "addr-b", Kind: MsgPingReq, PingReqTargetID: "a"})

	out := s.DrainOutbox()
	require.Len(t, out, 1)
	assert.Equal(t, MsgAck, out[0].Kind)
}

func TestProcessAckForwardsToOriginalRequesterAndMarksAlive(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")
	s.memberMap.Remember("c", "addr-c", 1, Alive)
	s.ping("c", "addr-c", "b") // a is pinging c on b's behalf
	s.DrainOutbox()

	pending, ok := s.pings.get("c")
	require.True(t, ok)

	s.Process(Message{
		RecipientID: "a", SenderID: "c", SenderAddress: "addr-c",
		Kind: MsgAck, SeqNo: pending.SeqNo, AckPeerID: "c", AckIncarnation: 9,
	})

	out := s.DrainOutbox()
	require.Len(t, out, 1)
	assert.Equal(t, MsgAck, out[0].Kind)
	assert.Equal(t, "b", out[0].RecipientID, "the ack must be relayed back to the original requester")

	peer, known := s.memberMap.Get("c")
	require.True(t, known)
	assert.EqualValues(t, 9, peer.Incarnation)

	_, stillPending := s.pings.get("c")
	assert.False(t, stillPending, "a matched ack must cancel the pending ping")
}

func TestProcessAckMismatchedSeqNoIsDropped(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")
	s.memberMap.Remember("c", "addr-c", 1, Alive)
	s.ping("c", "addr-c", "a")
	s.DrainOutbox()

	s.Process(Message{RecipientID: "a", SenderID: "c", SenderAddress: "addr-c", Kind: MsgAck, SeqNo: 99999, AckPeerID: "c", AckIncarnation: 2})

	assert.Empty(t, s.DrainOutbox())
	_, stillPending := s.pings.get("c")
	assert.False(t, stillPending, "the pending entry is removed on lookup regardless of seq_no match")
}

func TestProcessPullRepliesWithPushAndMergesPeers(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")

	s.Process(Message{
		RecipientID: "a", SenderID: "b", SenderAddress: "addr-b", Kind: MsgPull,
		Peers: []Peer{{ID: "d", Address: "addr-d", State: Alive, Incarnation: 1}},
	})

	out := s.DrainOutbox()
	require.Len(t, out, 1)
	assert.Equal(t, MsgPush, out[0].Kind)
	assert.Equal(t, "b", out[0].RecipientID)

	foundSelf := false
	for _, p := range out[0].Peers {
		if p.ID == "a" {
			foundSelf = true
		}
	}
	assert.True(t, foundSelf, "the Push payload must include the local node itself")

	_, known := s.memberMap.Get("d")
	assert.True(t, known, "peers carried on the Pull are merged too")
}

func TestProcessGossipAliveSelfRefutationBumpsIncarnation(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")
	before := s.incarnation

	s.Process(Message{
		RecipientID: "a", SenderID: "b", SenderAddress: "addr-b", Kind: MsgPing,
		Gossip: []Rumor{{PeerID: "a", Incarnation: before + 100, Kind: RumorAlive}},
	})

	assert.Greater(t, s.incarnation, before)
}

func TestProcessGossipSuspectUnknownPeerIsDropped(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")

	s.Process(Message{
		RecipientID: "a", SenderID: "b", SenderAddress: "addr-b", Kind: MsgPing,
		Gossip: []Rumor{{PeerID: "ghost", Incarnation: 1, Kind: RumorSuspect}},
	})

	_, known := s.memberMap.Get("ghost")
	assert.False(t, known)
}

func TestProcessGossipFailedRemovesPeer(t *testing.T) {
	s := newTestNode(t, "a", "addr-a")
	s.memberMap.Remember("c", "addr-c", 1, Alive)

	s.Process(Message{
		RecipientID: "a", SenderID: "b", SenderAddress: "addr-b", Kind: MsgPing,
		Gossip: []Rumor{{PeerID: "c", Incarnation: 1, Kind: RumorFailed}},
	})

	_, known := s.memberMap.Get("c")
	assert.False(t, known)
}
