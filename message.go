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

// MessageKind is the wire taxonomy of spec.md §6.
type MessageKind int

const (
	MsgPing MessageKind = iota
	MsgAck
	MsgPingReq
	MsgPush
	MsgPull
)

func (k MessageKind) String() string {
	switch k {
	case MsgPing:
		return "Ping"
	case MsgAck:
		return "Ack"
	case MsgPingReq:
		return "PingReq"
	case MsgPush:
		return "Push"
	case MsgPull:
		return "Pull"
	default:
		return "Unknown"
	}
}

// Message is the envelope every failure-detector message travels in
// (spec.md §6): `{recipient_id, sender_id, sender_address, seq_no, kind,
// gossip}` plus kind-specific payload fields. Only the fields relevant to
// Kind are populated by the sender; the rest are zero values.
type Message struct {
	RecipientID   string
	SenderID      string
	SenderAddress string
	SeqNo         uint64
	Kind          MessageKind
	Gossip        []Rumor

	// Ack payload: the peer the ack is about, and its incarnation.
	AckPeerID      string
	AckIncarnation uint64

	// PingReq payload.
	PingReqTargetID      string
	PingReqTargetAddress string

	// Push / Pull payload: the sender's membership snapshot (Pull's is
	// empty on the initial join request, per spec.md §4.6).
	Peers []Peer
}
