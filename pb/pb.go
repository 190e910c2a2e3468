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

// Package pb holds the wire types exchanged between swim nodes. They are
// hand-maintained rather than protoc-generated, but implement the standard
// proto.Message surface (Reset/String/ProtoMessage) so they marshal through
// both github.com/gogo/protobuf/proto and github.com/golang/protobuf/proto
// using reflection over the struct tags below — no .proto/protoc step is
// required for a wire format this small.
package pb

import fmt "fmt"

// Peer mirrors swim.Peer on the wire.
type Peer struct {
	Id          string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Address     string `protobuf:"bytes,2,opt,name=address,proto3" json:"address,omitempty"`
	State       int32  `protobuf:"varint,3,opt,name=state,proto3" json:"state,omitempty"`
	Incarnation uint64 `protobuf:"varint,4,opt,name=incarnation,proto3" json:"incarnation,omitempty"`
}

func (m *Peer) Reset()         { *m = Peer{} }
func (m *Peer) String() string { return fmt.Sprintf("%+v", *m) }
func (*Peer) ProtoMessage()    {}

// Rumor mirrors swim.Rumor on the wire.
type Rumor struct {
	PeerId      string `protobuf:"bytes,1,opt,name=peer_id,json=peerId,proto3" json:"peer_id,omitempty"`
	Incarnation uint64 `protobuf:"varint,2,opt,name=incarnation,proto3" json:"incarnation,omitempty"`
	Kind        int32  `protobuf:"varint,3,opt,name=kind,proto3" json:"kind,omitempty"`
	Address     string `protobuf:"bytes,4,opt,name=address,proto3" json:"address,omitempty"`
}

func (m *Rumor) Reset()         { *m = Rumor{} }
func (m *Rumor) String() string { return fmt.Sprintf("%+v", *m) }
func (*Rumor) ProtoMessage()    {}

// Envelope is the single wire message sent between nodes. One struct covers
// every MessageKind rather than a protoc oneof: fields that don't apply to a
// given Kind are simply left at their zero value, matching the relatively
// small and flat message shape of spec.md §4 over a protoc build step.
type Envelope struct {
	RecipientId          string   `protobuf:"bytes,1,opt,name=recipient_id,json=recipientId,proto3" json:"recipient_id,omitempty"`
	SenderId             string   `protobuf:"bytes,2,opt,name=sender_id,json=senderId,proto3" json:"sender_id,omitempty"`
	SenderAddress        string   `protobuf:"bytes,3,opt,name=sender_address,json=senderAddress,proto3" json:"sender_address,omitempty"`
	SeqNo                uint64   `protobuf:"varint,4,opt,name=seq_no,json=seqNo,proto3" json:"seq_no,omitempty"`
	Kind                 int32    `protobuf:"varint,5,opt,name=kind,proto3" json:"kind,omitempty"`
	Gossip               []*Rumor `protobuf:"bytes,6,rep,name=gossip,proto3" json:"gossip,omitempty"`
	AckPeerId            string   `protobuf:"bytes,7,opt,name=ack_peer_id,json=ackPeerId,proto3" json:"ack_peer_id,omitempty"`
	AckIncarnation       uint64   `protobuf:"varint,8,opt,name=ack_incarnation,json=ackIncarnation,proto3" json:"ack_incarnation,omitempty"`
	PingReqTargetId      string   `protobuf:"bytes,9,opt,name=ping_req_target_id,json=pingReqTargetId,proto3" json:"ping_req_target_id,omitempty"`
	PingReqTargetAddress string   `protobuf:"bytes,10,opt,name=ping_req_target_address,json=pingReqTargetAddress,proto3" json:"ping_req_target_address,omitempty"`
	Peers                []*Peer  `protobuf:"bytes,11,rep,name=peers,proto3" json:"peers,omitempty"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return fmt.Sprintf("%+v", *m) }
func (*Envelope) ProtoMessage()    {}
