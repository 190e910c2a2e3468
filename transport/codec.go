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

// Package transport carries swim.Message values between nodes over UDP,
// grounded on the packet-transport / message-endpoint split the core
// package's swim.go anticipates (a PacketTransport underneath a
// MessageEndpoint) and on the UDP probe loop pattern used elsewhere in the
// example pack for gossip-style protocols.
package transport

import (
	"github.com/gogo/protobuf/proto"

	"github.com/swimkit/swim"
	"github.com/swimkit/swim/pb"
)

// Encode marshals a swim.Message to its wire form.
func Encode(msg swim.Message) ([]byte, error) {
	return proto.Marshal(toEnvelope(msg))
}

// Decode unmarshals a wire packet into a swim.Message.
func Decode(data []byte) (swim.Message, error) {
	env := &pb.Envelope{}
	if err := proto.Unmarshal(data, env); err != nil {
		return swim.Message{}, err
	}
	return fromEnvelope(env), nil
}

func toEnvelope(msg swim.Message) *pb.Envelope {
	env := &pb.Envelope{
		RecipientId:          msg.RecipientID,
		SenderId:             msg.SenderID,
		SenderAddress:        msg.SenderAddress,
		SeqNo:                msg.SeqNo,
		Kind:                 int32(msg.Kind),
		AckPeerId:            msg.AckPeerID,
		AckIncarnation:       msg.AckIncarnation,
		PingReqTargetId:      msg.PingReqTargetID,
		PingReqTargetAddress: msg.PingReqTargetAddress,
	}
	for _, r := range msg.Gossip {
		env.Gossip = append(env.Gossip, &pb.Rumor{
			PeerId:      r.PeerID,
			Incarnation: r.Incarnation,
			Kind:        int32(r.Kind),
			Address:     r.Address,
		})
	}
	for _, p := range msg.Peers {
		env.Peers = append(env.Peers, &pb.Peer{
			Id:          p.ID,
			Address:     p.Address,
			State:       int32(p.State),
			Incarnation: p.Incarnation,
		})
	}
	return env
}

func fromEnvelope(env *pb.Envelope) swim.Message {
	msg := swim.Message{
		RecipientID:          env.RecipientId,
		SenderID:             env.SenderId,
		SenderAddress:        env.SenderAddress,
		SeqNo:                env.SeqNo,
		Kind:                 swim.MessageKind(env.Kind),
		AckPeerID:            env.AckPeerId,
		AckIncarnation:       env.AckIncarnation,
		PingReqTargetID:      env.PingReqTargetId,
		PingReqTargetAddress: env.PingReqTargetAddress,
	}
	for _, r := range env.Gossip {
		msg.Gossip = append(msg.Gossip, swim.Rumor{
			PeerID:      r.PeerId,
			Incarnation: r.Incarnation,
			Kind:        swim.RumorKind(r.Kind),
			Address:     r.Address,
		})
	}
	for _, p := range env.Peers {
		msg.Peers = append(msg.Peers, swim.Peer{
			ID:          p.Id,
			Address:     p.Address,
			State:       swim.PeerState(p.State),
			Incarnation: p.Incarnation,
		})
	}
	return msg
}
