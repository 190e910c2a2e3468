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

package transport

import (
	"github.com/it-chain/iLogger"

	"github.com/swimkit/swim"
)

// MessageEndpointConfig configures a MessageEndpoint's socket.
type MessageEndpointConfig struct {
	BindAddress string
}

// MessageEndpoint sends and receives swim.Message values over a
// PacketTransport, encoding/decoding each one via the pb codec. It is the
// only piece of this module that knows both swim.Message and the wire
// format — the core swim package never imports pb or net.
type MessageEndpoint struct {
	transport *PacketTransport
}

// NewMessageEndpoint binds a UDP socket per cfg and wraps it.
func NewMessageEndpoint(cfg MessageEndpointConfig) (*MessageEndpoint, error) {
	t, err := ListenPacketTransport(cfg.BindAddress)
	if err != nil {
		return nil, err
	}
	return &MessageEndpoint{transport: t}, nil
}

// LocalAddr returns the bound socket address.
func (e *MessageEndpoint) LocalAddr() string {
	return e.transport.LocalAddr()
}

// Send encodes msg and writes it to address. Since
// swim.Message doesn't carry the recipient's network address (only its
// id), callers pass the resolved address explicitly.
func (e *MessageEndpoint) Send(address string, msg swim.Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	return e.transport.Send(address, data)
}

// Recv blocks for the next message, decoding it and reporting the sending
// address. A malformed datagram is logged and skipped rather than
// returned as an error, since one bad packet on the wire shouldn't take
// down the receive loop.
func (e *MessageEndpoint) Recv() (swim.Message, string, error) {
	for {
		pkt, err := e.transport.Recv()
		if err != nil {
			return swim.Message{}, "", err
		}
		msg, err := Decode(pkt.Data)
		if err != nil {
			iLogger.Error(nil, "transport: dropping malformed packet from "+pkt.From+": "+err.Error())
			continue
		}
		return msg, pkt.From, nil
	}
}

// Close shuts down the underlying socket.
func (e *MessageEndpoint) Close() error {
	return e.transport.Close()
}
