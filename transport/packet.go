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
	"net"

	"github.com/it-chain/iLogger"
)

// maxPacketSize bounds a single UDP datagram; large gossip tails are
// trimmed by the piggyback budget (spec.md §4.1) long before this matters.
const maxPacketSize = 65536

// Packet is one received datagram, paired with the address it came from —
// transport never resolves a sender address to a peer id itself, that's
// Process()'s job once the payload is decoded.
type Packet struct {
	Data []byte
	From string
}

// PacketTransport is a raw UDP socket: it moves bytes, nothing more. It is
// deliberately ignorant of swim.Message — that split lets MessageEndpoint
// own encoding while this type owns only the socket lifecycle, mirroring
// the PacketTransport/MessageEndpoint split the core package's
// constructors anticipate.
type PacketTransport struct {
	conn *net.UDPConn
}

// ListenPacketTransport opens a UDP socket bound to bindAddr (host:port,
// or ":0" for an ephemeral port).
func ListenPacketTransport(bindAddr string) (*PacketTransport, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	return &PacketTransport{conn: conn}, nil
}

// LocalAddr returns the address the socket is actually bound to.
func (t *PacketTransport) LocalAddr() string {
	return t.conn.LocalAddr().String()
}

// Send writes data to address (host:port).
func (t *PacketTransport) Send(address string, data []byte) error {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return err
	}
	_, err = t.conn.WriteToUDP(data, addr)
	return err
}

// Recv blocks for the next datagram. Returns a non-nil error once the
// socket has been closed.
func (t *PacketTransport) Recv() (Packet, error) {
	buf := make([]byte, maxPacketSize)
	n, from, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return Packet{}, err
	}
	return Packet{Data: buf[:n], From: from.String()}, nil
}

// Close shuts down the socket; any blocked Recv returns an error.
func (t *PacketTransport) Close() error {
	if err := t.conn.Close(); err != nil {
		iLogger.Error(nil, err.Error())
		return err
	}
	return nil
}
