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

// Join is the initial Pull → Push anti-entropy exchange of spec.md §4.6. If
// the peer is not yet known, a Pull(empty) is queued to it; the remote
// answers with a Push of its own membership, which our Process() merges on
// arrival, achieving O(1)-RPC convergence of initial membership while
// gossip converges the tail.
//
// Join only enqueues the Pull — it does not drain the outbox (matching the
// teacher/original's join(), which returns nothing); call Tick() or
// DrainOutbox() to actually send it.
func (s *SWIM) Join(peerID, address string) {
	if _, known := s.memberMap.Get(peerID); known {
		return
	}

	s.outbox = append(s.outbox, Message{
		RecipientID:   peerID,
		SenderID:      s.id,
		SenderAddress: s.config.BindAddress,
		SeqNo:         0,
		Kind:          MsgPull,
		Peers:         nil,
	})
}

// DrainOutbox returns and clears every message queued so far — by Join,
// Process, or Tick — since the last drain. Tick() also drains internally so
// its own return value is always complete; collaborators that want to flush
// replies generated by Process() or Join() without waiting for the next
// protocol-period tick can call DrainOutbox() directly.
func (s *SWIM) DrainOutbox() []Message {
	return s.drainOutbox()
}
