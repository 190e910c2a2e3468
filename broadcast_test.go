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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxSendsFormula(t *testing.T) {
	for n := 0; n < 50; n++ {
		want := int(math.Ceil(3 * math.Log10(float64(n+2))))
		assert.Equal(t, want, MaxSends(n), "n=%d", n)
	}
}

func TestPriorityPBStorePiggybackPrefersFewerSends(t *testing.T) {
	s := NewPriorityPBStore()
	s.Push(Rumor{PeerID: "a", Kind: RumorAlive})
	s.Push(Rumor{PeerID: "b", Kind: RumorAlive})

	first := s.Piggyback(10)
	require.Len(t, first, 2)

	// "a" and "b" have now been sent once. Twenty fresh rumors with zero
	// sends must fill the next batch ahead of them, and the batch is capped
	// at PIGGYBACKED_MSGS.
	for i := 0; i < 20; i++ {
		s.Push(Rumor{PeerID: "x", Kind: RumorAlive})
	}
	batch := s.Piggyback(100)
	assert.LessOrEqual(t, len(batch), PIGGYBACKED_MSGS)
	for _, r := range batch {
		assert.Equal(t, "x", r.PeerID, "never-sent rumors go before already-sent ones")
	}
}

func TestPriorityPBStoreRetiresAfterMaxSends(t *testing.T) {
	s := NewPriorityPBStore()
	s.Push(Rumor{PeerID: "a", Kind: RumorAlive})

	maxSends := 2
	for i := 0; i < maxSends; i++ {
		got := s.Piggyback(maxSends)
		require.Len(t, got, 1)
	}

	// The rumor has now been sent maxSends times and must not be replayed.
	got := s.Piggyback(maxSends)
	assert.Empty(t, got)
}

func TestPriorityPBStoreLargerSizeFirstAtEqualSends(t *testing.T) {
	s := NewPriorityPBStore()
	s.Push(Rumor{PeerID: "small", Kind: RumorAlive})
	s.Push(Rumor{PeerID: "much-larger-peer-id-here", Kind: RumorAlive, Address: "10.0.0.1:7946"})

	got := s.Piggyback(10)
	require.Len(t, got, 2)
	assert.Equal(t, "much-larger-peer-id-here", got[0].PeerID, "larger serialized rumor should be piggybacked first")
}
