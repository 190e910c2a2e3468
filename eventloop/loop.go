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

// Package eventloop drives a swim.SWIM core over real time and a real UDP
// socket. The core package is intentionally single-threaded and
// synchronous (spec.md §5); this package supplies the two goroutines a
// live node actually needs — a tick loop and a receive loop — and
// coordinates their shutdown with golang.org/x/sync/errgroup, the same
// pattern used for the one other cooperatively-scheduled multi-goroutine
// component the teacher repo's dependency graph anticipates.
package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/it-chain/iLogger"
	"golang.org/x/sync/errgroup"

	"github.com/swimkit/swim"
	"github.com/swimkit/swim/transport"
)

// Loop wires a swim.SWIM core to a transport.MessageEndpoint and a wall
// clock. All calls into the core happen on the event-loop goroutine or the
// receive-loop goroutine, never concurrently with each other — the two
// goroutines share the core but never call it at the same instant thanks
// to the mutex below, preserving the core's single-threaded contract
// under wall-clock concurrency.
type Loop struct {
	core     *swim.SWIM
	endpoint *transport.MessageEndpoint
	period   time.Duration

	mu        sync.Mutex
	addresses map[string]string
}

// New constructs a Loop. period is the protocol period at which Tick() is
// driven (spec.md §4.2).
func New(core *swim.SWIM, endpoint *transport.MessageEndpoint, period time.Duration) *Loop {
	return &Loop{
		core:      core,
		endpoint:  endpoint,
		period:    period,
		addresses: make(map[string]string),
	}
}

// Join resolves and remembers peerAddress for peerID, then asks the core
// to begin the anti-entropy join exchange, flushing the resulting Pull
// immediately.
func (l *Loop) Join(peerID, peerAddress string) error {
	l.mu.Lock()
	l.addresses[peerID] = peerAddress
	l.core.Join(peerID, peerAddress)
	out := l.core.DrainOutbox()
	l.mu.Unlock()
	return l.sendAll(out)
}

// Run drives the tick loop and receive loop until ctx is cancelled or
// either goroutine returns a non-nil error.
func (l *Loop) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return l.tickLoop(ctx) })
	g.Go(func() error { return l.recvLoop(ctx) })

	return g.Wait()
}

func (l *Loop) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.mu.Lock()
			out := l.core.Tick()
			l.mu.Unlock()
			if err := l.sendAll(out); err != nil {
				iLogger.Error(nil, err.Error())
			}
		}
	}
}

func (l *Loop) recvLoop(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	// endpoint.Recv() has no context-aware cancellation (it blocks on the
	// socket read); close the endpoint when ctx is done to unblock it.
	go func() {
		select {
		case <-ctx.Done():
			l.endpoint.Close()
		case <-done:
		}
	}()

	for {
		msg, _, err := l.endpoint.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		l.mu.Lock()
		l.core.Process(msg)
		out := l.core.DrainOutbox()
		l.mu.Unlock()

		if err := l.sendAll(out); err != nil {
			iLogger.Error(nil, err.Error())
		}
	}
}

func (l *Loop) sendAll(msgs []swim.Message) error {
	for _, msg := range msgs {
		address, ok := l.addressFor(msg.RecipientID)
		if !ok {
			iLogger.Error(nil, "eventloop: no known address for recipient "+msg.RecipientID+", dropping message")
			continue
		}
		if err := l.endpoint.Send(address, msg); err != nil {
			return err
		}
	}
	return nil
}

// addressFor resolves a recipient id to an address. The core's own
// membership view is authoritative once a peer is known; the local
// addresses map only covers the gap before that — a join target we've
// sent a Pull to but who hasn't answered (and so isn't a member) yet.
func (l *Loop) addressFor(peerID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if address, ok := l.core.PeerAddress(peerID); ok {
		return address, true
	}
	address, ok := l.addresses[peerID]
	return address, ok
}
