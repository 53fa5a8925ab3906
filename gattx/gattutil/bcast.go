/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package gattutil

import (
	"sync"
)

// Bcaster fans a single value out to every current listener.
//
// Listen channels carry at most one value and are closed after it is
// delivered.  Subscribe channels stay registered and receive every value
// until they are unsubscribed or the Bcaster is cleared.  Once closed, a
// Bcaster hands out channels that are already closed.
type Bcaster struct {
	chs    [](chan interface{})
	subs   [](chan interface{})
	closed bool
	mtx    sync.Mutex
}

func closedCh() chan interface{} {
	ch := make(chan interface{})
	close(ch)
	return ch
}

func (b *Bcaster) Listen() chan interface{} {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.closed {
		return closedCh()
	}

	ch := make(chan interface{}, 1)
	b.chs = append(b.chs, ch)

	return ch
}

// Subscribe registers a persistent listener with room for depth pending
// values.  When a subscriber falls behind, its oldest pending value is
// discarded in favour of the newest.
func (b *Bcaster) Subscribe(depth int) chan interface{} {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.closed {
		return closedCh()
	}

	if depth < 1 {
		depth = 1
	}
	ch := make(chan interface{}, depth)
	b.subs = append(b.subs, ch)

	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.  Unknown
// channels are ignored.
func (b *Bcaster) Unsubscribe(ch chan interface{}) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Send delivers val to all listeners and forgets the one-shot ones.  It
// never blocks.
func (b *Bcaster) Send(val interface{}) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	chs := b.chs
	b.chs = nil

	for _, ch := range chs {
		ch <- val
		close(ch)
	}

	for _, ch := range b.subs {
		select {
		case ch <- val:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- val:
			default:
			}
		}
	}
}

// Clear closes all listeners without delivering a value.
func (b *Bcaster) Clear() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.clear()
}

func (b *Bcaster) clear() {
	for _, ch := range b.chs {
		close(ch)
	}
	for _, ch := range b.subs {
		close(ch)
	}
	b.chs = nil
	b.subs = nil
}

// Close clears all listeners and refuses new ones until Open is called.
func (b *Bcaster) Close() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.clear()
	b.closed = true
}

func (b *Bcaster) Open() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.closed = false
}

func (b *Bcaster) NumListeners() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return len(b.chs) + len(b.subs)
}
