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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcasterListenOneShot(t *testing.T) {
	var b Bcaster

	ch := b.Listen()
	assert.Equal(t, 1, b.NumListeners())

	b.Send(1)
	assert.Equal(t, 0, b.NumListeners())

	v, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = <-ch
	assert.False(t, ok)
}

func TestBcasterSubscribeKeepsEveryValue(t *testing.T) {
	var b Bcaster

	ch := b.Subscribe(4)
	for i := 0; i < 3; i++ {
		b.Send(i)
	}
	assert.Equal(t, 1, b.NumListeners())

	for i := 0; i < 3; i++ {
		assert.Equal(t, i, <-ch)
	}

	b.Unsubscribe(ch)
	assert.Equal(t, 0, b.NumListeners())
	_, ok := <-ch
	assert.False(t, ok)

	// Unknown channels are ignored.
	b.Unsubscribe(make(chan interface{}))
}

func TestBcasterSubscriberOverflow(t *testing.T) {
	var b Bcaster

	ch := b.Subscribe(2)
	for i := 0; i < 5; i++ {
		b.Send(i)
	}

	assert.Equal(t, 3, <-ch)
	assert.Equal(t, 4, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %v", v)
	default:
	}
}

func TestBcasterClose(t *testing.T) {
	var b Bcaster

	l := b.Listen()
	s := b.Subscribe(1)
	b.Close()

	_, ok := <-l
	assert.False(t, ok)
	_, ok = <-s
	assert.False(t, ok)

	_, ok = <-b.Listen()
	assert.False(t, ok)
	_, ok = <-b.Subscribe(1)
	assert.False(t, ok)
	assert.Equal(t, 0, b.NumListeners())

	b.Open()
	s = b.Subscribe(1)
	b.Send("again")
	assert.Equal(t, "again", <-s)
}
