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

package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsJobResult(t *testing.T) {
	q := NewTaskQueue("test")
	require.NoError(t, q.Start(4))
	defer q.Stop(InactiveError)

	boom := errors.New("boom")
	assert.NoError(t, q.Run(func() error { return nil }))
	assert.Equal(t, boom, q.Run(func() error { return boom }))
}

func TestJobsRunInOrder(t *testing.T) {
	q := NewTaskQueue("order")
	require.NoError(t, q.Start(16))
	defer q.Stop(InactiveError)

	var got []int
	chs := make([]chan error, 0, 10)
	for i := 0; i < 10; i++ {
		i := i
		chs = append(chs, q.Enqueue(func() error {
			got = append(got, i)
			return nil
		}))
	}
	for _, ch := range chs {
		require.NoError(t, <-ch)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestInactiveQueue(t *testing.T) {
	q := NewTaskQueue("idle")

	assert.False(t, q.Active())
	assert.Equal(t, InactiveError, q.Run(func() error { return nil }))
	assert.Equal(t, InactiveError, q.Post(func() error { return nil }))
	assert.Error(t, q.Stop(InactiveError))
}

func TestStartTwice(t *testing.T) {
	q := NewTaskQueue("twice")
	require.NoError(t, q.Start(1))
	defer q.Stop(InactiveError)

	assert.Error(t, q.Start(1))
}

func TestPostWhenFull(t *testing.T) {
	q := NewTaskQueue("full")
	require.NoError(t, q.Start(1))
	defer q.Stop(InactiveError)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, q.Post(func() error {
		close(started)
		<-release
		return nil
	}))
	<-started

	require.NoError(t, q.Post(func() error { return nil }))
	assert.Equal(t, ErrQueueFull, q.Post(func() error { return nil }))

	close(release)
	assert.NoError(t, q.Run(func() error { return nil }))
}

func TestStopFailsQueuedJobs(t *testing.T) {
	q := NewTaskQueue("stop")
	require.NoError(t, q.Start(4))

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, q.Post(func() error {
		close(started)
		<-release
		return nil
	}))
	<-started

	ch := q.Enqueue(func() error { return nil })

	cause := errors.New("shutting down")
	require.NoError(t, q.StopNoWait(cause))
	assert.Equal(t, cause, <-ch)
	assert.False(t, q.Active())

	close(release)
	q.wg.Wait()

	// A stopped queue can be restarted.
	require.NoError(t, q.Start(4))
	assert.NoError(t, q.Run(func() error { return nil }))
	require.NoError(t, q.Stop(InactiveError))
}
