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

package ess

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/drogue-iot/essgatt/gattx/att"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
	"github.com/drogue-iot/essgatt/gattx/task"
)

const DFLT_QUEUE_DEPTH = 16

var StoppedError = fmt.Errorf("ess server stopped")

// Server serializes access to a Service.  Reads and updates run as jobs on a
// single task queue; every successful update is broadcast to notify
// listeners.
type Server struct {
	svc   *Service
	tq    task.TaskQueue
	bcast gattutil.Bcaster
	depth int
}

func NewServer(svc *Service) *Server {
	return &Server{
		svc:   svc,
		tq:    task.NewTaskQueue("ess"),
		depth: DFLT_QUEUE_DEPTH,
	}
}

func (s *Server) Service() *Service {
	return s.svc
}

// Provider exposes the service for concurrent reads outside the queue.
func (s *Server) Provider() att.Provider {
	return s.svc
}

func (s *Server) Start() error {
	if err := s.tq.Start(s.depth); err != nil {
		return err
	}

	s.bcast.Open()
	return nil
}

// Stop fails any queued jobs and closes all listeners.  Listeners requested
// after Stop are returned closed.
func (s *Server) Stop() error {
	err := s.tq.Stop(StoppedError)
	s.bcast.Close()
	return err
}

func (s *Server) Active() bool {
	return s.tq.Active()
}

func (s *Server) update(b []byte) error {
	if err := s.svc.SetValue(b); err != nil {
		return err
	}

	log.Debugf("ess value updated: % x", b)

	v := make([]byte, len(b))
	copy(v, b)
	s.bcast.Send(v)

	return nil
}

// Update replaces the characteristic value and waits for the result.
func (s *Server) Update(b []byte) error {
	return s.tq.Run(func() error {
		return s.update(b)
	})
}

// PostUpdate queues an update without waiting.  It fails with
// task.ErrQueueFull when the server is backlogged.
func (s *Server) PostUpdate(b []byte) error {
	v := make([]byte, len(b))
	copy(v, b)

	return s.tq.Post(func() error {
		return s.update(v)
	})
}

// Listen returns a channel that receives the next value written by Update.
// The channel carries a []byte and is closed after one value, or without a
// value when the server stops.
func (s *Server) Listen() chan interface{} {
	return s.bcast.Listen()
}

// Subscribe returns a channel that receives every value written by Update
// until Unsubscribe or Stop.  A subscriber that falls more than depth values
// behind loses the oldest ones.
func (s *Server) Subscribe(depth int) chan interface{} {
	return s.bcast.Subscribe(depth)
}

func (s *Server) Unsubscribe(ch chan interface{}) {
	s.bcast.Unsubscribe(ch)
}

// Query runs fn with exclusive access to the service.
func (s *Server) Query(fn func(svc *Service) error) error {
	return s.tq.Run(func() error {
		return fn(s.svc)
	})
}
