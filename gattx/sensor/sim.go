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

package sensor

import (
	"math/rand"
	"sync"

	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

type SimCfg struct {
	Seed  int64
	Start int32
	// Largest change between two consecutive readings.
	Step int32
}

func NewSimCfg() SimCfg {
	return SimCfg{
		Seed:  1,
		Start: 21,
		Step:  1,
	}
}

// SimSensor produces a seeded random walk.  Two sensors built from the same
// config return the same sequence.
type SimSensor struct {
	cfg       SimCfg
	rng       *rand.Rand
	cur       int32
	measuring bool
	mtx       sync.Mutex
}

func NewSimSensor(cfg SimCfg) *SimSensor {
	if cfg.Step < 0 {
		cfg.Step = -cfg.Step
	}

	return &SimSensor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		cur: cfg.Start,
	}
}

func (s *SimSensor) StartMeasurement() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.measuring = true
	return nil
}

func (s *SimSensor) Read() (int32, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !s.measuring {
		return 0, gattutil.NewSensorError("no measurement in progress")
	}

	val := s.cur
	if s.cfg.Step > 0 {
		s.cur += int32(s.rng.Intn(int(2*s.cfg.Step+1))) - s.cfg.Step
	}

	gattutil.SensorLog.Debugf("sim sensor reading: %d", val)
	return val, nil
}

func (s *SimSensor) StopMeasurement() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.measuring = false
}
