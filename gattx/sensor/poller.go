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
	"context"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/drogue-iot/essgatt/gattx/ess"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

// Updater queues encoded characteristic values without blocking.
// *ess.Server implements it.
type Updater interface {
	PostUpdate(b []byte) error
}

type PollerCfg struct {
	Interval time.Duration

	// Added to every raw reading before it is published.
	Offset int32
}

func NewPollerCfg() PollerCfg {
	return PollerCfg{
		Interval: time.Second,
	}
}

// Poller drives a Sensor from a ticker.  Even ticks start a measurement; odd
// ticks collect it and publish the result.
type Poller struct {
	cfg    PollerCfg
	sensor Sensor
	upd    Updater

	// Serializes ticks; held across sensor I/O.
	tickMtx sync.Mutex
	ticks   uint64

	last int32
	mtx  sync.Mutex
}

func NewPoller(cfg PollerCfg, s Sensor, u Updater) *Poller {
	return &Poller{
		cfg:    cfg,
		sensor: s,
		upd:    u,
	}
}

// Last returns the most recently published temperature.
func (p *Poller) Last() int32 {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.last
}

func (p *Poller) setLast(c int32) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.last = c
}

// applyOffset adds the calibration offset to a raw reading.
func applyOffset(raw int32, offset int32) (int32, error) {
	c := int64(raw) + int64(offset)
	if c > math.MaxInt32 || c < math.MinInt32 {
		return 0, gattutil.FmtSensorError(
			"calibrated reading out of range: raw=%d offset=%d", raw, offset)
	}

	return int32(c), nil
}

// Tick performs one step of the measurement cycle.
func (p *Poller) Tick() error {
	p.tickMtx.Lock()
	defer p.tickMtx.Unlock()

	tick := p.ticks
	p.ticks++

	if tick%2 == 0 {
		return p.sensor.StartMeasurement()
	}

	raw, err := p.sensor.Read()
	p.sensor.StopMeasurement()
	if err != nil {
		return err
	}

	c, err := applyOffset(raw, p.cfg.Offset)
	if err != nil {
		return err
	}
	gattutil.SensorLog.Debugf("temperature: raw=%d offset=%d published=%d",
		raw, p.cfg.Offset, c)

	if err := p.upd.PostUpdate(ess.EncodeTemperature(c)); err != nil {
		return err
	}

	p.setLast(c)
	return nil
}

// Run ticks until ctx is done.  Failed ticks are logged and do not stop the
// poller.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.Tick(); err != nil {
				log.Warnf("sensor poll failed: %s", err.Error())
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
