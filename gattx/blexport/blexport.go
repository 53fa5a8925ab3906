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

package blexport

import (
	"context"
	"sync"

	"github.com/JuulLabs-OSS/ble"
	"github.com/JuulLabs-OSS/ble/examples/lib/dev"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/drogue-iot/essgatt/gattx/att"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

const DFLT_ADV_NAME = "Drogue IoT micro:bit"

type XportCfg struct {
	CtlrName string
	HciIdx   int
	AdvName  string
}

func NewXportCfg() XportCfg {
	return XportCfg{
		CtlrName: "default",
		AdvName:  DFLT_ADV_NAME,
	}
}

// The parts of *ess.Server the peripheral needs.
type Server interface {
	Listener
	Provider() att.Provider
}

// BleXport publishes a server's attribute table as a BLE peripheral on the
// host's controller.
type BleXport struct {
	cfg     XportCfg
	srv     Server
	started bool
	mtx     sync.Mutex
}

func NewBleXport(cfg XportCfg, srv Server) *BleXport {
	return &BleXport{
		cfg: cfg,
		srv: srv,
	}
}

func (bx *BleXport) Cfg() XportCfg {
	return bx.cfg
}

func (bx *BleXport) setStarted(v bool) error {
	bx.mtx.Lock()
	defer bx.mtx.Unlock()

	if v && bx.started {
		return gattutil.NewXportError("BLE peripheral already started")
	}
	bx.started = v
	return nil
}

// Start opens the controller, registers the services and advertises until ctx
// is done.  It returns nil when advertising ends because ctx was cancelled.
func (bx *BleXport) Start(ctx context.Context) error {
	if err := bx.setStarted(true); err != nil {
		return err
	}

	svcs, err := BuildServices(bx.srv.Provider(), bx.srv)
	if err != nil {
		bx.setStarted(false)
		return err
	}

	d, err := dev.NewDevice(bx.cfg.CtlrName, ble.OptDeviceID(bx.cfg.HciIdx))
	if err != nil {
		bx.setStarted(false)
		return gattutil.FmtXportError("failed to open BLE controller %s: %s",
			bx.cfg.CtlrName, err.Error())
	}
	ble.SetDefaultDevice(d)

	for _, s := range svcs {
		if err := ble.AddService(s); err != nil {
			bx.Stop()
			return errors.Wrapf(err, "failed to add service %s", s.UUID)
		}
	}

	log.Infof("advertising \"%s\" on hci%d", bx.cfg.AdvName, bx.cfg.HciIdx)

	err = ble.AdvertiseNameAndServices(ctx, bx.cfg.AdvName,
		ToBleUUID(NewBleUuid16(EssSvcUuid)))
	if err != nil && errors.Cause(err) != context.Canceled &&
		errors.Cause(err) != context.DeadlineExceeded {

		return gattutil.FmtXportError("advertising failed: %s", err.Error())
	}

	return nil
}

func (bx *BleXport) Stop() error {
	bx.mtx.Lock()
	started := bx.started
	bx.started = false
	bx.mtx.Unlock()

	if !started {
		return nil
	}

	if err := ble.Stop(); err != nil {
		return gattutil.FmtXportError("failed to stop BLE device: %s",
			err.Error())
	}

	return nil
}
