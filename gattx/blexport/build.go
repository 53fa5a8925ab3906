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
	"github.com/JuulLabs-OSS/ble"
	log "github.com/sirupsen/logrus"

	"github.com/drogue-iot/essgatt/gattx/att"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

// NOTIFY_DEPTH is the number of updates buffered per subscribed central.
const NOTIFY_DEPTH = 4

// Listener supplies subscriptions that carry updated characteristic values.
// *ess.Server implements it.
type Listener interface {
	Subscribe(depth int) chan interface{}
	Unsubscribe(ch chan interface{})
}

// ToBleUUID converts to the stack's little-endian UUID representation.
func ToBleUUID(u BleUuid) ble.UUID {
	return ble.UUID(u.Bytes())
}

func readValue(p att.Provider, h att.Handle) ([]byte, bool) {
	var val []byte
	found := false

	p.ForAttrsInRange(att.NewHandleRange(h, h),
		func(p att.Provider, a att.Attribute) error {
			val = a.Value
			found = true
			return nil
		})

	return val, found
}

func readHandler(p att.Provider, h att.Handle) ble.ReadHandler {
	return ble.ReadHandlerFunc(func(req ble.Request, rsp ble.ResponseWriter) {
		v, ok := readValue(p, h)
		if !ok {
			rsp.SetStatus(ble.ErrInvalidHandle)
			return
		}

		off := req.Offset()
		if off > len(v) {
			rsp.SetStatus(ble.ErrInvalidOffset)
			return
		}
		rsp.Write(v[off:])
	})
}

// forwardUpdates writes each value received on ch until ch is closed, a
// write fails or done is closed.
func forwardUpdates(ch <-chan interface{}, done <-chan struct{},
	write func(b []byte) error) error {

	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return nil
			}
			b, _ := v.([]byte)
			if err := write(b); err != nil {
				return err
			}

		case <-done:
			return nil
		}
	}
}

func notifyHandler(l Listener, h att.Handle) ble.NotifyHandler {
	return ble.NotifyHandlerFunc(func(req ble.Request, n ble.Notifier) {
		log.Debugf("central %s subscribed to %s",
			req.Conn().RemoteAddr(), h)

		ch := l.Subscribe(NOTIFY_DEPTH)
		defer l.Unsubscribe(ch)

		err := forwardUpdates(ch, n.Context().Done(), func(b []byte) error {
			_, err := n.Write(b)
			return err
		})
		if err != nil {
			log.Debugf("notify %s failed: %s", h, err.Error())
			return
		}

		log.Debugf("notifications on %s ended", h)
	})
}

// BuildServices walks every attribute of p and builds the equivalent stack
// services.  Characteristic values are read from p when a central reads
// them; notifications are fed by l, which may be nil.
func BuildServices(p att.Provider, l Listener) ([]*ble.Service, error) {
	var svcs []*ble.Service
	var cur *ble.Service

	err := p.ForAttrsInRange(att.FullRange(),
		func(p att.Provider, a att.Attribute) error {
			switch {
			case CompareUuids(a.Type, NewBleUuid16(PrimarySvcUuid)) == 0:
				u, err := UuidFromBytes(a.Value)
				if err != nil {
					return gattutil.FmtTableError(
						"bad service uuid at %s: %s", a.Handle, err.Error())
				}
				cur = ble.NewService(ToBleUUID(u))
				svcs = append(svcs, cur)

			case CompareUuids(a.Type, NewBleUuid16(ChrDeclUuid)) == 0:
				if cur == nil {
					return gattutil.FmtTableError(
						"characteristic declaration at %s outside a service",
						a.Handle)
				}

				d, err := att.DecodeChrDecl(a.Value)
				if err != nil {
					return err
				}

				c := cur.NewCharacteristic(ToBleUUID(d.Uuid))
				if d.Properties&BLE_GATT_F_READ != 0 {
					c.HandleRead(readHandler(p, d.ValHandle))
				}
				if d.Properties&BLE_GATT_F_NOTIFY != 0 && l != nil {
					c.HandleNotify(notifyHandler(l, d.ValHandle))
				}
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	if len(svcs) == 0 {
		return nil, gattutil.NewTableError("no primary services")
	}

	return svcs, nil
}
