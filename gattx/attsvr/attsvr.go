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

package attsvr

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/drogue-iot/essgatt/gattx/att"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
)

// Longest value that fits in a Read By Group Type / Read By Type entry.
const (
	maxGroupValLen = 251
	maxTypeValLen  = 253
)

type Cfg struct {
	// Largest MTU the server accepts in an Exchange MTU request.
	MaxMtu uint16
}

func NewCfg() Cfg {
	return Cfg{
		MaxMtu: BLE_ATT_MTU_MAX,
	}
}

// An entry in a Read By Group Type response.
type GroupData struct {
	Handle   att.Handle
	EndGroup att.Handle
	Value    []byte
}

// An entry in a Read By Type response.
type TypeData struct {
	Handle att.Handle
	Value  []byte
}

// An entry in a Find Information response.
type HandleInfo struct {
	Handle att.Handle
	Type   BleUuid
}

// Responder answers ATT requests from the attributes of a provider.  Each
// request is evaluated against the provider at the time it is made; the
// responder holds no copy of the table.
type Responder struct {
	p      att.Provider
	maxMtu uint16
	mtu    uint16
	mtx    sync.Mutex
}

// Used to end an attribute walk early.
var errStop = fmt.Errorf("stop")

func NewResponder(p att.Provider, cfg Cfg) *Responder {
	maxMtu := cfg.MaxMtu
	if maxMtu < BLE_ATT_MTU_DFLT {
		maxMtu = BLE_ATT_MTU_DFLT
	}

	return &Responder{
		p:      p,
		maxMtu: maxMtu,
		mtu:    BLE_ATT_MTU_DFLT,
	}
}

func (r *Responder) Mtu() uint16 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.mtu
}

// ExchangeMtu records the client's receive MTU and returns the MTU in effect
// for the rest of the connection.
func (r *Responder) ExchangeMtu(clientMtu uint16) uint16 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	mtu := clientMtu
	if mtu > r.maxMtu {
		mtu = r.maxMtu
	}
	if mtu < BLE_ATT_MTU_DFLT {
		mtu = BLE_ATT_MTU_DFLT
	}
	r.mtu = mtu

	log.Debugf("ATT exchange mtu: client=%d server=%d negotiated=%d",
		clientMtu, r.maxMtu, mtu)

	return mtu
}

func truncate(v []byte, max int) []byte {
	if len(v) > max {
		v = v[:max]
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func checkRange(op BleAttOp, rng att.HandleRange) error {
	if !rng.Valid() {
		return NewAttError(op, rng.Start, ERR_CODE_ATT_INVALID_HANDLE)
	}
	return nil
}

// walk calls fn for every attribute in rng.  fn returns false to stop.
func (r *Responder) walk(rng att.HandleRange,
	fn func(a att.Attribute) bool) error {

	err := r.p.ForAttrsInRange(rng,
		func(p att.Provider, a att.Attribute) error {
			if !fn(a) {
				return errStop
			}
			return nil
		})
	if err == errStop {
		err = nil
	}
	return err
}

func (r *Responder) ReadByGroupType(rng att.HandleRange,
	group BleUuid) ([]GroupData, error) {

	op := BLE_ATT_OP_READ_GROUP_TYPE_REQ
	log.Debugf("ATT read by group type: range=%s type=%s", rng, group)

	if err := checkRange(op, rng); err != nil {
		return nil, err
	}
	if !r.p.IsGroupingAttr(group) {
		return nil, NewAttError(op, rng.Start,
			ERR_CODE_ATT_UNSUPPORTED_GROUP)
	}

	mtu := int(r.Mtu())
	valMax := mtu - 6
	if valMax > maxGroupValLen {
		valMax = maxGroupValLen
	}

	var entries []GroupData
	budget := mtu - 2
	valLen := -1

	err := r.walk(rng, func(a att.Attribute) bool {
		if CompareUuids(a.Type, group) != 0 {
			return true
		}

		end, ok := r.p.GroupEnd(a.Handle)
		if !ok {
			log.Debugf("ATT read by group type: %s starts no group; skipping",
				a.Handle)
			return true
		}

		v := truncate(a.Value, valMax)
		if valLen == -1 {
			valLen = len(v)
		} else if len(v) != valLen {
			return false
		}

		if budget < 4+len(v) {
			return false
		}
		budget -= 4 + len(v)

		entries = append(entries, GroupData{
			Handle:   a.Handle,
			EndGroup: end.Handle,
			Value:    v,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, NewAttError(op, rng.Start, ERR_CODE_ATT_ATTR_NOT_FOUND)
	}

	return entries, nil
}

func (r *Responder) ReadByType(rng att.HandleRange,
	typ BleUuid) ([]TypeData, error) {

	op := BLE_ATT_OP_READ_TYPE_REQ
	log.Debugf("ATT read by type: range=%s type=%s", rng, typ)

	if err := checkRange(op, rng); err != nil {
		return nil, err
	}

	mtu := int(r.Mtu())
	valMax := mtu - 4
	if valMax > maxTypeValLen {
		valMax = maxTypeValLen
	}

	var entries []TypeData
	budget := mtu - 2
	valLen := -1

	err := r.walk(rng, func(a att.Attribute) bool {
		if CompareUuids(a.Type, typ) != 0 {
			return true
		}

		v := truncate(a.Value, valMax)
		if valLen == -1 {
			valLen = len(v)
		} else if len(v) != valLen {
			return false
		}

		if budget < 2+len(v) {
			return false
		}
		budget -= 2 + len(v)

		entries = append(entries, TypeData{
			Handle: a.Handle,
			Value:  v,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, NewAttError(op, rng.Start, ERR_CODE_ATT_ATTR_NOT_FOUND)
	}

	return entries, nil
}

func (r *Responder) Read(h att.Handle) ([]byte, error) {
	op := BLE_ATT_OP_READ_REQ
	log.Debugf("ATT read: handle=%s", h)

	if h == att.HandleNone {
		return nil, NewAttError(op, h, ERR_CODE_ATT_INVALID_HANDLE)
	}

	var val []byte
	found := false

	mtu := int(r.Mtu())
	err := r.walk(att.NewHandleRange(h, h), func(a att.Attribute) bool {
		val = truncate(a.Value, mtu-1)
		found = true
		return false
	})
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, NewAttError(op, h, ERR_CODE_ATT_INVALID_HANDLE)
	}

	return val, nil
}

func (r *Responder) FindInformation(rng att.HandleRange) ([]HandleInfo, error) {
	op := BLE_ATT_OP_FIND_INFO_REQ
	log.Debugf("ATT find information: range=%s", rng)

	if err := checkRange(op, rng); err != nil {
		return nil, err
	}

	var infos []HandleInfo
	budget := int(r.Mtu()) - 2
	is16 := false

	err := r.walk(rng, func(a att.Attribute) bool {
		if len(infos) == 0 {
			is16 = a.Type.Is16Bit()
		} else if a.Type.Is16Bit() != is16 {
			return false
		}

		sz := 2 + len(a.Type.Bytes())
		if budget < sz {
			return false
		}
		budget -= sz

		infos = append(infos, HandleInfo{
			Handle: a.Handle,
			Type:   a.Type,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	if len(infos) == 0 {
		return nil, NewAttError(op, rng.Start, ERR_CODE_ATT_ATTR_NOT_FOUND)
	}

	return infos, nil
}
