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

	"github.com/drogue-iot/essgatt/gattx/att"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
)

type Characteristic struct {
	Uuid       BleUuid
	DefHandle  att.Handle
	ValHandle  att.Handle
	Properties BleChrFlags
	Value      []byte
}

type Service struct {
	Uuid        BleUuid
	StartHandle att.Handle
	EndHandle   att.Handle
	Chrs        []*Characteristic
}

// Profile is the result of walking a server the way a GATT client does:
// primary services, then characteristics, then readable values.
type Profile struct {
	svcs  []Service
	attrs map[att.Handle]*Characteristic
}

func (c *Characteristic) String() string {
	return fmt.Sprintf("%s def=%s val=%s props=%s",
		c.Uuid, c.DefHandle, c.ValHandle, c.Properties)
}

func (s *Service) String() string {
	return fmt.Sprintf("%s [%s-%s]", s.Uuid, s.StartHandle, s.EndHandle)
}

func NewProfile() Profile {
	return Profile{
		attrs: map[att.Handle]*Characteristic{},
	}
}

func (p *Profile) Services() []Service {
	return p.svcs
}

func (p *Profile) SetServices(svcs []Service) {
	p.svcs = svcs
	p.attrs = map[att.Handle]*Characteristic{}

	for _, s := range svcs {
		for _, c := range s.Chrs {
			p.attrs[c.ValHandle] = c
		}
	}
}

func (p *Profile) FindChrByHandle(h att.Handle) *Characteristic {
	return p.attrs[h]
}

func (p *Profile) FindChrByUuid(svcUuid BleUuid,
	chrUuid BleUuid) *Characteristic {

	for _, s := range p.svcs {
		if CompareUuids(s.Uuid, svcUuid) != 0 {
			continue
		}
		for _, c := range s.Chrs {
			if CompareUuids(c.Uuid, chrUuid) == 0 {
				return c
			}
		}
	}

	return nil
}

// DiscoverSvcs issues Read By Group Type requests for primary services until
// the server reports that no further attributes exist.
func DiscoverSvcs(r *Responder) ([]Service, error) {
	var svcs []Service

	start := att.HandleMin
	for {
		entries, err := r.ReadByGroupType(
			att.NewHandleRange(start, att.HandleMax),
			NewBleUuid16(PrimarySvcUuid))
		if ErrCode(err) == ERR_CODE_ATT_ATTR_NOT_FOUND {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			uuid, err := UuidFromBytes(e.Value)
			if err != nil {
				return nil, fmt.Errorf(
					"bad service uuid at %s: %s", e.Handle, err.Error())
			}

			svcs = append(svcs, Service{
				Uuid:        uuid,
				StartHandle: e.Handle,
				EndHandle:   e.EndGroup,
			})
		}

		last := entries[len(entries)-1].EndGroup
		if last == att.HandleMax || last < start {
			break
		}
		start = last + 1
	}

	return svcs, nil
}

// DiscoverChrs fills in the characteristics of svc from its characteristic
// declarations.
func DiscoverChrs(r *Responder, svc *Service) error {
	start := svc.StartHandle
	for start <= svc.EndHandle {
		entries, err := r.ReadByType(
			att.NewHandleRange(start, svc.EndHandle),
			NewBleUuid16(ChrDeclUuid))
		if ErrCode(err) == ERR_CODE_ATT_ATTR_NOT_FOUND {
			break
		}
		if err != nil {
			return err
		}

		for _, e := range entries {
			d, err := att.DecodeChrDecl(e.Value)
			if err != nil {
				return err
			}

			svc.Chrs = append(svc.Chrs, &Characteristic{
				Uuid:       d.Uuid,
				DefHandle:  e.Handle,
				ValHandle:  d.ValHandle,
				Properties: d.Properties,
			})
		}

		last := entries[len(entries)-1].Handle
		if last == att.HandleMax {
			break
		}
		start = last + 1
	}

	return nil
}

// Discover walks every service and characteristic and reads each readable
// characteristic value.
func Discover(r *Responder) (Profile, error) {
	p := NewProfile()

	svcs, err := DiscoverSvcs(r)
	if err != nil {
		return p, err
	}

	for i, _ := range svcs {
		if err := DiscoverChrs(r, &svcs[i]); err != nil {
			return p, err
		}

		for _, c := range svcs[i].Chrs {
			if c.Properties&BLE_GATT_F_READ == 0 {
				continue
			}

			v, err := r.Read(c.ValHandle)
			if err != nil {
				return p, err
			}
			c.Value = v
		}
	}

	p.SetServices(svcs)
	return p, nil
}
