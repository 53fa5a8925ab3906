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
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
)

const (
	SvcHandle     att.Handle = 0x0001
	ChrDeclHandle att.Handle = 0x0002
	ChrValHandle  att.Handle = 0x0003
)

// Properties advertised for the temperature characteristic.
const TempChrFlags = BLE_GATT_F_READ | BLE_GATT_F_NOTIFY

// Service is an Environmental Sensing Service exposing a single Temperature
// Measurement characteristic:
//
//	0x0001  Primary Service             1A 18
//	0x0002  Characteristic Declaration  12 03 00 1C 2A
//	0x0003  Temperature Measurement     <cell>
type Service struct {
	tbl  *att.Table
	cell *Cell
}

var _ att.Provider = (*Service)(nil)

// NewService builds the attribute table around a cell initialised with a
// copy of initial.  The cell's length is fixed to len(initial).
func NewService(initial []byte) (*Service, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("characteristic value must not be empty")
	}
	if len(initial) > BLE_ATT_ATTR_MAX_LEN {
		return nil, fmt.Errorf("characteristic value too long: %d > %d",
			len(initial), BLE_ATT_ATTR_MAX_LEN)
	}

	cell := NewCell(initial)

	decl := att.ChrDecl{
		Properties: TempChrFlags,
		ValHandle:  ChrValHandle,
		Uuid:       NewBleUuid16(TempMeasurementUuid),
	}

	tbl, err := att.NewTable([]att.Entry{
		{
			Type:   NewBleUuid16(PrimarySvcUuid),
			Handle: SvcHandle,
			Value:  NewBleUuid16(EssSvcUuid).Bytes(),
		},
		{
			Type:   NewBleUuid16(ChrDeclUuid),
			Handle: ChrDeclHandle,
			Value:  att.EncodeChrDecl(decl),
		},
		{
			Type:   NewBleUuid16(TempMeasurementUuid),
			Handle: ChrValHandle,
			Source: cell,
		},
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("built ESS attribute table; handles %s-%s value_len=%d",
		tbl.Base(), tbl.Last(), cell.Len())

	return &Service{
		tbl:  tbl,
		cell: cell,
	}, nil
}

func MustNewService(initial []byte) *Service {
	s, err := NewService(initial)
	if err != nil {
		panic(err.Error())
	}
	return s
}

func (s *Service) Table() *att.Table {
	return s.tbl
}

func (s *Service) Cell() *Cell {
	return s.cell
}

func (s *Service) ForAttrsInRange(r att.HandleRange, fn att.AttrFn) error {
	return s.tbl.ForEach(r, func(a att.Attribute) error {
		return fn(s, a)
	})
}

// IsGroupingAttr reports true only for the Primary Service type.
func (s *Service) IsGroupingAttr(uuid BleUuid) bool {
	return CompareUuids(uuid, NewBleUuid16(PrimarySvcUuid)) == 0
}

// GroupEnd reports the characteristic value as the end of the group for both
// the service declaration and the characteristic declaration.
func (s *Service) GroupEnd(h att.Handle) (att.Attribute, bool) {
	switch h {
	case SvcHandle, ChrDeclHandle:
		return s.tbl.At(ChrValHandle)
	default:
		return att.Attribute{}, false
	}
}

// Attr returns the attribute with handle h.
func (s *Service) Attr(h att.Handle) (att.Attribute, bool) {
	return s.tbl.At(h)
}

func (s *Service) SetValue(b []byte) error {
	return s.cell.SetValue(b)
}

func (s *Service) Value() []byte {
	return s.cell.Value()
}
