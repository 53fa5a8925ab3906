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

package bledefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const BLE_ATT_ATTR_MAX_LEN = 512

const BLE_ATT_MTU_DFLT = 23
const BLE_ATT_MTU_MAX = 527

const BLE_ATT_HANDLE_NONE uint16 = 0x0000
const BLE_ATT_HANDLE_MIN uint16 = 0x0001
const BLE_ATT_HANDLE_MAX uint16 = 0xffff

// GATT attribute types.
const (
	PrimarySvcUuid   BleUuid16 = 0x2800
	SecondarySvcUuid BleUuid16 = 0x2801
	IncludeUuid      BleUuid16 = 0x2802
	ChrDeclUuid      BleUuid16 = 0x2803
)

// Descriptors.
const (
	ChrExtPropsUuid   BleUuid16 = 0x2900
	ChrUserDescUuid   BleUuid16 = 0x2901
	CliChrCfgUuid     BleUuid16 = 0x2902
	EsMeasurementUuid BleUuid16 = 0x290c
)

// Environmental Sensing.
const (
	EssSvcUuid          BleUuid16 = 0x181a
	TempMeasurementUuid BleUuid16 = 0x2a1c
)

type BleUuid16 uint16

func (bu16 BleUuid16) String() string {
	return fmt.Sprintf("0x%04x", uint16(bu16))
}

func ParseUuid16(s string) (BleUuid16, error) {
	val, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return BleUuid16(0), fmt.Errorf("Invalid UUID: %s", s)
	}

	return BleUuid16(val), nil
}

type BleUuid128 [16]byte

func (bu128 BleUuid128) String() string {
	var buf bytes.Buffer
	buf.Grow(len(bu128)*2 + 3)

	for i, b := range bu128 {
		switch i {
		case 4, 6, 8, 10:
			buf.WriteString("-")
		}

		fmt.Fprintf(&buf, "%02x", b)
	}

	return buf.String()
}

func ParseUuid128(s string) (BleUuid128, error) {
	var bu128 BleUuid128

	if len(s) != 36 {
		return bu128, fmt.Errorf("Invalid UUID: %s", s)
	}

	boff := 0
	for i := 0; i < 36; {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return bu128, fmt.Errorf("Invalid UUID: %s", s)
			}
			i++

		default:
			u64, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return bu128, fmt.Errorf("Invalid UUID: %s", s)
			}
			bu128[boff] = byte(u64)
			i += 2
			boff++
		}
	}

	return bu128, nil
}

func (bu128 BleUuid128) MarshalJSON() ([]byte, error) {
	return json.Marshal(bu128.String())
}

func (bu128 *BleUuid128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	var err error
	*bu128, err = ParseUuid128(s)
	if err != nil {
		return err
	}

	return nil
}

// BleUuid is either a 16-bit or a 128-bit UUID.
type BleUuid struct {
	// Set to 0 if the 128-bit UUID should be used.
	U16 BleUuid16

	// Ignored if U16 is nonzero.
	U128 BleUuid128
}

func NewBleUuid16(u16 BleUuid16) BleUuid {
	return BleUuid{U16: u16}
}

func NewBleUuid128(u128 BleUuid128) BleUuid {
	return BleUuid{U128: u128}
}

func (bu BleUuid) Is16Bit() bool {
	return bu.U16 != 0
}

func (bu BleUuid) String() string {
	if bu.U16 != 0 {
		return bu.U16.String()
	} else {
		return bu.U128.String()
	}
}

// Bytes returns the UUID in attribute-protocol byte order (little endian).
func (bu BleUuid) Bytes() []byte {
	if bu.U16 != 0 {
		return []byte{byte(bu.U16), byte(bu.U16 >> 8)}
	}

	b := make([]byte, len(bu.U128))
	for i, v := range bu.U128 {
		b[len(b)-1-i] = v
	}
	return b
}

// UuidFromBytes parses a little-endian UUID as it appears in an attribute
// value.
func UuidFromBytes(b []byte) (BleUuid, error) {
	switch len(b) {
	case 2:
		u16 := BleUuid16(uint16(b[0]) | uint16(b[1])<<8)
		if u16 == 0 {
			return BleUuid{}, fmt.Errorf("Invalid UUID: 0x0000")
		}
		return NewBleUuid16(u16), nil

	case 16:
		var u128 BleUuid128
		for i, v := range b {
			u128[len(u128)-1-i] = v
		}
		return NewBleUuid128(u128), nil

	default:
		return BleUuid{}, fmt.Errorf("Invalid UUID length: %d", len(b))
	}
}

func ParseUuid(uuidStr string) (BleUuid, error) {
	bu := BleUuid{}
	var err error

	// First, try to parse as a 16-bit UUID.
	bu.U16, err = ParseUuid16(uuidStr)
	if err == nil {
		return bu, nil
	}

	// Try to parse as a 128-bit UUID.
	bu.U128, err = ParseUuid128(uuidStr)
	if err == nil {
		return bu, nil
	}

	return bu, err
}

func (bu BleUuid) MarshalJSON() ([]byte, error) {
	if bu.U16 != 0 {
		return json.Marshal(bu.U16)
	} else {
		return json.Marshal(bu.U128.String())
	}
}

func (bu *BleUuid) UnmarshalJSON(data []byte) error {
	var err error

	// If the value is a string, try to parse a UUID from it.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*bu, err = ParseUuid(s)
		return err
	}

	// Not a string; maybe it's a raw 16-bit number.
	if err = json.Unmarshal(data, &bu.U16); err != nil {
		return err
	}

	return nil
}

func CompareUuids(a BleUuid, b BleUuid) int {
	if a.U16 != 0 || b.U16 != 0 {
		return int(a.U16) - int(b.U16)
	} else {
		return bytes.Compare(a.U128[:], b.U128[:])
	}
}

// Characteristic properties, as carried in the first byte of a
// characteristic declaration.
type BleChrFlags int

const (
	BLE_GATT_F_BROADCAST       BleChrFlags = 0x01
	BLE_GATT_F_READ            BleChrFlags = 0x02
	BLE_GATT_F_WRITE_NO_RSP    BleChrFlags = 0x04
	BLE_GATT_F_WRITE           BleChrFlags = 0x08
	BLE_GATT_F_NOTIFY          BleChrFlags = 0x10
	BLE_GATT_F_INDICATE        BleChrFlags = 0x20
	BLE_GATT_F_AUTH_SIGN_WRITE BleChrFlags = 0x40
	BLE_GATT_F_EXTENDED        BleChrFlags = 0x80
)

var bleChrFlagNames = []struct {
	flag BleChrFlags
	name string
}{
	{BLE_GATT_F_BROADCAST, "broadcast"},
	{BLE_GATT_F_READ, "read"},
	{BLE_GATT_F_WRITE_NO_RSP, "write_no_rsp"},
	{BLE_GATT_F_WRITE, "write"},
	{BLE_GATT_F_NOTIFY, "notify"},
	{BLE_GATT_F_INDICATE, "indicate"},
	{BLE_GATT_F_AUTH_SIGN_WRITE, "auth_sign_write"},
	{BLE_GATT_F_EXTENDED, "extended"},
}

func (f BleChrFlags) String() string {
	var buf bytes.Buffer

	for _, n := range bleChrFlagNames {
		if f&n.flag != 0 {
			if buf.Len() > 0 {
				buf.WriteString("|")
			}
			buf.WriteString(n.name)
		}
	}

	if buf.Len() == 0 {
		return "none"
	}
	return buf.String()
}

type BleAttOp uint8

const (
	BLE_ATT_OP_ERROR_RSP           BleAttOp = 0x01
	BLE_ATT_OP_MTU_REQ             BleAttOp = 0x02
	BLE_ATT_OP_FIND_INFO_REQ       BleAttOp = 0x04
	BLE_ATT_OP_READ_TYPE_REQ       BleAttOp = 0x08
	BLE_ATT_OP_READ_REQ            BleAttOp = 0x0a
	BLE_ATT_OP_READ_GROUP_TYPE_REQ BleAttOp = 0x10
)

var BleAttOpStringMap = map[BleAttOp]string{
	BLE_ATT_OP_ERROR_RSP:           "error_rsp",
	BLE_ATT_OP_MTU_REQ:             "mtu_req",
	BLE_ATT_OP_FIND_INFO_REQ:       "find_info_req",
	BLE_ATT_OP_READ_TYPE_REQ:       "read_type_req",
	BLE_ATT_OP_READ_REQ:            "read_req",
	BLE_ATT_OP_READ_GROUP_TYPE_REQ: "read_group_type_req",
}

func BleAttOpToString(op BleAttOp) string {
	s := BleAttOpStringMap[op]
	if s == "" {
		return "???"
	}

	return s
}

// ATT error codes (Core Vol 3, Part F, 3.4.1.1).
const (
	ERR_CODE_ATT_INVALID_HANDLE         int = 0x01
	ERR_CODE_ATT_READ_NOT_PERMITTED     int = 0x02
	ERR_CODE_ATT_WRITE_NOT_PERMITTED    int = 0x03
	ERR_CODE_ATT_INVALID_PDU            int = 0x04
	ERR_CODE_ATT_INSUFFICIENT_AUTHEN    int = 0x05
	ERR_CODE_ATT_REQ_NOT_SUPPORTED      int = 0x06
	ERR_CODE_ATT_INVALID_OFFSET         int = 0x07
	ERR_CODE_ATT_INSUFFICIENT_AUTHOR    int = 0x08
	ERR_CODE_ATT_PREPARE_QUEUE_FULL     int = 0x09
	ERR_CODE_ATT_ATTR_NOT_FOUND         int = 0x0a
	ERR_CODE_ATT_ATTR_NOT_LONG          int = 0x0b
	ERR_CODE_ATT_INSUFFICIENT_KEY_SZ    int = 0x0c
	ERR_CODE_ATT_INVALID_ATTR_VALUE_LEN int = 0x0d
	ERR_CODE_ATT_UNLIKELY               int = 0x0e
	ERR_CODE_ATT_INSUFFICIENT_ENC       int = 0x0f
	ERR_CODE_ATT_UNSUPPORTED_GROUP      int = 0x10
	ERR_CODE_ATT_INSUFFICIENT_RES       int = 0x11
)

var AttErrCodeStringMap = map[int]string{
	ERR_CODE_ATT_INVALID_HANDLE:         "invalid handle",
	ERR_CODE_ATT_READ_NOT_PERMITTED:     "read not permitted",
	ERR_CODE_ATT_WRITE_NOT_PERMITTED:    "write not permitted",
	ERR_CODE_ATT_INVALID_PDU:            "invalid pdu",
	ERR_CODE_ATT_INSUFFICIENT_AUTHEN:    "insufficient authentication",
	ERR_CODE_ATT_REQ_NOT_SUPPORTED:      "request not supported",
	ERR_CODE_ATT_INVALID_OFFSET:         "invalid offset",
	ERR_CODE_ATT_INSUFFICIENT_AUTHOR:    "insufficient authorization",
	ERR_CODE_ATT_PREPARE_QUEUE_FULL:     "prepare queue full",
	ERR_CODE_ATT_ATTR_NOT_FOUND:         "attribute not found",
	ERR_CODE_ATT_ATTR_NOT_LONG:          "attribute not long",
	ERR_CODE_ATT_INSUFFICIENT_KEY_SZ:    "insufficient encryption key size",
	ERR_CODE_ATT_INVALID_ATTR_VALUE_LEN: "invalid attribute value length",
	ERR_CODE_ATT_UNLIKELY:               "unlikely error",
	ERR_CODE_ATT_INSUFFICIENT_ENC:       "insufficient encryption",
	ERR_CODE_ATT_UNSUPPORTED_GROUP:      "unsupported group type",
	ERR_CODE_ATT_INSUFFICIENT_RES:       "insufficient resources",
}

func AttErrCodeToString(e int) string {
	s := AttErrCodeStringMap[e]
	if s == "" {
		return "unknown"
	}

	return s
}
