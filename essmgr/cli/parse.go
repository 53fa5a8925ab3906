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

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/gattx/att"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/ess"
)

// parseHandle accepts decimal or 0x-prefixed hex.
func parseHandle(s string) (att.Handle, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, util.FmtNewtError("Invalid handle: %s", s)
	}
	return att.Handle(v), nil
}

// parseTemperature parses a whole-degree Celsius value.
func parseTemperature(s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, util.FmtNewtError("Invalid temperature: %s", s)
	}
	return int32(v), nil
}

func parseMtu(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, util.FmtNewtError("Invalid mtu: %s", s)
	}
	return uint16(v), nil
}

// parseRange parses "<start> <end>"; no arguments selects every handle.
func parseRange(args []string) (att.HandleRange, error) {
	switch len(args) {
	case 0:
		return att.FullRange(), nil

	case 2:
		start, err := parseHandle(args[0])
		if err != nil {
			return att.HandleRange{}, err
		}
		end, err := parseHandle(args[1])
		if err != nil {
			return att.HandleRange{}, err
		}
		return att.NewHandleRange(start, end), nil

	default:
		return att.HandleRange{}, util.NewNewtError(
			"Expected <start-handle> <end-handle>")
	}
}

func parseUuid(s string) (BleUuid, error) {
	u, err := ParseUuid(strings.TrimSpace(s))
	if err != nil {
		return u, util.ChildNewtError(err)
	}
	return u, nil
}

// valueString renders an attribute value, decoding temperatures.
func valueString(uuid BleUuid, v []byte) string {
	s := fmt.Sprintf("[% x]", v)

	if CompareUuids(uuid, NewBleUuid16(TempMeasurementUuid)) == 0 {
		if c, err := ess.DecodeTemperature(v); err == nil {
			s += fmt.Sprintf(" (%d C)", c)
		}
	}

	return s
}

func attrString(a att.Attribute) string {
	return fmt.Sprintf("%s  %-6s  %s", a.Handle, a.Type, valueString(a.Type,
		a.Value))
}
