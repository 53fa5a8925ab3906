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
	"encoding/binary"

	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

// Size of an encoded temperature reading, in bytes.
const TemperatureLen = 4

// EncodeTemperature encodes a reading in whole degrees Celsius as a
// big-endian signed 32-bit integer.
func EncodeTemperature(c int32) []byte {
	b := make([]byte, TemperatureLen)
	binary.BigEndian.PutUint32(b, uint32(c))
	return b
}

func DecodeTemperature(b []byte) (int32, error) {
	if len(b) != TemperatureLen {
		return 0, gattutil.NewValueLenError(TemperatureLen, len(b))
	}

	return int32(binary.BigEndian.Uint32(b)), nil
}

// NewTemperatureService builds a service whose characteristic value holds
// the encoding of c.
func NewTemperatureService(c int32) (*Service, error) {
	return NewService(EncodeTemperature(c))
}
