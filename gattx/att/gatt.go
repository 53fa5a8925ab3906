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

package att

import (
	"encoding/binary"
	"fmt"

	. "github.com/drogue-iot/essgatt/gattx/bledefs"
)

// ChrDecl is the decoded value of a characteristic declaration attribute:
// properties (1 byte), value handle (2 bytes LE), characteristic UUID (2 or
// 16 bytes LE).
type ChrDecl struct {
	Properties BleChrFlags
	ValHandle  Handle
	Uuid       BleUuid
}

func EncodeChrDecl(d ChrDecl) []byte {
	b := make([]byte, 3, 3+16)
	b[0] = byte(d.Properties)
	binary.LittleEndian.PutUint16(b[1:], uint16(d.ValHandle))
	return append(b, d.Uuid.Bytes()...)
}

func DecodeChrDecl(v []byte) (ChrDecl, error) {
	if len(v) != 5 && len(v) != 19 {
		return ChrDecl{}, fmt.Errorf(
			"invalid characteristic declaration length: %d", len(v))
	}

	uuid, err := UuidFromBytes(v[3:])
	if err != nil {
		return ChrDecl{}, err
	}

	return ChrDecl{
		Properties: BleChrFlags(v[0]),
		ValHandle:  Handle(binary.LittleEndian.Uint16(v[1:3])),
		Uuid:       uuid,
	}, nil
}
