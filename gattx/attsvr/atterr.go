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

// AttError is the error carried by an ATT Error Response.
type AttError struct {
	Op     BleAttOp
	Handle att.Handle
	Code   int
}

func NewAttError(op BleAttOp, handle att.Handle, code int) *AttError {
	return &AttError{
		Op:     op,
		Handle: handle,
		Code:   code,
	}
}

func (e *AttError) Error() string {
	return fmt.Sprintf("ATT error; op=%s handle=%s status=%d (%s)",
		BleAttOpToString(e.Op), e.Handle, e.Code, AttErrCodeToString(e.Code))
}

func IsAtt(err error) bool {
	_, ok := err.(*AttError)
	return ok
}

// ErrCode returns the ATT error code carried by err, or 0 if err is not an
// *AttError.
func ErrCode(err error) int {
	if e, ok := err.(*AttError); ok {
		return e.Code
	}
	return 0
}
