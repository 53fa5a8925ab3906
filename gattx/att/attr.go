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
	"fmt"

	. "github.com/drogue-iot/essgatt/gattx/bledefs"
)

// Handle identifies an attribute within a table.  Handle 0 is reserved.
type Handle uint16

const (
	HandleNone Handle = Handle(BLE_ATT_HANDLE_NONE)
	HandleMin  Handle = Handle(BLE_ATT_HANDLE_MIN)
	HandleMax  Handle = Handle(BLE_ATT_HANDLE_MAX)
)

func (h Handle) String() string {
	return fmt.Sprintf("0x%04x", uint16(h))
}

// HandleRange is the closed interval [Start, End].
type HandleRange struct {
	Start Handle
	End   Handle
}

func NewHandleRange(start Handle, end Handle) HandleRange {
	return HandleRange{
		Start: start,
		End:   end,
	}
}

// FullRange covers every usable handle.
func FullRange() HandleRange {
	return NewHandleRange(HandleMin, HandleMax)
}

// Valid reports whether the range is acceptable in an ATT request: the start
// handle is nonzero and does not exceed the end handle.
func (r HandleRange) Valid() bool {
	return r.Start != HandleNone && r.Start <= r.End
}

func (r HandleRange) Contains(h Handle) bool {
	return h >= r.Start && h <= r.End
}

func (r HandleRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start, r.End)
}

// Attribute is a read-only view of one table row.  Value must not be
// modified by the receiver.
type Attribute struct {
	Type   BleUuid
	Handle Handle
	Value  []byte
}

func (a Attribute) String() string {
	return fmt.Sprintf("handle=%s type=%s value=[% X]",
		a.Handle, a.Type.String(), a.Value)
}

// AttrFn is invoked once per attribute during a range query.  A non-nil
// return stops the iteration and is passed back to the caller unchanged.
type AttrFn func(p Provider, a Attribute) error

// Provider is the interface an ATT request handler consumes.
type Provider interface {
	// ForAttrsInRange calls fn for each attribute in r, in ascending handle
	// order.
	ForAttrsInRange(r HandleRange, fn AttrFn) error

	// IsGroupingAttr reports whether uuid is a grouping attribute type.
	IsGroupingAttr(uuid BleUuid) bool

	// GroupEnd returns the last attribute of the group starting at h.  The
	// boolean is false if h does not start a group.
	GroupEnd(h Handle) (Attribute, bool)
}
