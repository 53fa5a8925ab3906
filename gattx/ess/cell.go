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
	"sync"

	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

// Cell holds the live bytes of a characteristic value.  Its length is fixed
// when it is created; SetValue never resizes it.
type Cell struct {
	mtx sync.RWMutex
	v   []byte
}

func NewCell(initial []byte) *Cell {
	v := make([]byte, len(initial))
	copy(v, initial)

	return &Cell{
		v: v,
	}
}

func (c *Cell) Len() int {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	return len(c.v)
}

// Value returns a copy of the current bytes.
func (c *Cell) Value() []byte {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	v := make([]byte, len(c.v))
	copy(v, c.v)
	return v
}

// SetValue replaces the stored bytes.  b must have exactly the cell's
// length; otherwise a *gattutil.ValueLenError is returned and the stored
// value is unchanged.
func (c *Cell) SetValue(b []byte) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if len(b) != len(c.v) {
		return gattutil.NewValueLenError(len(c.v), len(b))
	}

	copy(c.v, b)
	return nil
}
