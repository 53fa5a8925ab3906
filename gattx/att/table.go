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
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

// ValueSource supplies an attribute value at read time.
type ValueSource interface {
	Value() []byte
}

// Entry describes one row of a table under construction.  If Source is
// non-nil it takes precedence over Value.
type Entry struct {
	Type   BleUuid
	Handle Handle
	Value  []byte
	Source ValueSource
}

func (e *Entry) view() Attribute {
	a := Attribute{
		Type:   e.Type,
		Handle: e.Handle,
		Value:  e.Value,
	}
	if e.Source != nil {
		a.Value = e.Source.Value()
	}

	return a
}

// Table is a fixed, contiguous run of attributes.  The handle of the entry
// at index i is base+i; this is checked once by NewTable so lookups only
// need to clamp.
type Table struct {
	entries []Entry
	base    Handle
}

const (
	tooSmall = -1
	tooLarge = -2
)

// NewTable validates entries and builds a table from them.  Handles must be
// nonzero, strictly ascending and without gaps.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, gattutil.NewTableError("attribute table is empty")
	}

	base := entries[0].Handle
	if base == HandleNone {
		return nil, gattutil.NewTableError(
			"attribute table starts at reserved handle 0x0000")
	}

	if int(base)+len(entries)-1 > int(HandleMax) {
		return nil, gattutil.FmtTableError(
			"attribute table overflows handle space; base=%s count=%d",
			base, len(entries))
	}

	for i, e := range entries {
		want := base + Handle(i)
		if e.Handle != want {
			return nil, gattutil.FmtTableError(
				"attribute %d has handle %s; expected %s", i, e.Handle, want)
		}
		if e.Type.U16 == 0 && e.Type.U128 == (BleUuid128{}) {
			return nil, gattutil.FmtTableError(
				"attribute %s has no type", e.Handle)
		}
	}

	t := &Table{
		entries: make([]Entry, len(entries)),
		base:    base,
	}
	copy(t.entries, entries)

	return t, nil
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Base returns the handle of the first attribute.
func (t *Table) Base() Handle {
	return t.base
}

// Last returns the handle of the final attribute.
func (t *Table) Last() Handle {
	return t.base + Handle(len(t.entries)-1)
}

// idx returns the index corresponding to handle h.
// If h is too small, idx returns tooSmall (-1).
// If h is too large, idx returns tooLarge (-2).
func (t *Table) idx(h int) int {
	if h < int(t.base) {
		return tooSmall
	}
	if h >= int(t.base)+len(t.entries) {
		return tooLarge
	}
	return h - int(t.base)
}

// At returns the attribute with handle h.
func (t *Table) At(h Handle) (Attribute, bool) {
	i := t.idx(int(h))
	if i < 0 {
		return Attribute{}, false
	}
	return t.entries[i].view(), true
}

func (t *Table) span(start Handle, end Handle) (int, int, bool) {
	if start > end {
		return 0, 0, false
	}

	startidx := t.idx(int(start))
	switch startidx {
	case tooSmall:
		startidx = 0
	case tooLarge:
		return 0, 0, false
	}

	endidx := t.idx(int(end))
	switch endidx {
	case tooSmall:
		return 0, 0, false
	case tooLarge:
		endidx = len(t.entries) - 1
	}

	return startidx, endidx, true
}

// Subrange returns the attributes in [start, end], in handle order.  It may
// return an empty slice; it never fails for out-of-range handles.
func (t *Table) Subrange(start Handle, end Handle) []Attribute {
	lo, hi, ok := t.span(start, end)
	if !ok {
		return []Attribute{}
	}

	gattutil.Assert(lo <= hi)

	attrs := make([]Attribute, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		attrs = append(attrs, t.entries[i].view())
	}

	return attrs
}

// ForEach calls fn for each attribute in r and stops at the first error,
// which it returns unchanged.
func (t *Table) ForEach(r HandleRange, fn func(a Attribute) error) error {
	lo, hi, ok := t.span(r.Start, r.End)
	if !ok {
		return nil
	}

	for i := lo; i <= hi; i++ {
		if err := fn(t.entries[i].view()); err != nil {
			return err
		}
	}

	return nil
}

// Attrs returns every attribute in the table.
func (t *Table) Attrs() []Attribute {
	return t.Subrange(t.base, t.Last())
}
