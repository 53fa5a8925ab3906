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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

type fixedSource struct {
	v []byte
}

func (s *fixedSource) Value() []byte {
	return s.v
}

func testEntries(base Handle, n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			Type:   NewBleUuid16(BleUuid16(0x2a00 + i)),
			Handle: base + Handle(i),
			Value:  []byte{byte(i)},
		}
	}
	return entries
}

func handlesOf(attrs []Attribute) []Handle {
	hs := make([]Handle, len(attrs))
	for i, a := range attrs {
		hs[i] = a.Handle
	}
	return hs
}

func TestNewTableRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{
			name:    "empty",
			entries: nil,
		},
		{
			name:    "reserved handle",
			entries: testEntries(0, 2),
		},
		{
			name: "gap",
			entries: []Entry{
				{Type: NewBleUuid16(0x2800), Handle: 1},
				{Type: NewBleUuid16(0x2803), Handle: 3},
			},
		},
		{
			name: "duplicate",
			entries: []Entry{
				{Type: NewBleUuid16(0x2800), Handle: 1},
				{Type: NewBleUuid16(0x2803), Handle: 1},
			},
		},
		{
			name: "descending",
			entries: []Entry{
				{Type: NewBleUuid16(0x2800), Handle: 2},
				{Type: NewBleUuid16(0x2803), Handle: 1},
			},
		},
		{
			name:    "overflow",
			entries: testEntries(0xfffe, 3),
		},
		{
			name: "untyped",
			entries: []Entry{
				{Handle: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := NewTable(tt.entries)
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.True(t, gattutil.IsTable(err))
		})
	}
}

func TestNewTableCopiesEntries(t *testing.T) {
	entries := testEntries(1, 3)
	tbl, err := NewTable(entries)
	require.NoError(t, err)

	entries[0].Handle = 42
	a, ok := tbl.At(1)
	require.True(t, ok)
	assert.Equal(t, Handle(1), a.Handle)
	assert.Equal(t, Handle(1), tbl.Base())
	assert.Equal(t, Handle(3), tbl.Last())
	assert.Equal(t, 3, tbl.Len())
}

func TestTableAt(t *testing.T) {
	tbl, err := NewTable(testEntries(1, 3))
	require.NoError(t, err)

	_, ok := tbl.At(0)
	assert.False(t, ok)
	_, ok = tbl.At(4)
	assert.False(t, ok)

	a, ok := tbl.At(2)
	require.True(t, ok)
	assert.Equal(t, []byte{1}, a.Value)
}

func TestSubrangeEdges(t *testing.T) {
	tbl, err := NewTable(testEntries(1, 3))
	require.NoError(t, err)

	tests := []struct {
		name  string
		start Handle
		end   Handle
		want  []Handle
	}{
		{"above table", 4, 0x10, []Handle{}},
		{"single first", 1, 1, []Handle{1}},
		{"single last", 3, 3, []Handle{3}},
		{"tail", 2, 3, []Handle{2, 3}},
		{"whole table", 1, 3, []Handle{1, 2, 3}},
		{"clamped end", 1, 0xffff, []Handle{1, 2, 3}},
		{"zero start", 0, 2, []Handle{1, 2}},
		{"inverted", 3, 1, []Handle{}},
		{"zero range", 0, 0, []Handle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Subrange(tt.start, tt.end)
			assert.Equal(t, tt.want, handlesOf(got))
		})
	}
}

func TestSubrangeLengthFormula(t *testing.T) {
	tbl, err := NewTable(testEntries(1, 3))
	require.NoError(t, err)
	max := int(tbl.Last())

	for s := 0; s <= 6; s++ {
		for e := s; e <= 6; e++ {
			got := tbl.Subrange(Handle(s), Handle(e))

			lo := s
			if lo < 1 {
				lo = 1
			}
			hi := e
			if hi > max {
				hi = max
			}
			want := hi - lo + 1
			if want < 0 {
				want = 0
			}

			require.Len(t, got, want, "range [%d, %d]", s, e)
			for _, a := range got {
				assert.True(t, int(a.Handle) >= s && int(a.Handle) <= e)
			}
		}
	}
}

func TestSubrangeNonUnitBase(t *testing.T) {
	tbl, err := NewTable(testEntries(0x0010, 4))
	require.NoError(t, err)

	assert.Empty(t, tbl.Subrange(1, 0x000f))
	assert.Equal(t, []Handle{0x10, 0x11}, handlesOf(tbl.Subrange(1, 0x11)))
	assert.Equal(t, []Handle{0x12, 0x13}, handlesOf(tbl.Subrange(0x12, 0xffff)))
}

func TestForEachStopsOnError(t *testing.T) {
	tbl, err := NewTable(testEntries(1, 3))
	require.NoError(t, err)

	stop := errors.New("stop")
	var seen []Handle
	err = tbl.ForEach(FullRange(), func(a Attribute) error {
		seen = append(seen, a.Handle)
		if a.Handle == 2 {
			return stop
		}
		return nil
	})

	assert.Equal(t, stop, err)
	assert.Equal(t, []Handle{1, 2}, seen)
}

func TestForEachEmptyRange(t *testing.T) {
	tbl, err := NewTable(testEntries(1, 3))
	require.NoError(t, err)

	called := false
	err = tbl.ForEach(NewHandleRange(4, 10), func(a Attribute) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestEntrySource(t *testing.T) {
	src := &fixedSource{v: []byte{1, 2}}
	entries := testEntries(1, 2)
	entries[1].Source = src

	tbl, err := NewTable(entries)
	require.NoError(t, err)

	a, ok := tbl.At(2)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2}, a.Value)

	src.v = []byte{3, 4}
	a, _ = tbl.At(2)
	assert.Equal(t, []byte{3, 4}, a.Value)
}

func TestHandleRange(t *testing.T) {
	assert.False(t, NewHandleRange(0, 5).Valid())
	assert.False(t, NewHandleRange(5, 4).Valid())
	assert.True(t, NewHandleRange(5, 5).Valid())
	assert.True(t, FullRange().Contains(HandleMax))
	assert.False(t, NewHandleRange(2, 3).Contains(1))
	assert.Equal(t, "[0x0001, 0xffff]", FullRange().String())
}

func TestChrDecl(t *testing.T) {
	d := ChrDecl{
		Properties: BLE_GATT_F_READ | BLE_GATT_F_NOTIFY,
		ValHandle:  3,
		Uuid:       NewBleUuid16(TempMeasurementUuid),
	}

	b := EncodeChrDecl(d)
	assert.Equal(t, []byte{0x12, 0x03, 0x00, 0x1c, 0x2a}, b)

	got, err := DecodeChrDecl(b)
	require.NoError(t, err)
	assert.Equal(t, d, got)

	_, err = DecodeChrDecl([]byte{0x02, 0x03})
	assert.Error(t, err)
}

func TestChrDecl128(t *testing.T) {
	u, err := ParseUuid128("8d53dc1d-1db7-4cd3-868b-8a527460aa84")
	require.NoError(t, err)

	d := ChrDecl{
		Properties: BLE_GATT_F_WRITE_NO_RSP,
		ValHandle:  0x0102,
		Uuid:       NewBleUuid128(u),
	}

	b := EncodeChrDecl(d)
	require.Len(t, b, 19)
	assert.Equal(t, byte(0x84), b[3])

	got, err := DecodeChrDecl(b)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}
