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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drogue-iot/essgatt/essmgr/config"
	"github.com/drogue-iot/essgatt/essmgr/emutil"
	"github.com/drogue-iot/essgatt/gattx/att"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/ess"
	"github.com/drogue-iot/essgatt/gattx/sensor"
)

func TestParseHandle(t *testing.T) {
	tests := []struct {
		s  string
		h  att.Handle
		ok bool
	}{
		{"1", 1, true},
		{"0x0003", 3, true},
		{" 0xffff ", 0xffff, true},
		{"65536", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		h, err := parseHandle(tt.s)
		if !tt.ok {
			assert.Error(t, err, "handle %q", tt.s)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.h, h)
	}
}

func TestParseTemperature(t *testing.T) {
	tests := []struct {
		s  string
		v  int32
		ok bool
	}{
		{"21", 21, true},
		{"-4", -4, true},
		{"2147483647", 2147483647, true},
		{"-2147483648", -2147483648, true},
		{"2147483648", 0, false},
		{"5000000000", 0, false},
		{"21.5", 0, false},
		{"warm", 0, false},
	}

	for _, tt := range tests {
		v, err := parseTemperature(tt.s)
		if !tt.ok {
			assert.Error(t, err, "temperature %q", tt.s)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.v, v)
	}
}

func TestParseMtu(t *testing.T) {
	tests := []struct {
		s  string
		v  uint16
		ok bool
	}{
		{"23", 23, true},
		{"527", 527, true},
		{"65535", 65535, true},
		{"70000", 0, false},
		{"-1", 0, false},
		{"big", 0, false},
	}

	for _, tt := range tests {
		v, err := parseMtu(tt.s)
		if !tt.ok {
			assert.Error(t, err, "mtu %q", tt.s)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.v, v)
	}
}

func TestParseRange(t *testing.T) {
	r, err := parseRange(nil)
	require.NoError(t, err)
	assert.Equal(t, att.FullRange(), r)

	r, err = parseRange([]string{"2", "0x3"})
	require.NoError(t, err)
	assert.Equal(t, att.NewHandleRange(2, 3), r)

	_, err = parseRange([]string{"2"})
	assert.Error(t, err)

	_, err = parseRange([]string{"2", "x"})
	assert.Error(t, err)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "[00 00 00 15] (21 C)",
		valueString(NewBleUuid16(TempMeasurementUuid),
			ess.EncodeTemperature(21)))

	assert.Equal(t, "[1a 18]",
		valueString(NewBleUuid16(PrimarySvcUuid), []byte{0x1a, 0x18}))
}

func TestCalOffset(t *testing.T) {
	defer func() {
		offsetSet = false
		emutil.Offset = 0
	}()

	dp := &config.DevProfile{Offset: -4}
	assert.Equal(t, int32(-4), calOffset(dp))

	offsetSet = true
	emutil.Offset = 2
	assert.Equal(t, int32(2), calOffset(dp))
}

func TestBuildXportCfg(t *testing.T) {
	defer func() {
		hciSet = false
		emutil.HciIdx = 0
		emutil.AdvName = ""
	}()

	dp := &config.DevProfile{BleString: "hci=1,name=bench"}

	cfg, err := buildXportCfg(dp)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.HciIdx)
	assert.Equal(t, "bench", cfg.AdvName)

	hciSet = true
	emutil.HciIdx = 2
	emutil.AdvName = "bench"

	cfg, err = buildXportCfg(dp)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.HciIdx)
	assert.Equal(t, "bench", cfg.AdvName)

	_, err = buildXportCfg(&config.DevProfile{BleString: "bogus"})
	assert.Error(t, err)
}

func TestReadOnce(t *testing.T) {
	s := sensor.NewSimSensor(sensor.SimCfg{Seed: 1, Start: 25})

	c, err := readOnce(s, -4)
	require.NoError(t, err)
	assert.Equal(t, int32(21), c)

	// The measurement is stopped afterwards.
	_, err = s.Read()
	assert.Error(t, err)
}

func TestTableQueries(t *testing.T) {
	srv := ess.NewServer(ess.MustNewService(ess.EncodeTemperature(21)))
	require.NoError(t, srv.Start())

	attrs, err := attrsInRange(srv, att.NewHandleRange(2, 3))
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, ess.ChrValHandle, attrs[1].Handle)

	attrs, err = attrsInRange(srv, att.NewHandleRange(4, 0x10))
	require.NoError(t, err)
	assert.Empty(t, attrs)

	end, ok, err := groupEnd(srv, ess.SvcHandle)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ess.ChrValHandle, end.Handle)

	snap, err := takeSnapshot(srv)
	require.NoError(t, err)
	assert.Len(t, snap.Attrs, 3)

	require.NoError(t, srv.Stop())

	_, err = attrsInRange(srv, att.FullRange())
	assert.Error(t, err)

	_, _, err = groupEnd(srv, ess.SvcHandle)
	assert.Error(t, err)

	_, err = takeSnapshot(srv)
	assert.Error(t, err)
}
