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

package blexport

import (
	"errors"
	"testing"
	"time"

	"github.com/JuulLabs-OSS/ble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drogue-iot/essgatt/gattx/att"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/ess"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

var _ Server = (*ess.Server)(nil)

type tableProvider struct {
	tbl *att.Table
}

func (tp *tableProvider) ForAttrsInRange(r att.HandleRange,
	fn att.AttrFn) error {

	return tp.tbl.ForEach(r, func(a att.Attribute) error {
		return fn(tp, a)
	})
}

func (tp *tableProvider) IsGroupingAttr(uuid BleUuid) bool {
	return false
}

func (tp *tableProvider) GroupEnd(h att.Handle) (att.Attribute, bool) {
	return att.Attribute{}, false
}

func TestToBleUUID(t *testing.T) {
	assert.True(t, ble.UUID16(0x181a).Equal(
		ToBleUUID(NewBleUuid16(EssSvcUuid))))

	s := "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	u128, err := ParseUuid128(s)
	require.NoError(t, err)
	assert.True(t, ble.MustParse(s).Equal(ToBleUUID(NewBleUuid128(u128))))
}

func TestBuildServicesEss(t *testing.T) {
	srv := ess.NewServer(ess.MustNewService(ess.EncodeTemperature(21)))

	svcs, err := BuildServices(srv.Provider(), srv)
	require.NoError(t, err)
	require.Len(t, svcs, 1)

	s := svcs[0]
	assert.True(t, ble.UUID16(0x181a).Equal(s.UUID))
	require.Len(t, s.Characteristics, 1)

	c := s.Characteristics[0]
	assert.True(t, ble.UUID16(0x2a1c).Equal(c.UUID))
	assert.NotNil(t, c.ReadHandler)
	assert.NotNil(t, c.NotifyHandler)
	assert.NotZero(t, c.Property&ble.CharRead)
	assert.NotZero(t, c.Property&ble.CharNotify)
}

func TestBuildServicesWithoutListener(t *testing.T) {
	svcs, err := BuildServices(ess.MustNewService([]byte{1}), nil)
	require.NoError(t, err)
	require.Len(t, svcs, 1)
	assert.Nil(t, svcs[0].Characteristics[0].NotifyHandler)
}

func TestBuildServicesRejectsOrphanDecl(t *testing.T) {
	tbl, err := att.NewTable([]att.Entry{{
		Type:   NewBleUuid16(ChrDeclUuid),
		Handle: 1,
		Value: att.EncodeChrDecl(att.ChrDecl{
			Properties: BLE_GATT_F_READ,
			ValHandle:  2,
			Uuid:       NewBleUuid16(TempMeasurementUuid),
		}),
	}, {
		Type:   NewBleUuid16(TempMeasurementUuid),
		Handle: 2,
		Value:  []byte{0},
	}})
	require.NoError(t, err)

	_, err = BuildServices(&tableProvider{tbl: tbl}, nil)
	assert.True(t, gattutil.IsTable(err))
}

func TestReadValue(t *testing.T) {
	s := ess.MustNewService(ess.EncodeTemperature(3))

	v, ok := readValue(s, ess.ChrValHandle)
	require.True(t, ok)
	assert.Equal(t, ess.EncodeTemperature(3), v)

	require.NoError(t, s.SetValue(ess.EncodeTemperature(4)))
	v, _ = readValue(s, ess.ChrValHandle)
	assert.Equal(t, ess.EncodeTemperature(4), v)

	_, ok = readValue(s, 9)
	assert.False(t, ok)
}

func TestXportCfg(t *testing.T) {
	cfg := NewXportCfg()
	assert.Equal(t, "default", cfg.CtlrName)
	assert.Equal(t, DFLT_ADV_NAME, cfg.AdvName)

	bx := NewBleXport(cfg, nil)
	assert.NoError(t, bx.Stop())
}

func TestForwardUpdatesKeepsSubscription(t *testing.T) {
	srv := ess.NewServer(ess.MustNewService(ess.EncodeTemperature(0)))
	require.NoError(t, srv.Start())

	ch := srv.Subscribe(NOTIFY_DEPTH)

	var got [][]byte
	errCh := make(chan error, 1)
	go func() {
		errCh <- forwardUpdates(ch, nil, func(b []byte) error {
			got = append(got, b)
			return nil
		})
	}()

	for _, c := range []int32{1, 2, 3} {
		require.NoError(t, srv.Update(ess.EncodeTemperature(c)))
	}
	require.NoError(t, srv.Stop())

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("forwarding did not end after stop")
	}

	assert.Equal(t, [][]byte{
		ess.EncodeTemperature(1),
		ess.EncodeTemperature(2),
		ess.EncodeTemperature(3),
	}, got)
}

func TestForwardUpdatesStops(t *testing.T) {
	ch := make(chan interface{}, 1)
	done := make(chan struct{})
	close(done)
	assert.NoError(t, forwardUpdates(ch, done, nil))

	boom := errors.New("write failed")
	ch <- []byte{1}
	assert.Equal(t, boom, forwardUpdates(ch, nil, func(b []byte) error {
		return boom
	}))
}
