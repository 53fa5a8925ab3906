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

package config

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drogue-iot/essgatt/gattx/blexport"
	"github.com/drogue-iot/essgatt/gattx/sensor"
)

func TestParseSerialConnString(t *testing.T) {
	sc, err := ParseSerialConnString("dev=/dev/ttyACM0,baud=9600,read_timeout=0.5")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", sc.DevPath)
	assert.Equal(t, 9600, sc.Baud)
	assert.Equal(t, 500*time.Millisecond, sc.ReadTimeout)

	sc, err = ParseSerialConnString("/dev/ttyUSB1")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", sc.DevPath)
	assert.Equal(t, 115200, sc.Baud)

	for _, cs := range []string{
		"",
		"baud=9600",
		"dev=/dev/tty0,baud=fast",
		"dev=/dev/tty0,baud=-1",
		"dev=/dev/tty0,read_timeout=0",
		"dev=/dev/tty0,parity=odd",
	} {
		_, err := ParseSerialConnString(cs)
		assert.Error(t, err, "connstring %q", cs)
	}
}

func TestParseSimConnString(t *testing.T) {
	sc, err := ParseSimConnString("")
	require.NoError(t, err)
	assert.Equal(t, sensor.NewSimCfg(), sc)

	sc, err = ParseSimConnString("seed=42,start=-4,step=3")
	require.NoError(t, err)
	assert.Equal(t, sensor.SimCfg{Seed: 42, Start: -4, Step: 3}, sc)

	for _, cs := range []string{"seed", "seed=x", "step=-1", "rate=2"} {
		_, err := ParseSimConnString(cs)
		assert.Error(t, err, "connstring %q", cs)
	}
}

func TestParseBleConnString(t *testing.T) {
	bc, err := ParseBleConnString("")
	require.NoError(t, err)
	assert.Equal(t, blexport.NewXportCfg(), bc)

	bc, err = ParseBleConnString("ctlr_name=hci,hci=1,name=thermo")
	require.NoError(t, err)
	assert.Equal(t, blexport.XportCfg{
		CtlrName: "hci",
		HciIdx:   1,
		AdvName:  "thermo",
	}, bc)

	for _, cs := range []string{"hci=x", "hci=-2", "name=", "peer=1"} {
		_, err := ParseBleConnString(cs)
		assert.Error(t, err, "connstring %q", cs)
	}
}

func TestBuildSensor(t *testing.T) {
	s, err := BuildSensor(&DevProfile{SensorType: SENSOR_TYPE_SIM})
	require.NoError(t, err)
	assert.IsType(t, &sensor.SimSensor{}, s)

	s, err = BuildSensor(&DevProfile{
		SensorType: SENSOR_TYPE_SERIAL,
		ConnString: "dev=/dev/ttyACM0",
	})
	require.NoError(t, err)
	assert.IsType(t, &sensor.SerialSensor{}, s)

	_, err = BuildSensor(&DevProfile{SensorType: SENSOR_TYPE_NONE})
	assert.Error(t, err)
}

func TestSensorTypeJson(t *testing.T) {
	b, err := json.Marshal(SENSOR_TYPE_SERIAL)
	require.NoError(t, err)
	assert.Equal(t, `"serial"`, string(b))

	var st SensorType
	require.NoError(t, json.Unmarshal([]byte(`"sim"`), &st))
	assert.Equal(t, SENSOR_TYPE_SIM, st)

	require.NoError(t, json.Unmarshal([]byte(`"bogus"`), &st))
	assert.Equal(t, SENSOR_TYPE_NONE, st)

	_, err = SensorTypeFromString("???")
	assert.Error(t, err)
}

func tempCfgFile(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "essmgr")
	require.NoError(t, err)

	return filepath.Join(dir, "profiles.json"), func() { os.RemoveAll(dir) }
}

func TestDevProfileMgr(t *testing.T) {
	filename, cleanup := tempCfgFile(t)
	defer cleanup()

	dpm, err := NewDevProfileMgrFile(filename)
	require.NoError(t, err)
	assert.Empty(t, dpm.GetDevProfileList())

	require.NoError(t, dpm.AddDevProfile(&DevProfile{
		Name:       "rig",
		SensorType: SENSOR_TYPE_SERIAL,
		ConnString: "dev=/dev/ttyACM0",
		BleString:  "name=rig",
		Offset:     -4,
	}))
	require.NoError(t, dpm.AddDevProfile(&DevProfile{
		Name:       "desk",
		SensorType: SENSOR_TYPE_SIM,
	}))

	// Reload from disk.
	dpm, err = NewDevProfileMgrFile(filename)
	require.NoError(t, err)

	list := dpm.GetDevProfileList()
	require.Len(t, list, 2)
	assert.Equal(t, "desk", list[0].Name)
	assert.Equal(t, "rig", list[1].Name)

	p, err := dpm.GetDevProfile("rig")
	require.NoError(t, err)
	assert.Equal(t, SENSOR_TYPE_SERIAL, p.SensorType)
	assert.Equal(t, -4, p.Offset)
	assert.Equal(t, "name=rig", p.BleString)

	_, err = dpm.GetDevProfile("nope")
	assert.Error(t, err)

	p, err = dpm.GetDevProfile("")
	require.NoError(t, err)
	assert.Equal(t, SENSOR_TYPE_SIM, p.SensorType)

	require.NoError(t, dpm.DeleteDevProfile("rig"))
	assert.Error(t, dpm.DeleteDevProfile("rig"))

	dpm, err = NewDevProfileMgrFile(filename)
	require.NoError(t, err)
	assert.Len(t, dpm.GetDevProfileList(), 1)
}

func TestDevProfileMgrRejectsBadProfile(t *testing.T) {
	filename, cleanup := tempCfgFile(t)
	defer cleanup()

	dpm, err := NewDevProfileMgrFile(filename)
	require.NoError(t, err)

	assert.Error(t, dpm.AddDevProfile(&DevProfile{
		SensorType: SENSOR_TYPE_SIM,
	}))
	assert.Error(t, dpm.AddDevProfile(&DevProfile{
		Name:       "x",
		SensorType: SENSOR_TYPE_SERIAL,
	}))
	assert.Error(t, dpm.AddDevProfile(&DevProfile{
		Name:       "x",
		SensorType: SENSOR_TYPE_SIM,
		BleString:  "hci=z",
	}))
	assert.Empty(t, dpm.GetDevProfileList())
}

func TestDevProfileMgrBadFile(t *testing.T) {
	filename, cleanup := tempCfgFile(t)
	defer cleanup()

	require.NoError(t, ioutil.WriteFile(filename, []byte("{"), 0644))

	_, err := NewDevProfileMgrFile(filename)
	assert.Error(t, err)
}
