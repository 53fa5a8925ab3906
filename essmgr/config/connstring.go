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
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/gattx/blexport"
	"github.com/drogue-iot/essgatt/gattx/sensor"
)

func einvalConnString(kind string, f string, args ...interface{}) error {
	suffix := fmt.Sprintf(f, args...)
	return util.FmtNewtError("Invalid %s connstring; %s", kind, suffix)
}

// splitConnString breaks "k1=v1,k2=v2" into pairs.  A token without '=' is
// passed to bare, which names the key it implies; a nil bare rejects such
// tokens.
func splitConnString(kind string, cs string,
	bare func(v string) (string, bool)) ([][2]string, error) {

	var kvs [][2]string

	if strings.TrimSpace(cs) == "" {
		return kvs, nil
	}

	for _, p := range strings.Split(cs, ",") {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 1 {
			k, ok := "", false
			if bare != nil {
				k, ok = bare(kv[0])
			}
			if !ok {
				return nil, einvalConnString(kind, "expected "+
					"comma-separated key=value pairs; no '=' in: %s", p)
			}
			kv = []string{k, kv[0]}
		}

		kvs = append(kvs, [2]string{kv[0], kv[1]})
	}

	return kvs, nil
}

// ParseSerialConnString parses "dev=<path>,baud=<rate>,read_timeout=<secs>".
// A lone token is taken as the device path.
func ParseSerialConnString(cs string) (sensor.SerialCfg, error) {
	sc := sensor.NewSerialCfg()

	kvs, err := splitConnString("serial", cs, func(v string) (string, bool) {
		return "dev", true
	})
	if err != nil {
		return sc, err
	}

	for _, kv := range kvs {
		k, v := kv[0], kv[1]

		switch k {
		case "dev":
			sc.DevPath = v

		case "baud":
			sc.Baud, err = cast.ToIntE(v)
			if err != nil || sc.Baud <= 0 {
				return sc, einvalConnString("serial", "Invalid baud: %s", v)
			}

		case "read_timeout":
			secs, err := cast.ToFloat64E(v)
			if err != nil || secs <= 0 {
				return sc, einvalConnString("serial",
					"Invalid read_timeout: %s", v)
			}
			sc.ReadTimeout = time.Duration(secs * float64(time.Second))

		default:
			return sc, einvalConnString("serial", "Unrecognized key: %s", k)
		}
	}

	if sc.DevPath == "" {
		return sc, einvalConnString("serial", "missing dev")
	}

	return sc, nil
}

// ParseSimConnString parses "seed=<n>,start=<celsius>,step=<celsius>".
func ParseSimConnString(cs string) (sensor.SimCfg, error) {
	sc := sensor.NewSimCfg()

	kvs, err := splitConnString("sim", cs, nil)
	if err != nil {
		return sc, err
	}

	for _, kv := range kvs {
		k, v := kv[0], kv[1]

		switch k {
		case "seed":
			sc.Seed, err = cast.ToInt64E(v)
			if err != nil {
				return sc, einvalConnString("sim", "Invalid seed: %s", v)
			}

		case "start":
			sc.Start, err = cast.ToInt32E(v)
			if err != nil {
				return sc, einvalConnString("sim", "Invalid start: %s", v)
			}

		case "step":
			sc.Step, err = cast.ToInt32E(v)
			if err != nil || sc.Step < 0 {
				return sc, einvalConnString("sim", "Invalid step: %s", v)
			}

		default:
			return sc, einvalConnString("sim", "Unrecognized key: %s", k)
		}
	}

	return sc, nil
}

// ParseBleConnString parses "ctlr_name=<name>,hci=<idx>,name=<adv name>".
func ParseBleConnString(cs string) (blexport.XportCfg, error) {
	bc := blexport.NewXportCfg()

	kvs, err := splitConnString("BLE", cs, nil)
	if err != nil {
		return bc, err
	}

	for _, kv := range kvs {
		k, v := kv[0], kv[1]

		switch k {
		case "ctlr_name":
			bc.CtlrName = v

		case "hci":
			bc.HciIdx, err = cast.ToIntE(v)
			if err != nil || bc.HciIdx < 0 {
				return bc, einvalConnString("BLE", "Invalid hci: %s", v)
			}

		case "name":
			if v == "" {
				return bc, einvalConnString("BLE", "empty name")
			}
			bc.AdvName = v

		default:
			return bc, einvalConnString("BLE", "Unrecognized key: %s", k)
		}
	}

	return bc, nil
}

// BuildSensor creates the sensor a profile describes.  Serial sensors are
// returned unopened.
func BuildSensor(dp *DevProfile) (sensor.Sensor, error) {
	switch dp.SensorType {
	case SENSOR_TYPE_SIM:
		sc, err := ParseSimConnString(dp.ConnString)
		if err != nil {
			return nil, err
		}
		return sensor.NewSimSensor(sc), nil

	case SENSOR_TYPE_SERIAL:
		sc, err := ParseSerialConnString(dp.ConnString)
		if err != nil {
			return nil, err
		}
		return sensor.NewSerialSensor(sc), nil

	default:
		return nil, util.FmtNewtError("Unknown sensor type: %s (%d)",
			SensorTypeToString(dp.SensorType), int(dp.SensorType))
	}
}
