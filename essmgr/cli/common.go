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
	"fmt"

	log "github.com/sirupsen/logrus"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/essmgr/config"
	"github.com/drogue-iot/essgatt/essmgr/emutil"
	"github.com/drogue-iot/essgatt/gattx/blexport"
	"github.com/drogue-iot/essgatt/gattx/ess"
	"github.com/drogue-iot/essgatt/gattx/sensor"
)

var globalSensor sensor.Sensor
var globalSrv *ess.Server
var globalXport *blexport.BleXport

func getDevProfile() (*config.DevProfile, error) {
	return config.GlobalDevProfileMgr().GetDevProfile(emutil.ProfileName)
}

// calOffset returns the calibration offset to apply; the --offset flag wins
// over the profile.
func calOffset(dp *config.DevProfile) int32 {
	if offsetSet {
		return emutil.Offset
	}
	return int32(dp.Offset)
}

func GetSensor() (sensor.Sensor, error) {
	if globalSensor != nil {
		return globalSensor, nil
	}

	dp, err := getDevProfile()
	if err != nil {
		return nil, err
	}

	s, err := config.BuildSensor(dp)
	if err != nil {
		return nil, err
	}

	if ss, ok := s.(*sensor.SerialSensor); ok {
		if err := ss.Open(); err != nil {
			return nil, util.ChildNewtError(err)
		}
	}

	globalSensor = s
	return globalSensor, nil
}

// readOnce takes a single calibrated reading.
func readOnce(s sensor.Sensor, offset int32) (int32, error) {
	if err := s.StartMeasurement(); err != nil {
		return 0, err
	}
	defer s.StopMeasurement()

	raw, err := s.Read()
	if err != nil {
		return 0, err
	}

	return raw + offset, nil
}

// GetServer builds and starts the ESS server, seeding the characteristic
// with one reading from the profile's sensor.
func GetServer() (*ess.Server, error) {
	if globalSrv != nil {
		return globalSrv, nil
	}

	dp, err := getDevProfile()
	if err != nil {
		return nil, err
	}

	s, err := GetSensor()
	if err != nil {
		return nil, err
	}

	c, err := readOnce(s, calOffset(dp))
	if err != nil {
		log.Warnf("initial reading failed; starting at 0: %s", err.Error())
		c = 0
	}

	svc, err := ess.NewTemperatureService(c)
	if err != nil {
		return nil, util.ChildNewtError(err)
	}

	srv := ess.NewServer(svc)
	if err := srv.Start(); err != nil {
		return nil, util.ChildNewtError(err)
	}

	globalSrv = srv
	return globalSrv, nil
}

func GetServerIfOpen() (*ess.Server, error) {
	if globalSrv == nil {
		return nil, fmt.Errorf("server not initialized")
	}

	return globalSrv, nil
}

func buildXportCfg(dp *config.DevProfile) (blexport.XportCfg, error) {
	cfg, err := config.ParseBleConnString(dp.BleString)
	if err != nil {
		return cfg, err
	}

	if hciSet {
		cfg.HciIdx = emutil.HciIdx
	}
	if emutil.AdvName != "" {
		cfg.AdvName = emutil.AdvName
	}

	return cfg, nil
}

func GetXport() (*blexport.BleXport, error) {
	if globalXport != nil {
		return globalXport, nil
	}

	dp, err := getDevProfile()
	if err != nil {
		return nil, err
	}

	cfg, err := buildXportCfg(dp)
	if err != nil {
		return nil, err
	}

	srv, err := GetServer()
	if err != nil {
		return nil, err
	}

	globalXport = blexport.NewBleXport(cfg, srv)
	return globalXport, nil
}

func GetXportIfOpen() (*blexport.BleXport, error) {
	if globalXport == nil {
		return nil, fmt.Errorf("xport not initialized")
	}

	return globalXport, nil
}

// CloseAll releases whatever the command opened, in reverse order.
func CloseAll() {
	if x, err := GetXportIfOpen(); err == nil {
		x.Stop()
	}

	if srv, err := GetServerIfOpen(); err == nil && srv.Active() {
		srv.Stop()
	}

	if ss, ok := globalSensor.(*sensor.SerialSensor); ok {
		ss.Close()
	}
}
