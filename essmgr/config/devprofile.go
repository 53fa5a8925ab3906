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
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"

	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/essmgr/emutil"
)

type DevProfileMgr struct {
	filename string
	profiles map[string]*DevProfile
}

type SensorType int

// DevProfile describes where a served device gets its readings and how it
// appears over BLE.
type DevProfile struct {
	Name       string     `json:"MyName"`
	SensorType SensorType `json:"MySensorType"`
	ConnString string     `json:"MyConnString"`
	BleString  string     `json:"MyBleString,omitempty"`

	// Calibration offset added to every raw reading.
	Offset int `json:"MyOffset,omitempty"`
}

func (p *DevProfile) String() string {
	return fmt.Sprintf("name=%s sensor=%s connstring=%s blestring=%s "+
		"offset=%d", p.Name, SensorTypeToString(p.SensorType), p.ConnString,
		p.BleString, p.Offset)
}

const (
	SENSOR_TYPE_NONE SensorType = iota
	SENSOR_TYPE_SIM
	SENSOR_TYPE_SERIAL
)

var sensorTypeNameMap = map[SensorType]string{
	SENSOR_TYPE_SIM:    "sim",
	SENSOR_TYPE_SERIAL: "serial",
	SENSOR_TYPE_NONE:   "???",
}

func SensorTypeToString(st SensorType) string {
	return sensorTypeNameMap[st]
}

func SensorTypeFromString(s string) (SensorType, error) {
	for k, v := range sensorTypeNameMap {
		if s == v && k != SENSOR_TYPE_NONE {
			return k, nil
		}
	}

	return SensorType(0), util.FmtNewtError("Invalid sensor type: %s", s)
}

func (st SensorType) MarshalJSON() ([]byte, error) {
	return json.Marshal(SensorTypeToString(st))
}

func (st *SensorType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	var err error
	*st, err = SensorTypeFromString(s)
	if err != nil {
		*st = SENSOR_TYPE_NONE
	}
	return nil
}

func NewDevProfile() *DevProfile {
	return &DevProfile{}
}

// The built-in profile used when no --profile is given.
func DefaultDevProfile() *DevProfile {
	return &DevProfile{
		Name:       "",
		SensorType: SENSOR_TYPE_SIM,
	}
}

func devProfileCfgFilename() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", util.NewNewtError(err.Error())
	}

	return filepath.Join(dir, emutil.ToolInfo.CfgFilename), nil
}

// NewDevProfileMgr loads the profiles stored in the user's home directory.
func NewDevProfileMgr() (*DevProfileMgr, error) {
	filename, err := devProfileCfgFilename()
	if err != nil {
		return nil, err
	}

	return NewDevProfileMgrFile(filename)
}

func NewDevProfileMgrFile(filename string) (*DevProfileMgr, error) {
	dpm := &DevProfileMgr{
		filename: filename,
		profiles: map[string]*DevProfile{},
	}

	if err := dpm.Init(); err != nil {
		return nil, err
	}

	return dpm, nil
}

func (dpm *DevProfileMgr) Init() error {
	log.Debugf("Reading device profiles from %s", dpm.filename)
	blob, err := ioutil.ReadFile(dpm.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		} else {
			return util.ChildNewtError(err)
		}
	}

	var profiles []*DevProfile
	if err := json.Unmarshal(blob, &profiles); err != nil {
		return util.FmtNewtError("error reading device profile "+
			"config (%s): %s", dpm.filename, err.Error())
	}

	for _, p := range profiles {
		dpm.profiles[p.Name] = p
	}

	return nil
}

type devProfSorter struct {
	dps []*DevProfile
}

func (s devProfSorter) Len() int {
	return len(s.dps)
}
func (s devProfSorter) Swap(i, j int) {
	s.dps[i], s.dps[j] = s.dps[j], s.dps[i]
}
func (s devProfSorter) Less(i, j int) bool {
	return s.dps[i].Name < s.dps[j].Name
}

func SortDevProfs(dps []*DevProfile) []*DevProfile {
	sorter := devProfSorter{
		dps: make([]*DevProfile, 0, len(dps)),
	}

	for _, p := range dps {
		sorter.dps = append(sorter.dps, p)
	}

	sort.Sort(sorter)
	return sorter.dps
}

func (dpm *DevProfileMgr) GetDevProfileList() []*DevProfile {
	dpList := make([]*DevProfile, 0, len(dpm.profiles))
	for _, p := range dpm.profiles {
		dpList = append(dpList, p)
	}

	return SortDevProfs(dpList)
}

func (dpm *DevProfileMgr) save() error {
	b, err := json.MarshalIndent(dpm.GetDevProfileList(), "", "    ")
	if err != nil {
		return util.NewNewtError(err.Error())
	}

	if err := ioutil.WriteFile(dpm.filename, b, 0644); err != nil {
		return util.ChildNewtError(err)
	}

	return nil
}

func (dpm *DevProfileMgr) DeleteDevProfile(name string) error {
	if dpm.profiles[name] == nil {
		return util.FmtNewtError("device profile \"%s\" doesn't exist", name)
	}

	delete(dpm.profiles, name)
	return dpm.save()
}

// AddDevProfile validates the profile's connstrings and stores it,
// replacing any profile with the same name.
func (dpm *DevProfileMgr) AddDevProfile(dp *DevProfile) error {
	if dp.Name == "" {
		return util.NewNewtError("device profile name must not be empty")
	}

	if _, err := BuildSensor(dp); err != nil {
		return err
	}
	if _, err := ParseBleConnString(dp.BleString); err != nil {
		return err
	}

	dpm.profiles[dp.Name] = dp
	return dpm.save()
}

// GetDevProfile looks up a profile by name.  The empty name selects the
// built-in simulated profile.
func (dpm *DevProfileMgr) GetDevProfile(name string) (*DevProfile, error) {
	if name == "" {
		return DefaultDevProfile(), nil
	}

	p := dpm.profiles[name]
	if p == nil {
		return nil, util.FmtNewtError("device profile \"%s\" doesn't exist",
			name)
	}

	return p, nil
}

var globalDevProfileMgr *DevProfileMgr

func GlobalDevProfileMgr() *DevProfileMgr {
	if globalDevProfileMgr == nil {
		panic("device profile manager not initialized")
	}
	return globalDevProfileMgr
}

func InitGlobalDevProfileMgr() error {
	if globalDevProfileMgr != nil {
		return util.NewNewtError("device profile manager initialized twice")
	}

	var err error
	globalDevProfileMgr, err = NewDevProfileMgr()
	if err != nil {
		return err
	}

	return nil
}
