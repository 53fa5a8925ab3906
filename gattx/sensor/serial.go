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

package sensor

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joaojeronimo/go-crc16"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/tarm/serial"

	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

type SerialCfg struct {
	DevPath     string
	Baud        int
	ReadTimeout time.Duration
}

func NewSerialCfg() SerialCfg {
	return SerialCfg{
		Baud:        115200,
		ReadTimeout: 10 * time.Second,
	}
}

// Sent to the device to request a reading.
var measureCmd = []byte("m\n")

// SerialSensor reads temperatures from a device attached to a serial port.
// The device answers each measurement request with one line of text:
//
//	<celsius>[*<crc16 hex>]
//
// where the optional CRC covers the text before the '*'.  Lines that fail to
// parse are logged and skipped.
type SerialSensor struct {
	cfg     SerialCfg
	port    io.ReadWriteCloser
	scanner *bufio.Scanner
	mtx     sync.Mutex
}

func NewSerialSensor(cfg SerialCfg) *SerialSensor {
	return &SerialSensor{
		cfg: cfg,
	}
}

// NewPortSensor wraps an already open port.
func NewPortSensor(port io.ReadWriteCloser) *SerialSensor {
	return &SerialSensor{
		port:    port,
		scanner: bufio.NewScanner(port),
	}
}

func (s *SerialSensor) Open() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.port != nil {
		return gattutil.FmtSensorError("serial port %s already open",
			s.cfg.DevPath)
	}

	c := &serial.Config{
		Name:        s.cfg.DevPath,
		Baud:        s.cfg.Baud,
		ReadTimeout: s.cfg.ReadTimeout,
	}

	port, err := serial.OpenPort(c)
	if err != nil {
		return gattutil.FmtSensorError("failed to open serial port %s: %s",
			s.cfg.DevPath, err.Error())
	}

	log.Debugf("opened serial sensor %s baud=%d", s.cfg.DevPath, s.cfg.Baud)

	s.port = port
	s.scanner = bufio.NewScanner(port)
	return nil
}

func (s *SerialSensor) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.port == nil {
		return nil
	}

	err := s.port.Close()
	s.port = nil
	s.scanner = nil
	return err
}

func (s *SerialSensor) StartMeasurement() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.port == nil {
		return gattutil.NewSensorError("serial port not open")
	}

	if _, err := s.port.Write(measureCmd); err != nil {
		return gattutil.FmtSensorError("failed to request reading: %s",
			err.Error())
	}

	return nil
}

// Blocking receive.
func (s *SerialSensor) Read() (int32, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.scanner == nil {
		return 0, gattutil.NewSensorError("serial port not open")
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		val, err := ParseReading(line)
		if err != nil {
			gattutil.SensorLog.Debugf("dropping serial sensor line %q: %s", line, err.Error())
			continue
		}

		return val, nil
	}

	err := s.scanner.Err()
	if err == nil {
		err = io.EOF
	}
	return 0, gattutil.FmtSensorError("serial sensor read failed: %s",
		err.Error())
}

func (s *SerialSensor) StopMeasurement() {
}

// ParseReading decodes one line of serial sensor output.  Fractional
// readings are rounded to the nearest degree.
func ParseReading(line string) (int32, error) {
	text := line

	if i := strings.IndexByte(line, '*'); i >= 0 {
		text = line[:i]

		crcStr := line[i+1:]
		if len(crcStr) != 4 {
			return 0, fmt.Errorf("bad crc field \"%s\"", crcStr)
		}
		want, err := strconv.ParseUint(crcStr, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("bad crc field \"%s\"", crcStr)
		}

		have := crc16.Crc16([]byte(text))
		if uint16(want) != have {
			return 0, fmt.Errorf("crc mismatch: have 0x%04x, want 0x%04x",
				have, want)
		}
	}

	f, err := cast.ToFloat64E(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("bad reading \"%s\"", text)
	}

	f = math.Round(f)
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("reading out of range: %s", text)
	}

	return int32(f), nil
}

// FormatReading is the inverse of ParseReading; it appends the CRC field.
func FormatReading(c int32) string {
	text := strconv.Itoa(int(c))
	return fmt.Sprintf("%s*%04X", text, crc16.Crc16([]byte(text)))
}
