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

// Package snapshot captures the attributes of a provider in a form that can
// be printed or serialized as JSON or CBOR.
package snapshot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/structs"
	log "github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"

	"github.com/drogue-iot/essgatt/gattx/att"
)

const SNAPSHOT_VERSION = 1

type Record struct {
	Handle   uint16 `codec:"handle"`
	EndGroup uint16 `codec:"end_group,omitempty"`
	Type     string `codec:"type"`
	Value    []byte `codec:"value"`
}

type Snapshot struct {
	Version int      `codec:"v"`
	Attrs   []Record `codec:"attrs"`
}

func Take(p att.Provider) Snapshot {
	s := Snapshot{
		Version: SNAPSHOT_VERSION,
	}

	p.ForAttrsInRange(att.FullRange(),
		func(p att.Provider, a att.Attribute) error {
			r := Record{
				Handle: uint16(a.Handle),
				Type:   a.Type.String(),
				Value:  a.Value,
			}

			if p.IsGroupingAttr(a.Type) {
				if end, ok := p.GroupEnd(a.Handle); ok {
					r.EndGroup = uint16(end.Handle)
				}
			}

			s.Attrs = append(s.Attrs, r)
			return nil
		})

	return s
}

func handle(format string) (codec.Handle, error) {
	switch format {
	case "json":
		return new(codec.JsonHandle), nil
	case "cbor":
		return new(codec.CborHandle), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}
}

// Encode serializes s as "json" or "cbor".
func Encode(s Snapshot, format string) ([]byte, error) {
	h, err := handle(format)
	if err != nil {
		return nil, err
	}

	// Convert each record to a map, using the "codec" tag.
	attrs := make([]map[string]interface{}, len(s.Attrs))
	for i, r := range s.Attrs {
		st := structs.New(r)
		st.TagName = "codec"
		attrs[i] = st.Map()
	}

	m := map[string]interface{}{
		"v":     s.Version,
		"attrs": attrs,
	}

	payload := []byte{}
	enc := codec.NewEncoderBytes(&payload, h)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %s", err.Error())
	}

	return payload, nil
}

func Decode(b []byte, format string) (Snapshot, error) {
	var s Snapshot

	h, err := handle(format)
	if err != nil {
		return s, err
	}

	if err := codec.NewDecoderBytes(b, h).Decode(&s); err != nil {
		return s, fmt.Errorf("invalid %s snapshot: %s", format, err.Error())
	}
	if s.Version != SNAPSHOT_VERSION {
		return s, fmt.Errorf("unsupported snapshot version: %d", s.Version)
	}

	return s, nil
}

func (r Record) String() string {
	end := ""
	if r.EndGroup != 0 {
		end = fmt.Sprintf(" end=0x%04x", r.EndGroup)
	}
	return fmt.Sprintf("0x%04x  %-6s%s  [% x]", r.Handle, r.Type, end, r.Value)
}

// Text renders one line per attribute.
func Text(s Snapshot) string {
	var buf bytes.Buffer
	for _, r := range s.Attrs {
		fmt.Fprintf(&buf, "%s\n", r.String())
	}
	return buf.String()
}

// Dump logs the attributes of p at debug level.
func Dump(p att.Provider) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}

	s := Take(p)
	log.Debugf("attribute table (%d attributes):\n%s", len(s.Attrs),
		strings.TrimRight(Text(s), "\n"))
}
