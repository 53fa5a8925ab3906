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

package gattutil

import (
	"fmt"
)

// Indicates an attempt to replace a fixed-size value with one of a
// different length.  The stored value is left untouched.
type ValueLenError struct {
	Text     string
	Expected int
	Actual   int
}

func NewValueLenError(expected int, actual int) *ValueLenError {
	return &ValueLenError{
		Text: fmt.Sprintf("value length mismatch: have %d, want %d",
			actual, expected),
		Expected: expected,
		Actual:   actual,
	}
}

func (e *ValueLenError) Error() string {
	return e.Text
}

func IsValueLen(err error) bool {
	_, ok := err.(*ValueLenError)
	return ok
}

// Indicates a malformed attribute table (bad ordering, gaps, or an invalid
// handle).
type TableError struct {
	Text string
}

func NewTableError(text string) *TableError {
	return &TableError{
		Text: text,
	}
}

func FmtTableError(format string, args ...interface{}) *TableError {
	return NewTableError(fmt.Sprintf(format, args...))
}

func (e *TableError) Error() string {
	return e.Text
}

func IsTable(err error) bool {
	_, ok := err.(*TableError)
	return ok
}

// Represents a low-level transport error (serial port, HCI device).
type XportError struct {
	Text string
}

func NewXportError(text string) *XportError {
	return &XportError{text}
}

func FmtXportError(format string, args ...interface{}) *XportError {
	return NewXportError(fmt.Sprintf(format, args...))
}

func (e *XportError) Error() string {
	return e.Text
}

func IsXport(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*XportError)
	return ok
}

// Represents a reading that could not be parsed or failed validation.
type SensorError struct {
	Text string
}

func NewSensorError(text string) *SensorError {
	return &SensorError{text}
}

func FmtSensorError(format string, args ...interface{}) *SensorError {
	return NewSensorError(fmt.Sprintf(format, args...))
}

func (e *SensorError) Error() string {
	return e.Text
}

func IsSensor(err error) bool {
	_, ok := err.(*SensorError)
	return ok
}
