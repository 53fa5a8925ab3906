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

// Package sensor supplies temperature readings to an ESS server.  Readings
// are taken in two phases, like a die temperature sensor: a measurement is
// started on one tick and collected on the next.
package sensor

type Sensor interface {
	// StartMeasurement begins a conversion.
	StartMeasurement() error

	// Read returns the result of the conversion started by the last call to
	// StartMeasurement, in whole degrees Celsius.
	Read() (int32, error)

	StopMeasurement()
}
