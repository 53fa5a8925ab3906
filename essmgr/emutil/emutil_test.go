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

package emutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorCausedBy(t *testing.T) {
	base := fmt.Errorf("base")

	assert.True(t, ErrorCausedBy(base, base))
	assert.True(t, ErrorCausedBy(errors.Wrap(base, "outer"), base))
	assert.True(t, ErrorCausedBy(
		errors.Wrapf(errors.Wrap(base, "mid"), "outer %d", 1), base))

	assert.False(t, ErrorCausedBy(errors.Wrap(base, "outer"),
		context.Canceled))
	assert.False(t, ErrorCausedBy(nil, base))
}

func TestPollInterval(t *testing.T) {
	old := Interval
	defer func() { Interval = old }()

	Interval = 1.5
	assert.Equal(t, 1500*time.Millisecond, PollInterval())
}
