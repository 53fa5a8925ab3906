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
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/essmgr/emutil"
	"github.com/drogue-iot/essgatt/gattx/ess"
	"github.com/drogue-iot/essgatt/gattx/sensor"
)

var serveNoBle bool

// logUpdates prints every published temperature until the server stops.
func logUpdates(ch <-chan interface{}) {
	for v := range ch {
		b, _ := v.([]byte)
		if c, err := ess.DecodeTemperature(b); err == nil {
			log.Infof("temperature: %d C", c)
		}
	}
}

func serveRunCmd(cmd *cobra.Command, args []string) {
	if emutil.Interval <= 0 {
		nmUsage(cmd, util.FmtNewtError("Invalid interval: %f",
			emutil.Interval))
	}

	dp, err := getDevProfile()
	if err != nil {
		nmUsage(nil, err)
	}

	srv, err := GetServer()
	if err != nil {
		nmUsage(nil, err)
	}

	s, err := GetSensor()
	if err != nil {
		nmUsage(nil, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)

	pcfg := sensor.NewPollerCfg()
	pcfg.Interval = emutil.PollInterval()
	pcfg.Offset = calOffset(dp)

	go logUpdates(srv.Subscribe(ess.DFLT_QUEUE_DEPTH))

	p := sensor.NewPoller(pcfg, s, srv)
	go func() {
		errCh <- p.Run(ctx)
	}()

	if !serveNoBle {
		x, err := GetXport()
		if err != nil {
			nmUsage(nil, err)
		}

		go func() {
			errCh <- x.Start(ctx)
		}()
	}

	log.Infof("serving profile \"%s\"; sensor poll interval %s offset %d",
		emutil.ProfileName, pcfg.Interval, pcfg.Offset)

	// Runs until interrupted or until the peripheral fails.
	err = <-errCh
	if err != nil && !emutil.ErrorCausedBy(err, context.Canceled) {
		nmUsage(nil, util.ChildNewtError(err))
	}
}

func serveCmd() *cobra.Command {
	sCmd := &cobra.Command{
		Use: "serve",
		Short: "Serve the Environmental Sensing Service, polling the " +
			"profile's sensor",
		Example: "  " + emutil.ToolInfo.ExeName + " serve -p microbit\n" +
			"  " + emutil.ToolInfo.ExeName + " serve --no-ble -t 0.5",
		Run: serveRunCmd,
	}

	sCmd.Flags().BoolVar(&serveNoBle, "no-ble", false,
		"don't advertise over BLE; only poll the sensor")

	return sCmd
}
