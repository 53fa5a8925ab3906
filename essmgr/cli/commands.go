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
	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/essmgr/emutil"
	"github.com/drogue-iot/essgatt/gattx/gattutil"
)

var EssmgrLogLevel log.Level

// Set when the corresponding persistent flag was given explicitly, so that
// it overrides the device profile.
var offsetSet bool
var hciSet bool

func Commands() *cobra.Command {
	logLevelStr := ""
	emCmd := &cobra.Command{
		Use:   emutil.ToolInfo.ExeName,
		Short: emutil.ToolInfo.ShortName + " serves a BLE Environmental Sensing Service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			EssmgrLogLevel, err = log.ParseLevel(logLevelStr)
			if err != nil {
				nmUsage(nil, util.ChildNewtError(err))
			}

			err = util.Init(EssmgrLogLevel, "", util.VERBOSITY_DEFAULT)
			if err != nil {
				nmUsage(nil, err)
			}
			gattutil.SetLogLevel(EssmgrLogLevel)
			gattutil.Debug = EssmgrLogLevel >= log.DebugLevel

			offsetSet = cmd.Flags().Changed("offset")
			hciSet = cmd.Flags().Changed("hci")

			// Set cbgo log level if we're using macOS.
			OSSpecificInit()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	emCmd.PersistentFlags().StringVarP(&emutil.ProfileName, "profile", "p",
		"", "device profile to use")

	emCmd.PersistentFlags().StringVarP(&logLevelStr, "loglevel", "l", "info",
		"log level to use")

	emCmd.PersistentFlags().Float64VarP(&emutil.Interval, "interval", "t", 1.0,
		"sensor poll interval in seconds (partial seconds allowed)")

	emCmd.PersistentFlags().IntVarP(&emutil.HciIdx, "hci", "i",
		0, "HCI index for the controller on Linux machine")

	emCmd.PersistentFlags().Int32Var(&emutil.Offset, "offset", 0,
		"calibration offset added to raw readings; overrides profile setting")

	emCmd.PersistentFlags().StringVar(&emutil.AdvName, "name", "",
		"name to advertise; overrides profile setting")

	versCmd := &cobra.Command{
		Use:     "version",
		Short:   "Display the " + emutil.ToolInfo.ShortName + " version number",
		Example: "  " + emutil.ToolInfo.ExeName + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n",
				emutil.ToolInfo.LongName,
				emutil.ToolInfo.VersionString)
		},
	}
	emCmd.AddCommand(versCmd)

	emCmd.AddCommand(devProfileCmd())
	emCmd.AddCommand(tableCmd())
	emCmd.AddCommand(discoverCmd())
	emCmd.AddCommand(serveCmd())
	emCmd.AddCommand(interactiveCmd())

	return emCmd
}
