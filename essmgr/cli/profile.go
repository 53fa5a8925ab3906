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
	"strings"

	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/essmgr/config"
	"github.com/drogue-iot/essgatt/essmgr/emutil"
)

func devProfileAddCmd(cmd *cobra.Command, args []string) {
	dpm := config.GlobalDevProfileMgr()

	// Device profile name required
	if len(args) == 0 {
		nmUsage(cmd, util.NewNewtError("Need device profile name"))
	}

	name := args[0]
	dp := config.NewDevProfile()
	dp.Name = name
	dp.SensorType = config.SENSOR_TYPE_NONE

	for _, vdef := range args[1:] {
		s := strings.SplitN(vdef, "=", 2)
		if len(s) != 2 {
			nmUsage(cmd, util.FmtNewtError("Expected varname=value: %s",
				vdef))
		}

		switch s[0] {
		case "sensor":
			var err error
			dp.SensorType, err = config.SensorTypeFromString(s[1])
			if err != nil {
				nmUsage(cmd, err)
			}
		case "connstring":
			dp.ConnString = s[1]
		case "blestring":
			dp.BleString = s[1]
		case "offset":
			off, err := parseTemperature(s[1])
			if err != nil {
				nmUsage(cmd, util.FmtNewtError("Invalid offset: %s", s[1]))
			}
			dp.Offset = int(off)
		default:
			nmUsage(cmd, util.NewNewtError("Unknown variable "+s[0]))
		}
	}

	// Check that a sensor type is specified.
	if dp.SensorType == config.SENSOR_TYPE_NONE {
		nmUsage(cmd, util.NewNewtError("Must specify a sensor type"))
	}

	if err := dpm.AddDevProfile(dp); err != nil {
		nmUsage(cmd, err)
	}

	fmt.Printf("Device profile %s successfully added\n", name)
}

func devProfileShowCmd(cmd *cobra.Command, args []string) {
	dpm := config.GlobalDevProfileMgr()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	found := false
	for _, dp := range dpm.GetDevProfileList() {
		if name != "" && dp.Name != name {
			continue
		}

		if !found {
			found = true
			fmt.Printf("Device profiles: \n")
		}
		fmt.Printf("  %s: sensor=%s, connstring='%s', blestring='%s', "+
			"offset=%d\n", dp.Name, config.SensorTypeToString(dp.SensorType),
			dp.ConnString, dp.BleString, dp.Offset)
	}

	if !found {
		if name == "" {
			fmt.Printf("No device profiles found!\n")
		} else {
			fmt.Printf("No device profiles found matching %s\n", name)
		}
	}
}

func devProfileDelCmd(cmd *cobra.Command, args []string) {
	dpm := config.GlobalDevProfileMgr()

	// Device profile name required
	if len(args) == 0 {
		nmUsage(cmd, util.NewNewtError("Need device profile name"))
	}

	name := args[0]
	if err := dpm.DeleteDevProfile(name); err != nil {
		nmUsage(cmd, err)
	}

	fmt.Printf("Device profile %s successfully deleted.\n", name)
}

func devProfileCmd() *cobra.Command {
	dpCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage " + emutil.ToolInfo.ShortName + " device profiles",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	addHelpText := "Add or replace a device profile.  Variables:\n"
	addHelpText += "  sensor=sim|serial\n"
	addHelpText += "  connstring=<sensor connstring>\n"
	addHelpText += "      sim:    seed=<n>,start=<celsius>,step=<celsius>\n"
	addHelpText += "      serial: dev=<path>,baud=<rate>,read_timeout=<secs>\n"
	addHelpText += "  blestring=ctlr_name=<name>,hci=<idx>,name=<adv name>\n"
	addHelpText += "  offset=<celsius>\n"

	addCmd := &cobra.Command{
		Use:   "add <profile> <varname=value ...> ",
		Short: "Add a " + emutil.ToolInfo.ShortName + " device profile",
		Long:  addHelpText,
		Example: "  " + emutil.ToolInfo.ExeName +
			" profile add microbit sensor=serial " +
			"connstring=dev=/dev/ttyACM0 offset=-4",
		Run: devProfileAddCmd,
	}
	dpCmd.AddCommand(addCmd)

	deleCmd := &cobra.Command{
		Use:   "delete <profile>",
		Short: "Delete a " + emutil.ToolInfo.ShortName + " device profile",
		Run:   devProfileDelCmd,
	}
	dpCmd.AddCommand(deleCmd)

	showHelpText := "Show information for the named device profile or for "
	showHelpText += "all\ndevice profiles if no profile is specified.\n"

	showCmd := &cobra.Command{
		Use:   "show [profile]",
		Short: "Show " + emutil.ToolInfo.ShortName + " device profiles",
		Long:  showHelpText,
		Run:   devProfileShowCmd,
	}
	dpCmd.AddCommand(showCmd)

	return dpCmd
}
