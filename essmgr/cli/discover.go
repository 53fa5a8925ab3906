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

	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/essmgr/emutil"
	"github.com/drogue-iot/essgatt/gattx/attsvr"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
)

var discoverMtu int

// newResponder returns an ATT responder over the running server.
func newResponder() (*attsvr.Responder, error) {
	srv, err := GetServer()
	if err != nil {
		return nil, err
	}

	return attsvr.NewResponder(srv.Provider(), attsvr.NewCfg()), nil
}

func printProfile(p attsvr.Profile) {
	for _, s := range p.Services() {
		fmt.Printf("service %s\n", s.String())
		for _, c := range s.Chrs {
			fmt.Printf("    characteristic %s\n", c.String())
			if c.Value != nil {
				fmt.Printf("        value %s\n", valueString(c.Uuid, c.Value))
			}
		}
	}
}

func discoverRunCmd(cmd *cobra.Command, args []string) {
	if discoverMtu < BLE_ATT_MTU_DFLT || discoverMtu > BLE_ATT_MTU_MAX {
		nmUsage(cmd, util.FmtNewtError("Invalid MTU: %d", discoverMtu))
	}

	r, err := newResponder()
	if err != nil {
		nmUsage(nil, err)
	}

	mtu := r.ExchangeMtu(uint16(discoverMtu))
	fmt.Printf("mtu %d\n", mtu)

	p, err := attsvr.Discover(r)
	if err != nil {
		nmUsage(nil, util.ChildNewtError(err))
	}

	printProfile(p)
}

func discoverCmd() *cobra.Command {
	dCmd := &cobra.Command{
		Use: "discover",
		Short: "Discover services, characteristics and values the way a " +
			"GATT client would",
		Example: "  " + emutil.ToolInfo.ExeName + " discover --mtu 64",
		Run:     discoverRunCmd,
	}

	dCmd.Flags().IntVar(&discoverMtu, "mtu", BLE_ATT_MTU_DFLT,
		"client receive MTU")

	return dCmd
}
