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
	"os"

	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/drogue-iot/essgatt/essmgr/emutil"
	"github.com/drogue-iot/essgatt/gattx/att"
	"github.com/drogue-iot/essgatt/gattx/ess"
	"github.com/drogue-iot/essgatt/gattx/snapshot"
)

var dumpFormat string

func takeSnapshot(srv *ess.Server) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	err := srv.Query(func(svc *ess.Service) error {
		snapshot.Dump(svc)
		snap = snapshot.Take(svc)
		return nil
	})

	return snap, err
}

func attrsInRange(srv *ess.Server, r att.HandleRange) ([]att.Attribute, error) {
	attrs := []att.Attribute{}
	err := srv.Query(func(svc *ess.Service) error {
		return svc.ForAttrsInRange(r,
			func(p att.Provider, a att.Attribute) error {
				attrs = append(attrs, a)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

func groupEnd(srv *ess.Server, h att.Handle) (att.Attribute, bool, error) {
	var end att.Attribute
	var ok bool
	err := srv.Query(func(svc *ess.Service) error {
		end, ok = svc.GroupEnd(h)
		return nil
	})

	return end, ok, err
}

func tableDumpCmd(cmd *cobra.Command, args []string) {
	srv, err := GetServer()
	if err != nil {
		nmUsage(nil, err)
	}

	snap, err := takeSnapshot(srv)
	if err != nil {
		nmUsage(nil, util.ChildNewtError(err))
	}

	if dumpFormat == "text" {
		fmt.Print(snapshot.Text(snap))
		return
	}

	b, err := snapshot.Encode(snap, dumpFormat)
	if err != nil {
		nmUsage(cmd, util.ChildNewtError(err))
	}

	os.Stdout.Write(b)
	if dumpFormat == "json" {
		fmt.Println()
	}
}

func tableRangeCmd(cmd *cobra.Command, args []string) {
	if len(args) != 2 {
		nmUsage(cmd, nil)
	}

	r, err := parseRange(args)
	if err != nil {
		nmUsage(cmd, err)
	}

	srv, err := GetServer()
	if err != nil {
		nmUsage(nil, err)
	}

	attrs, err := attrsInRange(srv, r)
	if err != nil {
		nmUsage(nil, util.ChildNewtError(err))
	}

	for _, a := range attrs {
		fmt.Println(attrString(a))
	}

	if len(attrs) == 0 {
		fmt.Printf("No attributes in range %s\n", r)
	}
}

func tableGroupCmd(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		nmUsage(cmd, nil)
	}

	h, err := parseHandle(args[0])
	if err != nil {
		nmUsage(cmd, err)
	}

	srv, err := GetServer()
	if err != nil {
		nmUsage(nil, err)
	}

	end, ok, err := groupEnd(srv, h)
	if err != nil {
		nmUsage(nil, util.ChildNewtError(err))
	}

	if ok {
		fmt.Printf("group %s ends at %s\n", h, attrString(end))
	} else {
		fmt.Printf("handle %s does not start a group\n", h)
	}
}

func tableCmd() *cobra.Command {
	tblCmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect the attribute table",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every attribute",
		Example: "  " + emutil.ToolInfo.ExeName + " table dump\n" +
			"  " + emutil.ToolInfo.ExeName + " table dump --format json",
		Run: tableDumpCmd,
	}
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "text",
		"output format: text, json or cbor")
	tblCmd.AddCommand(dumpCmd)

	rangeCmd := &cobra.Command{
		Use:     "range <start-handle> <end-handle>",
		Short:   "Print the attributes whose handles fall in a range",
		Example: "  " + emutil.ToolInfo.ExeName + " table range 0x0002 0x0003",
		Run:     tableRangeCmd,
	}
	tblCmd.AddCommand(rangeCmd)

	groupCmd := &cobra.Command{
		Use:     "group <handle>",
		Short:   "Print the last attribute of the group starting at a handle",
		Example: "  " + emutil.ToolInfo.ExeName + " table group 1",
		Run:     tableGroupCmd,
	}
	tblCmd.AddCommand(groupCmd)

	return tblCmd
}
