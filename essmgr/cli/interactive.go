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
	"github.com/spf13/cobra"
	"gopkg.in/abiosoft/ishell.v2"

	"github.com/drogue-iot/essgatt/essmgr/emutil"
	"github.com/drogue-iot/essgatt/gattx/attsvr"
	. "github.com/drogue-iot/essgatt/gattx/bledefs"
	"github.com/drogue-iot/essgatt/gattx/ess"
)

var shellSrv *ess.Server
var shellRsp *attsvr.Responder

func rangeCmd(c *ishell.Context) {
	r, err := parseRange(c.Args)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	attrs, err := attrsInRange(shellSrv, r)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	for _, a := range attrs {
		c.Println(attrString(a))
	}

	if len(attrs) == 0 {
		c.Println("No attributes in range", r.String())
	}
}

func groupCmd(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("usage: group handle")
		return
	}

	h, err := parseHandle(c.Args[0])
	if err != nil {
		c.Println("Error:", err)
		return
	}

	end, ok, err := groupEnd(shellSrv, h)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	if ok {
		c.Println("group", h.String(), "ends at", attrString(end))
	} else {
		c.Println("handle", h.String(), "does not start a group")
	}
}

func readCmd(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("usage: read handle")
		return
	}

	h, err := parseHandle(c.Args[0])
	if err != nil {
		c.Println("Error:", err)
		return
	}

	v, err := shellRsp.Read(h)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	c.Printf("%s  [% x]\n", h, v)
}

func setCmd(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("usage: set celsius")
		return
	}

	t, err := parseTemperature(c.Args[0])
	if err != nil {
		c.Println("Error:", err)
		return
	}

	if err := shellSrv.Update(ess.EncodeTemperature(t)); err != nil {
		c.Println("Error:", err)
		return
	}

	c.Printf("temperature set to %d C\n", t)
}

func getCmd(c *ishell.Context) {
	var t int32
	err := shellSrv.Query(func(svc *ess.Service) error {
		var err error
		t, err = ess.DecodeTemperature(svc.Value())
		return err
	})
	if err != nil {
		c.Println("Error:", err)
		return
	}

	c.Printf("%d C\n", t)
}

func findCmd(c *ishell.Context) {
	r, err := parseRange(c.Args)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	infos, err := shellRsp.FindInformation(r)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	for _, i := range infos {
		c.Printf("%s  %s\n", i.Handle, i.Type)
	}
}

func byGroupCmd(c *ishell.Context) {
	group := NewBleUuid16(PrimarySvcUuid)
	args := c.Args

	if len(args) == 1 || len(args) == 3 {
		var err error
		group, err = parseUuid(args[len(args)-1])
		if err != nil {
			c.Println("Error:", err)
			return
		}
		args = args[:len(args)-1]
	}

	r, err := parseRange(args)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	entries, err := shellRsp.ReadByGroupType(r, group)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	for _, e := range entries {
		c.Printf("%s-%s  [% x]\n", e.Handle, e.EndGroup, e.Value)
	}
}

func byTypeCmd(c *ishell.Context) {
	if len(c.Args) != 1 && len(c.Args) != 3 {
		c.Println("usage: bytype [start end] uuid")
		return
	}

	typ, err := parseUuid(c.Args[len(c.Args)-1])
	if err != nil {
		c.Println("Error:", err)
		return
	}

	r, err := parseRange(c.Args[:len(c.Args)-1])
	if err != nil {
		c.Println("Error:", err)
		return
	}

	entries, err := shellRsp.ReadByType(r, typ)
	if err != nil {
		c.Println("Error:", err)
		return
	}

	for _, e := range entries {
		c.Printf("%s  %s\n", e.Handle, valueString(typ, e.Value))
	}
}

func mtuCmd(c *ishell.Context) {
	if len(c.Args) == 0 {
		c.Println("mtu", shellRsp.Mtu())
		return
	}

	mtu, err := parseMtu(c.Args[0])
	if err != nil {
		c.Println("Error:", err)
		return
	}

	c.Println("mtu", shellRsp.ExchangeMtu(mtu))
}

func startInteractive(cmd *cobra.Command, args []string) {
	var err error

	shellSrv, err = GetServer()
	if err != nil {
		nmUsage(nil, err)
	}
	shellRsp = attsvr.NewResponder(shellSrv.Provider(), attsvr.NewCfg())

	// create new shell.
	// by default, new shell includes 'exit', 'help' and 'clear' commands.
	shell := ishell.New()
	shell.SetPrompt("> ")

	// display welcome info.
	shell.Println()
	shell.Println(" " + emutil.ToolInfo.LongName + " attribute shell:")
	shell.Println("	Device profile: ", emutil.ProfileName)
	shell.Println()

	shell.AddCmd(&ishell.Cmd{
		Name: "range",
		Help: "List attributes in a handle range: range [start end]",
		Func: rangeCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "group",
		Help: "Show where the group starting at a handle ends: group handle",
		Func: groupCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "read",
		Help: "Send an ATT read request: read handle",
		Func: readCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "set",
		Help: "Update the temperature characteristic: set celsius",
		Func: setCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "get",
		Help: "Show the current temperature: get",
		Func: getCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "find",
		Help: "Send a find information request: find [start end]",
		Func: findCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "bygroup",
		Help: "Send a read by group type request: bygroup [start end] [uuid]",
		Func: byGroupCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "bytype",
		Help: "Send a read by type request: bytype [start end] uuid",
		Func: byTypeCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "mtu",
		Help: "Show or exchange the ATT MTU: mtu [client-mtu]",
		Func: mtuCmd,
	})

	shell.Run()
	shell.Close()
}

func interactiveCmd() *cobra.Command {
	shellCmd := &cobra.Command{
		Use:   "interactive",
		Short: "Run " + emutil.ToolInfo.ShortName + " interactive mode",
		Run:   startInteractive,
	}

	return shellCmd
}
