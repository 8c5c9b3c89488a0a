// Package raw provides shell commands for the raw debug channel.
package raw

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/ectalks/ecdbg/pkg/cli/sh"
)

var (
	// RawCmd submits one hex sentence to the connected EC.
	RawCmd = ishell.Cmd{
		Name:    "raw",
		Aliases: []string{"r"},
		Help:    "HH HH HH... (big-endian type, command, payload)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("at least message type and command required"))
				return
			}
			sh.DoRaw(c, strings.Join(c.Args, " "))
		}),
	}
)

func init() {
	sh.AddCmds(&RawCmd)
}
