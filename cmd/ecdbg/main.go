package main

import (
	"github.com/ectalks/ecdbg/pkg/cli/sh"
	env "github.com/ectalks/ecdbg/pkg/env/operator"

	_ "github.com/ectalks/ecdbg/pkg/cli/cmds/raw"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
