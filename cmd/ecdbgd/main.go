package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/ectalks/ecdbg/pkg/comm"
	env "github.com/ectalks/ecdbg/pkg/env/device"
	"github.com/ectalks/ecdbg/pkg/framework"
)

func init() {
	env.SetDeviceType("wilco", comm.DeviceMeta{Description: "Wilco EC debug endpoint"})
	env.SetupFlags()
}

func main() {
	flag.Parse()

	e := env.NewConfig().MustNewEnv()
	framework.NewRunner().HandleSignals().Go(e.Registrar).Wait()
}
