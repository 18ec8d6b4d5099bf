package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/irtrx.go/pkg/device"
	"github.com/robotalks/irtrx.go/pkg/framework"
	"github.com/robotalks/irtrx.go/pkg/l1"
	env "github.com/robotalks/irtrx.go/pkg/l1/env/controller"
)

func init() {
	env.SetDeviceType("irtrx", l1.DeviceMeta{Description: "IR Interval Transceiver"})
	env.SetupFlags()
	device.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	ctl, err := device.NewConfig().NewController(env)
	if err != nil {
		log.Fatalln(err)
	}
	loop := framework.NewLoop().Add(env, ctl)
	if err := framework.NewRunner().HandleSignals().Go(loop).Wait(); err != nil {
		log.Fatalln(err)
	}
}
