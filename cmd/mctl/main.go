package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/quadrover/i2clink/pkg/bus"
	"github.com/quadrover/i2clink/pkg/cli/sh"
	"github.com/quadrover/i2clink/pkg/config"
	"github.com/quadrover/i2clink/pkg/host"
	"github.com/quadrover/i2clink/pkg/peripheral"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Path to YAML config.")
}

// mctl drives a simulated peripheral over the in-process loopback bus.
// Point it at real hardware by swapping the bus construction for a
// driver implementing bus.Bus.
func main() {
	flag.Parse()

	conf := &config.Config{}
	conf.Normalize()
	if configPath != "" {
		var err error
		if conf, err = config.Load(configPath); err != nil {
			log.Fatalln(err)
		}
	}
	addr, err := conf.PeripheralAddr()
	if err != nil {
		log.Fatalln(err)
	}

	dev := peripheral.NewDevice(peripheral.MotorActions(peripheral.NewMotors()))
	engine := host.NewEngine(bus.NewLoopback(addr, dev), host.Config{
		Addr:    addr,
		TxDelay: conf.TxDelay(),
	})

	sh.New(engine).Run(flag.Args()...)
}
