package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/golang/glog"

	"github.com/quadrover/i2clink/pkg/bus"
	"github.com/quadrover/i2clink/pkg/config"
	fx "github.com/quadrover/i2clink/pkg/framework"
	"github.com/quadrover/i2clink/pkg/host"
	"github.com/quadrover/i2clink/pkg/peripheral"
	"github.com/quadrover/i2clink/pkg/protocol"
	"github.com/quadrover/i2clink/pkg/telemetry"
)

var (
	configPath string
	interval   time.Duration
	pot        float64
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to YAML config.")
	flag.DurationVar(&interval, "interval", 250*time.Millisecond, "Transaction interval.")
	flag.Float64Var(&pot, "pot", -1, "Tuning input 0..1 mapped onto the write-to-read delay; negative keeps the configured delay.")
}

// driver exercises the engine against the simulated peripheral: a
// triangle speed sweep with a status poll every fifth transaction,
// mirroring the bench tuning procedure for the real MCU.
type driver struct {
	engine *host.Engine
	pub    *telemetry.Publisher
}

// Name implements framework.Named.
func (d *driver) Name() string {
	return "driver"
}

// Run implements framework.Runnable.
func (d *driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var speed, step int16 = 0, 50
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			d.engine.Transact(context.Background(), protocol.Request{Command: protocol.CmdStop})
			return ctx.Err()
		case <-ticker.C:
		}

		req := protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{speed, speed, speed, speed}}
		if n%5 == 4 {
			req = protocol.Request{Command: protocol.CmdGetStatus}
		}
		start := time.Now()
		out := d.engine.Transact(ctx, req)
		if d.pub != nil {
			d.pub.PublishOutcome(req.Command, out, time.Since(start))
			if out.Done() && out.Response.Status == protocol.StatusData {
				d.pub.PublishStatus(out.Response.Speeds)
			}
		}
		if out.Failed() {
			glog.Warningf("%s failed: %v", req.Command, out.Cause)
		}

		if speed += step; speed >= protocol.SpeedMax || speed <= protocol.SpeedMin {
			step = -step
		}
	}
}

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
	cfg := host.Config{Addr: addr, TxDelay: conf.TxDelay()}
	if pot >= 0 {
		// stand-in for the digital pot on the real host
		cfg.Delay = host.LinearDelay(host.FixedSource(pot), 0, 5*time.Millisecond)
	}
	engine := host.NewEngine(bus.NewLoopback(addr, dev), cfg)

	var pub *telemetry.Publisher
	if conf.Telemetry.MQTTURL != "" {
		q, err := telemetry.NewQueueFromURL(conf.Telemetry.MQTTURL)
		if err != nil {
			log.Fatalln(err)
		}
		if err := q.Connect(); err != nil {
			log.Fatalln(err)
		}
		defer q.Close()
		pub = telemetry.NewPublisher(q)
	}

	if err := engine.Handshake(context.Background()); err != nil {
		log.Fatalln(err)
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(dev, &driver{engine: engine, pub: pub})
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
