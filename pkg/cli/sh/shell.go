// Package sh provides the ishell backed interactive shell for driving
// a transaction engine by hand.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/quadrover/i2clink/pkg/host"
	"github.com/quadrover/i2clink/pkg/protocol"
)

// Shell provides ishell backed interactive access to an Engine.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Engine *host.Engine
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PingCmd,
		&SpeedCmd,
		&StopCmd,
		&StatusCmd,
		&EnableCmd,
		&DisableCmd,
		&DelayCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell over engine.
func New(engine *host.Engine) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Engine: engine,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("mctl > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// DoCommand runs one transaction and prints the outcome.
func DoCommand(c *ishell.Context, req protocol.Request) {
	s := ShellFrom(c)
	start := time.Now()
	out := s.Engine.Transact(context.Background(), req)
	elapsed := time.Since(start)

	if s.OutputJSON {
		doc := map[string]interface{}{
			"command":    req.Command.String(),
			"done":       out.Done(),
			"elapsed_us": elapsed.Microseconds(),
		}
		if out.Response.Status.IsValid() {
			doc["status"] = out.Response.Status.String()
			doc["speeds"] = out.Response.Speeds
		}
		if out.Failed() {
			doc["cause"] = out.Cause.Error()
		}
		data, err := json.Marshal(doc)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(data))
		return
	}

	if out.Failed() {
		c.Err(fmt.Errorf("%s failed: %v", req.Command, out.Cause))
		return
	}
	if out.Response.Status == protocol.StatusData {
		c.Printf("%s %v (%v)\n", out.Response.Status, out.Response.Speeds, elapsed)
		return
	}
	c.Printf("%s (%v)\n", out.Response.Status, elapsed)
}

func parseSpeeds(args []string) (protocol.Speeds, error) {
	var speeds protocol.Speeds
	switch len(args) {
	case 1:
		v, err := strconv.ParseInt(args[0], 10, 16)
		if err != nil {
			return speeds, err
		}
		for i := range speeds {
			speeds[i] = int16(v)
		}
	case protocol.MotorCount:
		for i, arg := range args {
			v, err := strconv.ParseInt(arg, 10, 16)
			if err != nil {
				return speeds, err
			}
			speeds[i] = int16(v)
		}
	default:
		return speeds, fmt.Errorf("expected 1 or %d speed values", protocol.MotorCount)
	}
	return speeds, nil
}

// Run runs the shell, or processes args in evaluation mode.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PingCmd checks the peripheral is alive.
	PingCmd = ishell.Cmd{
		Name:    "ping",
		Aliases: []string{"p"},
		Help:    "",
		Func: func(c *ishell.Context) {
			DoCommand(c, protocol.Request{Command: protocol.CmdPing})
		},
	}

	// SpeedCmd sets motor speeds.
	SpeedCmd = ishell.Cmd{
		Name:    "speed",
		Aliases: []string{"go"},
		Help:    "V | V1 V2 V3 V4  (per-mille, -1000..1000)",
		Func: func(c *ishell.Context) {
			speeds, err := parseSpeeds(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, protocol.Request{Command: protocol.CmdSetSpeed, Speeds: speeds})
		},
	}

	// StopCmd stops all motors.
	StopCmd = ishell.Cmd{
		Name: "stop",
		Help: "",
		Func: func(c *ishell.Context) {
			DoCommand(c, protocol.Request{Command: protocol.CmdStop})
		},
	}

	// StatusCmd queries current motor speeds.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			DoCommand(c, protocol.Request{Command: protocol.CmdGetStatus})
		},
	}

	// EnableCmd enables the motor controller.
	EnableCmd = ishell.Cmd{
		Name: "enable",
		Help: "",
		Func: func(c *ishell.Context) {
			DoCommand(c, protocol.Request{Command: protocol.CmdEnable})
		},
	}

	// DisableCmd disables the motor controller.
	DisableCmd = ishell.Cmd{
		Name: "disable",
		Help: "",
		Func: func(c *ishell.Context) {
			DoCommand(c, protocol.Request{Command: protocol.CmdDisable})
		},
	}

	// DelayCmd shows or adjusts the write-to-read delay.
	DelayCmd = ishell.Cmd{
		Name: "delay",
		Help: "[MICROSECONDS]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) == 0 {
				c.Printf("tx delay: %v\n", s.Engine.TxDelay())
				return
			}
			us, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s.Engine.SetTxDelay(time.Duration(us) * time.Microsecond)
			c.Printf("tx delay: %v\n", s.Engine.TxDelay())
		},
	}
)
