package trx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/irtrx.go/pkg/cli/sh"
	"github.com/robotalks/irtrx.go/pkg/l1/msgs"
)

func instanceArg(c *ishell.Context) (int, bool) {
	if len(c.Args) < 1 {
		c.Err(fmt.Errorf("instance number expected"))
		return 0, false
	}
	n, err := strconv.Atoi(c.Args[0])
	if err != nil {
		c.Err(fmt.Errorf("invalid instance %q", c.Args[0]))
		return 0, false
	}
	return n, true
}

func intervalArgs(c *ishell.Context, args []string) ([]uint32, bool) {
	var intervals []uint32
	for _, arg := range args {
		// allow both space and comma separated lists
		for _, s := range strings.Split(arg, ",") {
			if s == "" {
				continue
			}
			v, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				c.Err(fmt.Errorf("invalid interval %q", s))
				return nil, false
			}
			intervals = append(intervals, uint32(v))
		}
	}
	if len(intervals) == 0 {
		c.Err(fmt.Errorf("intervals expected"))
		return nil, false
	}
	return intervals, true
}

var (
	// StatusCmd exposes TrxStatusQuery command.
	StatusCmd = ishell.Cmd{
		Name:    "trx.status",
		Aliases: []string{"tst"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.TrxStatusQuery{})
		}),
	}

	// EnableCmd exposes TrxEnable command.
	EnableCmd = ishell.Cmd{
		Name:    "trx.enable",
		Aliases: []string{"ten"},
		Help:    "INSTANCE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if n, ok := instanceArg(c); ok {
				sh.DoCommand(c, &msgs.TrxEnable{Instance: n})
			}
		}),
	}

	// DisableCmd exposes TrxDisable command.
	DisableCmd = ishell.Cmd{
		Name:    "trx.disable",
		Aliases: []string{"tdi"},
		Help:    "INSTANCE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if n, ok := instanceArg(c); ok {
				sh.DoCommand(c, &msgs.TrxDisable{Instance: n})
			}
		}),
	}

	// SendCmd exposes TxSend command.
	SendCmd = ishell.Cmd{
		Name:    "trx.send",
		Aliases: []string{"ttx"},
		Help:    "INSTANCE INTERVAL...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			n, ok := instanceArg(c)
			if !ok {
				return
			}
			intervals, ok := intervalArgs(c, c.Args[1:])
			if !ok {
				return
			}
			sh.DoCommand(c, &msgs.TxSend{Instance: n, Intervals: intervals})
		}),
	}

	// ReadCmd exposes RxRead command.
	ReadCmd = ishell.Cmd{
		Name:    "trx.read",
		Aliases: []string{"trx"},
		Help:    "INSTANCE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if n, ok := instanceArg(c); ok {
				sh.DoCommand(c, &msgs.RxRead{Instance: n})
			}
		}),
	}

	// ResetCmd exposes RxReset command.
	ResetCmd = ishell.Cmd{
		Name:    "trx.reset",
		Aliases: []string{"trs"},
		Help:    "INSTANCE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if n, ok := instanceArg(c); ok {
				sh.DoCommand(c, &msgs.RxReset{Instance: n})
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&StatusCmd,
		&EnableCmd,
		&DisableCmd,
		&SendCmd,
		&ReadCmd,
		&ResetCmd,
	)
}
