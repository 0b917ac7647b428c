// Package cli contains the mcp2515 command line tool: raw SPI commands against a configured
// MCP2515 for bring-up and debugging.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	flagConfig    = "config"
	flagDevice    = "device"
	flagDebug     = "debug"
	flagLogLevel  = "log-level"
	flagSharedBus = "shared-bus"
	flagAddr      = "addr"
	flagLen       = "len"
	flagMask      = "mask"
	flagData      = "data"
	flagBuffer    = "buffer"
	flagDataOnly  = "data-only"
)

var app = &cli.App{
	Name:            "mcp2515",
	Usage:           "send SPI commands to an MCP2515 CAN controller",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     flagConfig,
			Aliases:  []string{"c"},
			Usage:    "load device configuration from `FILE`",
			Required: true,
		},
		&cli.StringFlag{
			Name:    flagDevice,
			Aliases: []string{"d"},
			Usage:   "`NAME` of the device to talk to; may be omitted if only one is configured",
		},
		&cli.BoolFlag{
			Name:  flagSharedBus,
			Usage: "lock the bus per frame and let the driver toggle chip select, instead of holding the port open",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging; same as --log-level debug",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "log `LEVEL`: debug, info, warn or error",
			Value: "info",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "reset",
			Usage:  "reset the controller to its power-on state (configuration mode)",
			Action: ResetAction,
		},
		{
			Name:  "read",
			Usage: "read consecutive registers",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagAddr,
					Usage:    "first register, by name (CANSTAT) or address (0x0e)",
					Required: true,
				},
				&cli.UintFlag{
					Name:  flagLen,
					Usage: "number of registers to read",
					Value: 1,
				},
			},
			Action: ReadAction,
		},
		{
			Name:      "write",
			Usage:     "write consecutive registers",
			ArgsUsage: "<hex bytes>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagAddr,
					Usage:    "first register, by name (CNF1) or address (0x2a)",
					Required: true,
				},
			},
			Action: WriteAction,
		},
		{
			Name:  "bit-modify",
			Usage: "change the bits of a register selected by a mask",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagAddr,
					Usage:    "register, by name (CANCTRL) or address (0x0f)",
					Required: true,
				},
				&cli.StringFlag{
					Name:     flagMask,
					Usage:    "bits to change, e.g. 0xe0",
					Required: true,
				},
				&cli.StringFlag{
					Name:     flagData,
					Usage:    "new values for the masked bits, e.g. 0x00",
					Required: true,
				},
			},
			Action: BitModifyAction,
		},
		{
			Name:  "read-rx",
			Usage: "read a receive buffer and clear its interrupt flag",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:  flagBuffer,
					Usage: "receive buffer, 0 or 1",
				},
				&cli.BoolFlag{
					Name:  flagDataOnly,
					Usage: "start at D0 and read only the 8 data bytes",
				},
			},
			Action: ReadRxAction,
		},
		{
			Name:      "load-tx",
			Usage:     "load a transmit buffer",
			ArgsUsage: "<hex bytes>",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:  flagBuffer,
					Usage: "transmit buffer, 0, 1 or 2",
				},
				&cli.BoolFlag{
					Name:  flagDataOnly,
					Usage: "start at D0 and load only the 8 data bytes",
				},
			},
			Action: LoadTxAction,
		},
		{
			Name:  "rts",
			Usage: "request to send one or more transmit buffers",
			Flags: []cli.Flag{
				&cli.IntSliceFlag{
					Name:     flagBuffer,
					Usage:    "transmit buffer to send; repeat for several",
					Required: true,
				},
			},
			Action: RTSAction,
		},
		{
			Name:   "status",
			Usage:  "read the quick status byte (interrupt and request flags)",
			Action: StatusAction,
		},
		{
			Name:   "rx-status",
			Usage:  "read the receive status byte (filter match and frame type)",
			Action: RxStatusAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
