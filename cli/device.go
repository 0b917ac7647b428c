package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/mcp2515/mcp2515"
)

// ResetAction is the corresponding action for 'reset'.
func ResetAction(c *cli.Context) error {
	return withDevice(c, func(dc *deviceClient) error {
		if err := dc.check("reset", dc.dev.Reset()); err != nil {
			return err
		}
		printf(c.App.Writer, "%s reset; now in configuration mode", dc.name)
		return nil
	})
}

// ReadAction is the corresponding action for 'read'.
func ReadAction(c *cli.Context) error {
	addr, err := parseRegister(c.String(flagAddr))
	if err != nil {
		return err
	}
	n := c.Uint(flagLen)
	if n == 0 || n > mcp2515.BufferSize-2 {
		return errors.Errorf("--%s must be between 1 and %d", flagLen, mcp2515.BufferSize-2)
	}
	if int(addr)+int(n) > 0x80 {
		warningf(c.App.ErrWriter, "read runs past the end of the register map and wraps to 0x00")
	}

	return withDevice(c, func(dc *deviceClient) error {
		data, status := dc.dev.ReadRegisters(addr, uint8(n))
		if err := dc.check("read", status); err != nil {
			return err
		}
		printf(c.App.Writer, "%s", registerTable(addr, data))
		return nil
	})
}

// WriteAction is the corresponding action for 'write'.
func WriteAction(c *cli.Context) error {
	addr, err := parseRegister(c.String(flagAddr))
	if err != nil {
		return err
	}
	payload, err := parsePayload(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return errors.New("nothing to write; pass the payload as hex arguments")
	}

	return withDevice(c, func(dc *deviceClient) error {
		if err := dc.check("write", dc.dev.WriteRegisters(addr, payload)); err != nil {
			return err
		}
		printf(c.App.Writer, "wrote %d bytes at %s", len(payload), addr)
		return nil
	})
}

// BitModifyAction is the corresponding action for 'bit-modify'.
func BitModifyAction(c *cli.Context) error {
	addr, err := parseRegister(c.String(flagAddr))
	if err != nil {
		return err
	}
	mask, err := parseByte(c.String(flagMask))
	if err != nil {
		return err
	}
	data, err := parseByte(c.String(flagData))
	if err != nil {
		return err
	}

	return withDevice(c, func(dc *deviceClient) error {
		if err := dc.check("bit-modify", dc.dev.BitModify(addr, mask, data)); err != nil {
			return err
		}
		printf(c.App.Writer, "%s: bits %08b set to %08b", addr, mask, data&mask)
		return nil
	})
}

// ReadRxAction is the corresponding action for 'read-rx'.
func ReadRxAction(c *cli.Context) error {
	if c.Uint(flagBuffer) > 1 {
		return errors.Errorf("--%s must be 0 or 1", flagBuffer)
	}
	start := mcp2515.RxBufferStarts[int(c.Uint(flagBuffer))*2+boolIndex(c.Bool(flagDataOnly))]

	return withDevice(c, func(dc *deviceClient) error {
		data, status := dc.dev.ReadRxBuffer(start)
		if err := dc.check("read-rx", status); err != nil {
			return err
		}
		printf(c.App.Writer, "%s: %s", start, formatBytes(data))
		return nil
	})
}

// LoadTxAction is the corresponding action for 'load-tx'.
func LoadTxAction(c *cli.Context) error {
	if c.Uint(flagBuffer) > 2 {
		return errors.Errorf("--%s must be 0, 1 or 2", flagBuffer)
	}
	start := mcp2515.TxBufferStarts[int(c.Uint(flagBuffer))*2+boolIndex(c.Bool(flagDataOnly))]
	payload, err := parsePayload(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(payload) != start.Len() {
		return errors.Errorf("loading from %s takes exactly %d bytes, got %d", start, start.Len(), len(payload))
	}

	return withDevice(c, func(dc *deviceClient) error {
		if err := dc.check("load-tx", dc.dev.LoadTxBuffer(start, payload)); err != nil {
			return err
		}
		printf(c.App.Writer, "loaded %s: %s", start, formatBytes(payload))
		return nil
	})
}

// RTSAction is the corresponding action for 'rts'.
func RTSAction(c *cli.Context) error {
	rtsFlags := [...]byte{mcp2515.RTSBuffer0, mcp2515.RTSBuffer1, mcp2515.RTSBuffer2}
	var cmd byte
	for _, b := range c.IntSlice(flagBuffer) {
		if b < 0 || b >= len(rtsFlags) {
			return errors.Errorf("--%s must be 0, 1 or 2, got %d", flagBuffer, b)
		}
		cmd |= rtsFlags[b]
	}

	return withDevice(c, func(dc *deviceClient) error {
		if err := dc.check("rts", dc.dev.RequestToSend(cmd)); err != nil {
			return err
		}
		printf(c.App.Writer, "requested to send (0x%02X)", cmd)
		return nil
	})
}

const statusByteWarning = "the one-byte %s frame does not clock in the reply; " +
	"the value shown is the byte the transport left after the instruction"

// StatusAction is the corresponding action for 'status'.
func StatusAction(c *cli.Context) error {
	return withDevice(c, func(dc *deviceClient) error {
		status := dc.dev.ReadStatus()
		warningf(c.App.ErrWriter, statusByteWarning, "READ STATUS")
		if err := dc.check("status", status); err != nil {
			return err
		}
		printf(c.App.Writer, "status 0x%02X", byte(status))
		printf(c.App.Writer, "%s", flagTable(byte(status), readStatusFlags))
		return nil
	})
}

// RxStatusAction is the corresponding action for 'rx-status'.
func RxStatusAction(c *cli.Context) error {
	return withDevice(c, func(dc *deviceClient) error {
		status := dc.dev.ReadRxStatus()
		warningf(c.App.ErrWriter, statusByteWarning, "RX STATUS")
		if err := dc.check("rx-status", status); err != nil {
			return err
		}
		buffers, frameType, filter := describeRxStatus(byte(status))

		t := table.NewWriter()
		t.AppendHeader(table.Row{"Received", "Type", "Filter"})
		t.AppendRow(table.Row{buffers, frameType, filter})
		printf(c.App.Writer, "rx status 0x%02X", byte(status))
		printf(c.App.Writer, "%s", t.Render())
		return nil
	})
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
