package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/mcp2515/mcp2515"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "Warning: "+format+"\n", a...)
}

// parseRegister accepts a register name such as "CANSTAT" or a numeric address such as "0x0e".
func parseRegister(s string) (mcp2515.Register, error) {
	if r, ok := mcp2515.RegisterByName(s); ok {
		return r, nil
	}
	b, err := parseByte(s)
	if err != nil {
		return 0, errors.Errorf("unknown register %q", s)
	}
	if b > 0x7F {
		return 0, errors.Errorf("register address %#02x is outside the register map", b)
	}
	return mcp2515.Register(b), nil
}

// parseByte parses a byte in any base strconv understands (0x1f, 0b101, 31).
func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid byte %q", s)
	}
	return byte(v), nil
}

// parsePayload joins the arguments and decodes them as hex, ignoring spaces, colons and a 0x
// prefix, so "0a 0b", "0a:0b" and "0x0a0b" are equivalent.
func parsePayload(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", ",", "").Replace(s)
	payload, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "payload must be hex bytes")
	}
	return payload, nil
}

func formatBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// registerTable renders a dump of consecutive registers starting at addr.
func registerTable(addr mcp2515.Register, data []byte) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Address", "Register", "Hex", "Binary"})
	for i, b := range data {
		r := addr + mcp2515.Register(i)
		t.AppendRow(table.Row{
			fmt.Sprintf("0x%02X", byte(r)),
			r.String(),
			fmt.Sprintf("0x%02X", b),
			fmt.Sprintf("%08b", b),
		})
	}
	return t.Render()
}

// flagTable renders one row per bit of value, labelled by names (bit 7 first).
func flagTable(value byte, names [8]string) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Bit", "Flag", "Set"})
	for bit := 7; bit >= 0; bit-- {
		t.AppendRow(table.Row{bit, names[bit], value&(1<<bit) != 0})
	}
	return t.Render()
}

// Bit names of the READ STATUS response, bit 0 first.
var readStatusFlags = [8]string{
	"CANINTF.RX0IF", "CANINTF.RX1IF", "TXB0CNTRL.TXREQ", "CANINTF.TX0IF",
	"TXB1CNTRL.TXREQ", "CANINTF.TX1IF", "TXB2CNTRL.TXREQ", "CANINTF.TX2IF",
}

// describeRxStatus decodes the RX STATUS response into the received buffers, frame type, and the
// filter that matched.
func describeRxStatus(value byte) (buffers, frameType, filter string) {
	switch value >> 6 {
	case 0:
		buffers = "none"
	case 1:
		buffers = "RXB0"
	case 2:
		buffers = "RXB1"
	default:
		buffers = "RXB0, RXB1"
	}

	frameType = [4]string{
		"standard data", "standard remote", "extended data", "extended remote",
	}[(value>>3)&0x03]

	match := value & 0x07
	switch {
	case match < 6:
		filter = fmt.Sprintf("RXF%d", match)
	default:
		filter = fmt.Sprintf("RXF%d (rollover to RXB1)", match-6)
	}
	return buffers, frameType, filter
}
