package mcp2515

import (
	"fmt"
	"strings"
)

// Register is the address of an MCP2515 control or buffer register.
type Register byte

// Register map. Registers repeated for each buffer are listed for buffer 0; the others follow at
// +0x10 (TXB1 0x40.., TXB2 0x50.., RXB1 0x70..).
const (
	RXF0SIDH  Register = 0x00
	RXF0SIDL  Register = 0x01
	RXF0EID8  Register = 0x02
	RXF0EID0  Register = 0x03
	RXF1SIDH  Register = 0x04
	RXF2SIDH  Register = 0x08
	BFPCTRL   Register = 0x0C
	TXRTSCTRL Register = 0x0D
	CANSTAT   Register = 0x0E
	CANCTRL   Register = 0x0F
	RXF3SIDH  Register = 0x10
	RXF4SIDH  Register = 0x14
	RXF5SIDH  Register = 0x18
	TEC       Register = 0x1C
	REC       Register = 0x1D
	RXM0SIDH  Register = 0x20
	RXM0SIDL  Register = 0x21
	RXM0EID8  Register = 0x22
	RXM0EID0  Register = 0x23
	RXM1SIDH  Register = 0x24
	CNF3      Register = 0x28
	CNF2      Register = 0x29
	CNF1      Register = 0x2A
	CANINTE   Register = 0x2B
	CANINTF   Register = 0x2C
	EFLG      Register = 0x2D

	TXB0CTRL Register = 0x30
	TXB0SIDH Register = 0x31
	TXB0SIDL Register = 0x32
	TXB0EID8 Register = 0x33
	TXB0EID0 Register = 0x34
	TXB0DLC  Register = 0x35
	TXB0D0   Register = 0x36
	TXB1CTRL Register = 0x40
	TXB2CTRL Register = 0x50

	RXB0CTRL Register = 0x60
	RXB0SIDH Register = 0x61
	RXB0SIDL Register = 0x62
	RXB0EID8 Register = 0x63
	RXB0EID0 Register = 0x64
	RXB0DLC  Register = 0x65
	RXB0D0   Register = 0x66
	RXB1CTRL Register = 0x70
)

// CANCTRL / CANSTAT operation mode bits (REQOP in CANCTRL, OPMOD in CANSTAT).
const (
	ModeMask       byte = 0xE0
	ModeNormal     byte = 0x00
	ModeSleep      byte = 0x20
	ModeLoopback   byte = 0x40
	ModeListenOnly byte = 0x60
	ModeConfig     byte = 0x80
)

var registerNames = map[Register]string{
	RXF0SIDH: "RXF0SIDH", RXF0SIDL: "RXF0SIDL", RXF0EID8: "RXF0EID8", RXF0EID0: "RXF0EID0",
	RXF1SIDH: "RXF1SIDH", RXF2SIDH: "RXF2SIDH", BFPCTRL: "BFPCTRL", TXRTSCTRL: "TXRTSCTRL",
	CANSTAT: "CANSTAT", CANCTRL: "CANCTRL", RXF3SIDH: "RXF3SIDH", RXF4SIDH: "RXF4SIDH",
	RXF5SIDH: "RXF5SIDH", TEC: "TEC", REC: "REC", RXM0SIDH: "RXM0SIDH", RXM0SIDL: "RXM0SIDL",
	RXM0EID8: "RXM0EID8", RXM0EID0: "RXM0EID0", RXM1SIDH: "RXM1SIDH", CNF3: "CNF3", CNF2: "CNF2",
	CNF1: "CNF1", CANINTE: "CANINTE", CANINTF: "CANINTF", EFLG: "EFLG",
	TXB0CTRL: "TXB0CTRL", TXB0SIDH: "TXB0SIDH", TXB0SIDL: "TXB0SIDL", TXB0EID8: "TXB0EID8",
	TXB0EID0: "TXB0EID0", TXB0DLC: "TXB0DLC", TXB0D0: "TXB0D0", TXB1CTRL: "TXB1CTRL",
	TXB2CTRL: "TXB2CTRL",
	RXB0CTRL: "RXB0CTRL", RXB0SIDH: "RXB0SIDH", RXB0SIDL: "RXB0SIDL", RXB0EID8: "RXB0EID8",
	RXB0EID0: "RXB0EID0", RXB0DLC: "RXB0DLC", RXB0D0: "RXB0D0", RXB1CTRL: "RXB1CTRL",
}

// String returns the register's datasheet name, or its address in hex if it has no constant.
func (r Register) String() string {
	if name, ok := registerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(r))
}

// RegisterByName looks up a register constant by its datasheet name, case-insensitively.
func RegisterByName(name string) (Register, bool) {
	for r, n := range registerNames {
		if strings.EqualFold(n, name) {
			return r, true
		}
	}
	return 0, false
}
