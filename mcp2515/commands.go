package mcp2515

import "fmt"

// SPI instruction bytes.
const (
	instrReset        = 0xC0
	instrRead         = 0x03
	instrWrite        = 0x02
	instrBitModify    = 0x05
	instrReadStatus   = 0xA0
	instrRxStatus     = 0xB0
	instrReadRxBuffer = 0x90
	instrLoadTxBuffer = 0x40
)

// Header lengths of each frame, i.e. the bytes preceding payload or response data.
const (
	headerRead         = 2
	headerWrite        = 2
	headerReadRxBuffer = 1
	headerLoadTxBuffer = 1
	headerStatus       = 1
	frameBitModify     = 4
	frameSingle        = 1
)

// Bytes moved by a buffer instruction depending on where it starts: from SIDH the five header
// registers precede the eight data registers, from D0 only the data registers are covered.
const (
	headerBufferLen = 13
	dataBufferLen   = 8
)

// An RxBufferStart selects which receive buffer READ RX BUFFER reads and whether it starts at the
// identifier (SIDH) or at the first data byte (D0). Only the values declared by this package exist;
// the zero value is RxBuffer0SIDH.
type RxBufferStart struct {
	nm uint8 // instruction bits n,m
}

// Receive buffer start points.
var (
	RxBuffer0SIDH = RxBufferStart{0} // 0x90
	RxBuffer0D0   = RxBufferStart{1} // 0x92
	RxBuffer1SIDH = RxBufferStart{2} // 0x94
	RxBuffer1D0   = RxBufferStart{3} // 0x96
)

// RxBufferStarts lists every receive buffer start point.
var RxBufferStarts = [...]RxBufferStart{RxBuffer0SIDH, RxBuffer0D0, RxBuffer1SIDH, RxBuffer1D0}

// Opcode returns the instruction byte sent on the wire.
func (s RxBufferStart) Opcode() byte {
	return instrReadRxBuffer | (s.nm&0x03)<<1
}

// Len returns how many bytes the instruction reads back: 8 when starting at D0, 13 otherwise.
func (s RxBufferStart) Len() int {
	if s.Opcode()&0x02 != 0 {
		return dataBufferLen
	}
	return headerBufferLen
}

func (s RxBufferStart) String() string {
	return fmt.Sprintf("RXB%d%s", s.nm>>1, startName(s.nm&0x01 != 0))
}

// A TxBufferStart selects which transmit buffer LOAD TX BUFFER writes and whether it starts at the
// identifier (SIDH) or at the first data byte (D0). Only the values declared by this package exist;
// the zero value is TxBuffer0SIDH.
type TxBufferStart struct {
	abc uint8 // instruction bits a,b,c
}

// Transmit buffer start points.
var (
	TxBuffer0SIDH = TxBufferStart{0} // 0x40
	TxBuffer0D0   = TxBufferStart{1} // 0x41
	TxBuffer1SIDH = TxBufferStart{2} // 0x42
	TxBuffer1D0   = TxBufferStart{3} // 0x43
	TxBuffer2SIDH = TxBufferStart{4} // 0x44
	TxBuffer2D0   = TxBufferStart{5} // 0x45
)

// TxBufferStarts lists every transmit buffer start point.
var TxBufferStarts = [...]TxBufferStart{
	TxBuffer0SIDH, TxBuffer0D0,
	TxBuffer1SIDH, TxBuffer1D0,
	TxBuffer2SIDH, TxBuffer2D0,
}

// Opcode returns the instruction byte sent on the wire.
func (s TxBufferStart) Opcode() byte {
	return instrLoadTxBuffer | s.abc&0x07
}

// Len returns how many payload bytes the instruction writes: 8 when starting at D0, 13 otherwise.
func (s TxBufferStart) Len() int {
	if s.Opcode()&0x01 != 0 {
		return dataBufferLen
	}
	return headerBufferLen
}

func (s TxBufferStart) String() string {
	return fmt.Sprintf("TXB%d%s", s.abc>>1, startName(s.abc&0x01 != 0))
}

func startName(dataOnly bool) string {
	if dataOnly {
		return "D0"
	}
	return "SIDH"
}

// REQUEST TO SEND flags. They are plain instruction bytes and may be OR-ed together to request
// several transmissions with one RequestToSend call.
const (
	// RTSBuffer0 is the 0x80 REQUEST TO SEND command with the TXB0 bit (0x01) set.
	RTSBuffer0 byte = 0x81
	RTSBuffer1 byte = 0x82
	RTSBuffer2 byte = 0x84
)
