package mcp2515

import "fmt"

// Reset sends the RESET instruction, returning every register to its power-on value and putting the
// chip in configuration mode.
func (d *Device) Reset() Status {
	d.scratch[0] = instrReset
	return d.exchange(frameSingle)
}

// ReadRegisters reads n consecutive registers starting at addr.
//
// The returned slice aliases the Device's scratch buffer and is only valid until the next call. If
// the frame does not fit the buffer (n > BufferSize-2) it returns StatusBufferOverflow without
// touching the bus. On a transfer failure the slice is still returned and may hold garbage.
func (d *Device) ReadRegisters(addr Register, n uint8) ([]byte, Status) {
	total := int(n) + headerRead
	if total > BufferSize {
		return nil, StatusBufferOverflow
	}
	d.scratch[0] = instrRead
	d.scratch[1] = byte(addr)
	clear(d.scratch[headerRead:total])

	status := d.exchange(total)
	return d.scratch[headerRead:total], status
}

// ReadRxBuffer reads a receive buffer with the READ RX BUFFER instruction. The number of bytes read
// depends only on start: 13 from SIDH, 8 from D0 (see RxBufferStart.Len). Reading through this
// instruction also clears the buffer's receive interrupt flag on the chip.
//
// The returned slice aliases the Device's scratch buffer and is only valid until the next call.
func (d *Device) ReadRxBuffer(start RxBufferStart) ([]byte, Status) {
	n := start.Len()
	total := n + headerReadRxBuffer
	d.scratch[0] = start.Opcode()
	clear(d.scratch[headerReadRxBuffer:total])

	status := d.exchange(total)
	return d.scratch[headerReadRxBuffer:total], status
}

// WriteRegisters writes data to consecutive registers starting at addr. It returns
// StatusBufferOverflow without touching the bus if len(data) > BufferSize-2.
func (d *Device) WriteRegisters(addr Register, data []byte) Status {
	total := len(data) + headerWrite
	if total > BufferSize {
		return StatusBufferOverflow
	}
	d.scratch[0] = instrWrite
	d.scratch[1] = byte(addr)
	copy(d.scratch[headerWrite:], data)

	return d.exchange(total)
}

// LoadTxBuffer writes a transmit buffer with the LOAD TX BUFFER instruction. The payload length is
// implied by start (see TxBufferStart.Len) and data must hold at least that many bytes; extra bytes
// are ignored. A shorter data slice is a programming error and panics.
func (d *Device) LoadTxBuffer(start TxBufferStart, data []byte) Status {
	n := start.Len()
	if len(data) < n {
		panic(fmt.Sprintf("mcp2515: %v needs %d bytes of data, got %d", start, n, len(data)))
	}
	d.scratch[0] = start.Opcode()
	copy(d.scratch[headerLoadTxBuffer:], data[:n])

	return d.exchange(n + headerLoadTxBuffer)
}

// BitModify sets the bits of register addr selected by mask to the matching bits of data. Only
// registers documented as bit-modifiable honour the mask; the chip writes the others whole.
func (d *Device) BitModify(addr Register, mask, data byte) Status {
	d.scratch[0] = instrBitModify
	d.scratch[1] = byte(addr)
	d.scratch[2] = mask
	d.scratch[3] = data
	return d.exchange(frameBitModify)
}

// RequestToSend sends cmd unchanged as a REQUEST TO SEND instruction. Combine RTSBuffer0,
// RTSBuffer1 and RTSBuffer2 with | to start several transmissions at once.
func (d *Device) RequestToSend(cmd byte) Status {
	d.scratch[0] = cmd
	return d.exchange(frameSingle)
}

// ReadStatus sends the one-byte READ STATUS instruction and returns the transfer status plus
// the byte that follows the instruction in the scratch buffer.
//
// The frame is a single byte, so the chip's reply is never clocked in by the exchange itself. The
// byte added to the status is whatever the transport left just past the frame, or what an earlier
// operation left there. Transports that want a fresh value must clock one extra byte into the
// buffer's spare capacity.
//
// The sum is not a reliable failure signal: a failed transfer (-1) whose response byte is 0x05
// yields 4. Callers must treat any non-zero result as failure when they need to tell the two apart.
func (d *Device) ReadStatus() Status {
	return d.readStatusByte(instrReadStatus)
}

// ReadRxStatus sends the one-byte RX STATUS instruction and combines the result exactly like
// ReadStatus.
func (d *Device) ReadRxStatus() Status {
	return d.readStatusByte(instrRxStatus)
}

func (d *Device) readStatusByte(instr byte) Status {
	d.scratch[0] = instr
	status := d.exchange(frameSingle)
	return status + Status(d.scratch[headerStatus])
}
