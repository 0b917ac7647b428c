// Package mcp2515 encodes and decodes the SPI instruction set of the Microchip MCP2515 stand-alone
// CAN controller.
// datasheet can be found at: https://ww1.microchip.com/downloads/en/DeviceDoc/MCP2515-Family-Data-Sheet-DS20001801K.pdf
//
// The package owns no bus. Callers supply a Transport that drives the chip-select line and performs
// the full-duplex exchange; every operation on a Device builds exactly one command frame in the
// Device's fixed scratch buffer and runs it as
//
//	Select(true)
//	status := Transfer(scratch[:n])
//	Select(false)
//
// No operation allocates. Slices returned by read operations alias the scratch buffer and are only
// valid until the next call on the same Device.
//
// A Device is not safe for concurrent use. Callers that share one chip between goroutines must
// serialise access themselves.
package mcp2515

// BufferSize is the capacity of a Device's scratch buffer and so the longest frame any operation
// can transfer.
const BufferSize = 32

// A Transport performs the physical SPI transaction for a Device.
type Transport interface {
	// Select asserts (true) or deasserts (false) the chip-select line. It is called exactly twice
	// per transferred frame, deassert always following assert, including when Transfer fails.
	Select(active bool)

	// Transfer clocks buf out to the chip and overwrites buf in place with the bytes clocked in.
	// It returns a zero or positive Status on success and a negative Status on failure.
	Transfer(buf []byte) Status
}

// TransportFuncs adapts a pair of functions into a Transport.
type TransportFuncs struct {
	SelectFunc   func(active bool)
	TransferFunc func(buf []byte) Status
}

// Select calls SelectFunc.
func (f TransportFuncs) Select(active bool) {
	f.SelectFunc(active)
}

// Transfer calls TransferFunc.
func (f TransportFuncs) Transfer(buf []byte) Status {
	return f.TransferFunc(buf)
}

// A Device is one MCP2515 chip reached through a Transport.
type Device struct {
	transport Transport
	scratch   [BufferSize]byte
}

// New returns a Device that performs its transfers through the given transport.
func New(transport Transport) *Device {
	return &Device{transport: transport}
}

// exchange runs the first n bytes of scratch through the transport, bracketed by chip select.
func (d *Device) exchange(n int) Status {
	d.transport.Select(true)
	status := d.transport.Transfer(d.scratch[:n])
	d.transport.Select(false)
	return status
}
