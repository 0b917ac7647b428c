package buses

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/mcp2515/config"
	"go.viam.com/mcp2515/logging"
	"go.viam.com/mcp2515/mcp2515"
)

var _ = mcp2515.Transport(&HandleTransport{})

// HandleTransport drives an MCP2515 through a shared SPI bus. Select(true) locks the bus by
// opening a handle and Select(false) releases it, so other users of the bus never interleave with
// a frame. Each Transfer is one Xfer with the chip select held for its duration.
type HandleTransport struct {
	ctx        context.Context
	bus        SPI
	chipSelect string
	baud       uint
	mode       uint
	logger     logging.Logger

	handle  SPIHandle
	lastErr error
}

// NewHandleTransport returns a transport for the device described by conf on bus.
func NewHandleTransport(ctx context.Context, bus SPI, conf config.DeviceConfig, logger logging.Logger) *HandleTransport {
	baud := conf.BaudHz
	if baud == 0 {
		baud = config.DefaultBaudHz
	}
	return &HandleTransport{
		ctx:        ctx,
		bus:        bus,
		chipSelect: conf.ChipSelect,
		baud:       baud,
		mode:       conf.Mode,
		logger:     logger.Sublogger("spi").ForDevice(conf.Name, conf.Port()),
	}
}

// Select opens or closes the bus handle.
func (ht *HandleTransport) Select(active bool) {
	if active {
		ht.lastErr = nil
		if ht.handle != nil {
			return
		}
		handle, err := ht.bus.OpenHandle()
		if err != nil {
			ht.fail(errors.Wrap(err, "failed to open SPI handle"))
			return
		}
		ht.handle = handle
		return
	}

	if ht.handle == nil {
		return
	}
	if err := ht.handle.Close(); err != nil {
		ht.fail(errors.Wrap(err, "failed to close SPI handle"))
	}
	ht.handle = nil
}

// Transfer clocks buf out and overwrites it with the bytes clocked in.
func (ht *HandleTransport) Transfer(buf []byte) mcp2515.Status {
	if ht.handle == nil {
		ht.fail(errors.New("transfer without an open SPI handle"))
		return mcp2515.StatusError
	}
	rx, err := ht.handle.Xfer(ht.ctx, ht.baud, ht.chipSelect, ht.mode, buf)
	if err != nil {
		ht.fail(errors.Wrap(err, "SPI transfer failed"))
		return mcp2515.StatusError
	}
	if len(rx) != len(buf) {
		ht.fail(errors.Errorf("SPI transfer returned %d bytes, sent %d", len(rx), len(buf)))
		return mcp2515.StatusError
	}
	copy(buf, rx)
	ht.logger.Debugw("transfer", "opcode", buf[0], "tx_len", len(buf))
	return mcp2515.StatusOK
}

// Err returns the first error of the most recent frame and clears it.
func (ht *HandleTransport) Err() error {
	err := ht.lastErr
	ht.lastErr = nil
	return err
}

// fail logs err and keeps it unless the frame already failed.
func (ht *HandleTransport) fail(err error) {
	if ht.lastErr == nil {
		ht.lastErr = err
	}
	ht.logger.Warnw("mcp2515 transport error", "error", err)
}
