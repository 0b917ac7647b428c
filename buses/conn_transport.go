package buses

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"go.viam.com/mcp2515/config"
	"go.viam.com/mcp2515/logging"
	"go.viam.com/mcp2515/mcp2515"
)

var _ = mcp2515.Transport(&ConnTransport{})

// ConnTransport drives an MCP2515 over a periph connection that stays open between frames. When
// a chip select pin is given it is driven low by Select(true) and high by Select(false);
// otherwise the connection's own chip select frames each Transfer.
//
// Transfers do not allocate.
type ConnTransport struct {
	conn   conn.Conn
	cs     gpio.PinOut
	logger logging.Logger
	closer func() error

	rx      [mcp2515.BufferSize]byte
	lastErr error
}

// NewConnTransport returns a transport over c. cs may be nil.
func NewConnTransport(c conn.Conn, cs gpio.PinOut, logger logging.Logger) *ConnTransport {
	return &ConnTransport{conn: c, cs: cs, logger: logger.Sublogger("spi")}
}

// OpenConnTransport opens the SPI port, and the chip select pin if one is configured, for the
// device described by conf. The periph host drivers must already be initialized.
func OpenConnTransport(conf config.DeviceConfig, logger logging.Logger) (*ConnTransport, error) {
	logger = logger.ForDevice(conf.Name, conf.Port())
	port, err := spireg.Open(conf.Port())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", conf.Port())
	}

	baud := conf.BaudHz
	if baud == 0 {
		baud = config.DefaultBaudHz
	}
	mode := spi.Mode(conf.Mode)
	var cs gpio.PinOut
	if conf.CSPin != "" {
		pin := gpioreg.ByName(conf.CSPin)
		if pin == nil {
			return nil, multierr.Combine(errors.Errorf("no GPIO pin named %q", conf.CSPin), port.Close())
		}
		if err := pin.Out(gpio.High); err != nil {
			return nil, multierr.Combine(errors.Wrapf(err, "failed to deselect %s", conf.CSPin), port.Close())
		}
		cs = pin
		mode |= spi.NoCS
	}

	c, err := port.Connect(physic.Hertz*physic.Frequency(baud), mode, 8)
	if err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "failed to connect to %s", conf.Port()), port.Close())
	}
	logger.Debugw("opened SPI connection", "baud_hz", baud, "cs_pin", conf.CSPin)

	ct := NewConnTransport(c, cs, logger)
	ct.closer = port.Close
	return ct, nil
}

// Select drives the chip select pin, if there is one.
func (ct *ConnTransport) Select(active bool) {
	if active {
		ct.lastErr = nil
	}
	if ct.cs == nil {
		return
	}
	level := gpio.High
	if active {
		level = gpio.Low
	}
	if err := ct.cs.Out(level); err != nil {
		ct.fail(errors.Wrap(err, "failed to drive chip select"))
	}
}

// Transfer clocks buf out and overwrites it with the bytes clocked in.
func (ct *ConnTransport) Transfer(buf []byte) mcp2515.Status {
	if len(buf) > len(ct.rx) {
		return mcp2515.StatusBufferOverflow
	}
	rx := ct.rx[:len(buf)]
	if err := ct.conn.Tx(buf, rx); err != nil {
		ct.fail(errors.Wrap(err, "SPI transfer failed"))
		return mcp2515.StatusError
	}
	copy(buf, rx)
	return mcp2515.StatusOK
}

// Err returns the first error of the most recent frame and clears it.
func (ct *ConnTransport) Err() error {
	err := ct.lastErr
	ct.lastErr = nil
	return err
}

// Close releases the chip select and closes the port if this transport opened it.
func (ct *ConnTransport) Close() error {
	var err error
	if ct.cs != nil {
		err = ct.cs.Out(gpio.High)
	}
	if ct.closer != nil {
		err = multierr.Combine(err, ct.closer())
		ct.closer = nil
	}
	return err
}

// fail logs err and keeps it unless the frame already failed.
func (ct *ConnTransport) fail(err error) {
	if ct.lastErr == nil {
		ct.lastErr = err
	}
	ct.logger.Warnw("mcp2515 transport error", "conn", ct.conn.String(), "error", err)
}
