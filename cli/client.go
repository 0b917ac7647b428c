package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"periph.io/x/host/v3"

	"go.viam.com/mcp2515/buses"
	"go.viam.com/mcp2515/config"
	"go.viam.com/mcp2515/logging"
	"go.viam.com/mcp2515/mcp2515"
)

// deviceTransport is an mcp2515.Transport that remembers why its last transfer failed.
type deviceTransport interface {
	mcp2515.Transport
	Err() error
}

// openTransport opens the transport for a configured device. Tests replace it.
var openTransport = func(
	ctx context.Context,
	conf config.DeviceConfig,
	sharedBus bool,
	logger logging.Logger,
) (deviceTransport, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize periph host drivers")
	}
	if sharedBus {
		bus := buses.NewSPIBus(conf.Bus)
		return buses.NewHandleTransport(ctx, bus, conf, logger), func() error { return bus.Close(ctx) }, nil
	}
	transport, err := buses.OpenConnTransport(conf, logger)
	if err != nil {
		return nil, nil, err
	}
	return transport, transport.Close, nil
}

// deviceClient is the connection to one MCP2515 used by a single command.
type deviceClient struct {
	name      string
	dev       *mcp2515.Device
	transport deviceTransport
	closeFunc func() error
	logger    logging.Logger
}

func newDeviceClient(c *cli.Context) (*deviceClient, error) {
	level, err := logging.LevelFromString(c.String(flagLogLevel))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid --%s", flagLogLevel)
	}
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	logger := logging.NewLogger("mcp2515")
	logger.SetLevel(level)

	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	conf, err := cfg.Device(c.String(flagDevice))
	if err != nil {
		return nil, err
	}
	logger = logger.ForDevice(conf.Name, conf.Port())

	transport, closeFunc, err := openTransport(c.Context, conf, c.Bool(flagSharedBus), logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open device %q", conf.Name)
	}
	logger.Debugw("opened device", "baud_hz", conf.BaudHz, "mode", conf.Mode, "shared_bus", c.Bool(flagSharedBus))

	return &deviceClient{
		name:      conf.Name,
		dev:       mcp2515.New(transport),
		transport: transport,
		closeFunc: closeFunc,
		logger:    logger,
	}, nil
}

// check turns the result of an operation into an error. A transport error takes precedence over
// the status value, since the status reads fold a failure into the returned byte.
func (dc *deviceClient) check(op string, status mcp2515.Status) error {
	if err := dc.transport.Err(); err != nil {
		return errors.Wrapf(err, "%s on %q", op, dc.name)
	}
	if err := status.Err(); err != nil {
		return errors.Wrapf(err, "%s on %q", op, dc.name)
	}
	return nil
}

func (dc *deviceClient) close() error {
	if dc.closeFunc == nil {
		return nil
	}
	return multierr.Combine(dc.closeFunc(), dc.logger.Sync())
}

// withDevice opens the selected device, runs fn, and closes the device again.
func withDevice(c *cli.Context, fn func(dc *deviceClient) error) (err error) {
	dc, err := newDeviceClient(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, dc.close())
	}()
	return fn(dc)
}
