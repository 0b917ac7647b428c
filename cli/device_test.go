package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/mcp2515/config"
	"go.viam.com/mcp2515/logging"
	"go.viam.com/mcp2515/mcp2515"
	"go.viam.com/mcp2515/testutils/inject"
)

type testWriter struct {
	messages []string
}

func (tw *testWriter) Write(b []byte) (int, error) {
	tw.messages = append(tw.messages, string(b))
	return len(b), nil
}

func (tw *testWriter) String() string {
	return strings.Join(tw.messages, "")
}

// fakeChip answers SPI frames the way an MCP2515 would. Status instructions are one-byte frames,
// so the reply is written into the spare byte after the frame.
type fakeChip struct {
	regs     [0x80]byte
	rx       [2][13]byte
	tx       [3][13]byte
	rts      byte
	status   byte
	rxStatus byte

	selects      int
	transfers    int
	statusFrames [][]byte
	fail         error
	closed       bool
}

func (fc *fakeChip) transfer(buf []byte) mcp2515.Status {
	fc.transfers++
	if fc.fail != nil {
		return mcp2515.StatusError
	}
	op := buf[0]
	switch {
	case op == 0xC0:
		fc.regs = [0x80]byte{}
		fc.regs[mcp2515.CANSTAT] = mcp2515.ModeConfig
		fc.regs[mcp2515.CANCTRL] = 0x87
	case op == 0x03:
		for i := 2; i < len(buf); i++ {
			buf[i] = fc.regs[(int(buf[1])+i-2)&0x7F]
		}
	case op == 0x02:
		for i := 2; i < len(buf); i++ {
			fc.regs[(int(buf[1])+i-2)&0x7F] = buf[i]
		}
	case op == 0x05:
		fc.regs[buf[1]] = fc.regs[buf[1]]&^buf[2] | buf[3]&buf[2]
	case op == 0xA0:
		fc.statusFrames = append(fc.statusFrames, append([]byte(nil), buf...))
		buf[:2][1] = fc.status
	case op == 0xB0:
		fc.statusFrames = append(fc.statusFrames, append([]byte(nil), buf...))
		buf[:2][1] = fc.rxStatus
	case op&0xF9 == 0x90:
		nm := (op >> 1) & 0x03
		copy(buf[1:], fc.rx[nm>>1][5*int(nm&1):])
	case op&0xF8 == 0x40:
		abc := op & 0x07
		copy(fc.tx[abc>>1][5*int(abc&1):], buf[1:])
	case op&0xF8 == 0x80:
		fc.rts |= op & 0x07
	}
	return mcp2515.StatusOK
}

type fakeTransport struct {
	*inject.Transport
	chip *fakeChip
}

func (ft *fakeTransport) Err() error {
	return ft.chip.fail
}

const testConfig = `
devices:
  - name: can0
    bus: "0"
    chip_select: "0"
  - name: can1
    bus: "1"
    chip_select: "0"
`

// setup points the CLI at chip and returns a function running the app with the given arguments.
func setup(t *testing.T, chip *fakeChip) (func(args ...string) error, *testWriter, *testWriter) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcp2515.yaml")
	test.That(t, os.WriteFile(path, []byte(testConfig), 0o600), test.ShouldBeNil)

	prev := openTransport
	t.Cleanup(func() { openTransport = prev })
	openTransport = func(
		ctx context.Context,
		conf config.DeviceConfig,
		sharedBus bool,
		logger logging.Logger,
	) (deviceTransport, func() error, error) {
		if conf.Name != "can0" {
			return nil, nil, errors.Errorf("no hardware behind %s", conf.Port())
		}
		transport := &inject.Transport{
			SelectFunc:   func(active bool) { chip.selects++ },
			TransferFunc: chip.transfer,
		}
		return &fakeTransport{transport, chip}, func() error {
			chip.closed = true
			return nil
		}, nil
	}

	out := &testWriter{}
	errOut := &testWriter{}
	run := func(args ...string) error {
		return NewApp(out, errOut).Run(append([]string{"mcp2515", "--config", path, "--device", "can0"}, args...))
	}
	return run, out, errOut
}

func TestRegisterCommands(t *testing.T) {
	chip := &fakeChip{}
	run, out, _ := setup(t, chip)

	test.That(t, run("reset"), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "can0 reset")
	test.That(t, chip.closed, test.ShouldBeTrue)

	out.messages = nil
	test.That(t, run("read", "--addr", "CANSTAT", "--len", "2"), test.ShouldBeNil)
	dump := out.String()
	test.That(t, dump, test.ShouldContainSubstring, "CANSTAT")
	test.That(t, dump, test.ShouldContainSubstring, "10000000")
	test.That(t, dump, test.ShouldContainSubstring, "CANCTRL")
	test.That(t, dump, test.ShouldContainSubstring, "0x87")

	test.That(t, run("write", "--addr", "CNF3", "05", "b1", "00"), test.ShouldBeNil)
	test.That(t, chip.regs[mcp2515.CNF3:mcp2515.CNF1+1], test.ShouldResemble, []byte{0x05, 0xb1, 0x00})

	test.That(t, run("bit-modify", "--addr", "0x0f", "--mask", "0xe0", "--data", "0x40"), test.ShouldBeNil)
	test.That(t, chip.regs[mcp2515.CANCTRL], test.ShouldEqual, byte(0x47))

	// One select pair per frame.
	test.That(t, chip.selects, test.ShouldEqual, 2*chip.transfers)
}

func TestBufferCommands(t *testing.T) {
	chip := &fakeChip{}
	chip.rx[1] = [13]byte{0x11, 0x22, 0x33, 0x44, 0x08, 1, 2, 3, 4, 5, 6, 7, 8}
	run, out, _ := setup(t, chip)

	test.That(t, run("read-rx", "--buffer", "1", "--data-only"), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "RXB1D0: 01 02 03 04 05 06 07 08")

	out.messages = nil
	test.That(t, run("read-rx", "--buffer", "1"), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "RXB1SIDH: 11 22 33 44 08 01")

	test.That(t, run("load-tx", "--buffer", "2", "0x01020304050607080910111213"), test.ShouldBeNil)
	test.That(t, chip.tx[2][:5], test.ShouldResemble, []byte{1, 2, 3, 4, 5})

	test.That(t, run("load-tx", "--buffer", "0", "--data-only", "aa:bb:cc:dd:ee:ff:00:11"), test.ShouldBeNil)
	test.That(t, chip.tx[0][5:], test.ShouldResemble, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x00, 0x11})

	transfers := chip.transfers
	err := run("load-tx", "--buffer", "1", "--data-only", "01 02")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "takes exactly 8 bytes, got 2")
	test.That(t, chip.transfers, test.ShouldEqual, transfers)

	err = run("read-rx", "--buffer", "2")
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, run("rts", "--buffer", "0", "--buffer", "2"), test.ShouldBeNil)
	test.That(t, chip.rts, test.ShouldEqual, byte(0x05))

	err = run("rts", "--buffer", "3")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStatusCommands(t *testing.T) {
	chip := &fakeChip{status: 0x09, rxStatus: 0x4A}
	run, out, errOut := setup(t, chip)

	test.That(t, run("status"), test.ShouldBeNil)
	test.That(t, errOut.String(), test.ShouldContainSubstring, "one-byte READ STATUS frame")
	test.That(t, out.String(), test.ShouldContainSubstring, "status 0x09")
	test.That(t, out.String(), test.ShouldContainSubstring, "CANINTF.TX0IF")

	out.messages = nil
	test.That(t, run("rx-status"), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "rx status 0x4A")
	test.That(t, out.String(), test.ShouldContainSubstring, "standard remote")
	test.That(t, out.String(), test.ShouldContainSubstring, "RXF2")

	test.That(t, chip.statusFrames, test.ShouldResemble, [][]byte{{0xA0}, {0xB0}})
}

func TestTransportFailure(t *testing.T) {
	chip := &fakeChip{fail: errors.New("injected bus fault")}
	run, _, _ := setup(t, chip)

	for _, args := range [][]string{
		{"reset"},
		{"read", "--addr", "CANSTAT"},
		{"status"},
		{"rx-status"},
	} {
		err := run(args...)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, args[0])
		test.That(t, err.Error(), test.ShouldContainSubstring, "injected bus fault")
	}
	test.That(t, chip.closed, test.ShouldBeTrue)
}

func TestDeviceSelection(t *testing.T) {
	chip := &fakeChip{}
	run, _, _ := setup(t, chip)

	err := NewApp(&testWriter{}, &testWriter{}).Run([]string{"mcp2515", "--config", "/nonexistent.yaml", "reset"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to read config file")

	err = run("--log-level", "verbose", "reset")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid --log-level")
	test.That(t, run("--log-level", "warn", "reset"), test.ShouldBeNil)

	// The setup config has two devices; can1 has no hardware behind it.
	err = run("--device", "can1", "reset")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParsing(t *testing.T) {
	r, err := parseRegister("0x0e")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r, test.ShouldEqual, mcp2515.CANSTAT)

	r, err = parseRegister("txb0ctrl")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r, test.ShouldEqual, mcp2515.TXB0CTRL)

	_, err = parseRegister("0x80")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = parseRegister("bogus")
	test.That(t, err, test.ShouldNotBeNil)

	for _, in := range [][]string{{"0a", "0b"}, {"0a:0b"}, {"0x0a0b"}, {"0A 0B"}} {
		payload, err := parsePayload(in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, payload, test.ShouldResemble, []byte{0x0a, 0x0b})
	}
	_, err = parsePayload([]string{"abc"})
	test.That(t, err, test.ShouldNotBeNil)

	b, err := parseByte("0b101")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b, test.ShouldEqual, byte(5))
	_, err = parseByte("256")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDescribeRxStatus(t *testing.T) {
	buffers, frameType, filter := describeRxStatus(0xDF)
	test.That(t, buffers, test.ShouldEqual, "RXB0, RXB1")
	test.That(t, frameType, test.ShouldEqual, "extended remote")
	test.That(t, filter, test.ShouldEqual, "RXF1 (rollover to RXB1)")

	buffers, frameType, filter = describeRxStatus(0x00)
	test.That(t, buffers, test.ShouldEqual, "none")
	test.That(t, frameType, test.ShouldEqual, "standard data")
	test.That(t, filter, test.ShouldEqual, "RXF0")
}
