package mcp2515

import (
	"fmt"

	"github.com/pkg/errors"
)

// Status is the result code of a Transport transfer and of every Device operation. Zero and
// positive values mean success, negative values mean failure.
//
// ReadStatus and ReadRxStatus are the exception: they return the transfer status plus the byte read
// back from the chip, so a failed transfer can still produce a non-negative result. Callers must
// treat any non-zero result of those two operations as failure.
type Status int32

// Status codes produced by this package.
const (
	StatusOK Status = 0

	// StatusError is a generic failure. The encoder never returns it on its own; transports use it
	// to report a failed exchange.
	StatusError Status = -1

	// StatusBufferOverflow means the frame would not fit in the scratch buffer. The bus was not
	// touched.
	StatusBufferOverflow Status = -2
)

var (
	// ErrFailed is returned by Status.Err for StatusError.
	ErrFailed = errors.New("mcp2515: operation failed")

	// ErrBufferOverflow is returned by Status.Err for StatusBufferOverflow.
	ErrBufferOverflow = errors.New("mcp2515: frame exceeds scratch buffer")

	// ErrTransfer wraps any other negative status reported by a Transport.
	ErrTransfer = errors.New("mcp2515: transfer failed")
)

// Failed reports whether s is negative.
func (s Status) Failed() bool {
	return s < 0
}

// Err converts a failure status into an error and returns nil otherwise.
func (s Status) Err() error {
	switch {
	case s >= 0:
		return nil
	case s == StatusError:
		return ErrFailed
	case s == StatusBufferOverflow:
		return ErrBufferOverflow
	default:
		return errors.Wrapf(ErrTransfer, "status %d", int32(s))
	}
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusBufferOverflow:
		return "buffer overflow"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}
