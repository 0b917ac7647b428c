package inject

import (
	"go.viam.com/mcp2515/mcp2515"
)

// Transport is an injected mcp2515.Transport.
type Transport struct {
	mcp2515.Transport
	SelectFunc   func(active bool)
	TransferFunc func(buf []byte) mcp2515.Status
}

// Select calls the injected Select or the real version.
func (t *Transport) Select(active bool) {
	if t.SelectFunc == nil {
		t.Transport.Select(active)
		return
	}
	t.SelectFunc(active)
}

// Transfer calls the injected Transfer or the real version.
func (t *Transport) Transfer(buf []byte) mcp2515.Status {
	if t.TransferFunc == nil {
		return t.Transport.Transfer(buf)
	}
	return t.TransferFunc(buf)
}
