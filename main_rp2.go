//go:build (rp2040 || rp2350) && !espat

package main

import (
	"context"
	"io"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/netlink"

	"rtcclock-go/services/hal"
)

const (
	deviceID  = "pico"
	bootDelay = 2 * time.Second
)

var halOptions = hal.Options{}

type consoleIO struct {
	in  io.Reader
	out io.Writer
}

// uartReader blocks in the UART driver until bytes arrive or ctx ends.
type uartReader struct {
	ctx context.Context
	u   *uartx.UART
}

func (r uartReader) Read(p []byte) (int, error) { return r.u.RecvSomeContext(r.ctx, p) }

func openConsole(ctx context.Context) consoleIO {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       uartx.UART0_TX_PIN,
		RX:       uartx.UART0_RX_PIN,
	}); err != nil {
		println("[main] uart0 configure:", err.Error())
	}
	return consoleIO{in: uartReader{ctx: ctx, u: u}, out: u}
}

// A plain Pico has no radio; the network service reports unsupported.
func netLink() netlink.Netlinker { return nil }
