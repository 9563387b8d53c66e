//go:build (rp2040 || rp2350) && espat

package main

import (
	"context"
	"io"
	"machine"
	"time"

	"tinygo.org/x/drivers/espat"
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

// usbReader turns the non-blocking USB CDC port into a blocking reader.
type usbReader struct{ ctx context.Context }

func (r usbReader) Read(p []byte) (int, error) {
	for machine.Serial.Buffered() == 0 {
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}
		time.Sleep(10 * time.Millisecond)
	}
	return machine.Serial.Read(p)
}

// The UARTs go to the ESP AT co-processor, so the console moves to USB.
func openConsole(ctx context.Context) consoleIO {
	return consoleIO{in: usbReader{ctx: ctx}, out: machine.Serial}
}

func netLink() netlink.Netlinker {
	return espat.NewDevice(&espat.Config{
		Uart: machine.UART1,
		Tx:   machine.UART1_TX_PIN,
		Rx:   machine.UART1_RX_PIN,
	})
}
