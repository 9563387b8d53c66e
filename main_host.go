//go:build !rp2040 && !rp2350

package main

import (
	"context"
	"io"
	"os"
	"time"

	"tinygo.org/x/drivers/netlink"

	"rtcclock-go/services/hal"
)

const (
	deviceID  = "host"
	bootDelay = 0 * time.Second
)

// The host firmware build runs against the simulated clock; real Linux
// hardware is driven by cmd/rtcclock.
var halOptions = hal.Options{Platform: "sim"}

type consoleIO struct {
	in  io.Reader
	out io.Writer
}

func openConsole(context.Context) consoleIO { return consoleIO{in: os.Stdin, out: os.Stdout} }

func netLink() netlink.Netlinker { return nil }
