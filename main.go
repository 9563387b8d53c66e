package main

import (
	"context"
	"time"

	"rtcclock-go/bus"
	"rtcclock-go/services/clock"
	"rtcclock-go/services/config"
	"rtcclock-go/services/console"
	"rtcclock-go/services/hal"
	"rtcclock-go/services/network"
)

const rtcName = "rtc0"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(bootDelay)
	println("[main] boot", deviceID)

	ctx := config.WithDevice(context.Background(), deviceID)
	b := bus.NewBus(8)
	io := openConsole(ctx)

	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	go func() {
		if err := hal.Run(ctx, b.NewConnection("hal"), halOptions); err != nil {
			println("[main] hal:", err.Error())
		}
	}()
	clock.New(io.out).Start(ctx, b.NewConnection("clock"))
	network.New(netLink()).Start(ctx, b.NewConnection("net"))

	conn := b.NewConnection("console")
	if err := hal.WaitReady(ctx, conn); err != nil {
		println("[main] hal never ready:", err.Error())
		return
	}
	println("[main] ready")
	if err := console.New(conn, rtcName, io.out).Serve(ctx, io.in); err != nil {
		println("[main] console:", err.Error())
	}
	select {}
}
