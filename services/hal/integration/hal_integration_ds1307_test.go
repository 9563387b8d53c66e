package integration

import (
	"context"
	"testing"
	"time"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/services/hal"
	"rtcclock-go/services/hal/internal/platform"
	"rtcclock-go/types"
	"rtcclock-go/x/i2csim"
)

func startSim(t *testing.T, cfg types.HALConfig) (*bus.Connection, *platform.Platform) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := bus.NewBus(32)
	conn := b.NewConnection("test")
	t.Cleanup(conn.Disconnect)

	p := platform.Sim(time.Date(2024, 6, 15, 21, 30, 45, 0, time.UTC))
	go hal.RunPlatform(ctx, b.NewConnection("hal"), p)

	conn.Publish(conn.NewMessage(bus.T("config", "hal"), cfg, true))
	wctx, wcancel := context.WithTimeout(ctx, 2*time.Second)
	defer wcancel()
	if err := hal.WaitReady(wctx, conn); err != nil {
		t.Fatalf("hal not ready: %v", err)
	}
	return conn, p
}

func rtcConfig(pollMs uint32) types.HALConfig {
	cfg := types.HALConfig{Devices: []types.HALDevice{{
		ID: "rtc0", Type: "ds1307",
		// JSON-shaped params, as they arrive from the config service.
		Params: map[string]any{"bus": "i2c0", "timeout_ms": 50, "settle_ms": 1},
	}}}
	if pollMs > 0 {
		cfg.Pollers = []types.PollSpec{{Domain: "time", Kind: types.KindRTC, Name: "rtc0", IntervalMs: pollMs}}
	}
	return cfg
}

func TestHAL_EndToEnd_DS1307_Poll(t *testing.T) {
	conn, _ := startSim(t, rtcConfig(50))

	vals := conn.Subscribe(hal.ValueTopic("time", types.KindRTC, bus.SingleLevel))
	m, err := recvOrTimeout(vals.Channel(), 2*time.Second)
	if err != nil {
		t.Fatalf("no clock value: %v", err)
	}
	v, ok := m.Payload.(types.ClockValue)
	if !ok {
		t.Fatalf("payload %T", m.Payload)
	}
	if v.Year != 2024 || v.Month != 6 || v.Date != 15 || v.Hours != 21 || v.Minutes != 30 {
		t.Fatalf("unexpected value %+v", v)
	}

	st, err := recvOrTimeout(conn.Subscribe(hal.StatusTopic("time", types.KindRTC, "rtc0")).Channel(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if s := st.Payload.(types.CapabilityStatus); s.Link != types.LinkUp {
		t.Fatalf("status %+v", s)
	}
}

func TestHAL_EndToEnd_DS1307_TimeoutDegrades(t *testing.T) {
	conn, p := startSim(t, rtcConfig(0))
	p.SimBus.Inject(0x68, i2csim.Fault{Phase: i2csim.ReadPhase, Stall: 200 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	reply, err := conn.RequestWait(ctx, conn.NewMessage(hal.ControlTopic("time", types.KindRTC, "rtc0", "read"), nil, false))
	if err != nil {
		t.Fatal(err)
	}
	if got := reply.Payload; got != (types.ErrorReply{Error: string(errcode.BusError)}) {
		t.Fatalf("reply %#v", got)
	}

	st, err := recvOrTimeout(conn.Subscribe(hal.StatusTopic("time", types.KindRTC, "rtc0")).Channel(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	s := st.Payload.(types.CapabilityStatus)
	if s.Link != types.LinkDegraded || s.Error != string(errcode.BusError) {
		t.Fatalf("status %+v", s)
	}

	// No value may have been published for the failed read.
	select {
	case m := <-conn.Subscribe(hal.ValueTopic("time", types.KindRTC, "rtc0")).Channel():
		t.Fatalf("unexpected value %#v", m.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHAL_EndToEnd_DS1307_SetAndHalt(t *testing.T) {
	conn, p := startSim(t, rtcConfig(0))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ctrl := func(verb string, payload any) any {
		reply, err := conn.RequestWait(ctx, conn.NewMessage(hal.ControlTopic("time", types.KindRTC, "rtc0", verb), payload, false))
		if err != nil {
			t.Fatalf("%s: %v", verb, err)
		}
		return reply.Payload
	}

	v, ok := ctrl("set", types.ClockSet{Time: "2030-12-31T23:59:50Z"}).(types.ClockValue)
	if !ok || v.Year != 2030 || v.Hours != 23 || v.Minutes != 59 {
		t.Fatalf("set reply %+v", v)
	}

	events := conn.Subscribe(hal.EventTopic("time", types.KindRTC, "rtc0"))
	v, ok = ctrl("halt", nil).(types.ClockValue)
	if !ok || !v.Halted || !p.SimRTC.Halted() {
		t.Fatalf("halt reply %+v", v)
	}
	m, err := recvOrTimeout(events.Channel(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if m.Payload != (types.ClockHaltEvent{Halted: true}) {
		t.Fatalf("event %#v", m.Payload)
	}

	if got := ctrl("sqw", types.ClockSquareWave{Rate: "1hz"}); got != (types.OKReply{OK: true}) {
		t.Fatalf("sqw reply %#v", got)
	}
	if got := ctrl("set", types.ClockSet{Time: "1999-01-01T00:00:00Z"}); got != (types.ErrorReply{Error: string(errcode.InvalidParams)}) {
		t.Fatalf("bad year reply %#v", got)
	}
}
