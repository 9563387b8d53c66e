package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/services/hal"
	"rtcclock-go/types"
)

func newConsole(c *qt.C) (*Console, *bytes.Buffer, *bus.Connection) {
	ctx, cancel := context.WithCancel(context.Background())
	c.Cleanup(cancel)

	b := bus.NewBus(16)
	conn := b.NewConnection("console")
	conn.Publish(conn.NewMessage(bus.T("config", "hal"), types.HALConfig{Devices: []types.HALDevice{{
		ID: "rtc0", Type: "ds1307",
		Params: types.DS1307Params{Bus: "i2c0", TimeoutMs: 100, SettleMs: 1},
	}}}, true))

	go hal.Run(ctx, b.NewConnection("hal"), hal.Options{
		Platform: "sim",
		SimStart: time.Date(2024, 6, 15, 21, 30, 45, 0, time.UTC),
	})
	wctx, wcancel := context.WithTimeout(ctx, 2*time.Second)
	defer wcancel()
	c.Assert(hal.WaitReady(wctx, conn), qt.IsNil)

	out := &bytes.Buffer{}
	return New(conn, "rtc0", out), out, conn
}

func TestNow(t *testing.T) {
	c := qt.New(t)
	con, out, _ := newConsole(c)

	c.Assert(con.Exec(context.Background(), "now"), qt.IsNil)
	c.Assert(out.String(), qt.Matches, `date: 24-06-15\ntime: 09:30:4\d PM\nday: saturday\n`)
}

func TestSetQuotedAndHalt(t *testing.T) {
	c := qt.New(t)
	con, out, _ := newConsole(c)
	ctx := context.Background()

	c.Assert(con.Exec(ctx, `set "2031-01-02T03:04:05Z"`), qt.IsNil)
	c.Assert(out.String(), qt.Contains, "date: 31-01-02\ntime: 03:04:0")

	out.Reset()
	c.Assert(con.Exec(ctx, "halt"), qt.IsNil)
	c.Assert(out.String(), qt.Contains, "(halted)")

	out.Reset()
	c.Assert(con.Exec(ctx, "run"), qt.IsNil)
	c.Assert(strings.Contains(out.String(), "(halted)"), qt.IsFalse)
}

func TestRateStartsPolling(t *testing.T) {
	c := qt.New(t)
	con, out, conn := newConsole(c)
	ctx := context.Background()

	vals := conn.Subscribe(hal.ValueTopic("time", types.KindRTC, "rtc0"))
	c.Assert(con.Exec(ctx, "rate 30"), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "ok\n")
	select {
	case <-vals.Channel():
	case <-time.After(2 * time.Second):
		c.Fatal("no polled value")
	}
	c.Assert(con.Exec(ctx, "rate 0"), qt.IsNil)
}

func TestErrors(t *testing.T) {
	c := qt.New(t)
	con, _, _ := newConsole(c)
	ctx := context.Background()

	c.Assert(con.Exec(ctx, "frobnicate"), qt.Equals, ErrUnknown)
	c.Assert(con.Exec(ctx, "set"), qt.Equals, ErrUsage)
	c.Assert(con.Exec(ctx, "rate -5"), qt.Equals, ErrUsage)
	c.Assert(con.Exec(ctx, "set 1999-01-01T00:00:00Z"), qt.Equals, error(errcode.InvalidParams))
	c.Assert(con.Exec(ctx, "sqw 2hz"), qt.Equals, error(errcode.InvalidParams))
	c.Assert(con.Exec(ctx, `set "unterminated`), qt.IsNotNil)
	c.Assert(con.Exec(ctx, "   "), qt.IsNil)
}

func TestServe(t *testing.T) {
	c := qt.New(t)
	con, out, _ := newConsole(c)

	err := con.Serve(context.Background(), strings.NewReader("help\nbogus\nsqw 1hz\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(out.String(), qt.Contains, "commands:")
	c.Assert(out.String(), qt.Contains, "error: unknown command\n")
	c.Assert(strings.HasSuffix(out.String(), "ok\n"), qt.IsTrue, qt.Commentf("output %q", out.String()))
}
