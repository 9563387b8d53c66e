package network

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"tinygo.org/x/drivers/netlink"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/types"
)

// fakeLink fails the first `fail` connects, then succeeds.
type fakeLink struct {
	mu       sync.Mutex
	fail     int
	err      error
	connects []netlink.ConnectParams
	notify   func(netlink.Event)
	disc     int
}

func (f *fakeLink) NetConnect(p *netlink.ConnectParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, *p)
	if f.fail > 0 {
		f.fail--
		return f.err
	}
	return nil
}

func (f *fakeLink) NetDisconnect() {
	f.mu.Lock()
	f.disc++
	f.mu.Unlock()
}

func (f *fakeLink) NetNotify(cb func(netlink.Event)) {
	f.mu.Lock()
	f.notify = cb
	f.mu.Unlock()
}

func (f *fakeLink) GetHardwareAddr() (net.HardwareAddr, error) {
	return net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01}, nil
}

func (f *fakeLink) fire(ev netlink.Event) {
	f.mu.Lock()
	cb := f.notify
	f.mu.Unlock()
	cb(ev)
}

func (f *fakeLink) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connects)
}

func waitLevel(c *qt.C, sub *bus.Subscription, level types.NetLevel) types.NetState {
	c.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if st := m.Payload.(types.NetState); st.Level == level {
				return st
			}
		case <-deadline:
			c.Fatalf("net/state never reached %q", level)
		}
	}
}

func start(c *qt.C, link netlink.Netlinker, cfg *types.NetworkConfig) (*bus.Connection, *bus.Subscription) {
	ctx, cancel := context.WithCancel(context.Background())
	c.Cleanup(cancel)
	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	states := conn.Subscribe(StateTopic())
	if cfg != nil {
		conn.Publish(conn.NewMessage(bus.T("config", "network"), *cfg, true))
	}
	New(link).Start(ctx, b.NewConnection("net"))
	return conn, states
}

func TestConnectsWithConfig(t *testing.T) {
	c := qt.New(t)
	link := &fakeLink{}
	_, states := start(c, link, &types.NetworkConfig{SSID: "lab", Passphrase: "secret123", Country: "GB", ConnectTimeoutMs: 500})

	st := waitLevel(c, states, types.NetUp)
	c.Assert(st.SSID, qt.Equals, "lab")
	c.Assert(st.HWAddr, qt.Equals, "02:00:00:00:00:01")
	c.Assert(st.Attempts, qt.Equals, 1)

	link.mu.Lock()
	p := link.connects[0]
	link.mu.Unlock()
	c.Assert(p.Ssid, qt.Equals, "lab")
	c.Assert(p.Passphrase, qt.Equals, "secret123")
	c.Assert(p.Country, qt.Equals, "GB")
	c.Assert(p.ConnectTimeout, qt.Equals, 500*time.Millisecond)
}

func TestRetriesWithBackoff(t *testing.T) {
	c := qt.New(t)
	link := &fakeLink{fail: 2, err: netlink.ErrConnectTimeout}
	_, states := start(c, link, &types.NetworkConfig{SSID: "lab", BackoffMs: 10, MaxBackoffMs: 20})

	down := waitLevel(c, states, types.NetDown)
	c.Assert(down.Error, qt.Equals, string(errcode.Timeout))
	st := waitLevel(c, states, types.NetUp)
	c.Assert(st.Attempts, qt.Equals, 3)
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	c := qt.New(t)
	link := &fakeLink{fail: 100, err: netlink.ErrAuthFailure}
	_, states := start(c, link, &types.NetworkConfig{SSID: "lab", BackoffMs: 5, MaxAttempts: 2})

	st := waitLevel(c, states, types.NetFailed)
	c.Assert(st.Attempts, qt.Equals, 2)
	c.Assert(st.Error, qt.Equals, string(errcode.InvalidParams))
	time.Sleep(30 * time.Millisecond)
	c.Assert(link.connectCount(), qt.Equals, 2)
}

func TestReconnectsOnLinkDown(t *testing.T) {
	c := qt.New(t)
	link := &fakeLink{}
	_, states := start(c, link, &types.NetworkConfig{SSID: "lab"})
	waitLevel(c, states, types.NetUp)

	link.fire(netlink.EventNetDown)
	waitLevel(c, states, types.NetDown)
	waitLevel(c, states, types.NetUp)
	c.Assert(link.connectCount(), qt.Equals, 2)
}

func TestRejectsConfigWithoutSSID(t *testing.T) {
	c := qt.New(t)
	link := &fakeLink{}
	_, states := start(c, link, &types.NetworkConfig{})
	st := waitLevel(c, states, types.NetFailed)
	c.Assert(st.Error, qt.Equals, string(errcode.InvalidParams))
	c.Assert(link.connectCount(), qt.Equals, 0)
}

func TestNilLinkIsUnsupported(t *testing.T) {
	c := qt.New(t)
	_, states := start(c, nil, nil)
	st := waitLevel(c, states, types.NetFailed)
	c.Assert(st.Error, qt.Equals, string(errcode.Unsupported))
}

func TestNextBackoff(t *testing.T) {
	c := qt.New(t)
	cfg := types.NetworkConfig{BackoffMs: 100, MaxBackoffMs: 350}
	var d time.Duration
	var got []time.Duration
	for i := 0; i < 4; i++ {
		d = nextBackoff(d, cfg)
		got = append(got, d)
	}
	c.Assert(got, qt.DeepEquals, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 350 * time.Millisecond, 350 * time.Millisecond})
	c.Assert(nextBackoff(0, types.NetworkConfig{}), qt.Equals, time.Second)
	c.Assert(errCode(errors.New("radio on fire")), qt.Equals, string(errcode.ConnectFail))
}
