// services/hal/hal.go
package hal

import (
	"context"
	"errors"
	"time"

	"rtcclock-go/bus"
	"rtcclock-go/services/hal/internal/core"
	"rtcclock-go/services/hal/internal/i2cbus"
	"rtcclock-go/services/hal/internal/platform"
	"rtcclock-go/types"

	// Device builders register themselves.
	_ "rtcclock-go/services/hal/devices/ds1307"
)

var ErrPlatform = errors.New("hal: unknown platform")

// Options selects the platform the HAL runs on. The zero value uses the
// build's default platform.
type Options struct {
	// Platform is "sim", "linux", "rp2" or empty for the build default.
	Platform string
	// LinuxBuses maps bus ids to periph names; nil means {"i2c0": "1"}.
	LinuxBuses map[string]string
	// SimStart is the simulated clock's initial time; zero means now.
	SimStart time.Time
}

// Run opens the platform buses and serves the HAL until ctx ends.
func Run(ctx context.Context, conn *bus.Connection, opts Options) error {
	p, err := openPlatform(opts)
	if err != nil {
		return err
	}
	defer p.Close()
	RunPlatform(ctx, conn, p)
	return nil
}

// RunPlatform serves the HAL over an already opened platform.
func RunPlatform(ctx context.Context, conn *bus.Connection, p *platform.Platform) {
	reg := i2cbus.NewRegistry()
	defer reg.Close()
	for _, id := range p.IDs() {
		reg.Add(id, p.Buses[id])
	}
	println("[hal] platform", p.Name, "buses:", len(p.Buses))
	core.NewHAL(conn, reg).Run(ctx)
}

// WaitReady blocks until hal/state reports ready.
func WaitReady(ctx context.Context, conn *bus.Connection) error {
	return core.WaitReady(ctx, conn)
}

// ---- topics for services outside the HAL ----

func StateTopic() bus.Topic { return bus.T("hal", "state") }

func capTopic(domain string, kind types.Kind, name string, rest ...any) bus.Topic {
	return bus.T(append([]any{"hal", "cap", domain, string(kind), name}, rest...)...)
}

// ValueTopic and StatusTopic accept bus.SingleLevel for name.
func ValueTopic(domain string, kind types.Kind, name string) bus.Topic {
	return capTopic(domain, kind, name, "value")
}

func StatusTopic(domain string, kind types.Kind, name string) bus.Topic {
	return capTopic(domain, kind, name, "status")
}

func EventTopic(domain string, kind types.Kind, name string) bus.Topic {
	return capTopic(domain, kind, name, "event")
}

func ControlTopic(domain string, kind types.Kind, name, verb string) bus.Topic {
	return core.CapCtrl(core.CapAddr{Domain: domain, Kind: kind, Name: name}, verb)
}

func openPlatform(opts Options) (*platform.Platform, error) {
	switch opts.Platform {
	case "":
		return platform.Default()
	case "sim":
		start := opts.SimStart
		if start.IsZero() {
			start = time.Now().UTC()
		}
		return platform.Sim(start), nil
	default:
		return openNative(opts)
	}
}
