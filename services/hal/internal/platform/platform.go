// Package platform supplies the I²C buses a HAL instance owns.
package platform

import (
	"io"
	"sort"
	"time"

	"tinygo.org/x/drivers"

	"rtcclock-go/x/i2csim"
)

// Platform is a named set of buses plus whatever must be closed with them.
type Platform struct {
	Name  string
	Buses map[string]drivers.I2C

	// Set only for the simulated platform.
	SimBus *i2csim.Bus
	SimRTC *i2csim.RTC

	closers []io.Closer
}

// IDs returns the bus ids in sorted order.
func (p *Platform) IDs() []string {
	ids := make([]string, 0, len(p.Buses))
	for id := range p.Buses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Platform) Close() {
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			println("[hal] platform close:", err.Error())
		}
	}
	p.closers = nil
}

// Sim returns a platform with one simulated bus "i2c0" carrying a DS1307 at
// 0x68 that starts at start and follows the wall clock.
func Sim(start time.Time) *Platform {
	b := i2csim.NewBus()
	rtc := i2csim.NewRTC(start)
	b.Attach(0x68, rtc)
	return &Platform{
		Name:   "sim",
		Buses:  map[string]drivers.I2C{"i2c0": b},
		SimBus: b,
		SimRTC: rtc,
	}
}
