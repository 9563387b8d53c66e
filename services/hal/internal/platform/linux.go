//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// DefaultLinuxBuses maps HAL bus ids to periph bus names.
var DefaultLinuxBuses = map[string]string{"i2c0": "1"}

// Linux opens each named periph I²C bus ("1", "/dev/i2c-1", "I2C1"). A periph
// bus already has the drivers.I2C Tx signature.
func Linux(buses map[string]string) (*Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if len(buses) == 0 {
		buses = DefaultLinuxBuses
	}
	p := &Platform{Name: "linux", Buses: map[string]drivers.I2C{}}
	for id, name := range buses {
		b, err := i2creg.Open(name)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.Buses[id] = b
		p.closers = append(p.closers, b)
	}
	return p, nil
}

func Default() (*Platform, error) { return Linux(nil) }
