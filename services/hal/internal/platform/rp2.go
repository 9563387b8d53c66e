//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"tinygo.org/x/drivers"
)

// RP2 configures i2c0 and i2c1 at 100 kHz on the board default pins. The
// DS1307 is a standard-mode part.
func RP2() (*Platform, error) {
	p := &Platform{Name: "rp2", Buses: map[string]drivers.I2C{}}

	b0 := machine.I2C0
	if err := b0.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return nil, err
	}
	p.Buses["i2c0"] = b0

	b1 := machine.I2C1
	if err := b1.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	}); err != nil {
		return nil, err
	}
	p.Buses["i2c1"] = b1
	return p, nil
}

func Default() (*Platform, error) { return RP2() }
